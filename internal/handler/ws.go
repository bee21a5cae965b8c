package handler

import (
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/chatsync"
	"github.com/johndosdos/atalaia/internal/model"
	ws "github.com/johndosdos/atalaia/internal/websocket"
)

// SessionFor derives the chat session of an authenticated user.
func SessionFor(user model.User) chatsync.Session {
	return chatsync.Session{
		UserID:         user.ID,
		Username:       user.Name,
		Role:           user.Role,
		NeighborhoodID: user.NeighborhoodID,
	}
}

// ServeWs handles the client's websocket connection upgrade.
func ServeWs(h *ws.Hub, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, ok := auth.CurrentUser(ctx)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Printf("failed to accept websocket: %v", err)
			return
		}

		history, err := h.History(ctx, user.NeighborhoodID)
		if err != nil {
			log.Printf("%v", err)
			conn.Close(websocket.StatusInternalError, "could not load history")
			return
		}

		// We'll register our new client to the central hub.
		c := ws.NewClient(conn, h, SessionFor(user))
		if err := h.Attach(ctx, c); err != nil {
			log.Printf("%v", err)
			conn.Close(websocket.StatusTryAgainLater, "hub unavailable")
			return
		}
		log.Printf("upgraded connection for user %s", user.Email)

		// We block here because the request context will be canceled as
		// soon as we return from the handler.
		c.Serve(ctx, history)
	}
}
