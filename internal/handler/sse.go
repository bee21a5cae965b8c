package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/johndosdos/atalaia/internal/auth"
	ws "github.com/johndosdos/atalaia/internal/websocket"
)

// StreamSSE is a read-only chat feed over server-sent events.
func StreamSSE(h *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, ok := auth.CurrentUser(ctx)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		history, err := h.History(ctx, user.NeighborhoodID)
		if err != nil {
			log.Printf("%v", err)
			respondError(w, http.StatusInternalServerError, "Database error.")
			return
		}

		w.Header().Set("X-Accel-Buffering", "no")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		rc := http.NewResponseController(w)
		// The stream outlives the server's write timeout.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			log.Printf("%v", err)
		}
		if err := rc.Flush(); err != nil {
			log.Printf("%v", err)
			return
		}

		c := ws.NewClient(nil, h, SessionFor(user))
		if err := h.Attach(ctx, c); err != nil {
			log.Printf("%v", err)
			return
		}
		log.Printf("client [%s] connected to event stream", user.Email)

		c.StreamEvents(ctx, w, rc.Flush, history)
	}
}
