package handler

import (
	"log"
	"net/http"

	"github.com/johndosdos/atalaia/components/camera"
	"github.com/johndosdos/atalaia/internal/auth"
)

// ServeCamera renders the live feed of a neighborhood.
func ServeCamera(db NeighborhoodStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hood, ok := loadNeighborhood(w, r, db)
		if !ok {
			return
		}

		user, _ := auth.CurrentUser(r.Context())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := camera.Player(user, hood).Render(r.Context(), w); err != nil {
			log.Printf("failed to render component: %v", err)
		}
	}
}
