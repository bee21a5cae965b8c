package handler

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
)

// NeighborhoodStore is the part of the database the neighborhood handlers
// use.
type NeighborhoodStore interface {
	ListNeighborhoods(ctx context.Context) ([]database.Neighborhood, error)
	SearchNeighborhoods(ctx context.Context, name string) ([]database.Neighborhood, error)
	GetNeighborhood(ctx context.Context, id pgtype.UUID) (database.Neighborhood, error)
	CreateNeighborhood(ctx context.Context, arg database.CreateNeighborhoodParams) (database.Neighborhood, error)
	DeleteNeighborhood(ctx context.Context, id pgtype.UUID) (int64, error)
}

var iframeSrc = regexp.MustCompile(`src=["'](.*?)["']`)

// ExtractIframeSrc returns the src attribute of pasted <iframe> markup, or
// the trimmed input when it is not iframe markup.
func ExtractIframeSrc(input string) string {
	if strings.Contains(input, "<iframe") {
		if m := iframeSrc.FindStringSubmatch(input); m != nil && m[1] != "" {
			return m[1]
		}
	}
	return strings.TrimSpace(input)
}

func toNeighborhoods(rows []database.Neighborhood) []model.Neighborhood {
	out := make([]model.Neighborhood, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToModel())
	}
	return out
}

type publicNeighborhood struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ListPublicNeighborhoods feeds the registration dropdown. Feed locators
// are not exposed.
func ListPublicNeighborhoods(db NeighborhoodStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.ListNeighborhoods(r.Context())
		if err != nil {
			respondStoreError(w, err, "Neighborhood")
			return
		}

		out := make([]publicNeighborhood, 0, len(rows))
		for _, row := range rows {
			out = append(out, publicNeighborhood{ID: row.ID.Bytes, Name: row.Name})
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// ListNeighborhoods returns every neighborhood to admins, optionally
// filtered by name, and only their own to everyone else.
func ListNeighborhoods(db NeighborhoodStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, _ := auth.CurrentUser(ctx)

		if user.Role != model.RoleAdmin {
			if user.NeighborhoodID == nil {
				respondJSON(w, http.StatusOK, []model.Neighborhood{})
				return
			}
			row, err := db.GetNeighborhood(ctx, database.NullUUID(user.NeighborhoodID))
			if err != nil {
				if database.IsNotFound(err) {
					respondJSON(w, http.StatusOK, []model.Neighborhood{})
					return
				}
				respondStoreError(w, err, "Neighborhood")
				return
			}
			respondJSON(w, http.StatusOK, []model.Neighborhood{row.ToModel()})
			return
		}

		var rows []database.Neighborhood
		var err error
		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			rows, err = db.SearchNeighborhoods(ctx, q)
		} else {
			rows, err = db.ListNeighborhoods(ctx)
		}
		if err != nil {
			respondStoreError(w, err, "Neighborhood")
			return
		}
		respondJSON(w, http.StatusOK, toNeighborhoods(rows))
	}
}

// loadNeighborhood resolves the {id} URL parameter. Non-admins can only
// reach their own neighborhood.
func loadNeighborhood(w http.ResponseWriter, r *http.Request, db NeighborhoodStore) (model.Neighborhood, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid neighborhood id.")
		return model.Neighborhood{}, false
	}

	user, _ := auth.CurrentUser(r.Context())
	if user.Role != model.RoleAdmin && !model.SameNeighborhood(user.NeighborhoodID, &id) {
		respondError(w, http.StatusNotFound, "Neighborhood not found.")
		return model.Neighborhood{}, false
	}

	row, err := db.GetNeighborhood(r.Context(), database.UUID(id))
	if err != nil {
		respondStoreError(w, err, "Neighborhood")
		return model.Neighborhood{}, false
	}
	return row.ToModel(), true
}

func GetNeighborhood(db NeighborhoodStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hood, ok := loadNeighborhood(w, r, db)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, hood)
	}
}

type createNeighborhoodRequest struct {
	Name      string   `json:"name"`
	IframeURL string   `json:"iframe_url"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

func CreateNeighborhood(db NeighborhoodStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNeighborhoodRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, "Name is required.")
			return
		}

		row, err := db.CreateNeighborhood(r.Context(), database.CreateNeighborhoodParams{
			Name:      name,
			IframeUrl: ExtractIframeSrc(req.IframeURL),
			Lat:       database.NullFloat8(req.Lat),
			Lng:       database.NullFloat8(req.Lng),
		})
		if err != nil {
			respondStoreError(w, err, "Neighborhood")
			return
		}
		respondJSON(w, http.StatusCreated, row.ToModel())
	}
}

func DeleteNeighborhood(db NeighborhoodStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid neighborhood id.")
			return
		}

		n, err := db.DeleteNeighborhood(r.Context(), database.UUID(id))
		if err != nil {
			respondStoreError(w, err, "Neighborhood")
			return
		}
		if n == 0 {
			respondError(w, http.StatusNotFound, "Neighborhood not found.")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
