package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
)

// PlanStore updates a user's subscription plan.
type PlanStore interface {
	UpdateUserPlan(ctx context.Context, arg database.UpdateUserPlanParams) (database.User, error)
}

// GetMe returns the authenticated user.
func GetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.CurrentUser(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

type updatePlanRequest struct {
	Plan string `json:"plan"`
}

// UpdatePlan switches the authenticated user to another plan.
func UpdatePlan(db PlanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.CurrentUser(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		var req updatePlanRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}

		updated, err := setPlan(r.Context(), db, user, req.Plan)
		if err != nil {
			if errors.Is(err, model.ErrInvalidPlan) {
				respondError(w, http.StatusBadRequest, "Invalid plan.")
				return
			}
			respondStoreError(w, err, "User")
			return
		}

		respondJSON(w, http.StatusOK, updated)
	}
}

func setPlan(ctx context.Context, db PlanStore, user model.User, planID string) (model.User, error) {
	plan, err := model.LookupPlan(planID)
	if err != nil {
		return model.User{}, err
	}

	row, err := db.UpdateUserPlan(ctx, database.UpdateUserPlanParams{
		UserID: database.UUID(user.ID),
		Plan:   string(plan.ID),
	})
	if err != nil {
		return model.User{}, err
	}
	return row.ToModel(), nil
}
