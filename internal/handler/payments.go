package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	viewPayment "github.com/johndosdos/atalaia/components/payment"
	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/model"
	"github.com/johndosdos/atalaia/internal/payment"
)

// PreferenceCreator creates checkout preferences.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, planID string, payer payment.Payer) (payment.Preference, error)
}

func ListPlans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, model.Plans())
	}
}

type preferenceRequest struct {
	Plan string `json:"plan"`
}

// CreatePreference returns the checkout URL for the requested plan.
func CreatePreference(gateway PreferenceCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.CurrentUser(r.Context())

		var req preferenceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}

		pref, err := gateway.CreatePreference(r.Context(), req.Plan, payment.Payer{
			Email: user.Email,
			Name:  user.Name,
		})
		if err != nil {
			if errors.Is(err, payment.ErrInvalidPlan) {
				respondError(w, http.StatusBadRequest, "Invalid plan.")
				return
			}
			log.Printf("failed to create preference: %v", err)
			respondError(w, http.StatusInternalServerError, "Server error.")
			return
		}
		respondJSON(w, http.StatusOK, pref)
	}
}

// PaymentSuccess is where the gateway returns after an approved payment.
// The plan from the query string is applied to the user.
func PaymentSuccess(db PlanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		user, _ := auth.CurrentUser(ctx)
		planID := r.URL.Query().Get("plan")

		plan, err := model.LookupPlan(planID)
		if err == nil {
			_, err = setPlan(ctx, db, user, planID)
		}
		if err != nil {
			if !errors.Is(err, model.ErrInvalidPlan) {
				log.Printf("failed to update plan: %v", err)
			}
			if err := viewPayment.Unconfirmed().Render(ctx, w); err != nil {
				log.Printf("failed to render component: %v", err)
			}
			return
		}

		if err := viewPayment.Success(plan).Render(ctx, w); err != nil {
			log.Printf("failed to render component: %v", err)
		}
	}
}
