package model

import "strings"

// PlanID is a subscription plan tag.
type PlanID string

const (
	PlanFree    PlanID = "FREE"
	PlanFamily  PlanID = "FAMILY"
	PlanPremium PlanID = "PREMIUM"
)

// Plan describes a subscription offer.
type Plan struct {
	ID       PlanID   `json:"id"`
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
}

var plans = []Plan{
	{
		ID:       PlanFree,
		Name:     "Gratuito",
		Title:    "Plano Gratuito - Atalaia",
		Price:    0,
		Features: []string{"Chat do bairro", "Alertas da comunidade"},
	},
	{
		ID:    PlanFamily,
		Name:  "Família",
		Title: "Plano Família - Atalaia",
		Price: 39.90,
		Features: []string{
			"Chat do bairro",
			"Alertas da comunidade",
			"Câmeras ao vivo",
			"Botão de pânico",
		},
	},
	{
		ID:    PlanPremium,
		Name:  "Prêmio",
		Title: "Plano Prêmio - Atalaia",
		Price: 79.90,
		Features: []string{
			"Chat do bairro",
			"Alertas da comunidade",
			"Câmeras ao vivo",
			"Botão de pânico",
			"Ronda motovigia prioritária",
		},
	},
}

// Plans returns every plan, FREE first.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// LookupPlan finds a plan by tag in any letter case.
func LookupPlan(id string) (Plan, error) {
	want := PlanID(strings.ToUpper(strings.TrimSpace(id)))
	for _, p := range plans {
		if p.ID == want {
			return p, nil
		}
	}
	return Plan{}, ErrInvalidPlan
}
