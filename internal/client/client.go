// Package client talks to an Atalaia server over its HTTP API and chat
// websocket. Session cookies are kept in a jar, so a Client must log in
// before calling authenticated endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/johndosdos/atalaia/internal/model"
	ws "github.com/johndosdos/atalaia/internal/websocket"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", base.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	// No client timeout: the websocket dial rejects it and relies on the
	// context instead.
	return &Client{base: base, http: &http.Client{Jar: jar}}, nil
}

// SignupRequest is the registration form.
type SignupRequest struct {
	Name           string
	Email          string
	Password       string
	Role           model.Role
	NeighborhoodID uuid.UUID
}

// Neighborhood is an entry of the public registration list.
type Neighborhood struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (c *Client) Neighborhoods(ctx context.Context) ([]Neighborhood, error) {
	var out []Neighborhood
	err := c.do(ctx, http.MethodGet, "/api/public/neighborhoods", nil, "", &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	form := url.Values{
		"name":             {req.Name},
		"email":            {req.Email},
		"password":         {req.Password},
		"confirm_password": {req.Password},
		"neighborhood_id":  {req.NeighborhoodID.String()},
	}
	if req.Role != "" {
		form.Set("role", string(req.Role))
	}
	return c.postForm(ctx, "/account/signup", form, nil)
}

// Login starts a session. The access and refresh cookies are stored in the
// client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	var user model.User
	err := c.postForm(ctx, "/account/login", url.Values{
		"email":    {email},
		"password": {password},
	}, &user)
	return user, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/account/logout", nil, "", nil)
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, "", &user)
	return user, err
}

// History returns the recent messages of the user's channel.
func (c *Client) History(ctx context.Context) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	err := c.do(ctx, http.MethodGet, "/api/messages", nil, "", &out)
	return out, err
}

// Alert raises a system alert. An empty content uses the category's
// default text.
func (c *Client) Alert(ctx context.Context, alertType model.AlertType, content string) (model.ChatMessage, error) {
	var out model.ChatMessage
	err := c.postJSON(ctx, "/api/alerts", map[string]string{
		"alert_type":    string(alertType),
		"content":       content,
		"client_msg_id": uuid.NewString(),
	}, &out)
	return out, err
}

// Conn is an open chat websocket.
type Conn struct {
	conn *websocket.Conn
}

// Dial opens the chat websocket with the session cookies.
func (c *Client) Dial(ctx context.Context) (*Conn, error) {
	u := *c.base
	u.Path += "/ws"
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, res, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPClient: c.http})
	if err != nil {
		if res != nil && res.StatusCode != http.StatusSwitchingProtocols {
			return nil, &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		}
		return nil, fmt.Errorf("client: dial %s: %w", u.Redacted(), err)
	}
	return &Conn{conn: conn}, nil
}

// Send writes an inbound frame.
func (c *Conn) Send(ctx context.Context, in ws.Inbound) error {
	return wsjson.Write(ctx, c.conn, in)
}

// Next blocks until the server writes a frame.
func (c *Conn) Next(ctx context.Context) (ws.Frame, error) {
	var f ws.Frame
	err := wsjson.Read(ctx, c.conn, &f)
	return f, err
}

func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(p), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Message: body.Error}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
