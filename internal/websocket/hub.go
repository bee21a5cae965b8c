package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/johndosdos/atalaia/internal/alerts"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
	"github.com/johndosdos/atalaia/internal/presence"
)

// HistoryLimit is the number of stored messages sent when a session opens.
const HistoryLimit = 50

type sanitizer interface {
	Sanitize(s string) string
}

// Store persists chat messages.
type Store interface {
	CreateMessage(ctx context.Context, arg database.CreateMessageParams) (database.ChatMessage, error)
	ListGlobalMessages(ctx context.Context, limit int32) ([]database.ChatMessage, error)
	ListMessagesByNeighborhood(ctx context.Context, arg database.ListMessagesByNeighborhoodParams) ([]database.ChatMessage, error)
}

// Publisher writes persisted messages to the change feed.
type Publisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) (uint64, error)
}

type Registration struct {
	Client *Client
	Done   chan struct{}
}

// Hub owns the connected sessions. Submitted messages are persisted and
// published; change feed events are handed to every session.
type Hub struct {
	store      Store
	publisher  Publisher
	alerts     alerts.Dispatcher
	presence   presence.Tracker
	sanitizer  sanitizer
	clients    map[*Client]struct{}
	Register   chan Registration
	Unregister chan *Client
	ClientMsg  chan submission
	BrokerMsg  chan model.ChatMessage
	done       chan struct{}
}

type submission struct {
	ctx context.Context
	msg model.ChatMessage
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithAlerts sets where system alerts are dispatched.
func WithAlerts(d alerts.Dispatcher) HubOption {
	return func(h *Hub) { h.alerts = d }
}

// WithPresence sets the presence tracker.
func WithPresence(t presence.Tracker) HubOption {
	return func(h *Hub) { h.presence = t }
}

// NewHub returns a new instance of Hub.
func NewHub(store Store, publisher Publisher, opts ...HubOption) *Hub {
	h := &Hub{
		store:      store,
		publisher:  publisher,
		alerts:     alerts.Nop{},
		presence:   presence.NewMemory(),
		sanitizer:  bluemonday.StrictPolicy(),
		clients:    make(map[*Client]struct{}),
		Register:   make(chan Registration),
		Unregister: make(chan *Client),
		ClientMsg:  make(chan submission, 1024),
		BrokerMsg:  make(chan model.ChatMessage, 1024),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Submit queues msg for persistence. It is the submitter of every session's
// synchronizer.
func (h *Hub) Submit(ctx context.Context, msg model.ChatMessage) error {
	select {
	case h.ClientMsg <- submission{ctx: context.WithoutCancel(ctx), msg: msg}:
		return nil
	case <-h.done:
		return errors.New("hub is not running")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attach registers client and waits for the hub to accept it.
func (h *Hub) Attach(ctx context.Context, client *Client) error {
	reg := Registration{Client: client, Done: make(chan struct{})}
	select {
	case h.Register <- reg:
	case <-h.done:
		return errors.New("hub is not running")
	case <-ctx.Done():
		return ctx.Err()
	}
	<-reg.Done
	return nil
}

func (h *Hub) detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Run manages incoming and outgoing hub traffic.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case reg := <-h.Register:
			client := reg.Client
			h.clients[client] = struct{}{}
			client.hub = h
			close(reg.Done)
			h.join(ctx, client)

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			delete(h.clients, client)
			close(client.outbound)
			h.leave(ctx, client)

		case sub := <-h.ClientMsg:
			if _, err := h.Persist(sub.ctx, sub.msg); err != nil {
				slog.ErrorContext(sub.ctx, "failed to persist chat message",
					"error", err,
					"client_msg_id", sub.msg.ClientMsgID,
					"user_id", sub.msg.UserID.String())
			}

		case payload := <-h.BrokerMsg:
			h.broadcast(payload)

		case <-ctx.Done():
			log.Printf("context cancelled: %v", ctx.Err())
			return
		}
	}
}

// Persist sanitizes, stores and publishes msg and returns the stored copy.
// Storing is idempotent on the client token. Alerts are also dispatched to
// the alert stream.
func (h *Hub) Persist(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error) {
	// We need to sanitize incoming messages to prevent XSS.
	msg.Content = strings.TrimSpace(h.sanitizer.Sanitize(msg.Content))
	msg.Image = h.sanitizer.Sanitize(msg.Image)
	if msg.Content == "" {
		return model.ChatMessage{}, errors.New("message is empty")
	}
	if msg.ClientMsgID == "" {
		msg.ClientMsgID = uuid.NewString()
	}
	msg.Pending = false

	created, err := h.store.CreateMessage(ctx, database.MessageParams(msg))
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("failed to store payload to database: %w", err)
	}
	stored := created.ToModel()

	if _, err := h.publisher.Publish(ctx, stored); err != nil {
		// Without the change feed, sessions on this instance still get it.
		slog.WarnContext(ctx, "publish failed, delivering locally",
			"error", err,
			"message_id", stored.ID.String())
		select {
		case h.BrokerMsg <- stored:
		default:
			log.Println("skipping local delivery - broker channel full")
		}
	}

	if stored.IsSystemAlert {
		if err := h.alerts.Dispatch(ctx, stored); err != nil {
			slog.ErrorContext(ctx, "failed to dispatch alert",
				"error", err,
				"alert_type", string(stored.AlertType),
				"message_id", stored.ID.String())
		}
	}

	return stored, nil
}

// History returns the most recent stored messages of a channel in
// chronological order.
func (h *Hub) History(ctx context.Context, hood *uuid.UUID) ([]model.ChatMessage, error) {
	var rows []database.ChatMessage
	var err error
	if hood == nil {
		rows, err = h.store.ListGlobalMessages(ctx, HistoryLimit)
	} else {
		rows, err = h.store.ListMessagesByNeighborhood(ctx, database.ListMessagesByNeighborhoodParams{
			NeighborhoodID: database.NullUUID(hood),
			Limit:          HistoryLimit,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load messages from database: %w", err)
	}

	out := make([]model.ChatMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToModel())
	}
	return out, nil
}

// Every session gets the event; its synchronizer decides whether it belongs.
func (h *Hub) broadcast(payload model.ChatMessage) {
	for client := range h.clients {
		h.deliver(client, event{feed: &payload})
	}
}

func (h *Hub) deliver(client *Client, ev event) {
	select {
	case client.outbound <- ev:
	default:
		log.Printf("skipping event for %s - channel full or client slow", client.session.Username)
	}
}

func (h *Hub) join(ctx context.Context, client *Client) {
	count, err := h.presence.Join(ctx, client.session.NeighborhoodID, client.session.UserID)
	if err != nil {
		slog.WarnContext(ctx, "presence join failed", "error", err)
		return
	}
	h.announce(client.session.NeighborhoodID, count)
}

func (h *Hub) leave(ctx context.Context, client *Client) {
	count, err := h.presence.Leave(ctx, client.session.NeighborhoodID, client.session.UserID)
	if err != nil {
		slog.WarnContext(ctx, "presence leave failed", "error", err)
		return
	}
	h.announce(client.session.NeighborhoodID, count)
}

func (h *Hub) announce(hood *uuid.UUID, count int) {
	frame := Frame{Type: FramePresence, Count: &count}
	for client := range h.clients {
		if model.SameNeighborhood(client.session.NeighborhoodID, hood) {
			h.deliver(client, event{frame: &frame})
		}
	}
}
