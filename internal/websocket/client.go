package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/johndosdos/atalaia/internal/chatsync"
	"github.com/johndosdos/atalaia/internal/model"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Client is one websocket session. Its synchronizer holds the sequence the
// connected user sees.
type Client struct {
	session    chatsync.Session
	conn       *websocket.Conn
	hub        *Hub
	sync       *chatsync.Synchronizer
	outbound   chan event
	messageLim *rate.Limiter
	limitWin   time.Duration
}

// NewClient returns a session bound to h. conn may be nil in tests that only
// drive the synchronizer.
func NewClient(conn *websocket.Conn, h *Hub, session chatsync.Session) *Client {
	c := &Client{
		session:  session,
		conn:     conn,
		hub:      h,
		outbound: make(chan event, 64),
	}
	c.sync = chatsync.New(session, chatsync.SubmitterFunc(c.submit))
	c.SetMessageLimiter(30, time.Minute)
	return c
}

// Sync returns the session's synchronizer.
func (c *Client) Sync() *chatsync.Synchronizer {
	return c.sync
}

func (c *Client) SetMessageLimiter(requests int, window time.Duration) {
	c.messageLim = rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)
	c.limitWin = window / time.Duration(requests)
}

// submit echoes the optimistic copy to the sender before handing the message
// to the hub, so the sender always sees it before its confirmation.
func (c *Client) submit(ctx context.Context, msg model.ChatMessage) error {
	echo := msg
	echo.Pending = true
	c.enqueue(ctx, event{frame: &Frame{Type: FrameMessage, Message: &echo}})
	return c.hub.Submit(ctx, msg)
}

// Serve loads history, writes it, then runs both socket loops until the
// connection closes. It blocks on the read loop because the request context
// is canceled as soon as the handler returns.
func (c *Client) Serve(ctx context.Context, history []model.ChatMessage) {
	c.sync.Load(history)
	if err := c.write(ctx, Frame{Type: FrameHistory, Messages: c.sync.Messages()}); err != nil {
		slog.WarnContext(ctx, "failed to write history", "error", err)
	}

	go c.keepalive(ctx)
	go c.WriteMessage(ctx)
	c.ReadMessage(ctx)
}

// WriteMessage writes events to the outgoing websocket stream.
func (c *Client) WriteMessage(ctx context.Context) {
	for {
		select {
		case ev, ok := <-c.outbound:
			// We don't want to continue processing when the channel has
			// already been closed.
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}

			frame, ok := c.frameFor(ev)
			if !ok {
				continue
			}

			if err := c.write(ctx, frame); err != nil {
				slog.WarnContext(ctx, "failed to write frame",
					"error", err,
					"frame_type", frame.Type,
					"user_id", c.session.UserID.String())
			}

		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "context cancelled")
			return
		}
	}
}

// frameFor merges feed events into the synchronizer and returns the frame to
// write, if the sequence changed.
func (c *Client) frameFor(ev event) (Frame, bool) {
	if ev.frame != nil {
		return *ev.frame, true
	}

	upd := c.sync.Receive(*ev.feed)
	switch upd.Outcome {
	case chatsync.Appended:
		return Frame{Type: FrameMessage, Message: &upd.Message}, true
	case chatsync.Confirmed:
		return Frame{Type: FrameConfirm, Message: &upd.Message, TempID: &upd.TempID}, true
	}
	return Frame{}, false
}

func (c *Client) write(ctx context.Context, frame Frame) error {
	p, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, p)
}

// Proxies and load balancers drop idle connections, so the client is pinged
// periodically.
func (c *Client) keepalive(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
