package websocket

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"math"

	"github.com/coder/websocket"

	"github.com/johndosdos/atalaia/internal/chatsync"
	"github.com/johndosdos/atalaia/internal/model"
)

// ReadMessage reads the incoming data from the websocket stream.
func (c *Client) ReadMessage(ctx context.Context) {
	defer func() {
		// Pending submissions still write to outbound, which the hub closes
		// on unregister.
		c.sync.Wait()
		c.hub.detach(c)
		c.conn.CloseNow()
	}()

	for {
		msgType, p, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure &&
				status != websocket.StatusGoingAway &&
				status != -1 {
				log.Printf("%v", err)
			}
			return
		}

		// The app only supports text format for now...
		if msgType != websocket.MessageText {
			continue
		}

		var in Inbound
		if err := json.Unmarshal(p, &in); err != nil {
			log.Printf("failed to process payload from client: %v", err)
			continue
		}

		c.handle(ctx, in)
	}
}

// handle turns an inbound frame into an optimistic send.
func (c *Client) handle(ctx context.Context, in Inbound) {
	draft := chatsync.Draft{Content: in.Content, ClientMsgID: in.ClientMsgID}
	switch in.Type {
	case FrameMessage:
	case FrameAlert:
		alertType, err := model.ParseAlertType(string(in.AlertType))
		if err != nil {
			slog.DebugContext(ctx, "dropping alert with unknown type", "alert_type", in.AlertType)
			return
		}
		draft.AlertType = alertType
		draft.Image = in.Image
	default:
		return
	}

	if !c.messageLim.Allow() {
		retryIn := int(math.Ceil(c.limitWin.Seconds()))
		c.enqueue(ctx, event{frame: &Frame{Type: FrameRateLimited, RetryIn: retryIn}})
		return
	}

	c.sync.Send(ctx, draft)
}

func (c *Client) enqueue(ctx context.Context, ev event) {
	select {
	case c.outbound <- ev:
	case <-ctx.Done():
	}
}
