package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/johndosdos/atalaia/internal/model"
)

const sseKeepalive = 10 * time.Second

// StreamEvents writes the session's frames as server-sent events until ctx
// is done or the hub drops the session. It is the read-only counterpart of
// Serve for clients that cannot open a websocket.
func (c *Client) StreamEvents(ctx context.Context, w io.Writer, flush func() error, history []model.ChatMessage) {
	defer c.hub.detach(c)

	send := func(frame Frame) error {
		data, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Type, data); err != nil {
			return err
		}
		return flush()
	}

	c.sync.Load(history)
	if err := send(Frame{Type: FrameHistory, Messages: c.sync.Messages()}); err != nil {
		log.Printf("could not write history: %+v", err)
		return
	}

	ticker := time.NewTicker(sseKeepalive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-c.outbound:
			if !ok {
				return
			}
			frame, ok := c.frameFor(ev)
			if !ok {
				continue
			}
			if err := send(frame); err != nil {
				log.Printf("could not flush buffer to writer: %+v", err)
				return
			}

		case <-ticker.C:
			fmt.Fprint(w, ": \n\n") //nolint:errcheck
			if err := flush(); err != nil {
				log.Printf("could not flush buffer to writer: %+v", err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
