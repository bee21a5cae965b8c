// Command loadtest signs up a batch of users in one neighborhood, connects
// them all to the chat and measures how long messages take to be confirmed.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johndosdos/atalaia/internal/client"
	ws "github.com/johndosdos/atalaia/internal/websocket"
)

type config struct {
	server       string
	users        int
	messages     int
	interval     time.Duration
	neighborhood string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config{}
	cmd := &cobra.Command{
		Use:          "loadtest",
		Short:        "Load test the chat websocket",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.server, "server", "http://localhost:8080", "server base URL")
	cmd.Flags().IntVar(&cfg.users, "users", 20, "concurrent users")
	cmd.Flags().IntVar(&cfg.messages, "messages", 10, "messages per user")
	cmd.Flags().DurationVar(&cfg.interval, "interval", 2*time.Second, "pause between messages of one user")
	cmd.Flags().StringVar(&cfg.neighborhood, "neighborhood", "", "neighborhood id (defaults to the first listed)")

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	hood, err := pickNeighborhood(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		mu        sync.Mutex
		latencies []time.Duration
		failures  int
		wg        sync.WaitGroup
	)

	start := time.Now()
	for i := 0; i < cfg.users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := runUser(ctx, cfg, hood, i)
			mu.Lock()
			defer mu.Unlock()
			latencies = append(latencies, got...)
			if err != nil {
				failures++
				slog.Warn("user failed", "user", i, "error", err)
			}
		}(i)
	}
	wg.Wait()

	report(latencies, failures, cfg.users*cfg.messages, time.Since(start))
	return nil
}

func pickNeighborhood(ctx context.Context, cfg config) (uuid.UUID, error) {
	if cfg.neighborhood != "" {
		return uuid.Parse(cfg.neighborhood)
	}

	c, err := client.New(cfg.server)
	if err != nil {
		return uuid.Nil, err
	}
	hoods, err := c.Neighborhoods(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if len(hoods) == 0 {
		return uuid.Nil, errors.New("no neighborhoods registered")
	}
	return hoods[0].ID, nil
}

// runUser signs up a throwaway account, then sends messages and waits for
// each confirmation.
func runUser(ctx context.Context, cfg config, hood uuid.UUID, n int) ([]time.Duration, error) {
	c, err := client.New(cfg.server)
	if err != nil {
		return nil, err
	}

	email := fmt.Sprintf("loadtest-%d-%s@atalaia.test", n, uuid.NewString()[:8])
	password := uuid.NewString()
	if err := c.Signup(ctx, client.SignupRequest{
		Name:           fmt.Sprintf("loadtest %d", n),
		Email:          email,
		Password:       password,
		NeighborhoodID: hood,
	}); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if _, err := c.Login(ctx, email, password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var (
		mu      sync.Mutex
		sentAt  = make(map[string]time.Time)
		results []time.Duration
		done    = make(chan struct{})
	)

	go func() {
		defer close(done)
		for len(results) < cfg.messages {
			f, err := conn.Next(ctx)
			if err != nil {
				return
			}
			if f.Type != ws.FrameConfirm || f.Message == nil {
				continue
			}
			mu.Lock()
			if t, ok := sentAt[f.Message.ClientMsgID]; ok {
				results = append(results, time.Since(t))
				delete(sentAt, f.Message.ClientMsgID)
			}
			mu.Unlock()
		}
	}()

	for i := 0; i < cfg.messages; i++ {
		token := uuid.NewString()
		mu.Lock()
		sentAt[token] = time.Now()
		mu.Unlock()

		err := conn.Send(ctx, ws.Inbound{
			Type:        ws.FrameMessage,
			Content:     fmt.Sprintf("load test message %d from user %d", i, n),
			ClientMsgID: token,
		})
		if err != nil {
			return nil, err
		}

		select {
		case <-time.After(cfg.interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	if len(results) < cfg.messages {
		return results, fmt.Errorf("%d of %d messages unconfirmed", cfg.messages-len(results), cfg.messages)
	}
	return results, nil
}

func report(latencies []time.Duration, failures, expected int, elapsed time.Duration) {
	slices.Sort(latencies)
	pct := func(p float64) time.Duration {
		if len(latencies) == 0 {
			return 0
		}
		return latencies[int(float64(len(latencies)-1)*p)]
	}

	fmt.Printf("confirmed %d/%d messages in %s (%d users failed)\n", len(latencies), expected, elapsed.Round(time.Millisecond), failures)
	fmt.Printf("p50=%s p95=%s p99=%s\n", pct(0.50), pct(0.95), pct(0.99))
}
