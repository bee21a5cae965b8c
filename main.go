// Package main our entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"

	"github.com/johndosdos/atalaia/internal"
	"github.com/johndosdos/atalaia/internal/alerts"
	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/broker"
	"github.com/johndosdos/atalaia/internal/config"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/handler"
	"github.com/johndosdos/atalaia/internal/model"
	"github.com/johndosdos/atalaia/internal/payment"
	"github.com/johndosdos/atalaia/internal/presence"
	ratelimiter "github.com/johndosdos/atalaia/internal/rate_limiter"
	ws "github.com/johndosdos/atalaia/internal/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(logHandler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting application", "env", cfg.Env)

	// Init DB
	slog.Info("initializing database connection")
	dbConn, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("could not connect to the postgresql database", err)
	}
	defer dbConn.Close()

	if cfg.MigrateOnBoot {
		if err := database.Migrate(ctx, dbConn); err != nil {
			fatal("could not apply migrations", err)
		}
	}

	dbQueries := database.NewStore(dbConn)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := handler.EnsureAdmin(ctx, dbQueries, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			fatal("could not seed administrator", err)
		}
	}

	// Init NATS
	slog.Info("initializing NATS connection")
	var natsOptions []nats.Option
	if cfg.NATSCred != "" {
		natsOptions = append(natsOptions, nats.UserCredentials(cfg.NATSCred))
	} else if cfg.NATSUser != "" && cfg.NATSPassword != "" {
		natsOptions = append(natsOptions, nats.UserInfo(cfg.NATSUser, cfg.NATSPassword))
	}
	natsOptions = append(natsOptions, nats.Timeout(5*time.Second))

	conn, err := nats.Connect(cfg.NATSURL, natsOptions...)
	if err != nil {
		fatal("failed to connect to nats", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		fatal("failed to create jetstream instance", err)
	}

	stream, err := broker.EnsureStream(ctx, js)
	if err != nil {
		fatal("failed to create/update stream", err)
	}

	health := map[string]handler.Pinger{
		"postgres": dbConn,
		"nats": handler.PingFunc(func(ctx context.Context) error {
			return conn.FlushWithContext(ctx)
		}),
	}

	// Presence falls back to a per-process count without Redis.
	var tracker presence.Tracker = presence.NewMemory()
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = presence.NewRedisClient(ctx, presence.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			fatal("could not connect to redis", err)
		}
		tracker = presence.NewRedis(rdb)
		health["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	var dispatcher alerts.Dispatcher = alerts.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		dispatcher, err = alerts.NewKafka(alerts.Config{
			Brokers:   cfg.KafkaBrokers,
			Topic:     cfg.KafkaAlertTopic,
			User:      cfg.KafkaUser,
			Password:  cfg.KafkaPassword,
			Mechanism: cfg.KafkaSASLMechanism,
		})
		if err != nil {
			fatal("could not create kafka producer", err)
		}
	}

	// hub.Run is our central hub that is always listening for client related events.
	hub := ws.NewHub(dbQueries, broker.NewPublisher(js),
		ws.WithAlerts(dispatcher),
		ws.WithPresence(tracker))
	go hub.Run(ctx)

	if err := broker.Subscriber(ctx, stream, hub.BrokerMsg); err != nil {
		fatal("failed to subscribe to change feed", err)
	}

	tokens := auth.TokenConfig{
		Secret:        cfg.JWTSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		SecureCookies: cfg.IsProduction(),
	}
	hosts := handler.StreamHosts{RTMP: cfg.RTMPHost, RTSP: cfg.RTSPHost}
	gateway := payment.NewClient(cfg.MercadoPagoURL, cfg.MercadoPagoToken, cfg.PublicURL)

	accountLimiter := ratelimiter.NewAccountLimiter(ratelimiter.AccountLimits{
		Attempts:   10,
		Window:     time.Minute,
		IdleTTL:    10 * time.Minute,
		SweepEvery: time.Minute,
	})
	defer accountLimiter.Close()

	var originPatterns []string
	if u, err := url.Parse(cfg.PublicURL); err == nil && u.Host != "" {
		originPatterns = append(originPatterns, u.Host)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", handler.Healthz(health))
	r.Get("/api/plans", handler.ListPlans())
	r.Get("/api/public/neighborhoods", handler.ListPublicNeighborhoods(dbQueries))

	r.Route("/account", func(r chi.Router) {
		r.Use(accountLimiter.Middleware)
		r.Post("/signup", handler.SubmitSignupForm(dbQueries))
		r.Post("/login", handler.SubmitLoginForm(dbQueries, tokens))
		r.Post("/logout", handler.SubmitLogoutReq(dbQueries, tokens))
		r.Post("/refresh", handler.RefreshToken(dbQueries, tokens))
	})

	r.Group(func(r chi.Router) {
		r.Use(internal.Middleware(dbQueries, tokens))

		r.Get("/api/users/me", handler.GetMe())
		r.Put("/api/users/me/plan", handler.UpdatePlan(dbQueries))

		r.Get("/api/neighborhoods", handler.ListNeighborhoods(dbQueries))
		r.Get("/api/neighborhoods/{id}", handler.GetNeighborhood(dbQueries))

		// Load chat history on HTTP GET on initial connection before starting websockets.
		r.Get("/api/messages", handler.ServeMessages(hub))
		r.Post("/api/messages", handler.PostMessage(hub))
		r.Get("/api/messages/stream", handler.StreamSSE(hub))
		r.Post("/api/alerts", handler.PostAlert(hub))

		r.Post("/api/payments/preference", handler.CreatePreference(gateway))
		r.Get("/payment/success", handler.PaymentSuccess(dbQueries))

		r.Get("/cameras/{id}", handler.ServeCamera(dbQueries))
		r.Get("/ws", handler.ServeWs(hub, originPatterns))

		r.Group(func(r chi.Router) {
			r.Use(internal.RequireRole(model.RoleAdmin))
			r.Post("/api/neighborhoods", handler.CreateNeighborhood(dbQueries))
			r.Delete("/api/neighborhoods/{id}", handler.DeleteNeighborhood(dbQueries))
			r.Get("/api/protocols", handler.ListProtocols(dbQueries))
		})

		r.Group(func(r chi.Router) {
			r.Use(internal.RequireRole(model.RoleIntegrator))
			r.Post("/api/protocols/preview", handler.PreviewProtocol(hosts))
			r.Post("/api/protocols", handler.CreateProtocol(dbQueries, hosts))
		})
	})

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received; shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}

	// Drain NATS connection.
	if err := conn.Drain(); err != nil {
		slog.Error("couldn't drain NATS conn", "error", err)
	}

	if err := dispatcher.Close(); err != nil {
		slog.Error("couldn't close kafka producer", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("couldn't close redis client", "error", err)
		}
	}

	slog.Info("server stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
