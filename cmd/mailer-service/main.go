package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-mailer/internal/auth"
	"ticket-mailer/internal/config"
	"ticket-mailer/internal/dispatch"
	"ticket-mailer/internal/kafka"
	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/mailer"
	"ticket-mailer/internal/settings"
	"ticket-mailer/internal/sse"
	qr "ticket-mailer/internal/tickets/qr_genrator"
	"ticket-mailer/internal/tickets/template"
	"ticket-mailer/internal/tickets/ticket_api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func openStore(cfg config.StoreConfig, log *logger.Logger) (settings.Store, error) {
	switch cfg.Driver {
	case "redis":
		client, err := settings.ConnectRedis(cfg.RedisAddr, cfg.RedisDB, log)
		if err != nil {
			return nil, err
		}
		return settings.NewRedisStore(client, cfg.KeyPrefix), nil
	case "sqlite", "postgres":
		dsn := cfg.SQLiteDSN
		if cfg.Driver == "postgres" {
			dsn = cfg.PostgresDSN
		}
		bunDB, err := settings.OpenDB(cfg.Driver, dsn, log)
		if err != nil {
			return nil, err
		}
		store := &settings.DB{Bun: bunDB}
		if err := store.InitSchema(context.Background()); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Driver)
	}
}

func loadLogo(path string, log *logger.Logger) []byte {
	if path == "" {
		log.Info("CONFIG", "LOGO_PATH empty, tickets are sent without a logo")
		return nil
	}
	logo, err := os.ReadFile(path)
	if err != nil {
		log.Warn("CONFIG", fmt.Sprintf("Failed to read logo %s, tickets are sent without a logo: %v", path, err))
		return nil
	}
	log.Info("CONFIG", fmt.Sprintf("Loaded logo from %s (%d bytes)", path, len(logo)))
	return logo
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Ticket Mailer initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	store, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal("STORE", fmt.Sprintf("Failed to open settings store: %v", err))
	}
	defer store.Close()
	logger.Info("STORE", fmt.Sprintf("Settings store ready (%s)", cfg.Store.Driver))

	sender, err := mailer.NewSender(cfg.Email, logger)
	if err != nil {
		logger.Fatal("MAILER", fmt.Sprintf("Failed to configure email provider: %v", err))
	}
	logger.Info("MAILER", fmt.Sprintf("Email provider: %s", cfg.Email.Provider))
	if cfg.Email.Provider == "brevo" && cfg.Email.QRRemoteURL == "" {
		logger.Warn("MAILER", "Brevo does not support inline images; QR codes will arrive as attachments unless QR_REMOTE_URL is set")
	}

	renderer, err := template.NewTicketRenderer(cfg.Dispatch.SupportEmail, cfg.Dispatch.FooterText)
	if err != nil {
		logger.Fatal("TEMPLATE", err.Error())
	}

	events := sse.NewDispatchEventEmitter()

	dispatcher := dispatch.NewDispatcher(sender, renderer, qr.NewQRGenerator(256), logger, cfg)
	dispatcher.Logo = loadLogo(cfg.Email.LogoPath, logger)
	dispatcher.Progress = events
	logger.Info("DISPATCH", fmt.Sprintf("Send delay %s, hard-block codes %v", cfg.Dispatch.SendDelay, cfg.Dispatch.HardBlockCodes))

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.BatchCompleted, logger)
		defer producer.Close()

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.BatchCompleted}, logger); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		dispatcher.Notifier = producer
		logger.Info("KAFKA", fmt.Sprintf("Batch notifications enabled on %s", cfg.Kafka.Topics.BatchCompleted))
	}

	settingsService := settings.NewService(store, cfg.Event, logger)
	handler := ticket_api.NewHandler(dispatcher, settingsService, events, logger, cfg.Server.MaxBodyBytes)

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		logger.Fatal("AUTH", err.Error())
	}
	if verifier == nil {
		logger.LogSecurity("AUTH", "No OIDC_ISSUER or AUTH_JWT_SECRET set, API is unauthenticated")
	}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(ticket_api.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier, logger))
		handler.RegisterRoutes(r)
	})
	logger.Info("ROUTER", "Mailer routes registered at /send-emails, /preview-email and under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("Ticket Mailer running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "Ticket Mailer shutdown complete")
	}
}
