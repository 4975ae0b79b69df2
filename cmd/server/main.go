package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"goggins/internal/audit"
	"goggins/internal/audit/publisher"
	auditkafka "goggins/internal/audit/sink/kafka"
	auditmemory "goggins/internal/audit/sink/memory"
	identityservice "goggins/internal/identity/service"
	otpstore "goggins/internal/identity/store/otp"
	userstore "goggins/internal/identity/store/user"
	notesservice "goggins/internal/notes/service"
	notesstore "goggins/internal/notes/store"
	"goggins/internal/platform/config"
	"goggins/internal/platform/httpserver"
	"goggins/internal/platform/logger"
	"goggins/internal/platform/metrics"
	platformredis "goggins/internal/platform/redis"
	"goggins/internal/token"
	httptransport "goggins/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	m := metrics.New()

	// Stores degrade to in-memory implementations when no backing service
	// is configured, which keeps local development to a single binary.
	var users identityservice.UserStore = userstore.NewInMemoryStore()
	var noteStore notesservice.Store = notesstore.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pgUsers := userstore.NewPostgres(db)
		pgNotes := notesstore.NewPostgres(db)
		if err := pgUsers.EnsureSchema(ctx); err != nil {
			cancel()
			log.Error("failed to prepare users schema", "error", err)
			os.Exit(1)
		}
		if err := pgNotes.EnsureSchema(ctx); err != nil {
			cancel()
			log.Error("failed to prepare notes schema", "error", err)
			os.Exit(1)
		}
		cancel()
		users = pgUsers
		noteStore = pgNotes
	}

	var otps identityservice.OTPStore = otpstore.NewInMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		otps = otpstore.NewRedis(rdb.Client)
	}

	var sink audit.Sink = auditmemory.NewInMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.New(cfg.KafkaBrokers)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	auditor := publisher.NewPublisher(sink, publisher.WithAsyncBuffer(256), publisher.WithLogger(log))
	defer auditor.Close()

	tokens := token.NewService(cfg.JWTSigningKey, "goggins")

	identity, err := identityservice.New(users, otps, tokens, cfg.OTPTTL, cfg.SessionTTL,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditor),
		identityservice.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to build identity service", "error", err)
		os.Exit(1)
	}

	noteSvc, err := notesservice.New(noteStore,
		notesservice.WithLogger(log),
		notesservice.WithAuditPublisher(auditor),
		notesservice.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to build notes service", "error", err)
		os.Exit(1)
	}

	identityHandler := httptransport.NewIdentityHandler(identity, noteSvc, cfg.SessionTTL)
	notesHandler := httptransport.NewNotesHandler(noteSvc)
	router := httptransport.NewRouter(identityHandler, notesHandler, tokens, log)

	srv := httpserver.New(cfg.Addr, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
