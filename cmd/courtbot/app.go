package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/court-reservations/internal/application"
	"github.com/example/court-reservations/internal/config"
	httptransport "github.com/example/court-reservations/internal/http"
	"github.com/example/court-reservations/internal/persistence"
	"github.com/example/court-reservations/internal/persistence/redisstore"
	"github.com/example/court-reservations/internal/persistence/sqlite"
	"github.com/example/court-reservations/internal/persistence/sqlite/migration"
)

const redisConnectTimeout = 5 * time.Second

// app holds the wired service and the resources it must release.
type app struct {
	handler      http.Handler
	storage      *sqlite.Storage
	conversation *application.ConversationService
	closers      []func() error
}

func newApp(ctx context.Context, cfg config.Config, now func() time.Time, logger *slog.Logger) (*app, error) {
	if now == nil {
		now = time.Now
	}

	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLitePath))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a := &app{storage: storage, closers: []func() error{storage.Close}}

	if err := storage.Migrate(ctx, logger); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	sessionRepo, pingers, err := a.openSessionRepository(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	members := newMemberDirectoryAdapter(storage)
	slots := newSlotStoreAdapter(storage, cfg.Location)
	sessions := newSessionStoreAdapter(sessionRepo, cfg.Location)

	sessionManager := application.NewSessionManagerWithLogger(sessions, cfg.SessionTTL, now, logger)
	availability := application.NewAvailabilityServiceWithLogger(slots, logger)
	booking := application.NewBookingServiceWithLogger(slots, now, logger)
	a.conversation = application.NewConversationServiceWithLogger(members, sessionManager, availability, booking, now, cfg.Location, logger)

	a.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Webhook: httptransport.NewWebhookHandler(a.conversation, logger),
		Health:  httptransport.NewHealthHandler(logger, pingers...),
		Logger:  logger,
	})
	return a, nil
}

// openSessionRepository picks the session backend. SQLite sessions live in
// the same database as slots; Redis sessions get a native key TTL.
func (a *app) openSessionRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.ConversationSessionRepository, []httptransport.Pinger, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, client.Close)

		store := redisstore.NewSessionStore(client, cfg.SessionTTL)
		pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store, []httptransport.Pinger{a.storage, store}, nil
	default:
		logger.Info("using sqlite session store")
		return a.storage, []httptransport.Pinger{a.storage}, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
