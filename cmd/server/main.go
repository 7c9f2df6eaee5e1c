// Command server runs the quora HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/quora"
	amqpadapter "github.com/lborres/quora/adapters/amqp"
	fiberadapter "github.com/lborres/quora/adapters/fiber"
	"github.com/lborres/quora/adapters/memory"
	pgxadapter "github.com/lborres/quora/adapters/pgx"
	redisadapter "github.com/lborres/quora/adapters/redis"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/config"
	"github.com/lborres/quora/internal/logging"
)

// memoryDSN selects the in-process store instead of postgres.
const memoryDSN = "memory"

func logFormat() string {
	format := []string{
		// Timestamp & Request ID
		"${time}|${requestid}",

		// Response metadata
		"${status}|${latency}",

		// Client info
		"${ip}:${port}",

		// Transfer size
		"${bytesReceived}|${bytesSent}",

		// Request details
		"${method}|${path}|${queryParams}",

		// errors
		"${errors}",
	}
	return strings.Join(format, "|") + "\n"
}

func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	store, closeStore, err := openStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn(ctx, "closing store", "error", err)
		}
	}()

	if err := promoteAdmin(ctx, store, cfg.AdminUsername, log); err != nil {
		return err
	}

	cache, closeCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	events, closeEvents := openEvents(ctx, cfg, log)
	defer closeEvents()

	app := fiber.New(fiber.Config{AppName: "quora"})
	app.Use(recoverer.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     logFormat(),
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))

	sessionConfig := quora.SessionConfig{MaxAge: cfg.SessionMaxAge}
	if _, err := quora.New(quora.Config{
		Secret:        cfg.Secret,
		Issuer:        cfg.Issuer,
		Database:      store,
		HTTP:          fiberadapter.New(app).WithLogger(log),
		CacheAdapter:  cache,
		SessionConfig: &sessionConfig,
		Events:        events,
		Logger:        log,
		BasePath:      cfg.BasePath,
	}); err != nil {
		return fmt.Errorf("could not create quora instance: %w", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "base_path", cfg.BasePath)
		listenErr <- app.Listen(cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("app.Listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	log.Info(shutdownCtx, "shutting down")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore returns the store for dsn and its closer. Postgres stores are
// migrated before use.
func openStore(ctx context.Context, dsn string) (core.StorageAdapter, func() error, error) {
	if dsn == memoryDSN {
		return memory.New(), func() error { return nil }, nil
	}

	db, err := pgxadapter.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, db.Close, nil
}

type roleSetter interface {
	SetRole(ctx context.Context, userID int64, role core.Role) error
}

// promoteAdmin grants the admin role to username. An unknown username is
// logged and skipped so the first deploy can start before anyone signs up.
func promoteAdmin(ctx context.Context, store core.StorageAdapter, username string, log logging.Logger) error {
	if username == "" {
		return nil
	}

	setter, ok := store.(roleSetter)
	if !ok {
		return fmt.Errorf("store %T cannot assign roles", store)
	}

	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			log.Warn(ctx, "admin user not found, skipping promotion", "username", username)
			return nil
		}
		return fmt.Errorf("find admin user: %w", err)
	}

	if user.IsAdmin() {
		return nil
	}
	if err := setter.SetRole(ctx, user.ID, core.RoleAdmin); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	log.Info(ctx, "user promoted to admin", "user_id", user.UUID)
	return nil
}

// openCache uses Redis when configured and the in-process cache otherwise.
// A configured but unreachable Redis is a startup error: a per-process cache
// would hide signouts made on other instances.
func openCache(ctx context.Context, cfg *config.Config, log logging.Logger) (core.Cache, func(), error) {
	if cfg.RedisAddr != "" {
		client, err := redisadapter.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("session cache: %w", err)
		}
		log.Info(ctx, "session cache: redis", "addr", cfg.RedisAddr)
		return redisadapter.New(client, "", cfg.CacheTTL), func() { _ = client.Close() }, nil
	}

	return quora.NewInMemoryCache(quora.CacheConfig{
		TTL:     cfg.CacheTTL,
		MaxSize: cfg.CacheMaxSize,
	}), func() {}, nil
}

// openEvents returns nil when AMQP is not configured or unreachable; audit
// events are then only logged.
func openEvents(ctx context.Context, cfg *config.Config, log logging.Logger) (core.EventPublisher, func()) {
	if cfg.AMQPURL == "" {
		return nil, func() {}
	}

	pub, err := amqpadapter.Dial(cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		log.Warn(ctx, "rabbitmq unavailable, audit events disabled", "error", err)
		return nil, func() {}
	}
	return pub, func() { _ = pub.Close() }
}
