package main

import (
	"context"
	"fmt"
	"log/slog"

	tfnats "github.com/Strob0t/TaskForge/internal/adapter/nats"
	"github.com/Strob0t/TaskForge/internal/adapter/postgres"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
	"github.com/Strob0t/TaskForge/internal/service"
)

// queueDialer opens the message queue described by cfg.
type queueDialer func(ctx context.Context, cfg config.NATS) (messagequeue.Queue, error)

func dialNATS(ctx context.Context, cfg config.NATS) (messagequeue.Queue, error) {
	return tfnats.Connect(ctx, cfg)
}

// openStore connects to the configured database for operator commands.
// The returned cleanup closes the pool.
func openStore(ctx context.Context, load configLoader) (*postgres.Store, func(), error) {
	store, _, cleanup, err := openStoreWithConfig(ctx, load)
	return store, cleanup, err
}

func openStoreWithConfig(ctx context.Context, load configLoader) (*postgres.Store, *config.Config, func(), error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return postgres.NewStore(pool), cfg, pool.Close, nil
}

// openMutatingStore is openStore for commands that change state. Their
// change events go to NATS when nats.url is set, the same subjects the
// server publishes to. Websocket clients of a running server are not
// reached from here.
func openMutatingStore(ctx context.Context, load configLoader) (*postgres.Store, *service.EventPublisher, func(), error) {
	store, cfg, closePool, err := openStoreWithConfig(ctx, load)
	if err != nil {
		return nil, nil, nil, err
	}
	events, closeQueue, err := operatorPublisher(ctx, cfg.NATS, dialNATS)
	if err != nil {
		closePool()
		return nil, nil, nil, err
	}
	return store, events, func() {
		closeQueue()
		closePool()
	}, nil
}

// operatorPublisher returns an event publisher backed by the queue dial
// opens, or a publisher without a queue when cfg.URL is empty.
func operatorPublisher(ctx context.Context, cfg config.NATS, dial queueDialer) (*service.EventPublisher, func(), error) {
	if cfg.URL == "" {
		slog.WarnContext(ctx, "nats disabled, change events of this command are not published")
		return service.NewEventPublisher(nil, nil, nil), func() {}, nil
	}
	q, err := dial(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to nats: %w", err)
	}
	return service.NewEventPublisher(nil, q, nil), func() {
		if err := q.Close(); err != nil {
			slog.Warn("nats close failed", "error", err)
		}
	}, nil
}
