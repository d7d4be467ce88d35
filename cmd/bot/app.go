package main

import (
	"context"
	"fmt"

	"trailingbot/internal/api"
	"trailingbot/internal/bot"
	"trailingbot/internal/cache"
	"trailingbot/internal/config"
	"trailingbot/internal/engine"
	"trailingbot/internal/errhandler"
	"trailingbot/internal/exchange/binance"
	"trailingbot/internal/logger"
	"trailingbot/internal/queue"
	"trailingbot/internal/storage"
	"trailingbot/internal/storage/memory"
	"trailingbot/internal/storage/mongostore"
	"trailingbot/internal/stream"

	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, closeStore, err := openStore(ctx, cfg.Mongo, log)
	if err != nil {
		return err
	}
	defer closeStore()

	hashCache, err := cache.NewSQLite(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer hashCache.Close()

	var notifier errhandler.Notifier = errhandler.NewLogNotifier(log)
	if cfg.Notifier.SlackWebhookURL != "" {
		notifier = errhandler.NewSlackNotifier(cfg.Notifier.SlackWebhookURL, cfg.Notifier.Channel)
	}
	gate := errhandler.NewGate(log, notifier, cfg.Trading.NotifyDebug)

	venue := binance.New(binance.Config{
		BaseURL:   cfg.Exchange.BaseURL,
		StreamURL: cfg.Exchange.StreamURL,
		ApiKey:    cfg.Exchange.ApiKey,
		Secret:    cfg.Exchange.Secret,
	}, log)

	eng := engine.New(engine.Deps{
		Exchange:  venue,
		Config:    cfg.Trading,
		Orders:    store,
		Snapshots: store,
		Cache:     hashCache,
		Notifier:  notifier,
	}, log)

	queues := queue.NewService(queue.Deps{
		Exchange: venue,
		Config:   cfg.Trading,
		Candles:  store,
		Orders:   store,
		Cache:    hashCache,
		Cycle:    eng,
	}, gate, log)

	streams := stream.NewRegistry(stream.Deps{
		Exchange: venue,
		Config:   cfg.Trading,
		Candles:  store,
		Cache:    hashCache,
		Queue:    queues,
	}, gate, log)

	b := bot.New(cfg.Trading, queues, streams, gate, log)

	if cfg.Runtime.WatchConfig {
		cfg.Trading.OnChange(b.OnConfigChange(ctx))
		cfg.Trading.Watch(func(err error) {
			log.WithComponent("config").WithError(err).Error("Failed to reload configuration.")
		})
	}

	router := api.NewRouter(store, b, log).Setup()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(gctx)
	})
	g.Go(func() error {
		log.WithComponent("api").WithField("addr", cfg.Runtime.MetricsAddr).Info("HTTP server listening.")
		return api.Serve(gctx, cfg.Runtime.MetricsAddr, router)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.MongoConfig, log *logger.Logger) (storage.Store, func(), error) {
	if cfg.URI == "" {
		log.WithComponent("storage").Warn("No MongoDB URI configured, using the in-memory store.")
		return memory.New(), func() {}, nil
	}

	client, db, err := mongostore.Connect(ctx, cfg.URI, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	closeFn := func() {
		if err := mongostore.Disconnect(client); err != nil {
			log.WithComponent("storage").WithError(err).Warn("Failed to disconnect from MongoDB.")
		}
	}
	return mongostore.New(db), closeFn, nil
}
