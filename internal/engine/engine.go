package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"trailingbot/internal/cache"
	"trailingbot/internal/errhandler"
	"trailingbot/internal/exchange"
	"trailingbot/internal/logger"
	"trailingbot/internal/metrics"
	"trailingbot/internal/models"
	"trailingbot/internal/storage"

	"github.com/moznion/go-optional"
)

type ConfigSource interface {
	GetSymbolConfiguration(ctx context.Context, symbol string) (models.SymbolConfiguration, error)
}

type Deps struct {
	Exchange  exchange.Client
	Config    ConfigSource
	Orders    storage.OrderStore
	Snapshots storage.SnapshotStore
	Cache     cache.Cache
	Notifier  errhandler.Notifier
}

// Engine runs decision cycles. It keeps no per-cycle state: every cycle
// builds its own Snapshot, and the symbol queue guarantees one cycle per
// symbol at a time.
type Engine struct {
	deps       Deps
	log        *logger.Logger
	symbolInfo sync.Map
	retryDelay time.Duration
}

func New(deps Deps, log *logger.Logger) *Engine {
	if deps.Notifier == nil {
		deps.Notifier = errhandler.NewLogNotifier(log)
	}
	return &Engine{
		deps:       deps,
		log:        log,
		retryDelay: 1 * time.Second,
	}
}

// Execute runs one decision cycle for symbol.
func (e *Engine) Execute(ctx context.Context, symbol, correlationID string) error {
	snap := models.NewSnapshot(symbol, correlationID)

	cfg, err := e.deps.Config.GetSymbolConfiguration(ctx, symbol)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	snap.SymbolConfiguration = cfg

	info, err := e.getSymbolInfo(ctx, symbol)
	if err != nil {
		return err
	}
	snap.SymbolInfo = info

	openOrders, err := e.deps.Exchange.GetOpenOrders(ctx, symbol)
	if err != nil {
		return err
	}
	snap.OpenOrders = openOrders
	snap.SplitOpenOrders()

	account, err := e.getAccountInfo(ctx)
	if err != nil {
		return err
	}
	snap.AccountInfo = account

	var candle models.Candle
	found, err := cache.GetJSON(ctx, e.deps.Cache, cache.HashSymbols, cache.LatestCandleField(symbol), &candle)
	if err != nil {
		return err
	}
	if !found {
		e.logEntry(snap).Info("No latest candle yet, skipping cycle.")
		return nil
	}

	if err := e.applyMarketData(ctx, snap, candle.Close); err != nil {
		return err
	}

	if err := e.ApplyOverride(ctx, snap); err != nil {
		return err
	}

	if err := e.HandleOpenOrders(ctx, snap); err != nil {
		return err
	}

	snap.UpdatedAt = time.Now().UTC()
	if err := e.deps.Snapshots.SaveSnapshot(ctx, snap); err != nil {
		return err
	}

	metrics.ObserveAction(string(snap.Action))
	e.logEntry(snap).WithField("action", snap.Action).Debug("Cycle completed.")
	return nil
}

func (e *Engine) applyMarketData(ctx context.Context, snap *models.Snapshot, currentPrice float64) error {
	cfg := snap.SymbolConfiguration

	snap.Buy.CurrentPrice = currentPrice
	snap.Buy.LimitPrice = currentPrice * cfg.Buy.LimitPercentage
	snap.Sell.CurrentPrice = currentPrice
	snap.Sell.LimitPrice = currentPrice * cfg.Sell.LimitPercentage

	var spread float64
	found, err := cache.GetJSON(ctx, e.deps.Cache, cache.HashSymbols, cache.MarketSpreadField(snap.Symbol), &spread)
	if err != nil {
		return err
	}
	if found {
		snap.Buy.MarketSpread = optional.Some(spread)
	}

	if len(snap.Buy.OpenOrders) > 0 && currentPrice > 0 {
		stop := snap.Buy.OpenOrders[0].StopPrice
		snap.Buy.Difference = optional.Some((1 - stop/currentPrice) * -100)
	}

	lastBuyPrice, err := e.deps.Orders.GetLastBuyPrice(ctx, snap.Symbol)
	if err != nil {
		return err
	}
	snap.Sell.LastBuyPrice = lastBuyPrice
	if lastBuyPrice.IsSome() && lastBuyPrice.Unwrap() > 0 {
		last := lastBuyPrice.Unwrap()
		snap.Sell.CurrentProfitPercentage = optional.Some((currentPrice - last) / last * 100)
	}
	return nil
}

func (e *Engine) getSymbolInfo(ctx context.Context, symbol string) (models.SymbolInfo, error) {
	if cached, ok := e.symbolInfo.Load(symbol); ok {
		return cached.(models.SymbolInfo), nil
	}

	info, err := withRetry(ctx, e.retryDelay, func() (models.SymbolInfo, error) {
		return e.deps.Exchange.GetSymbolInfo(ctx, symbol)
	}, func(err error) {
		e.log.WithSymbol(symbol).WithError(err).Warn("Symbol info request failed, retrying.")
	})
	if err != nil {
		return models.SymbolInfo{}, err
	}

	e.symbolInfo.Store(symbol, info)
	return info, nil
}

func (e *Engine) getAccountInfo(ctx context.Context) (models.AccountInfo, error) {
	var account models.AccountInfo
	found, err := cache.GetJSON(ctx, e.deps.Cache, cache.HashCommon, cache.FieldAccountInfo, &account)
	if err != nil {
		return models.AccountInfo{}, err
	}
	if found {
		return account, nil
	}
	return e.getAccountInfoFromVenue(ctx)
}

func (e *Engine) getAccountInfoFromVenue(ctx context.Context) (models.AccountInfo, error) {
	account, err := e.deps.Exchange.GetAccountInfo(ctx)
	if err != nil {
		return models.AccountInfo{}, err
	}
	if err := cache.SetJSON(ctx, e.deps.Cache, cache.HashCommon, cache.FieldAccountInfo, account); err != nil {
		return models.AccountInfo{}, err
	}
	return account, nil
}

// withRetry retries fn while it fails with a transient error.
func withRetry[T any](ctx context.Context, base time.Duration, fn func() (T, error), onRetry func(error)) (T, error) {
	var zero T
	var lastErr error
	backoff := base
	for i := 0; i < 5; i++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if errhandler.Classify(err) != errhandler.ClassTransient {
			return zero, err
		}
		onRetry(err)

		wait := time.Duration(math.Min(float64(backoff), float64(base*30)))
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
	return zero, lastErr
}
