package queue

import (
	"context"
	"errors"
	"fmt"

	"trailingbot/internal/cache"
	"trailingbot/internal/models"
)

var errMissingPayload = errors.New("job payload missing")

func (s *Service) runStep(ctx context.Context, symbol string, job Job) error {
	switch job.Type {
	case JobFetchCandles:
		return s.fetchCandles(ctx, symbol)
	case JobFetchATHCandles:
		return s.fetchATHCandles(ctx, symbol)
	case JobSaveCandle:
		if job.Candle == nil {
			return fmt.Errorf("%s: %w", job.Type, errMissingPayload)
		}
		return cache.SetJSON(ctx, s.deps.Cache, cache.HashSymbols, cache.LatestCandleField(symbol), job.Candle)
	case JobReconcileOrderEvent:
		if job.Event == nil {
			return fmt.Errorf("%s: %w", job.Type, errMissingPayload)
		}
		return s.reconcileOrderEvent(ctx, symbol, *job.Event)
	case JobApplyOverride:
		if job.Override == nil {
			return fmt.Errorf("%s: %w", job.Type, errMissingPayload)
		}
		return s.deps.Orders.SaveOverrideAction(ctx, symbol, *job.Override, job.OverrideReason)
	}
	return fmt.Errorf("unknown job type %q", job.Type)
}

func (s *Service) fetchCandles(ctx context.Context, symbol string) error {
	if err := s.deps.Candles.DeleteCandles(ctx, models.CandleKindRegular, symbol); err != nil {
		return err
	}

	cfg, err := s.deps.Config.GetSymbolConfiguration(ctx, symbol)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	s.log.WithSymbol(symbol).WithField("interval", cfg.Candles.Interval).WithField("limit", cfg.Candles.Limit).
		Debug("Retrieving candles.")

	candles, err := s.deps.Exchange.FetchCandles(ctx, symbol, cfg.Candles.Interval, cfg.Candles.Limit)
	if err != nil {
		return err
	}
	return s.deps.Candles.UpsertCandles(ctx, models.CandleKindRegular, candles)
}

func (s *Service) fetchATHCandles(ctx context.Context, symbol string) error {
	if err := s.deps.Candles.DeleteCandles(ctx, models.CandleKindATH, symbol); err != nil {
		return err
	}

	cfg, err := s.deps.Config.GetSymbolConfiguration(ctx, symbol)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ath := cfg.Buy.ATHRestriction
	if !ath.Enabled {
		return nil
	}

	s.log.WithSymbol(symbol).WithField("interval", ath.Candles.Interval).WithField("limit", ath.Candles.Limit).
		Debug("Retrieving ATH candles.")

	candles, err := s.deps.Exchange.FetchCandles(ctx, symbol, ath.Candles.Interval, ath.Candles.Limit)
	if err != nil {
		return err
	}
	return s.deps.Candles.UpsertCandles(ctx, models.CandleKindATH, candles)
}

// reconcileOrderEvent folds an execution report into the grid-trade last
// order and the manual order it refers to. Both updates complete before the
// decision cycle of the same job runs.
func (s *Service) reconcileOrderEvent(ctx context.Context, symbol string, evt models.ExecutionReport) error {
	if _, err := s.reconcileLastOrder(ctx, symbol, evt); err != nil {
		return err
	}
	_, err := s.reconcileManualOrder(ctx, symbol, evt)
	return err
}

func (s *Service) reconcileLastOrder(ctx context.Context, symbol string, evt models.ExecutionReport) (bool, error) {
	last, found, err := s.deps.Orders.GetGridTradeLastOrder(ctx, symbol, evt.Side)
	if err != nil || !found {
		return false, err
	}

	entry := s.log.WithSymbol(symbol).WithField("order_id", evt.OrderID).WithField("side", evt.Side)

	// delayed events for an older order or an older state are ignored
	if evt.OrderID != last.OrderID || evt.OrderTime.Before(last.TransactTime) {
		entry.WithField("last_order_id", last.OrderID).
			Info("This order update is an old order. Do not update last grid trade order.")
		return false, nil
	}

	updated := last.ApplyExecution(evt)
	updated.TransactTime = evt.OrderTime
	if err := s.deps.Orders.UpdateGridTradeLastOrder(ctx, symbol, evt.Side, updated); err != nil {
		return false, err
	}

	entry.WithField("status", evt.OrderStatus).Info("The last order has been updated.")
	return true, nil
}

func (s *Service) reconcileManualOrder(ctx context.Context, symbol string, evt models.ExecutionReport) (bool, error) {
	manual, found, err := s.deps.Orders.GetManualOrder(ctx, symbol, evt.OrderID)
	if err != nil || !found {
		return false, err
	}

	if err := s.deps.Orders.SaveManualOrder(ctx, symbol, evt.OrderID, manual.ApplyExecution(evt)); err != nil {
		return false, err
	}

	s.log.WithSymbol(symbol).WithField("order_id", evt.OrderID).Info("The manual order has been updated.")
	return true, nil
}
