package stream

import (
	"context"
	"errors"
	"strings"

	"trailingbot/internal/errhandler"
	"trailingbot/internal/models"
	"trailingbot/internal/queue"
)

// SetupCandles replaces the candle subscriptions with one connection per
// distinct candle interval among symbols.
func (r *Registry) SetupCandles(ctx context.Context, symbols []string) error {
	configs, err := r.resolveConfigs(ctx, symbols)
	if err != nil {
		return err
	}
	intervals, groups := groupByInterval(symbols, func(i int) (string, bool) {
		return configs[i].Candles.Interval, true
	})
	return r.setupCandleFamily(ctx, FamilyCandles, models.CandleKindRegular, intervals, groups)
}

// SetupATHCandles does the same for symbols with the ATH restriction enabled,
// grouped by their ATH candle interval.
func (r *Registry) SetupATHCandles(ctx context.Context, symbols []string) error {
	configs, err := r.resolveConfigs(ctx, symbols)
	if err != nil {
		return err
	}
	intervals, groups := groupByInterval(symbols, func(i int) (string, bool) {
		ath := configs[i].Buy.ATHRestriction
		return ath.Candles.Interval, ath.Enabled
	})
	return r.setupCandleFamily(ctx, FamilyATHCandles, models.CandleKindATH, intervals, groups)
}

func (r *Registry) setupCandleFamily(ctx context.Context, f Family, kind models.CandleKind, intervals []string, groups map[string][]string) error {
	fctx := r.open(ctx, f)

	for _, interval := range intervals {
		symbols := groups[interval]
		stop, err := r.deps.Exchange.StreamCandles(fctx, symbols, interval, r.onCandle(fctx, f, kind))
		if err != nil {
			return err
		}
		r.add(f, interval+":"+strings.Join(symbols, ","), stop)
		r.logEntry(f).WithField("interval", interval).WithField("symbols", symbols).Info("Candle stream opened.")
	}
	return nil
}

func (r *Registry) onCandle(ctx context.Context, f Family, kind models.CandleKind) func(models.Candle) {
	return func(candle models.Candle) {
		scope := errhandler.Scope{Job: "stream-" + string(f), Symbol: candle.Key}
		r.gate.Run(ctx, scope, func(ctx context.Context) error {
			if err := r.deps.Candles.UpsertCandles(ctx, kind, []models.Candle{candle}); err != nil {
				return err
			}
			if kind != models.CandleKindRegular {
				return nil
			}
			return r.enqueue(candle.Key, queue.Job{Type: queue.JobSaveCandle, Candle: &candle})
		})
	}
}

// enqueue drops jobs for symbols whose queue is gone; that only happens
// while the bot is being reconfigured.
func (r *Registry) enqueue(symbol string, job queue.Job) error {
	err := r.deps.Queue.Execute(symbol, job)
	if errors.Is(err, queue.ErrNoQueue) || errors.Is(err, queue.ErrQueueClosed) {
		r.log.WithComponent("stream").WithField("symbol", symbol).WithField("job", job.Type).
			Debug("No queue for symbol, job dropped.")
		return nil
	}
	return err
}

// SyncCandles enqueues a candle history refresh for every symbol.
func (r *Registry) SyncCandles(symbols []string) error {
	return r.sync(symbols, queue.JobFetchCandles)
}

func (r *Registry) SyncATHCandles(symbols []string) error {
	return r.sync(symbols, queue.JobFetchATHCandles)
}

func (r *Registry) sync(symbols []string, jobType queue.JobType) error {
	var errs []error
	for _, symbol := range symbols {
		if err := r.deps.Queue.Execute(symbol, queue.Job{Type: jobType}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
