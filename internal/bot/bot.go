// Package bot wires the symbol queues and stream subscriptions to the
// configured symbol list and keeps them in step when it changes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"trailingbot/internal/errhandler"
	"trailingbot/internal/logger"
	"trailingbot/internal/models"
	"trailingbot/internal/queue"

	"github.com/sirupsen/logrus"
)

var ErrNotOverride = errors.New("job is not an override")

type GlobalConfigSource interface {
	GetGlobalConfiguration(ctx context.Context) (models.GlobalConfiguration, error)
}

type Queues interface {
	Prepare(ctx context.Context, symbol string) error
	Execute(symbol string, job queue.Job) error
	Remove(symbol string)
	Symbols() []string
	Close()
}

type Streams interface {
	SetupCandles(ctx context.Context, symbols []string) error
	SetupATHCandles(ctx context.Context, symbols []string) error
	SetupDepth(ctx context.Context, symbols []string) error
	SetupUser(ctx context.Context) error
	SyncCandles(symbols []string) error
	SyncATHCandles(symbols []string) error
	Close()
}

type Bot struct {
	config  GlobalConfigSource
	queues  Queues
	streams Streams
	gate    *errhandler.Gate
	log     *logger.Logger

	mu sync.Mutex
}

func New(config GlobalConfigSource, queues Queues, streams Streams, gate *errhandler.Gate, log *logger.Logger) *Bot {
	return &Bot{
		config:  config,
		queues:  queues,
		streams: streams,
		gate:    gate,
		log:     log,
	}
}

func (b *Bot) logEntry() *logrus.Entry {
	return b.log.WithComponent("bot")
}

// Run configures every symbol, opens the user stream and blocks until ctx
// is cancelled. Streams and queues are closed before it returns.
func (b *Bot) Run(ctx context.Context) error {
	defer b.Close()

	if err := b.Reconfigure(ctx); err != nil {
		return err
	}
	if err := b.streams.SetupUser(ctx); err != nil {
		return fmt.Errorf("setup user stream: %w", err)
	}

	b.logEntry().Info("Bot started.")
	<-ctx.Done()
	return nil
}

// Reconfigure rebuilds queues and market streams for the configured symbols.
// Queues of symbols no longer configured are removed.
func (b *Bot) Reconfigure(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	global, err := b.config.GetGlobalConfiguration(ctx)
	if err != nil {
		return fmt.Errorf("load global configuration: %w", err)
	}
	symbols := global.Symbols

	for _, symbol := range b.queues.Symbols() {
		if !slices.Contains(symbols, symbol) {
			b.queues.Remove(symbol)
			b.logEntry().WithField("symbol", symbol).Info("Symbol removed.")
		}
	}

	for _, symbol := range symbols {
		if err := b.queues.Prepare(ctx, symbol); err != nil {
			return fmt.Errorf("prepare queue for %s: %w", symbol, err)
		}
	}

	if err := b.streams.SetupCandles(ctx, symbols); err != nil {
		return fmt.Errorf("setup candle streams: %w", err)
	}
	if err := b.streams.SetupATHCandles(ctx, symbols); err != nil {
		return fmt.Errorf("setup ATH candle streams: %w", err)
	}
	if err := b.streams.SetupDepth(ctx, symbols); err != nil {
		return fmt.Errorf("setup depth streams: %w", err)
	}

	if err := b.streams.SyncCandles(symbols); err != nil {
		return fmt.Errorf("sync candles: %w", err)
	}
	if err := b.streams.SyncATHCandles(symbols); err != nil {
		return fmt.Errorf("sync ATH candles: %w", err)
	}

	b.logEntry().WithField("symbols", symbols).Info("Symbols configured.")
	return nil
}

// OnConfigChange returns a callback that reconfigures the bot under the
// error gate. ctx bounds every reconfiguration.
func (b *Bot) OnConfigChange(ctx context.Context) func() {
	return func() {
		b.gate.Run(ctx, errhandler.Scope{Job: "reconfigure"}, b.Reconfigure)
	}
}

// SubmitOverride enqueues a user override on the symbol queue.
func (b *Bot) SubmitOverride(symbol string, job queue.Job) error {
	if job.Type != queue.JobApplyOverride || job.Override == nil {
		return ErrNotOverride
	}
	if err := b.queues.Execute(symbol, job); err != nil {
		return err
	}

	b.log.WithCorrelationID(job.CorrelationID).WithFields(logrus.Fields{
		"symbol":   symbol,
		"override": job.Override.Action,
	}).Info("Override submitted.")
	return nil
}

func (b *Bot) Close() {
	b.streams.Close()
	b.queues.Close()
	b.logEntry().Info("Bot stopped.")
}
