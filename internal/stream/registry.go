// Package stream owns the live venue subscriptions of the bot. Subscriptions
// are grouped by family and every family is rebuilt as a whole.
package stream

import (
	"context"
	"sort"
	"sync"

	"trailingbot/internal/cache"
	"trailingbot/internal/errhandler"
	"trailingbot/internal/exchange"
	"trailingbot/internal/logger"
	"trailingbot/internal/metrics"
	"trailingbot/internal/models"
	"trailingbot/internal/queue"
	"trailingbot/internal/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Family string

const (
	FamilyCandles    Family = "candles"
	FamilyATHCandles Family = "ath-candles"
	FamilyDepth      Family = "depth"
	FamilyUser       Family = "user"
)

const depthLevel = 5

// JobQueue accepts jobs for symbol queues.
type JobQueue interface {
	Execute(symbol string, job queue.Job) error
}

type ConfigSource interface {
	GetSymbolConfiguration(ctx context.Context, symbol string) (models.SymbolConfiguration, error)
}

type Deps struct {
	Exchange exchange.Client
	Config   ConfigSource
	Candles  storage.CandleStore
	Cache    cache.Cache
	Queue    JobQueue
}

type subscription struct {
	key  string
	stop exchange.StopFunc
}

type family struct {
	cancel context.CancelFunc
	subs   []subscription
}

type Registry struct {
	deps Deps
	gate *errhandler.Gate
	log  *logger.Logger

	mu       sync.Mutex
	families map[Family]*family

	// account refreshes started by user stream events
	tasks     sync.WaitGroup
	accountMu sync.Mutex
}

func NewRegistry(deps Deps, gate *errhandler.Gate, log *logger.Logger) *Registry {
	return &Registry{
		deps:     deps,
		gate:     gate,
		log:      log,
		families: make(map[Family]*family),
	}
}

func (r *Registry) logEntry(f Family) *logrus.Entry {
	return r.log.WithComponent("stream").WithField("family", f)
}

// Count returns the number of open subscriptions of a family.
func (r *Registry) Count(f Family) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.families[f]; ok {
		return len(st.subs)
	}
	return 0
}

// Teardown closes every subscription of a family. Cleanup errors are logged.
func (r *Registry) Teardown(f Family) {
	r.mu.Lock()
	st, ok := r.families[f]
	delete(r.families, f)
	r.mu.Unlock()

	metrics.SetStreamsOpen(string(f), 0)
	if !ok {
		return
	}

	st.cancel()
	for _, sub := range st.subs {
		if err := sub.stop(); err != nil {
			r.logEntry(f).WithField("key", sub.key).WithError(err).Warn("Failed to close subscription.")
		}
	}
	if f == FamilyUser {
		r.tasks.Wait()
	}
	r.logEntry(f).WithField("count", len(st.subs)).Debug("Subscriptions closed.")
}

func (r *Registry) Close() {
	for _, f := range []Family{FamilyCandles, FamilyATHCandles, FamilyDepth, FamilyUser} {
		r.Teardown(f)
	}
}

// open registers a fresh, empty family and returns its context.
func (r *Registry) open(ctx context.Context, f Family) context.Context {
	r.Teardown(f)

	fctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.families[f] = &family{cancel: cancel}
	r.mu.Unlock()
	return fctx
}

func (r *Registry) add(f Family, key string, stop exchange.StopFunc) {
	r.mu.Lock()
	st, ok := r.families[f]
	if ok {
		st.subs = append(st.subs, subscription{key: key, stop: stop})
	}
	n := 0
	if ok {
		n = len(st.subs)
	}
	r.mu.Unlock()

	if !ok {
		// the family was torn down while this subscription was opening
		if err := stop(); err != nil {
			r.logEntry(f).WithField("key", key).WithError(err).Warn("Failed to close subscription.")
		}
		return
	}
	metrics.SetStreamsOpen(string(f), n)
}

// resolveConfigs loads the configuration of every symbol concurrently.
func (r *Registry) resolveConfigs(ctx context.Context, symbols []string) ([]models.SymbolConfiguration, error) {
	configs := make([]models.SymbolConfiguration, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			cfg, err := r.deps.Config.GetSymbolConfiguration(gctx, symbol)
			if err != nil {
				return err
			}
			configs[i] = cfg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return configs, nil
}

// groupByInterval keeps the input order of symbols within each group.
func groupByInterval(symbols []string, interval func(i int) (string, bool)) ([]string, map[string][]string) {
	groups := make(map[string][]string)
	for i, symbol := range symbols {
		iv, ok := interval(i)
		if !ok {
			continue
		}
		groups[iv] = append(groups[iv], symbol)
	}
	intervals := make([]string, 0, len(groups))
	for iv := range groups {
		intervals = append(intervals, iv)
	}
	sort.Strings(intervals)
	return intervals, groups
}
