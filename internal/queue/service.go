package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"trailingbot/internal/cache"
	"trailingbot/internal/errhandler"
	"trailingbot/internal/exchange"
	"trailingbot/internal/logger"
	"trailingbot/internal/metrics"
	"trailingbot/internal/models"
	"trailingbot/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrNoQueue     = errors.New("queue not prepared")
	ErrQueueClosed = errors.New("queue closed")
)

// Cycle runs one decision cycle for a symbol.
type Cycle interface {
	Execute(ctx context.Context, symbol, correlationID string) error
}

type ConfigSource interface {
	GetSymbolConfiguration(ctx context.Context, symbol string) (models.SymbolConfiguration, error)
}

type Deps struct {
	Exchange exchange.Client
	Config   ConfigSource
	Candles  storage.CandleStore
	Orders   storage.OrderStore
	Cache    cache.Cache
	Cycle    Cycle
}

// Service owns one serialized worker per symbol.
type Service struct {
	mu     sync.Mutex
	queues map[string]*symbolQueue
	deps   Deps
	gate   *errhandler.Gate
	log    *logger.Logger
}

func NewService(deps Deps, gate *errhandler.Gate, log *logger.Logger) *Service {
	return &Service{
		queues: make(map[string]*symbolQueue),
		deps:   deps,
		gate:   gate,
		log:    log,
	}
}

// Prepare creates the queue of a symbol, replacing any existing one. The old
// queue is obliterated: its in-flight job is cancelled and its pending jobs
// are dropped. Prepare returns once the old worker has exited and the new
// worker is accepting work.
func (s *Service) Prepare(ctx context.Context, symbol string) error {
	q := newSymbolQueue(symbol)

	s.mu.Lock()
	prev := s.queues[symbol]
	s.queues[symbol] = q
	s.mu.Unlock()

	go q.run(prev, s.process, s.log)

	select {
	case <-q.ready:
		s.log.WithSymbol(symbol).WithField("component", "queue").Info("Queue prepared.")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute appends a job to the symbol's queue.
func (s *Service) Execute(symbol string, job Job) error {
	s.mu.Lock()
	q, ok := s.queues[symbol]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("execute %s on %s: %w", job.Type, symbol, ErrNoQueue)
	}

	if job.CorrelationID == "" {
		job.CorrelationID = uuid.NewString()
	}
	if err := q.push(job); err != nil {
		return fmt.Errorf("execute %s on %s: %w", job.Type, symbol, err)
	}
	return nil
}

// Remove obliterates and forgets the queue of a symbol.
func (s *Service) Remove(symbol string) {
	s.mu.Lock()
	q, ok := s.queues[symbol]
	delete(s.queues, symbol)
	s.mu.Unlock()

	if ok {
		q.stop(s.log)
	}
}

// Close obliterates every queue and waits for the workers to exit.
func (s *Service) Close() {
	s.mu.Lock()
	queues := s.queues
	s.queues = make(map[string]*symbolQueue)
	s.mu.Unlock()

	for _, q := range queues {
		q.stop(s.log)
	}
}

func (s *Service) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols := make([]string, 0, len(s.queues))
	for symbol := range s.queues {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func (s *Service) process(ctx context.Context, symbol string, job Job) {
	scope := errhandler.Scope{Job: string(job.Type), Symbol: symbol, CorrelationID: job.CorrelationID}

	class := s.gate.Run(ctx, scope, func(ctx context.Context) error {
		if err := s.runStep(ctx, symbol, job); err != nil {
			return err
		}
		return s.deps.Cycle.Execute(ctx, symbol, job.CorrelationID)
	})

	status := string(class)
	if class == errhandler.ClassNone {
		status = "done"
	}
	metrics.ObserveJob(string(job.Type), status)
}

type symbolQueue struct {
	symbol string
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []Job
	closed  bool

	wake  chan struct{}
	ready chan struct{}
	done  chan struct{}
}

func newSymbolQueue(symbol string) *symbolQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &symbolQueue{
		symbol: symbol,
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (q *symbolQueue) push(job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, job)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *symbolQueue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.pending) == 0 {
		return Job{}, false
	}
	job := q.pending[0]
	q.pending[0] = Job{}
	q.pending = q.pending[1:]
	return job, true
}

// obliterate closes the queue, drops pending jobs and cancels the in-flight one.
func (q *symbolQueue) obliterate() int {
	q.mu.Lock()
	q.closed = true
	dropped := len(q.pending)
	q.pending = nil
	q.mu.Unlock()

	q.cancel()
	return dropped
}

func (q *symbolQueue) stop(log *logger.Logger) {
	dropped := q.obliterate()
	metrics.ObserveJobsDiscarded(dropped)
	<-q.done
	log.WithSymbol(q.symbol).WithField("component", "queue").WithField("discarded", dropped).Info("Queue obliterated.")
}

func (q *symbolQueue) run(prev *symbolQueue, process func(context.Context, string, Job), log *logger.Logger) {
	defer close(q.done)

	if prev != nil {
		prev.stop(log)
	}
	close(q.ready)

	for {
		if q.ctx.Err() != nil {
			return
		}
		if job, ok := q.pop(); ok {
			process(q.ctx, q.symbol, job)
			continue
		}
		select {
		case <-q.ctx.Done():
			return
		case <-q.wake:
		}
	}
}
