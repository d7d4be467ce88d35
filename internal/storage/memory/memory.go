// Package memory is a process-local Store used when no MongoDB URI is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"trailingbot/internal/models"
	"trailingbot/internal/storage"

	"github.com/moznion/go-optional"
)

var _ storage.Store = (*Store)(nil)

type candleKey struct {
	symbol   string
	interval string
	unixMs   int64
}

type manualKey struct {
	symbol  string
	orderID int64
}

type Store struct {
	mu            sync.RWMutex
	candles       map[models.CandleKind]map[candleKey]models.Candle
	gridOrders    map[string]models.OrderRecord
	manualOrders  map[manualKey]models.OrderRecord
	overrides     map[string]models.OverrideAction
	reasons       map[string]string
	lastBuyPrices map[string]float64
	snapshots     map[string]models.Snapshot
}

func New() *Store {
	return &Store{
		candles:       make(map[models.CandleKind]map[candleKey]models.Candle),
		gridOrders:    make(map[string]models.OrderRecord),
		manualOrders:  make(map[manualKey]models.OrderRecord),
		overrides:     make(map[string]models.OverrideAction),
		reasons:       make(map[string]string),
		lastBuyPrices: make(map[string]float64),
		snapshots:     make(map[string]models.Snapshot),
	}
}

func (s *Store) DeleteCandles(_ context.Context, kind models.CandleKind, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.candles[kind] {
		if k.symbol == symbol {
			delete(s.candles[kind], k)
		}
	}
	return nil
}

func (s *Store) UpsertCandles(_ context.Context, kind models.CandleKind, candles []models.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range candles {
		s.putCandle(kind, c)
	}
	return nil
}

func (s *Store) SaveCandle(_ context.Context, kind models.CandleKind, candle models.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCandle(kind, candle)
	return nil
}

func (s *Store) putCandle(kind models.CandleKind, c models.Candle) {
	if s.candles[kind] == nil {
		s.candles[kind] = make(map[candleKey]models.Candle)
	}
	s.candles[kind][candleKey{symbol: c.Key, interval: c.Interval, unixMs: c.Time.UnixMilli()}] = c
}

// Candles returns the stored candles of a symbol.
func (s *Store) Candles(kind models.CandleKind, symbol string) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Candle
	for k, c := range s.candles[kind] {
		if k.symbol == symbol {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) GetGridTradeLastOrder(_ context.Context, symbol string, side models.OrderSide) (models.OrderRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.gridOrders[storage.GridTradeLastOrderKey(symbol, side)]
	return rec, ok, nil
}

func (s *Store) UpdateGridTradeLastOrder(_ context.Context, symbol string, side models.OrderSide, rec models.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gridOrders[storage.GridTradeLastOrderKey(symbol, side)] = rec
	return nil
}

func (s *Store) GetManualOrder(_ context.Context, symbol string, orderID int64) (models.OrderRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.manualOrders[manualKey{symbol, orderID}]
	return rec, ok, nil
}

func (s *Store) SaveManualOrder(_ context.Context, symbol string, orderID int64, rec models.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualOrders[manualKey{symbol, orderID}] = rec
	return nil
}

func (s *Store) SaveOverrideAction(_ context.Context, symbol string, action models.OverrideAction, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[symbol] = action
	s.reasons[symbol] = reason
	return nil
}

func (s *Store) GetOverrideAction(_ context.Context, symbol string) (optional.Option[models.OverrideAction], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if action, ok := s.overrides[symbol]; ok {
		return optional.Some(action), nil
	}
	return optional.None[models.OverrideAction](), nil
}

// OverrideReason returns the reason recorded with the pending override.
func (s *Store) OverrideReason(symbol string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reasons[symbol]
}

func (s *Store) RemoveOverrideAction(_ context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, symbol)
	delete(s.reasons, symbol)
	return nil
}

func (s *Store) SetLastBuyPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBuyPrices[symbol] = price
}

func (s *Store) GetLastBuyPrice(_ context.Context, symbol string) (optional.Option[float64], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if price, ok := s.lastBuyPrices[symbol]; ok {
		return optional.Some(price), nil
	}
	return optional.None[float64](), nil
}

func (s *Store) CountOpenTrades(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, price := range s.lastBuyPrices {
		if price > 0 {
			n++
		}
	}
	return n, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Symbol] = *snap
	return nil
}

// Snapshot returns the last saved snapshot of a symbol.
func (s *Store) Snapshot(symbol string) (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[symbol]
	return snap, ok
}

func (s *Store) ListSnapshots(_ context.Context) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := make([]models.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Symbol < snaps[j].Symbol })
	return snaps, nil
}
