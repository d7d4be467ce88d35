package models

import (
	"time"

	"github.com/moznion/go-optional"
)

type Action string

const (
	ActionNotDetermined     Action = "not-determined"
	ActionBuy               Action = "buy"
	ActionBuyOrderWait      Action = "buy-order-wait"
	ActionBuyOrderCancelled Action = "buy-order-cancelled"
	ActionBuyOrderChecking  Action = "buy-order-checking"
	ActionSell              Action = "sell"
	ActionSellOrderWait     Action = "sell-order-wait"
	ActionSellOrderChecking Action = "sell-order-checking"
	ActionCancelOrder       Action = "cancel-order"
	ActionManualTrade       Action = "manual-trade"
)

type BuyState struct {
	CurrentPrice float64
	LimitPrice   float64
	OpenOrders   []Order
	MarketSpread optional.Option[float64]
	Difference   optional.Option[float64]
}

type SellState struct {
	CurrentPrice            float64
	LimitPrice              float64
	OpenOrders              []Order
	LastBuyPrice            optional.Option[float64]
	CurrentProfitPercentage optional.Option[float64]
}

// Snapshot is the state threaded through one decision cycle of one symbol.
// It is owned by that cycle and mutated in place by each step.
type Snapshot struct {
	Symbol              string
	CorrelationID       string
	Action              Action
	SymbolConfiguration SymbolConfiguration
	SymbolInfo          SymbolInfo
	AccountInfo         AccountInfo
	OpenOrders          []Order
	Buy                 BuyState
	Sell                SellState
	Override            optional.Option[OverrideAction]
	UpdatedAt           time.Time
}

func NewSnapshot(symbol, correlationID string) *Snapshot {
	return &Snapshot{
		Symbol:        symbol,
		CorrelationID: correlationID,
		Action:        ActionNotDetermined,
		Buy: BuyState{
			MarketSpread: optional.None[float64](),
			Difference:   optional.None[float64](),
		},
		Sell: SellState{
			LastBuyPrice:            optional.None[float64](),
			CurrentProfitPercentage: optional.None[float64](),
		},
		Override: optional.None[OverrideAction](),
	}
}

// SplitOpenOrders sets the per-side open order lists from OpenOrders.
func (s *Snapshot) SplitOpenOrders() {
	s.Buy.OpenOrders, s.Sell.OpenOrders = SplitBySide(s.OpenOrders)
}

func SplitBySide(orders []Order) (buy, sell []Order) {
	buy = []Order{}
	sell = []Order{}
	for _, o := range orders {
		if o.Side == OrderSideSell {
			sell = append(sell, o)
			continue
		}
		buy = append(buy, o)
	}
	return buy, sell
}
