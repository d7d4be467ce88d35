package mongostore

import (
	"time"

	"trailingbot/internal/models"

	"github.com/moznion/go-optional"
)

type gridTradeOrderDocument struct {
	Key   string             `bson:"key"`
	Order models.OrderRecord `bson:"order"`
}

type manualOrderDocument struct {
	Symbol  string             `bson:"symbol"`
	OrderID int64              `bson:"orderId"`
	Order   models.OrderRecord `bson:"order"`
}

type overrideDocument struct {
	Key                   string `bson:"key"`
	Reason                string `bson:"reason"`
	models.OverrideAction `bson:",inline"`
}

type lastBuyPriceDocument struct {
	Key          string  `bson:"key"`
	LastBuyPrice float64 `bson:"lastBuyPrice"`
	Quantity     float64 `bson:"quantity"`
}

type snapshotDocument struct {
	Symbol              string                     `bson:"symbol"`
	CorrelationID       string                     `bson:"correlationId"`
	Action              models.Action              `bson:"action"`
	SymbolConfiguration models.SymbolConfiguration `bson:"symbolConfiguration"`
	SymbolInfo          models.SymbolInfo          `bson:"symbolInfo"`
	AccountInfo         models.AccountInfo         `bson:"accountInfo"`
	OpenOrders          []models.Order             `bson:"openOrders"`
	Buy                 buyDocument                `bson:"buy"`
	Sell                sellDocument               `bson:"sell"`
	Override            *models.OverrideAction     `bson:"overrideData,omitempty"`
	UpdatedAt           time.Time                  `bson:"updatedAt"`
}

type buyDocument struct {
	CurrentPrice float64        `bson:"currentPrice"`
	LimitPrice   float64        `bson:"limitPrice"`
	OpenOrders   []models.Order `bson:"openOrders"`
	MarketSpread *float64       `bson:"marketSpread"`
	Difference   *float64       `bson:"difference"`
}

type sellDocument struct {
	CurrentPrice            float64        `bson:"currentPrice"`
	LimitPrice              float64        `bson:"limitPrice"`
	OpenOrders              []models.Order `bson:"openOrders"`
	LastBuyPrice            *float64       `bson:"lastBuyPrice"`
	CurrentProfitPercentage *float64       `bson:"currentProfitPercentage"`
}

func optionalPtr[T any](o optional.Option[T]) *T {
	if o.IsNone() {
		return nil
	}
	v := o.Unwrap()
	return &v
}

func snapshotToDocument(s *models.Snapshot) snapshotDocument {
	return snapshotDocument{
		Symbol:              s.Symbol,
		CorrelationID:       s.CorrelationID,
		Action:              s.Action,
		SymbolConfiguration: s.SymbolConfiguration,
		SymbolInfo:          s.SymbolInfo,
		AccountInfo:         s.AccountInfo,
		OpenOrders:          s.OpenOrders,
		Buy: buyDocument{
			CurrentPrice: s.Buy.CurrentPrice,
			LimitPrice:   s.Buy.LimitPrice,
			OpenOrders:   s.Buy.OpenOrders,
			MarketSpread: optionalPtr(s.Buy.MarketSpread),
			Difference:   optionalPtr(s.Buy.Difference),
		},
		Sell: sellDocument{
			CurrentPrice:            s.Sell.CurrentPrice,
			LimitPrice:              s.Sell.LimitPrice,
			OpenOrders:              s.Sell.OpenOrders,
			LastBuyPrice:            optionalPtr(s.Sell.LastBuyPrice),
			CurrentProfitPercentage: optionalPtr(s.Sell.CurrentProfitPercentage),
		},
		Override:  optionalPtr(s.Override),
		UpdatedAt: s.UpdatedAt,
	}
}

func ptrOptional[T any](p *T) optional.Option[T] {
	if p == nil {
		return optional.None[T]()
	}
	return optional.Some(*p)
}

func documentToSnapshot(d snapshotDocument) models.Snapshot {
	return models.Snapshot{
		Symbol:              d.Symbol,
		CorrelationID:       d.CorrelationID,
		Action:              d.Action,
		SymbolConfiguration: d.SymbolConfiguration,
		SymbolInfo:          d.SymbolInfo,
		AccountInfo:         d.AccountInfo,
		OpenOrders:          d.OpenOrders,
		Buy: models.BuyState{
			CurrentPrice: d.Buy.CurrentPrice,
			LimitPrice:   d.Buy.LimitPrice,
			OpenOrders:   d.Buy.OpenOrders,
			MarketSpread: ptrOptional(d.Buy.MarketSpread),
			Difference:   ptrOptional(d.Buy.Difference),
		},
		Sell: models.SellState{
			CurrentPrice:            d.Sell.CurrentPrice,
			LimitPrice:              d.Sell.LimitPrice,
			OpenOrders:              d.Sell.OpenOrders,
			LastBuyPrice:            ptrOptional(d.Sell.LastBuyPrice),
			CurrentProfitPercentage: ptrOptional(d.Sell.CurrentProfitPercentage),
		},
		Override:  ptrOptional(d.Override),
		UpdatedAt: d.UpdatedAt,
	}
}
