package storage

import (
	"context"

	"trailingbot/internal/models"

	"github.com/moznion/go-optional"
)

const (
	CollectionCandles        = "trailing-trade-candles"
	CollectionATHCandles     = "trailing-trade-ath-candles"
	CollectionGridTradeOrder = "trailing-trade-grid-trade-orders"
	CollectionManualOrders   = "trailing-trade-manual-orders"
	CollectionOverride       = "trailing-trade-override"
	CollectionSymbols        = "trailing-trade-symbols"
	CollectionSnapshots      = "trailing-trade-cache"
)

// CandleCollection maps a candle kind to the collection holding it.
func CandleCollection(kind models.CandleKind) string {
	if kind == models.CandleKindATH {
		return CollectionATHCandles
	}
	return CollectionCandles
}

func GridTradeLastOrderKey(symbol string, side models.OrderSide) string {
	return symbol + "-grid-trade-last-" + side.Lower() + "-order"
}

func LastBuyPriceKey(symbol string) string {
	return symbol + "-last-buy-price"
}

type CandleStore interface {
	DeleteCandles(ctx context.Context, kind models.CandleKind, symbol string) error
	UpsertCandles(ctx context.Context, kind models.CandleKind, candles []models.Candle) error
	SaveCandle(ctx context.Context, kind models.CandleKind, candle models.Candle) error
}

type OrderStore interface {
	GetGridTradeLastOrder(ctx context.Context, symbol string, side models.OrderSide) (models.OrderRecord, bool, error)
	UpdateGridTradeLastOrder(ctx context.Context, symbol string, side models.OrderSide, rec models.OrderRecord) error
	GetManualOrder(ctx context.Context, symbol string, orderID int64) (models.OrderRecord, bool, error)
	SaveManualOrder(ctx context.Context, symbol string, orderID int64, rec models.OrderRecord) error

	SaveOverrideAction(ctx context.Context, symbol string, action models.OverrideAction, reason string) error
	GetOverrideAction(ctx context.Context, symbol string) (optional.Option[models.OverrideAction], error)
	RemoveOverrideAction(ctx context.Context, symbol string) error

	GetLastBuyPrice(ctx context.Context, symbol string) (optional.Option[float64], error)
	CountOpenTrades(ctx context.Context) (int, error)
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
}

// Store bundles every persistence concern of the bot.
type Store interface {
	CandleStore
	OrderStore
	SnapshotStore
}
