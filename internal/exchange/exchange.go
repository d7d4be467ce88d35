package exchange

import (
	"context"
	"fmt"
	"trailingbot/internal/models"
)

// StopFunc tears down a live stream subscription.
type StopFunc func() error

type Client interface {
	GetSymbolInfo(ctx context.Context, symbol string) (models.SymbolInfo, error)
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error)
	GetAccountInfo(ctx context.Context) (models.AccountInfo, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	PlaceOrder(ctx context.Context, order models.Order) (models.Order, error)

	StreamCandles(ctx context.Context, symbols []string, interval string, onTick func(models.Candle)) (StopFunc, error)
	StreamDepth(ctx context.Context, symbol string, level int, onTick func(models.Depth)) (StopFunc, error)
	StreamAccount(ctx context.Context, onEvent func(models.AccountEvent)) (StopFunc, error)
}

// APIError is an error code returned by the venue.
type APIError struct {
	Code    int64
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("venue error %d: %s", e.Code, e.Message)
}

const (
	CodeUnknown          int64 = -1000
	CodeDisconnected     int64 = -1001
	CodeInvalidTimestamp int64 = -1021
	CodeUnknownOrder     int64 = -2011
)
