package binance

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"trailingbot/internal/exchange"
	"trailingbot/internal/models"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
)

// wrapError converts venue API errors into exchange.APIError so callers can classify them.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, &exchange.APIError{Code: apiErr.Code, Message: apiErr.Message})
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// formatFloat renders v without exponent, as the REST API expects.
func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func toOrder(o *binance.Order) models.Order {
	return models.Order{
		OrderID:             o.OrderID,
		Symbol:              o.Symbol,
		Side:                models.OrderSide(o.Side),
		Type:                models.OrderType(o.Type),
		Status:              models.OrderStatus(o.Status),
		Price:               parseFloat(o.Price),
		StopPrice:           parseFloat(o.StopPrice),
		OrigQty:             parseFloat(o.OrigQuantity),
		ExecutedQty:         parseFloat(o.ExecutedQuantity),
		CummulativeQuoteQty: parseFloat(o.CummulativeQuoteQuantity),
		TimeInForce:         string(o.TimeInForce),
		IsWorking:           o.IsWorking,
		Time:                time.UnixMilli(o.Time).UTC(),
		UpdateTime:          time.UnixMilli(o.UpdateTime).UTC(),
	}
}

func toCandle(symbol, interval string, k *binance.Kline) models.Candle {
	return models.Candle{
		Key:      symbol,
		Interval: interval,
		Time:     time.UnixMilli(k.OpenTime).UTC(),
		Open:     parseFloat(k.Open),
		High:     parseFloat(k.High),
		Low:      parseFloat(k.Low),
		Close:    parseFloat(k.Close),
		Volume:   parseFloat(k.Volume),
	}
}

func toSymbolInfo(s binance.Symbol) models.SymbolInfo {
	info := models.SymbolInfo{
		Symbol:     s.Symbol,
		BaseAsset:  s.BaseAsset,
		QuoteAsset: s.QuoteAsset,
	}
	if f := s.PriceFilter(); f != nil {
		info.TickSize = f.TickSize
	}
	if f := s.LotSizeFilter(); f != nil {
		info.StepSize = f.StepSize
		info.MinQty = f.MinQuantity
	}
	return info
}

func toBalances(in []binance.Balance) []models.Balance {
	out := make([]models.Balance, 0, len(in))
	for _, b := range in {
		free, locked := parseFloat(b.Free), parseFloat(b.Locked)
		if free == 0 && locked == 0 {
			continue
		}
		out = append(out, models.Balance{Asset: b.Asset, Free: free, Locked: locked})
	}
	return out
}
