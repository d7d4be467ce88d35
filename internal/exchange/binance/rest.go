package binance

import (
	"context"
	"fmt"
	"time"

	"trailingbot/internal/models"

	binance "github.com/adshao/go-binance/v2"
)

func (c *Client) GetSymbolInfo(ctx context.Context, symbol string) (models.SymbolInfo, error) {
	info, err := c.rest.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		return models.SymbolInfo{}, wrapError("exchange info", err)
	}
	for _, s := range info.Symbols {
		if s.Symbol == symbol {
			return toSymbolInfo(s), nil
		}
	}
	return models.SymbolInfo{}, fmt.Errorf("symbol %s not found", symbol)
}

func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	klines, err := c.rest.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, wrapError("klines", err)
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, toCandle(symbol, interval, k))
	}
	return candles, nil
}

func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	orders, err := c.rest.NewListOpenOrdersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, wrapError("open orders", err)
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	return out, nil
}

func (c *Client) GetAccountInfo(ctx context.Context) (models.AccountInfo, error) {
	account, err := c.rest.NewGetAccountService().Do(ctx)
	if err != nil {
		return models.AccountInfo{}, wrapError("account", err)
	}
	return models.AccountInfo{
		CanTrade:   account.CanTrade,
		Balances:   toBalances(account.Balances),
		UpdateTime: time.Now().UTC(),
	}, nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	_, err := c.rest.NewCancelOrderService().
		Symbol(symbol).
		OrderID(orderID).
		Do(ctx)
	return wrapError("cancel order", err)
}

func (c *Client) PlaceOrder(ctx context.Context, order models.Order) (models.Order, error) {
	svc := c.rest.NewCreateOrderService().
		Symbol(order.Symbol).
		Side(binance.SideType(order.Side)).
		Type(binance.OrderType(order.Type)).
		Quantity(formatFloat(order.OrigQty))

	switch order.Type {
	case models.OrderTypeLimit:
		svc = svc.Price(formatFloat(order.Price)).TimeInForce(binance.TimeInForceTypeGTC)
	case models.OrderTypeStopLossLimit:
		svc = svc.Price(formatFloat(order.Price)).
			StopPrice(formatFloat(order.StopPrice)).
			TimeInForce(binance.TimeInForceTypeGTC)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return models.Order{}, wrapError("place order", err)
	}

	placed := order
	placed.OrderID = resp.OrderID
	placed.Status = models.OrderStatus(resp.Status)
	placed.ExecutedQty = parseFloat(resp.ExecutedQuantity)
	placed.CummulativeQuoteQty = parseFloat(resp.CummulativeQuoteQuantity)
	placed.Time = time.UnixMilli(resp.TransactTime).UTC()
	placed.UpdateTime = placed.Time
	return placed, nil
}
