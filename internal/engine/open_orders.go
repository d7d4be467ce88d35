package engine

import (
	"context"
	"errors"

	"trailingbot/internal/exchange"
	"trailingbot/internal/metrics"
	"trailingbot/internal/models"

	"github.com/sirupsen/logrus"
)

// HandleOpenOrders decides what to do with the symbol's open stop-limit
// orders. It only acts when no earlier step has settled the action.
// When several orders are open, the last one processed sets the action.
func (e *Engine) HandleOpenOrders(ctx context.Context, snap *models.Snapshot) error {
	if snap.Action != models.ActionNotDetermined {
		e.logEntry(snap).WithField("action", snap.Action).Debug("Action already determined, skip open order handling.")
		return nil
	}

	precision := PricePrecision(snap.SymbolInfo.TickSize)

	for _, order := range snap.OpenOrders {
		if order.Type != models.OrderTypeStopLossLimit {
			continue
		}

		var err error
		switch order.Side {
		case models.OrderSideBuy:
			err = e.handleOpenBuyOrder(ctx, snap, order, precision)
		case models.OrderSideSell:
			err = e.handleOpenSellOrder(ctx, snap, order, precision)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) handleOpenBuyOrder(ctx context.Context, snap *models.Snapshot, order models.Order, precision int) error {
	entry := e.logEntry(snap).WithFields(logrus.Fields{
		"order_id":   order.OrderID,
		"stop_price": formatFloatPlain(order.StopPrice),
	})

	exceeding, err := e.IsExceedingMaxOpenTrades(ctx, snap)
	if err != nil {
		return err
	}
	if exceeding {
		entry.Info("Max open trades reached, cancelling buy order.")
		if !e.cancelOrder(ctx, snap, order) {
			return e.checkOrders(ctx, snap, models.ActionBuyOrderChecking)
		}
		snap.Buy.OpenOrders = []models.Order{}
		snap.Action = models.ActionBuyOrderCancelled
		return e.refreshAccountInfo(ctx, snap)
	}

	stopPrice := FloorToPrecision(order.StopPrice, precision)
	limitPrice := FloorToPrecision(snap.Buy.LimitPrice, precision)

	if stopPrice > limitPrice || snap.Buy.CurrentPrice > order.Price {
		entry.WithFields(logrus.Fields{
			"limit_price":   formatFloatPlain(limitPrice),
			"current_price": formatFloatPlain(snap.Buy.CurrentPrice),
		}).Info("Buy order is behind the market, cancelling order.")
		if !e.cancelOrder(ctx, snap, order) {
			return e.checkOrders(ctx, snap, models.ActionBuyOrderChecking)
		}
		snap.Buy.OpenOrders = []models.Order{}
		snap.Action = models.ActionBuy
		return e.refreshAccountInfo(ctx, snap)
	}

	entry.Debug("Buy stop price is within the limit price, waiting.")
	snap.Action = models.ActionBuyOrderWait
	return nil
}

func (e *Engine) handleOpenSellOrder(ctx context.Context, snap *models.Snapshot, order models.Order, precision int) error {
	entry := e.logEntry(snap).WithFields(logrus.Fields{
		"order_id":   order.OrderID,
		"stop_price": formatFloatPlain(order.StopPrice),
	})

	stopPrice := FloorToPrecision(order.StopPrice, precision)
	limitPrice := FloorToPrecision(snap.Sell.LimitPrice, precision)

	if stopPrice < limitPrice || snap.Sell.CurrentPrice < order.Price {
		entry.WithFields(logrus.Fields{
			"limit_price":   formatFloatPlain(limitPrice),
			"current_price": formatFloatPlain(snap.Sell.CurrentPrice),
		}).Info("Sell order is behind the market, cancelling order.")
		if !e.cancelOrder(ctx, snap, order) {
			return e.checkOrders(ctx, snap, models.ActionSellOrderChecking)
		}
		snap.Sell.OpenOrders = []models.Order{}
		snap.Action = models.ActionSell
		return e.refreshAccountInfo(ctx, snap)
	}

	entry.Debug("Sell stop price is within the limit price, waiting.")
	snap.Action = models.ActionSellOrderWait
	return nil
}

// cancelOrder reports whether the venue accepted the cancel. Every failure
// is reported as false so the caller falls back to re-checking orders.
func (e *Engine) cancelOrder(ctx context.Context, snap *models.Snapshot, order models.Order) bool {
	err := e.deps.Exchange.CancelOrder(ctx, snap.Symbol, order.OrderID)
	metrics.ObserveCancel(order.Side.Lower(), err == nil)

	entry := e.logEntry(snap).WithField("order_id", order.OrderID)
	if err != nil {
		reason := "transport"
		var apiErr *exchange.APIError
		if errors.As(err, &apiErr) {
			reason = "rejected"
		}
		entry.WithError(err).WithField("reason", reason).Warn("Order cancel failed.")
		return false
	}

	entry.Info("Order cancelled.")
	return true
}

// checkOrders reloads open orders and the account after a failed cancel.
func (e *Engine) checkOrders(ctx context.Context, snap *models.Snapshot, action models.Action) error {
	openOrders, err := e.deps.Exchange.GetOpenOrders(ctx, snap.Symbol)
	if err != nil {
		return err
	}
	snap.OpenOrders = openOrders
	snap.SplitOpenOrders()

	if err := e.refreshAccountInfo(ctx, snap); err != nil {
		return err
	}
	snap.Action = action
	return nil
}

func (e *Engine) refreshAccountInfo(ctx context.Context, snap *models.Snapshot) error {
	account, err := e.getAccountInfoFromVenue(ctx)
	if err != nil {
		return err
	}
	snap.AccountInfo = account
	return nil
}

// IsExceedingMaxOpenTrades reports whether opening another trade would
// break the configured limit. A symbol already holding a position never
// counts as exceeding.
func (e *Engine) IsExceedingMaxOpenTrades(ctx context.Context, snap *models.Snapshot) (bool, error) {
	if snap.Sell.LastBuyPrice.IsSome() && snap.Sell.LastBuyPrice.Unwrap() > 0 {
		return false, nil
	}

	limit := snap.SymbolConfiguration.BotOptions.OrderLimit
	if !limit.Enabled {
		return false, nil
	}

	open, err := e.deps.Orders.CountOpenTrades(ctx)
	if err != nil {
		return false, err
	}
	return open >= limit.MaxOpenTrades, nil
}

