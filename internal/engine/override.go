package engine

import (
	"context"
	"errors"
	"fmt"

	"trailingbot/internal/models"

	"github.com/sirupsen/logrus"
)

var errOverrideWithoutOrder = errors.New("override requires an order")

// ApplyOverride folds a pending user override into the cycle. The override
// is removed before it is applied so a failing venue call does not replay it.
func (e *Engine) ApplyOverride(ctx context.Context, snap *models.Snapshot) error {
	pending, err := e.deps.Orders.GetOverrideAction(ctx, snap.Symbol)
	if err != nil {
		return err
	}
	if pending.IsNone() {
		return nil
	}
	override := pending.Unwrap()

	if err := e.deps.Orders.RemoveOverrideAction(ctx, snap.Symbol); err != nil {
		return err
	}
	snap.Override = pending

	entry := e.logEntry(snap).WithField("override", override.Action)
	entry.Info("Applying override action.")

	switch override.Action {
	case models.OverrideBuy:
		snap.Action = models.ActionBuy
	case models.OverrideSell:
		snap.Action = models.ActionSell
	case models.OverrideCancelOrder:
		if override.Order == nil {
			return fmt.Errorf("cancel-order: %w", errOverrideWithoutOrder)
		}
		if !e.cancelOrder(ctx, snap, *override.Order) {
			checking := models.ActionBuyOrderChecking
			if override.Order.Side == models.OrderSideSell {
				checking = models.ActionSellOrderChecking
			}
			return e.checkOrders(ctx, snap, checking)
		}
		if err := e.reloadOpenOrders(ctx, snap); err != nil {
			return err
		}
		snap.Action = models.ActionCancelOrder
	case models.OverrideManualTrade:
		if override.Order == nil {
			return fmt.Errorf("manual-trade: %w", errOverrideWithoutOrder)
		}
		if err := e.placeManualOrder(ctx, snap, *override.Order); err != nil {
			return err
		}
		snap.Action = models.ActionManualTrade
	default:
		entry.Warn("Unknown override action, ignoring.")
		return nil
	}

	if override.Notify {
		msg := fmt.Sprintf("Action %s was triggered by %s.", override.Action, override.TriggeredBy)
		if err := e.deps.Notifier.Send(ctx, msg, map[string]any{
			"symbol":         snap.Symbol,
			"correlation_id": snap.CorrelationID,
		}); err != nil {
			entry.WithError(err).Warn("Failed to send override notification.")
		}
	}
	return nil
}

func (e *Engine) placeManualOrder(ctx context.Context, snap *models.Snapshot, order models.Order) error {
	order.Symbol = snap.Symbol
	placed, err := e.deps.Exchange.PlaceOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("place manual order: %w", err)
	}

	rec := models.OrderRecord{
		OrderID:             placed.OrderID,
		Symbol:              snap.Symbol,
		Side:                placed.Side,
		Type:                placed.Type,
		Status:              placed.Status,
		Price:               placed.Price,
		StopPrice:           placed.StopPrice,
		OrigQty:             placed.OrigQty,
		ExecutedQty:         placed.ExecutedQty,
		CummulativeQuoteQty: placed.CummulativeQuoteQty,
		IsWorking:           placed.IsWorking,
		UpdateTime:          placed.UpdateTime,
		TransactTime:        placed.UpdateTime,
	}
	if err := e.deps.Orders.SaveManualOrder(ctx, snap.Symbol, placed.OrderID, rec); err != nil {
		return err
	}

	e.log.WithOrderID(placed.OrderID).WithFields(logrus.Fields{
		"component":      "engine",
		"symbol":         snap.Symbol,
		"correlation_id": snap.CorrelationID,
	}).Info("Manual order placed.")
	return e.refreshAccountInfo(ctx, snap)
}

func (e *Engine) reloadOpenOrders(ctx context.Context, snap *models.Snapshot) error {
	openOrders, err := e.deps.Exchange.GetOpenOrders(ctx, snap.Symbol)
	if err != nil {
		return err
	}
	snap.OpenOrders = openOrders
	snap.SplitOpenOrders()
	return e.refreshAccountInfo(ctx, snap)
}
