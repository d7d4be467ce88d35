package queue

import (
	"time"

	"trailingbot/internal/models"
)

type JobType string

const (
	JobFetchCandles        JobType = "fetch-candles"
	JobFetchATHCandles     JobType = "fetch-ath-candles"
	JobSaveCandle          JobType = "save-candle"
	JobReconcileOrderEvent JobType = "reconcile-order-event"
	JobApplyOverride       JobType = "apply-override"
)

// Job is one unit of work on a symbol queue. Payload fields are set according to Type.
type Job struct {
	Type           JobType
	CorrelationID  string
	Candle         *models.Candle
	Event          *models.ExecutionReport
	Override       *models.OverrideAction
	OverrideReason string
}

const triggeredByUser = "user"

func NewCancelOrderOverride(order models.Order) Job {
	return Job{
		Type: JobApplyOverride,
		Override: &models.OverrideAction{
			Action:      models.OverrideCancelOrder,
			Order:       &order,
			ActionAt:    time.Now().UTC(),
			TriggeredBy: triggeredByUser,
		},
		OverrideReason: "Cancelling the " + order.Side.Lower() + " order action has been received. " +
			"Wait for cancelling the order.",
	}
}

func NewManualTradeOverride(order models.Order) Job {
	return Job{
		Type: JobApplyOverride,
		Override: &models.OverrideAction{
			Action:      models.OverrideManualTrade,
			Order:       &order,
			ActionAt:    time.Now().UTC(),
			TriggeredBy: triggeredByUser,
		},
		OverrideReason: "The manual order received by the bot. Wait for placing the order.",
	}
}

// NewTriggerBuyOverride forces a buy on the next cycle without consulting external recommendations.
func NewTriggerBuyOverride() Job {
	return Job{
		Type: JobApplyOverride,
		Override: &models.OverrideAction{
			Action:           models.OverrideBuy,
			ActionAt:         time.Now().UTC(),
			TriggeredBy:      triggeredByUser,
			Notify:           true,
			CheckTradingView: false,
		},
		OverrideReason: "The buy order received by the bot. Wait for placing the order.",
	}
}

func NewTriggerSellOverride() Job {
	return Job{
		Type: JobApplyOverride,
		Override: &models.OverrideAction{
			Action:      models.OverrideSell,
			ActionAt:    time.Now().UTC(),
			TriggeredBy: triggeredByUser,
		},
		OverrideReason: "The sell order received by the bot. Wait for placing the order.",
	}
}
