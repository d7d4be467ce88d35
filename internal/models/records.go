package models

import "time"

// OrderRecord is the last known state of an order tracked by the bot.
// It backs both the grid-trade last order and manual order records.
type OrderRecord struct {
	OrderID             int64       `json:"orderId" bson:"orderId"`
	Symbol              string      `json:"symbol" bson:"symbol"`
	Side                OrderSide   `json:"side" bson:"side"`
	Type                OrderType   `json:"type" bson:"type"`
	Status              OrderStatus `json:"status" bson:"status"`
	Price               float64     `json:"price" bson:"price"`
	StopPrice           float64     `json:"stopPrice" bson:"stopPrice"`
	OrigQty             float64     `json:"origQty" bson:"origQty"`
	ExecutedQty         float64     `json:"executedQty" bson:"executedQty"`
	CummulativeQuoteQty float64     `json:"cummulativeQuoteQty" bson:"cummulativeQuoteQty"`
	IsWorking           bool        `json:"isWorking" bson:"isWorking"`
	UpdateTime          time.Time   `json:"updateTime" bson:"updateTime"`
	TransactTime        time.Time   `json:"transactTime" bson:"transactTime"`
}

// ApplyExecution copies the order state carried by an execution report.
func (r OrderRecord) ApplyExecution(evt ExecutionReport) OrderRecord {
	r.Status = evt.OrderStatus
	r.Type = evt.OrderType
	r.Side = evt.Side
	r.StopPrice = evt.StopPrice
	r.Price = evt.Price
	r.OrigQty = evt.Quantity
	r.CummulativeQuoteQty = evt.TotalQuoteQuantity
	r.ExecutedQty = evt.TotalTradeQuantity
	r.IsWorking = evt.IsOrderWorking
	r.UpdateTime = evt.EventTime
	return r
}

type OverrideKind string

const (
	OverrideCancelOrder OverrideKind = "cancel-order"
	OverrideManualTrade OverrideKind = "manual-trade"
	OverrideBuy         OverrideKind = "buy"
	OverrideSell        OverrideKind = "sell"
)

// OverrideAction is a user-triggered instruction folded into the next decision cycle.
type OverrideAction struct {
	Action           OverrideKind `json:"action" bson:"action"`
	Order            *Order       `json:"order,omitempty" bson:"order,omitempty"`
	ActionAt         time.Time    `json:"actionAt" bson:"actionAt"`
	TriggeredBy      string       `json:"triggeredBy" bson:"triggeredBy"`
	Notify           bool         `json:"notify" bson:"notify"`
	CheckTradingView bool         `json:"checkTradingView" bson:"checkTradingView"`
}
