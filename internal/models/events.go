package models

import "time"

// AccountEvent is one of AccountUpdate, BalancePosition or ExecutionReport.
type AccountEvent interface {
	accountEvent()
}

// AccountUpdate signals that balances changed and the account must be re-read.
type AccountUpdate struct {
	EventType string
	EventTime time.Time
}

// BalancePosition carries the balances changed by an outboundAccountPosition event.
type BalancePosition struct {
	EventTime         time.Time
	LastAccountUpdate time.Time
	Balances          []Balance
}

type ExecutionReport struct {
	EventTime          time.Time   `json:"eventTime" bson:"eventTime"`
	Symbol             string      `json:"symbol" bson:"symbol"`
	OrderID            int64       `json:"orderId" bson:"orderId"`
	Side               OrderSide   `json:"side" bson:"side"`
	OrderType          OrderType   `json:"orderType" bson:"orderType"`
	OrderStatus        OrderStatus `json:"orderStatus" bson:"orderStatus"`
	Price              float64     `json:"price" bson:"price"`
	StopPrice          float64     `json:"stopPrice" bson:"stopPrice"`
	Quantity           float64     `json:"quantity" bson:"quantity"`
	TotalTradeQuantity float64     `json:"totalTradeQuantity" bson:"totalTradeQuantity"`
	TotalQuoteQuantity float64     `json:"totalQuoteTradeQuantity" bson:"totalQuoteTradeQuantity"`
	IsOrderWorking     bool        `json:"isOrderWorking" bson:"isOrderWorking"`
	OrderTime          time.Time   `json:"orderTime" bson:"orderTime"`
}

func (AccountUpdate) accountEvent()   {}
func (BalancePosition) accountEvent() {}
func (ExecutionReport) accountEvent() {}
