package models

import "time"

type OrderSide string
type OrderType string
type OrderStatus string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"

	OrderTypeMarket        OrderType = "MARKET"
	OrderTypeLimit         OrderType = "LIMIT"
	OrderTypeStopLossLimit OrderType = "STOP_LOSS_LIMIT"

	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

// Lower returns the side in the lower-case form used for store keys.
func (s OrderSide) Lower() string {
	if s == OrderSideSell {
		return "sell"
	}
	return "buy"
}

type Order struct {
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
	TimeInForce         string      `json:"timeInForce,omitempty" bson:"timeInForce,omitempty"`
	IsWorking           bool        `json:"isWorking" bson:"isWorking"`
	Time                time.Time   `json:"time" bson:"time"`
	UpdateTime          time.Time   `json:"updateTime" bson:"updateTime"`
}

type SymbolInfo struct {
	Symbol     string `json:"symbol" bson:"symbol"`
	BaseAsset  string `json:"baseAsset" bson:"baseAsset"`
	QuoteAsset string `json:"quoteAsset" bson:"quoteAsset"`
	TickSize   string `json:"tickSize" bson:"tickSize"`
	StepSize   string `json:"stepSize" bson:"stepSize"`
	MinQty     string `json:"minQty" bson:"minQty"`
}

type Balance struct {
	Asset  string  `json:"asset" bson:"asset"`
	Free   float64 `json:"free" bson:"free"`
	Locked float64 `json:"locked" bson:"locked"`
}

type AccountInfo struct {
	CanTrade   bool      `json:"canTrade" bson:"canTrade"`
	Balances   []Balance `json:"balances" bson:"balances"`
	UpdateTime time.Time `json:"updateTime" bson:"updateTime"`
}

// MergeBalances replaces balances of the given assets and keeps the rest.
func (a AccountInfo) MergeBalances(updates []Balance, updatedAt time.Time) AccountInfo {
	index := make(map[string]int, len(a.Balances))
	merged := make([]Balance, len(a.Balances))
	copy(merged, a.Balances)
	for i, b := range merged {
		index[b.Asset] = i
	}
	for _, u := range updates {
		if i, ok := index[u.Asset]; ok {
			merged[i] = u
			continue
		}
		index[u.Asset] = len(merged)
		merged = append(merged, u)
	}
	a.Balances = merged
	if !updatedAt.IsZero() {
		a.UpdateTime = updatedAt
	}
	return a
}
