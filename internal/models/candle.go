package models

import "time"

type CandleKind string

const (
	CandleKindRegular CandleKind = "candles"
	CandleKindATH     CandleKind = "ath-candles"
)

type Candle struct {
	Key      string    `json:"key" bson:"key"`
	Interval string    `json:"interval" bson:"interval"`
	Time     time.Time `json:"time" bson:"time"`
	Open     float64   `json:"open" bson:"open"`
	High     float64   `json:"high" bson:"high"`
	Low      float64   `json:"low" bson:"low"`
	Close    float64   `json:"close" bson:"close"`
	Volume   float64   `json:"volume" bson:"volume"`
}

type PriceLevel struct {
	Price    float64
	Quantity float64
}

type Depth struct {
	Symbol string
	Bids   []PriceLevel
	Asks   []PriceLevel
}
