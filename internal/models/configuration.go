package models

type CandlesConfiguration struct {
	Interval string `mapstructure:"interval" json:"interval" bson:"interval"`
	Limit    int    `mapstructure:"limit" json:"limit" bson:"limit"`
}

type ATHRestriction struct {
	Enabled               bool                 `mapstructure:"enabled" json:"enabled" bson:"enabled"`
	Candles               CandlesConfiguration `mapstructure:"candles" json:"candles" bson:"candles"`
	RestrictionPercentage float64              `mapstructure:"restriction_percentage" json:"restrictionPercentage" bson:"restrictionPercentage"`
}

type BuyConfiguration struct {
	Enabled         bool           `mapstructure:"enabled" json:"enabled" bson:"enabled"`
	LimitPercentage float64        `mapstructure:"limit_percentage" json:"limitPercentage" bson:"limitPercentage"`
	ATHRestriction  ATHRestriction `mapstructure:"ath_restriction" json:"athRestriction" bson:"athRestriction"`
}

type SellConfiguration struct {
	Enabled         bool    `mapstructure:"enabled" json:"enabled" bson:"enabled"`
	LimitPercentage float64 `mapstructure:"limit_percentage" json:"limitPercentage" bson:"limitPercentage"`
}

type OrderLimit struct {
	Enabled       bool `mapstructure:"enabled" json:"enabled" bson:"enabled"`
	MaxOpenTrades int  `mapstructure:"max_open_trades" json:"maxOpenTrades" bson:"maxOpenTrades"`
}

type BotOptions struct {
	OrderLimit OrderLimit `mapstructure:"order_limit" json:"orderLimit" bson:"orderLimit"`
}

// SymbolConfiguration is an immutable per-cycle view of one symbol's settings.
type SymbolConfiguration struct {
	Symbol     string               `mapstructure:"-" json:"symbol" bson:"symbol"`
	Candles    CandlesConfiguration `mapstructure:"candles" json:"candles" bson:"candles"`
	Buy        BuyConfiguration     `mapstructure:"buy" json:"buy" bson:"buy"`
	Sell       SellConfiguration    `mapstructure:"sell" json:"sell" bson:"sell"`
	BotOptions BotOptions           `mapstructure:"bot_options" json:"botOptions" bson:"botOptions"`
}

type GlobalConfiguration struct {
	Symbols    []string             `mapstructure:"symbols"`
	Candles    CandlesConfiguration `mapstructure:"candles"`
	Buy        BuyConfiguration     `mapstructure:"buy"`
	Sell       SellConfiguration    `mapstructure:"sell"`
	BotOptions BotOptions           `mapstructure:"bot_options"`
}
