package ws

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"trailingbot/internal/models"
)

// combined wraps payloads delivered on /stream?streams=... connections.
type combined struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

func unwrap(data []byte) []byte {
	var c combined
	if err := json.Unmarshal(data, &c); err == nil && c.Stream != "" && len(c.Data) > 0 {
		return c.Data
	}
	return data
}

// Single-letter keys are matched case-insensitively by encoding/json, so
// every key whose other case also appears in a payload is declared.

type klineEvent struct {
	EventType string       `json:"e"`
	EventTime int64        `json:"E"`
	Symbol    string       `json:"s"`
	Kline     klinePayload `json:"k"`
}

type klinePayload struct {
	StartTime int64           `json:"t"`
	CloseTime int64           `json:"T"`
	Symbol    string          `json:"s"`
	Interval  string          `json:"i"`
	Open      string          `json:"o"`
	Close     string          `json:"c"`
	High      string          `json:"h"`
	Low       string          `json:"l"`
	LastTrade json.RawMessage `json:"L"`
	Volume    string          `json:"v"`
	TakerBase json.RawMessage `json:"V"`
	Closed    bool            `json:"x"`
}

func DecodeKline(data []byte) (models.Candle, error) {
	var evt klineEvent
	if err := json.Unmarshal(unwrap(data), &evt); err != nil {
		return models.Candle{}, fmt.Errorf("decode kline: %w", err)
	}
	if evt.EventType != "kline" {
		return models.Candle{}, fmt.Errorf("decode kline: unexpected event %q", evt.EventType)
	}

	k := evt.Kline
	symbol := k.Symbol
	if symbol == "" {
		symbol = evt.Symbol
	}

	return models.Candle{
		Key:      symbol,
		Interval: k.Interval,
		Time:     time.UnixMilli(k.StartTime).UTC(),
		Open:     parseFloat(k.Open),
		High:     parseFloat(k.High),
		Low:      parseFloat(k.Low),
		Close:    parseFloat(k.Close),
		Volume:   parseFloat(k.Volume),
	}, nil
}

type depthPayload struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

// DecodeDepth parses a partial book depth payload. The symbol is not part of the payload.
func DecodeDepth(symbol string, data []byte) (models.Depth, error) {
	var p depthPayload
	if err := json.Unmarshal(unwrap(data), &p); err != nil {
		return models.Depth{}, fmt.Errorf("decode depth: %w", err)
	}
	return models.Depth{
		Symbol: symbol,
		Bids:   levels(p.Bids),
		Asks:   levels(p.Asks),
	}, nil
}

func levels(raw [][2]string) []models.PriceLevel {
	out := make([]models.PriceLevel, 0, len(raw))
	for _, l := range raw {
		out = append(out, models.PriceLevel{Price: parseFloat(l[0]), Quantity: parseFloat(l[1])})
	}
	return out
}

type userEventHeader struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
}

type accountPositionPayload struct {
	EventType      string `json:"e"`
	EventTime      int64  `json:"E"`
	LastUpdateTime int64  `json:"u"`
	Balances       []struct {
		Asset  string `json:"a"`
		Free   string `json:"f"`
		Locked string `json:"l"`
	} `json:"B"`
}

type executionReportPayload struct {
	EventType          string          `json:"e"`
	EventTime          int64           `json:"E"`
	Symbol             string          `json:"s"`
	Side               string          `json:"S"`
	OrderType          string          `json:"o"`
	CreationTime       json.RawMessage `json:"O"`
	ExecutionType      string          `json:"x"`
	OrderStatus        string          `json:"X"`
	OrderID            int64           `json:"i"`
	Ignore             json.RawMessage `json:"I"`
	Price              string          `json:"p"`
	StopPrice          string          `json:"P"`
	Quantity           string          `json:"q"`
	QuoteOrderQuantity json.RawMessage `json:"Q"`
	TotalTradeQuantity string          `json:"z"`
	TotalQuoteQuantity string          `json:"Z"`
	IsOrderWorking     bool            `json:"w"`
	WorkingTime        json.RawMessage `json:"W"`
	TransactionTime    int64           `json:"T"`
	TradeID            json.RawMessage `json:"t"`
	ClientOrderID      json.RawMessage `json:"c"`
	OrigClientOrderID  json.RawMessage `json:"C"`
	LastQuantity       json.RawMessage `json:"l"`
	LastPrice          json.RawMessage `json:"L"`
	Commission         json.RawMessage `json:"n"`
	CommissionAsset    json.RawMessage `json:"N"`
	IsMaker            json.RawMessage `json:"m"`
	Ignore2            json.RawMessage `json:"M"`
	TimeInForce        json.RawMessage `json:"f"`
	IcebergQuantity    json.RawMessage `json:"F"`
}

// DecodeUserEvent resolves a user data stream payload into one of the account event variants.
// Unknown event types return (nil, nil).
func DecodeUserEvent(data []byte) (models.AccountEvent, error) {
	data = unwrap(data)

	var h userEventHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode user event: %w", err)
	}

	switch h.EventType {
	case "balanceUpdate", "outboundAccountInfo", "account":
		return models.AccountUpdate{EventType: h.EventType, EventTime: time.UnixMilli(h.EventTime).UTC()}, nil

	case "outboundAccountPosition":
		var p accountPositionPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.EventType, err)
		}
		balances := make([]models.Balance, 0, len(p.Balances))
		for _, b := range p.Balances {
			balances = append(balances, models.Balance{
				Asset:  b.Asset,
				Free:   parseFloat(b.Free),
				Locked: parseFloat(b.Locked),
			})
		}
		return models.BalancePosition{
			EventTime:         time.UnixMilli(p.EventTime).UTC(),
			LastAccountUpdate: time.UnixMilli(p.LastUpdateTime).UTC(),
			Balances:          balances,
		}, nil

	case "executionReport":
		var p executionReportPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.EventType, err)
		}
		return models.ExecutionReport{
			EventTime:          time.UnixMilli(p.EventTime).UTC(),
			Symbol:             p.Symbol,
			OrderID:            p.OrderID,
			Side:               models.OrderSide(p.Side),
			OrderType:          models.OrderType(p.OrderType),
			OrderStatus:        models.OrderStatus(p.OrderStatus),
			Price:              parseFloat(p.Price),
			StopPrice:          parseFloat(p.StopPrice),
			Quantity:           parseFloat(p.Quantity),
			TotalTradeQuantity: parseFloat(p.TotalTradeQuantity),
			TotalQuoteQuantity: parseFloat(p.TotalQuoteQuantity),
			IsOrderWorking:     p.IsOrderWorking,
			OrderTime:          time.UnixMilli(p.TransactionTime).UTC(),
		}, nil
	}

	return nil, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
