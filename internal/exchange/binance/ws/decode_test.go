package ws

import (
	"testing"
	"time"

	"trailingbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const combinedKline = `{
  "stream": "btcusdt@kline_1m",
  "data": {
    "e": "kline", "E": 1700000000500, "s": "BTCUSDT",
    "k": {
      "t": 1700000000000, "T": 1700000059999, "s": "BTCUSDT", "i": "1m",
      "f": 100, "L": 200, "o": "37000.10", "c": "37010.50", "h": "37020.00", "l": "36990.00",
      "v": "12.5", "n": 100, "x": false, "q": "462500.00", "V": "6.1", "Q": "225000.00", "B": "0"
    }
  }
}`

func TestDecodeKlineCombined(t *testing.T) {
	candle, err := DecodeKline([]byte(combinedKline))
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", candle.Key)
	assert.Equal(t, "1m", candle.Interval)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), candle.Time)
	assert.Equal(t, 37000.10, candle.Open)
	assert.Equal(t, 37010.50, candle.Close)
	assert.Equal(t, 37020.00, candle.High)
	assert.Equal(t, 36990.00, candle.Low)
	assert.Equal(t, 12.5, candle.Volume)
}

func TestDecodeKlineRejectsOtherEvents(t *testing.T) {
	_, err := DecodeKline([]byte(`{"e":"trade","E":1}`))
	assert.Error(t, err)
}

func TestDecodeDepth(t *testing.T) {
	payload := `{"lastUpdateId":160,"bids":[["0.4800","10"],["0.4799","5"]],"asks":[["0.4810","100"]]}`

	depth, err := DecodeDepth("XRPUSDT", []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "XRPUSDT", depth.Symbol)
	require.Len(t, depth.Bids, 2)
	require.Len(t, depth.Asks, 1)
	assert.Equal(t, models.PriceLevel{Price: 0.48, Quantity: 10}, depth.Bids[0])
	assert.Equal(t, models.PriceLevel{Price: 0.481, Quantity: 100}, depth.Asks[0])
}

func TestDecodeUserEventExecutionReport(t *testing.T) {
	payload := `{
	  "e": "executionReport", "E": 1499405658658, "s": "ETHBTC", "c": "mUvoqJxFIILMdfAW5iGSOW",
	  "S": "BUY", "o": "STOP_LOSS_LIMIT", "f": "GTC", "q": "1.00000000", "p": "0.10264410",
	  "P": "0.10250000", "F": "0.00000000", "g": -1, "C": "", "x": "NEW", "X": "NEW", "r": "NONE",
	  "i": 4293153, "l": "0.00000000", "z": "0.00000000", "L": "0.00000000", "n": "0", "N": null,
	  "T": 1499405658657, "t": -1, "I": 8641984, "w": true, "m": false, "M": false,
	  "O": 1499405658657, "Z": "0.00000000", "Y": "0.00000000", "Q": "0.00000000", "W": 1499405658657
	}`

	evt, err := DecodeUserEvent([]byte(payload))
	require.NoError(t, err)

	report, ok := evt.(models.ExecutionReport)
	require.True(t, ok)
	assert.Equal(t, "ETHBTC", report.Symbol)
	assert.Equal(t, int64(4293153), report.OrderID)
	assert.Equal(t, models.OrderSideBuy, report.Side)
	assert.Equal(t, models.OrderTypeStopLossLimit, report.OrderType)
	assert.Equal(t, models.OrderStatusNew, report.OrderStatus)
	assert.Equal(t, 0.10264410, report.Price)
	assert.Equal(t, 0.10250000, report.StopPrice)
	assert.Equal(t, 1.0, report.Quantity)
	assert.True(t, report.IsOrderWorking)
	assert.Equal(t, time.UnixMilli(1499405658657).UTC(), report.OrderTime)
}

func TestDecodeUserEventAccountPosition(t *testing.T) {
	payload := `{"e":"outboundAccountPosition","E":1564034571105,"u":1564034571073,
	  "B":[{"a":"ETH","f":"10000.000000","l":"0.000000"},{"a":"USDT","f":"25.5","l":"4.5"}]}`

	evt, err := DecodeUserEvent([]byte(payload))
	require.NoError(t, err)

	pos, ok := evt.(models.BalancePosition)
	require.True(t, ok)
	assert.Equal(t, time.UnixMilli(1564034571073).UTC(), pos.LastAccountUpdate)
	assert.Equal(t, []models.Balance{
		{Asset: "ETH", Free: 10000},
		{Asset: "USDT", Free: 25.5, Locked: 4.5},
	}, pos.Balances)
}

func TestDecodeUserEventBalanceUpdate(t *testing.T) {
	evt, err := DecodeUserEvent([]byte(`{"e":"balanceUpdate","E":1573200697110,"a":"BTC","d":"100.00000000","T":1573200697068}`))
	require.NoError(t, err)
	assert.Equal(t, models.AccountUpdate{EventType: "balanceUpdate", EventTime: time.UnixMilli(1573200697110).UTC()}, evt)
}

func TestDecodeUserEventUnknownIsIgnored(t *testing.T) {
	evt, err := DecodeUserEvent([]byte(`{"e":"listStatus","E":1}`))
	require.NoError(t, err)
	assert.Nil(t, evt)
}
