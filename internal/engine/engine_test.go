package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"trailingbot/internal/cache"
	"trailingbot/internal/exchange"
	"trailingbot/internal/logger"
	"trailingbot/internal/models"
	"trailingbot/internal/storage/memory"
	"trailingbot/mocks"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type staticConfig map[string]models.SymbolConfiguration

func (s staticConfig) GetSymbolConfiguration(_ context.Context, symbol string) (models.SymbolConfiguration, error) {
	cfg, ok := s[symbol]
	if !ok {
		return models.SymbolConfiguration{}, errors.New("unknown symbol")
	}
	return cfg, nil
}

type EngineSuite struct {
	suite.Suite
	ctx      context.Context
	venue    *mocks.MockClient
	notifier *mocks.MockNotifier
	store    *memory.Store
	cache    *cache.SQLiteCache
	config   staticConfig
	engine   *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	c, err := cache.NewSQLite(":memory:")
	s.Require().NoError(err)
	s.T().Cleanup(func() { c.Close() })

	s.ctx = context.Background()
	s.venue = mocks.NewMockClient(ctrl)
	s.notifier = mocks.NewMockNotifier(ctrl)
	s.store = memory.New()
	s.cache = c
	s.config = staticConfig{
		"XRPUSDT": {
			Symbol:  "XRPUSDT",
			Candles: models.CandlesConfiguration{Interval: "1m", Limit: 10},
			Buy:     models.BuyConfiguration{Enabled: true, LimitPercentage: 1.021},
			Sell:    models.SellConfiguration{Enabled: true, LimitPercentage: 0.979},
		},
	}
	s.engine = New(Deps{
		Exchange:  s.venue,
		Config:    s.config,
		Orders:    s.store,
		Snapshots: s.store,
		Cache:     s.cache,
		Notifier:  s.notifier,
	}, logger.Discard())
	s.engine.retryDelay = time.Millisecond
}

func (s *EngineSuite) snapshot() *models.Snapshot {
	snap := models.NewSnapshot("XRPUSDT", "test-correlation")
	snap.SymbolConfiguration = s.config["XRPUSDT"]
	snap.SymbolInfo = models.SymbolInfo{Symbol: "XRPUSDT", TickSize: "0.0001"}
	return snap
}

func stopLimit(id int64, side models.OrderSide, price, stop float64) models.Order {
	return models.Order{
		OrderID:   id,
		Symbol:    "XRPUSDT",
		Side:      side,
		Type:      models.OrderTypeStopLossLimit,
		Status:    models.OrderStatusNew,
		Price:     price,
		StopPrice: stop,
	}
}

func withOrders(snap *models.Snapshot, orders ...models.Order) *models.Snapshot {
	snap.OpenOrders = orders
	snap.SplitOpenOrders()
	return snap
}

var account = models.AccountInfo{
	CanTrade: true,
	Balances: []models.Balance{{Asset: "USDT", Free: 100}},
}

func (s *EngineSuite) TestBuyStopAboveLimitCancelsAndBuys() {
	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.52, 0.50))
	snap.Buy.LimitPrice = 0.48
	snap.Buy.CurrentPrice = 0.47

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(1)).Return(nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuy, snap.Action)
	s.Empty(snap.Buy.OpenOrders)
	s.Equal(account, snap.AccountInfo)

	var cached models.AccountInfo
	found, err := cache.GetJSON(s.ctx, s.cache, cache.HashCommon, cache.FieldAccountInfo, &cached)
	s.Require().NoError(err)
	s.True(found)
	s.True(cached.CanTrade)
}

func (s *EngineSuite) TestBuyCancelFailureRefreshesAndChecks() {
	order := stopLimit(1, models.OrderSideBuy, 0.52, 0.50)
	snap := withOrders(s.snapshot(), order)
	snap.Buy.LimitPrice = 0.48
	snap.Buy.CurrentPrice = 0.47

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(1)).
		Return(&exchange.APIError{Code: exchange.CodeUnknownOrder, Message: "Unknown order sent."})
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuyOrderChecking, snap.Action)
	s.Empty(snap.OpenOrders)
	s.Empty(snap.Buy.OpenOrders)
	s.Equal(account, snap.AccountInfo)
}

func (s *EngineSuite) TestBuyTransportFailureAlsoChecks() {
	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.52, 0.50))
	snap.Buy.LimitPrice = 0.48

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(1)).Return(errors.New("connection reset"))
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return(snap.OpenOrders, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuyOrderChecking, snap.Action)
	s.Len(snap.Buy.OpenOrders, 1)
}

func (s *EngineSuite) TestBuyCurrentPriceAboveOrderPriceCancels() {
	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.4650, 0.4600))
	snap.Buy.LimitPrice = 0.48
	snap.Buy.CurrentPrice = 0.47

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(1)).Return(nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuy, snap.Action)
}

func (s *EngineSuite) TestBuyWithinLimitWaits() {
	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.4710, 0.4700))
	snap.Buy.LimitPrice = 0.48
	snap.Buy.CurrentPrice = 0.46

	s.venue.EXPECT().CancelOrder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuyOrderWait, snap.Action)
	s.Len(snap.Buy.OpenOrders, 1)
}

func (s *EngineSuite) TestBuyStopEqualToLimitAfterFlooringWaits() {
	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.4810, 0.48004))
	snap.Buy.LimitPrice = 0.48009
	snap.Buy.CurrentPrice = 0.47

	s.venue.EXPECT().CancelOrder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuyOrderWait, snap.Action)
}

func (s *EngineSuite) TestMaxOpenTradesCancelsRegardlessOfPrice() {
	s.config["XRPUSDT"] = withOrderLimit(s.config["XRPUSDT"], 1)
	s.store.SetLastBuyPrice("BTCUSDT", 30000)

	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.4710, 0.4700))
	snap.SymbolConfiguration = s.config["XRPUSDT"]
	snap.Buy.LimitPrice = 0.48
	snap.Buy.CurrentPrice = 0.46

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(1)).Return(nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuyOrderCancelled, snap.Action)
	s.Empty(snap.Buy.OpenOrders)
}

func (s *EngineSuite) TestMaxOpenTradesCancelFailureChecks() {
	s.config["XRPUSDT"] = withOrderLimit(s.config["XRPUSDT"], 1)
	s.store.SetLastBuyPrice("BTCUSDT", 30000)

	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.4710, 0.4700))
	snap.SymbolConfiguration = s.config["XRPUSDT"]
	snap.Buy.LimitPrice = 0.48

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(1)).Return(errors.New("boom"))
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionBuyOrderChecking, snap.Action)
}

func (s *EngineSuite) TestIsExceedingMaxOpenTrades() {
	snap := s.snapshot()

	exceeding, err := s.engine.IsExceedingMaxOpenTrades(s.ctx, snap)
	s.Require().NoError(err)
	s.False(exceeding, "limit disabled")

	snap.SymbolConfiguration = withOrderLimit(snap.SymbolConfiguration, 2)
	s.store.SetLastBuyPrice("BTCUSDT", 30000)
	exceeding, err = s.engine.IsExceedingMaxOpenTrades(s.ctx, snap)
	s.Require().NoError(err)
	s.False(exceeding, "one of two slots used")

	s.store.SetLastBuyPrice("ETHUSDT", 2000)
	exceeding, err = s.engine.IsExceedingMaxOpenTrades(s.ctx, snap)
	s.Require().NoError(err)
	s.True(exceeding)

	snap.Sell.LastBuyPrice = optional.Some(0.45)
	exceeding, err = s.engine.IsExceedingMaxOpenTrades(s.ctx, snap)
	s.Require().NoError(err)
	s.False(exceeding, "symbol already holds a position")
}

func (s *EngineSuite) TestSellStopBelowLimitCancelsAndSells() {
	snap := withOrders(s.snapshot(), stopLimit(2, models.OrderSideSell, 0.39, 0.40))
	snap.Sell.LimitPrice = 0.45
	snap.Sell.CurrentPrice = 0.38

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(2)).Return(nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionSell, snap.Action)
	s.Empty(snap.Sell.OpenOrders)
}

func (s *EngineSuite) TestSellCancelFailureChecks() {
	snap := withOrders(s.snapshot(), stopLimit(2, models.OrderSideSell, 0.39, 0.40))
	snap.Sell.LimitPrice = 0.45

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(2)).Return(errors.New("boom"))
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionSellOrderChecking, snap.Action)
}

func (s *EngineSuite) TestSellCurrentPriceBelowOrderPriceCancels() {
	snap := withOrders(s.snapshot(), stopLimit(2, models.OrderSideSell, 0.47, 0.46))
	snap.Sell.LimitPrice = 0.45
	snap.Sell.CurrentPrice = 0.465

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(2)).Return(nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionSell, snap.Action)
}

func (s *EngineSuite) TestSellWithinLimitWaits() {
	snap := withOrders(s.snapshot(), stopLimit(2, models.OrderSideSell, 0.45, 0.46))
	snap.Sell.LimitPrice = 0.45
	snap.Sell.CurrentPrice = 0.47

	s.venue.EXPECT().CancelOrder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionSellOrderWait, snap.Action)
}

func (s *EngineSuite) TestDeterminedActionIsLeftAlone() {
	snap := withOrders(s.snapshot(), stopLimit(1, models.OrderSideBuy, 0.52, 0.50))
	snap.Action = models.ActionManualTrade
	snap.Buy.LimitPrice = 0.48

	s.venue.EXPECT().CancelOrder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionManualTrade, snap.Action)
}

func (s *EngineSuite) TestOtherOrderTypesIgnored() {
	order := stopLimit(1, models.OrderSideBuy, 0.52, 0.50)
	order.Type = models.OrderTypeLimit
	snap := withOrders(s.snapshot(), order)
	snap.Buy.LimitPrice = 0.48

	s.venue.EXPECT().CancelOrder(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionNotDetermined, snap.Action)
}

func (s *EngineSuite) TestBothSidesMayFireInOneCycle() {
	snap := withOrders(s.snapshot(),
		stopLimit(1, models.OrderSideBuy, 0.4710, 0.4700),
		stopLimit(2, models.OrderSideSell, 0.39, 0.40),
	)
	snap.Buy.LimitPrice = 0.48
	snap.Buy.CurrentPrice = 0.46
	snap.Sell.LimitPrice = 0.45
	snap.Sell.CurrentPrice = 0.46

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(1)).Times(0)
	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(2)).Return(nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.HandleOpenOrders(s.ctx, snap))
	s.Equal(models.ActionSell, snap.Action)
	s.Len(snap.Buy.OpenOrders, 1)
	s.Empty(snap.Sell.OpenOrders)
}

func withOrderLimit(cfg models.SymbolConfiguration, maxTrades int) models.SymbolConfiguration {
	cfg.BotOptions.OrderLimit = models.OrderLimit{Enabled: true, MaxOpenTrades: maxTrades}
	return cfg
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), time.Millisecond, func() (int, error) {
		calls++
		return 0, errors.New("permanent")
	}, func(error) {})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestWithRetryRetriesTransientErrors(t *testing.T) {
	calls := 0
	retries := 0
	v, err := withRetry(context.Background(), time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &exchange.APIError{Code: exchange.CodeDisconnected}
		}
		return 42, nil
	}, func(error) { retries++ })
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 2, retries)
}
