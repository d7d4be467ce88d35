package engine

import (
	"context"
	"errors"
	"time"

	"trailingbot/internal/cache"
	"trailingbot/internal/exchange"
	"trailingbot/internal/models"

	"go.uber.org/mock/gomock"
)

var xrpInfo = models.SymbolInfo{Symbol: "XRPUSDT", BaseAsset: "XRP", QuoteAsset: "USDT", TickSize: "0.0001"}

func (s *EngineSuite) putCandle(price float64) {
	candle := models.Candle{Key: "XRPUSDT", Interval: "1m", Time: time.Now().UTC(), Close: price}
	s.Require().NoError(cache.SetJSON(s.ctx, s.cache, cache.HashSymbols, cache.LatestCandleField("XRPUSDT"), candle))
}

func (s *EngineSuite) TestExecuteSkipsWithoutLatestCandle() {
	s.venue.EXPECT().GetSymbolInfo(gomock.Any(), "XRPUSDT").Return(xrpInfo, nil)
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.Execute(s.ctx, "XRPUSDT", "c1"))

	_, saved := s.store.Snapshot("XRPUSDT")
	s.False(saved)
}

func (s *EngineSuite) TestExecuteBuildsAndSavesSnapshot() {
	s.putCandle(0.5)
	s.Require().NoError(cache.SetJSON(s.ctx, s.cache, cache.HashSymbols, cache.MarketSpreadField("XRPUSDT"), 0.12))
	s.store.SetLastBuyPrice("XRPUSDT", 0.4)

	s.venue.EXPECT().GetSymbolInfo(gomock.Any(), "XRPUSDT").Return(xrpInfo, nil).Times(1)
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil).Times(2)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil).Times(1)

	s.Require().NoError(s.engine.Execute(s.ctx, "XRPUSDT", "c1"))
	s.Require().NoError(s.engine.Execute(s.ctx, "XRPUSDT", "c2"))

	snap, saved := s.store.Snapshot("XRPUSDT")
	s.Require().True(saved)
	s.Equal("c2", snap.CorrelationID)
	s.Equal(models.ActionNotDetermined, snap.Action)
	s.Equal(xrpInfo, snap.SymbolInfo)
	s.InDelta(0.5, snap.Buy.CurrentPrice, 1e-9)
	s.InDelta(0.5105, snap.Buy.LimitPrice, 1e-9)
	s.InDelta(0.4895, snap.Sell.LimitPrice, 1e-9)
	s.InDelta(0.12, snap.Buy.MarketSpread.Unwrap(), 1e-9)
	s.True(snap.Buy.Difference.IsNone())
	s.InDelta(0.4, snap.Sell.LastBuyPrice.Unwrap(), 1e-9)
	s.InDelta(25, snap.Sell.CurrentProfitPercentage.Unwrap(), 1e-9)
	s.False(snap.UpdatedAt.IsZero())
}

func (s *EngineSuite) TestExecuteRunsStateMachineOnOpenOrders() {
	s.putCandle(0.47)
	order := stopLimit(7, models.OrderSideBuy, 0.52, 0.50)

	s.venue.EXPECT().GetSymbolInfo(gomock.Any(), "XRPUSDT").Return(xrpInfo, nil)
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{order}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil).Times(2)
	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(7)).Return(nil)

	s.Require().NoError(s.engine.Execute(s.ctx, "XRPUSDT", "c1"))

	snap, saved := s.store.Snapshot("XRPUSDT")
	s.Require().True(saved)
	s.Equal(models.ActionBuy, snap.Action)
	s.True(snap.Buy.Difference.IsSome())
	s.True(snap.Sell.LastBuyPrice.IsNone())
	s.True(snap.Sell.CurrentProfitPercentage.IsNone())
}

func (s *EngineSuite) TestExecuteRetriesTransientSymbolInfoErrors() {
	s.putCandle(0.5)

	gomock.InOrder(
		s.venue.EXPECT().GetSymbolInfo(gomock.Any(), "XRPUSDT").
			Return(models.SymbolInfo{}, &exchange.APIError{Code: exchange.CodeInvalidTimestamp}),
		s.venue.EXPECT().GetSymbolInfo(gomock.Any(), "XRPUSDT").Return(xrpInfo, nil),
	)
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.Execute(s.ctx, "XRPUSDT", "c1"))
}

func (s *EngineSuite) TestExecuteFailsForUnknownSymbol() {
	s.Error(s.engine.Execute(s.ctx, "DOGEUSDT", "c1"))
}

func (s *EngineSuite) TestTriggerBuyOverrideNotifiesAndIsConsumed() {
	s.putCandle(0.5)
	s.Require().NoError(s.store.SaveOverrideAction(s.ctx, "XRPUSDT", models.OverrideAction{
		Action:      models.OverrideBuy,
		ActionAt:    time.Now().UTC(),
		TriggeredBy: "user",
		Notify:      true,
	}, "Buy order requested by user."))

	s.venue.EXPECT().GetSymbolInfo(gomock.Any(), "XRPUSDT").Return(xrpInfo, nil)
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)
	s.notifier.EXPECT().Send(gomock.Any(), "Action buy was triggered by user.", gomock.Any()).Return(nil)

	s.Require().NoError(s.engine.Execute(s.ctx, "XRPUSDT", "c1"))

	snap, _ := s.store.Snapshot("XRPUSDT")
	s.Equal(models.ActionBuy, snap.Action)
	s.True(snap.Override.IsSome())

	pending, err := s.store.GetOverrideAction(s.ctx, "XRPUSDT")
	s.Require().NoError(err)
	s.True(pending.IsNone())
}

func (s *EngineSuite) TestCancelOrderOverride() {
	order := stopLimit(9, models.OrderSideSell, 0.6, 0.61)
	snap := s.snapshot()
	s.Require().NoError(s.store.SaveOverrideAction(s.ctx, "XRPUSDT", models.OverrideAction{
		Action:      models.OverrideCancelOrder,
		Order:       &order,
		TriggeredBy: "user",
	}, "Cancel order requested by user."))

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(9)).Return(nil)
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)
	s.notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.Require().NoError(s.engine.ApplyOverride(s.ctx, snap))
	s.Equal(models.ActionCancelOrder, snap.Action)
}

func (s *EngineSuite) TestCancelOrderOverrideFailureChecksSide() {
	order := stopLimit(9, models.OrderSideSell, 0.6, 0.61)
	snap := s.snapshot()
	s.Require().NoError(s.store.SaveOverrideAction(s.ctx, "XRPUSDT", models.OverrideAction{
		Action: models.OverrideCancelOrder,
		Order:  &order,
	}, "Cancel order requested by user."))

	s.venue.EXPECT().CancelOrder(gomock.Any(), "XRPUSDT", int64(9)).Return(errors.New("gone"))
	s.venue.EXPECT().GetOpenOrders(gomock.Any(), "XRPUSDT").Return([]models.Order{}, nil)
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.ApplyOverride(s.ctx, snap))
	s.Equal(models.ActionSellOrderChecking, snap.Action)
}

func (s *EngineSuite) TestManualTradeOverridePlacesAndRecordsOrder() {
	order := models.Order{Side: models.OrderSideBuy, Type: models.OrderTypeLimit, Price: 0.45, OrigQty: 100}
	snap := s.snapshot()
	s.Require().NoError(s.store.SaveOverrideAction(s.ctx, "XRPUSDT", models.OverrideAction{
		Action: models.OverrideManualTrade,
		Order:  &order,
	}, "Manual trade requested by user."))

	placed := order
	placed.Symbol = "XRPUSDT"
	placed.OrderID = 321
	placed.Status = models.OrderStatusNew

	s.venue.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, o models.Order) (models.Order, error) {
			s.Equal("XRPUSDT", o.Symbol)
			return placed, nil
		})
	s.venue.EXPECT().GetAccountInfo(gomock.Any()).Return(account, nil)

	s.Require().NoError(s.engine.ApplyOverride(s.ctx, snap))
	s.Equal(models.ActionManualTrade, snap.Action)

	rec, found, err := s.store.GetManualOrder(s.ctx, "XRPUSDT", 321)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(models.OrderStatusNew, rec.Status)
}

func (s *EngineSuite) TestManualTradeOverrideWithoutOrderFails() {
	s.Require().NoError(s.store.SaveOverrideAction(s.ctx, "XRPUSDT", models.OverrideAction{
		Action: models.OverrideManualTrade,
	}, "Manual trade requested by user."))

	s.ErrorIs(s.engine.ApplyOverride(s.ctx, s.snapshot()), errOverrideWithoutOrder)
}
