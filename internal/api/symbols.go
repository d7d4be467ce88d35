package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trailingbot/internal/models"
	"trailingbot/internal/queue"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
)

type buyView struct {
	CurrentPrice float64        `json:"currentPrice"`
	LimitPrice   float64        `json:"limitPrice"`
	OpenOrders   []models.Order `json:"openOrders"`
	MarketSpread *float64       `json:"marketSpread"`
	Difference   *float64       `json:"difference"`
}

type sellView struct {
	CurrentPrice            float64        `json:"currentPrice"`
	LimitPrice              float64        `json:"limitPrice"`
	OpenOrders              []models.Order `json:"openOrders"`
	LastBuyPrice            *float64       `json:"lastBuyPrice"`
	CurrentProfitPercentage *float64       `json:"currentProfitPercentage"`
}

type symbolView struct {
	Symbol        string        `json:"symbol"`
	CorrelationID string        `json:"correlationId"`
	Action        models.Action `json:"action"`
	Buy           buyView       `json:"buy"`
	Sell          sellView      `json:"sell"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func ptr(o optional.Option[float64]) *float64 {
	if o.IsNone() {
		return nil
	}
	v := o.Unwrap()
	return &v
}

func toView(s models.Snapshot) symbolView {
	return symbolView{
		Symbol:        s.Symbol,
		CorrelationID: s.CorrelationID,
		Action:        s.Action,
		Buy: buyView{
			CurrentPrice: s.Buy.CurrentPrice,
			LimitPrice:   s.Buy.LimitPrice,
			OpenOrders:   s.Buy.OpenOrders,
			MarketSpread: ptr(s.Buy.MarketSpread),
			Difference:   ptr(s.Buy.Difference),
		},
		Sell: sellView{
			CurrentPrice:            s.Sell.CurrentPrice,
			LimitPrice:              s.Sell.LimitPrice,
			OpenOrders:              s.Sell.OpenOrders,
			LastBuyPrice:            ptr(s.Sell.LastBuyPrice),
			CurrentProfitPercentage: ptr(s.Sell.CurrentProfitPercentage),
		},
		UpdatedAt: s.UpdatedAt,
	}
}

// listSymbols accepts ?sort=<option>&order=asc|desc&search=<keyword>.
func (rt *Router) listSymbols(w http.ResponseWriter, r *http.Request) {
	snaps, err := rt.snapshots.ListSnapshots(r.Context())
	if err != nil {
		rt.log.WithComponent("api").WithError(err).Error("Failed to list snapshots.")
		writeError(w, http.StatusInternalServerError, errors.New("failed to list symbols"))
		return
	}

	q := r.URL.Query()
	option := SortOption(q.Get("sort"))
	if option == "" {
		option = SortDefault
	}

	snaps = FilterSnapshots(snaps, q.Get("search"))
	SortSnapshots(snaps, SortQuery{
		Option:     option,
		Descending: strings.EqualFold(q.Get("order"), "desc"),
	})

	views := make([]symbolView, 0, len(snaps))
	for _, s := range snaps {
		views = append(views, toView(s))
	}
	writeJSON(w, http.StatusOK, views)
}

func (rt *Router) triggerBuy(w http.ResponseWriter, r *http.Request) {
	rt.submit(w, r, queue.NewTriggerBuyOverride())
}

func (rt *Router) triggerSell(w http.ResponseWriter, r *http.Request) {
	rt.submit(w, r, queue.NewTriggerSellOverride())
}

func (rt *Router) cancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := decodeOrder(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rt.submit(w, r, queue.NewCancelOrderOverride(order))
}

func (rt *Router) manualTrade(w http.ResponseWriter, r *http.Request) {
	order, err := decodeOrder(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rt.submit(w, r, queue.NewManualTradeOverride(order))
}

func decodeOrder(r *http.Request) (models.Order, error) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		return models.Order{}, fmt.Errorf("invalid order: %w", err)
	}
	if order.Side != models.OrderSideBuy && order.Side != models.OrderSideSell {
		return models.Order{}, fmt.Errorf("invalid order side %q", order.Side)
	}
	return order, nil
}

func (rt *Router) submit(w http.ResponseWriter, r *http.Request, job queue.Job) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	job.CorrelationID = uuid.NewString()

	err := rt.overrides.SubmitOverride(symbol, job)
	switch {
	case errors.Is(err, queue.ErrNoQueue):
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown symbol %s", symbol))
		return
	case err != nil:
		rt.log.WithSymbol(symbol).WithError(err).Error("Failed to submit override.")
		writeError(w, http.StatusInternalServerError, errors.New("failed to submit override"))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"symbol":        symbol,
		"action":        string(job.Override.Action),
		"correlationId": job.CorrelationID,
	})
}
