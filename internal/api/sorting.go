package api

import (
	"cmp"
	"slices"
	"strings"

	"trailingbot/internal/models"

	"github.com/moznion/go-optional"
)

type SortOption string

const (
	SortDefault       SortOption = "default"
	SortAlpha         SortOption = "alpha"
	SortBuyDifference SortOption = "buy-difference"
	SortSellProfit    SortOption = "sell-profit"
	SortMarketSpread  SortOption = "market-spread"
)

// OpenTradesKeyword selects symbols holding a position instead of matching names.
const OpenTradesKeyword = "open trades"

type SortQuery struct {
	Option     SortOption
	Descending bool
	Search     string
}

// FilterSnapshots keeps the snapshots matching a search keyword.
func FilterSnapshots(snaps []models.Snapshot, search string) []models.Snapshot {
	if search == "" {
		return snaps
	}

	keyword := strings.ToLower(search)
	filtered := make([]models.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if keyword == OpenTradesKeyword {
			if s.Sell.LastBuyPrice.IsSome() && s.Sell.LastBuyPrice.Unwrap() > 0 {
				filtered = append(filtered, s)
			}
			continue
		}
		if strings.Contains(strings.ToLower(s.Symbol), keyword) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// SortSnapshots orders snaps in place. Snapshots without the sorted metric
// always come last, whatever the direction.
func SortSnapshots(snaps []models.Snapshot, q SortQuery) {
	switch q.Option {
	case SortAlpha:
		slices.SortStableFunc(snaps, func(a, b models.Snapshot) int {
			return direction(cmp.Compare(a.Symbol, b.Symbol), q.Descending)
		})
	case SortBuyDifference:
		sortByMetric(snaps, q.Descending, func(s models.Snapshot) optional.Option[float64] { return s.Buy.Difference })
	case SortSellProfit:
		sortByMetric(snaps, q.Descending, func(s models.Snapshot) optional.Option[float64] { return s.Sell.CurrentProfitPercentage })
	case SortMarketSpread:
		sortByMetric(snaps, q.Descending, func(s models.Snapshot) optional.Option[float64] { return s.Buy.MarketSpread })
	default:
		slices.SortStableFunc(snaps, func(a, b models.Snapshot) int {
			if c := cmp.Compare(openOrderRank(a), openOrderRank(b)); c != 0 {
				return c
			}
			return compareOptional(a.Buy.Difference, b.Buy.Difference, q.Descending)
		})
	}
}

// openOrderRank puts symbols with a working buy order first, then those
// with a working sell order.
func openOrderRank(s models.Snapshot) int {
	switch {
	case len(s.Buy.OpenOrders) > 0:
		return 0
	case len(s.Sell.OpenOrders) > 0:
		return 1
	}
	return 2
}

func sortByMetric(snaps []models.Snapshot, desc bool, metric func(models.Snapshot) optional.Option[float64]) {
	slices.SortStableFunc(snaps, func(a, b models.Snapshot) int {
		return compareOptional(metric(a), metric(b), desc)
	})
}

func compareOptional(a, b optional.Option[float64], desc bool) int {
	switch {
	case a.IsNone() && b.IsNone():
		return 0
	case a.IsNone():
		return 1
	case b.IsNone():
		return -1
	}
	return direction(cmp.Compare(a.Unwrap(), b.Unwrap()), desc)
}

func direction(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}
