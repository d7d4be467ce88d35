package stream

import (
	"context"

	"trailingbot/internal/cache"
	"trailingbot/internal/errhandler"
	"trailingbot/internal/models"
)

// SetupDepth replaces the depth subscriptions with one connection per symbol.
func (r *Registry) SetupDepth(ctx context.Context, symbols []string) error {
	fctx := r.open(ctx, FamilyDepth)

	for _, symbol := range symbols {
		stop, err := r.deps.Exchange.StreamDepth(fctx, symbol, depthLevel, r.onDepth(fctx))
		if err != nil {
			return err
		}
		r.add(FamilyDepth, symbol, stop)
	}
	r.logEntry(FamilyDepth).WithField("symbols", symbols).Info("Depth streams opened.")
	return nil
}

func (r *Registry) onDepth(ctx context.Context) func(models.Depth) {
	return func(depth models.Depth) {
		spread, ok := MarketSpread(depth)
		if !ok {
			return
		}
		scope := errhandler.Scope{Job: "stream-" + string(FamilyDepth), Symbol: depth.Symbol}
		r.gate.Run(ctx, scope, func(ctx context.Context) error {
			return cache.SetJSON(ctx, r.deps.Cache, cache.HashSymbols, cache.MarketSpreadField(depth.Symbol), spread)
		})
	}
}

// MarketSpread is the distance between the best ask and the best bid as a
// percentage of the best ask.
func MarketSpread(depth models.Depth) (float64, bool) {
	if len(depth.Bids) == 0 || len(depth.Asks) == 0 {
		return 0, false
	}
	bid := depth.Bids[0].Price
	ask := depth.Asks[0].Price
	if ask <= 0 {
		return 0, false
	}
	return (ask - bid) / ask * 100, true
}
