package stream

import (
	"context"

	"trailingbot/internal/cache"
	"trailingbot/internal/errhandler"
	"trailingbot/internal/models"
	"trailingbot/internal/queue"
)

// SetupUser replaces the account data subscription.
func (r *Registry) SetupUser(ctx context.Context) error {
	fctx := r.open(ctx, FamilyUser)

	stop, err := r.deps.Exchange.StreamAccount(fctx, r.onAccountEvent(fctx))
	if err != nil {
		return err
	}
	r.add(FamilyUser, "account", stop)
	r.logEntry(FamilyUser).Info("User stream opened.")
	return nil
}

func (r *Registry) onAccountEvent(ctx context.Context) func(models.AccountEvent) {
	return func(evt models.AccountEvent) {
		switch e := evt.(type) {
		case models.AccountUpdate:
			r.tasks.Add(1)
			go func() {
				defer r.tasks.Done()
				r.gate.Run(ctx, errhandler.Scope{Job: "account-update"}, r.refreshAccountInfo)
			}()
		case models.BalancePosition:
			r.gate.Run(ctx, errhandler.Scope{Job: "balance-position"}, func(ctx context.Context) error {
				return r.mergeBalances(ctx, e)
			})
		case models.ExecutionReport:
			scope := errhandler.Scope{Job: "execution-report", Symbol: e.Symbol}
			r.gate.Run(ctx, scope, func(context.Context) error {
				return r.enqueue(e.Symbol, queue.Job{Type: queue.JobReconcileOrderEvent, Event: &e})
			})
		}
	}
}

func (r *Registry) refreshAccountInfo(ctx context.Context) error {
	account, err := r.deps.Exchange.GetAccountInfo(ctx)
	if err != nil {
		return err
	}

	r.accountMu.Lock()
	defer r.accountMu.Unlock()
	return cache.SetJSON(ctx, r.deps.Cache, cache.HashCommon, cache.FieldAccountInfo, account)
}

func (r *Registry) mergeBalances(ctx context.Context, evt models.BalancePosition) error {
	r.accountMu.Lock()
	defer r.accountMu.Unlock()

	var account models.AccountInfo
	if _, err := cache.GetJSON(ctx, r.deps.Cache, cache.HashCommon, cache.FieldAccountInfo, &account); err != nil {
		return err
	}
	account = account.MergeBalances(evt.Balances, evt.LastAccountUpdate)
	return cache.SetJSON(ctx, r.deps.Cache, cache.HashCommon, cache.FieldAccountInfo, account)
}
