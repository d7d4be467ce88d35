package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	HashSymbols = "trailing-trade-symbols"
	HashCommon  = "trailing-trade-common"

	FieldAccountInfo = "account-info"
)

// Cache is a two-level hash store: hash → field → value.
type Cache interface {
	HSet(ctx context.Context, hash, field, value string) error
	HGet(ctx context.Context, hash, field string) (string, bool, error)
	HGetAll(ctx context.Context, hash string) (map[string]string, error)
	HDel(ctx context.Context, hash, field string) error
}

func LatestCandleField(symbol string) string {
	return symbol + "-latest-candle"
}

func MarketSpreadField(symbol string) string {
	return symbol + "-market-spread"
}

// SetJSON stores v encoded as JSON.
func SetJSON(ctx context.Context, c Cache, hash, field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", hash, field, err)
	}
	return c.HSet(ctx, hash, field, string(data))
}

// GetJSON decodes the stored value into out. It reports false when the field is absent.
func GetJSON(ctx context.Context, c Cache, hash, field string, out any) (bool, error) {
	raw, ok, err := c.HGet(ctx, hash, field)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", hash, field, err)
	}
	return true, nil
}
