package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteCacheTestSuite struct {
	suite.Suite
	cache *SQLiteCache
	ctx   context.Context
}

func TestSQLiteCacheSuite(t *testing.T) {
	suite.Run(t, new(SQLiteCacheTestSuite))
}

func (s *SQLiteCacheTestSuite) SetupTest() {
	c, err := NewSQLite(":memory:")
	s.Require().NoError(err)
	s.cache = c
	s.ctx = context.Background()
}

func (s *SQLiteCacheTestSuite) TearDownTest() {
	s.Require().NoError(s.cache.Close())
}

func (s *SQLiteCacheTestSuite) TestMissingFieldIsNotAnError() {
	value, ok, err := s.cache.HGet(s.ctx, HashSymbols, LatestCandleField("BTCUSDT"))
	s.NoError(err)
	s.False(ok)
	s.Empty(value)
}

func (s *SQLiteCacheTestSuite) TestSetOverwritesField() {
	field := MarketSpreadField("BTCUSDT")
	s.Require().NoError(s.cache.HSet(s.ctx, HashSymbols, field, "0.01"))
	s.Require().NoError(s.cache.HSet(s.ctx, HashSymbols, field, "0.02"))

	value, ok, err := s.cache.HGet(s.ctx, HashSymbols, field)
	s.NoError(err)
	s.True(ok)
	s.Equal("0.02", value)
}

func (s *SQLiteCacheTestSuite) TestGetAllIsScopedToHash() {
	s.Require().NoError(s.cache.HSet(s.ctx, HashSymbols, "BTCUSDT-market-spread", "0.1"))
	s.Require().NoError(s.cache.HSet(s.ctx, HashSymbols, "ETHUSDT-market-spread", "0.2"))
	s.Require().NoError(s.cache.HSet(s.ctx, HashCommon, FieldAccountInfo, "{}"))

	all, err := s.cache.HGetAll(s.ctx, HashSymbols)
	s.NoError(err)
	s.Equal(map[string]string{
		"BTCUSDT-market-spread": "0.1",
		"ETHUSDT-market-spread": "0.2",
	}, all)
}

func (s *SQLiteCacheTestSuite) TestDelete() {
	s.Require().NoError(s.cache.HSet(s.ctx, HashCommon, FieldAccountInfo, "{}"))
	s.Require().NoError(s.cache.HDel(s.ctx, HashCommon, FieldAccountInfo))

	_, ok, err := s.cache.HGet(s.ctx, HashCommon, FieldAccountInfo)
	s.NoError(err)
	s.False(ok)
}

func TestNewSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	c, err := NewSQLite(path)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.HSet(context.Background(), HashCommon, FieldAccountInfo, `{"canTrade":true}`))
	value, ok, err := c.HGet(context.Background(), HashCommon, FieldAccountInfo)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"canTrade":true}`, value)
}

func (s *SQLiteCacheTestSuite) TestJSONHelpers() {
	type spread struct {
		Value float64 `json:"value"`
	}

	s.Require().NoError(SetJSON(s.ctx, s.cache, HashSymbols, "x", spread{Value: 0.25}))

	var got spread
	ok, err := GetJSON(s.ctx, s.cache, HashSymbols, "x", &got)
	s.NoError(err)
	s.True(ok)
	s.Equal(0.25, got.Value)

	ok, err = GetJSON(s.ctx, s.cache, HashSymbols, "missing", &got)
	s.NoError(err)
	s.False(ok)
}
