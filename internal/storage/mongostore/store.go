package mongostore

import (
	"context"
	"errors"
	"fmt"

	"trailingbot/internal/models"
	"trailingbot/internal/storage"

	"github.com/moznion/go-optional"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) DeleteCandles(ctx context.Context, kind models.CandleKind, symbol string) error {
	if _, err := s.collection(storage.CandleCollection(kind)).DeleteMany(ctx, bson.M{"key": symbol}); err != nil {
		return fmt.Errorf("delete %s for %s: %w", kind, symbol, err)
	}
	return nil
}

func candleFilter(c models.Candle) bson.M {
	return bson.M{"key": c.Key, "time": c.Time, "interval": c.Interval}
}

func (s *Store) UpsertCandles(ctx context.Context, kind models.CandleKind, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(candles))
	for _, c := range candles {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(candleFilter(c)).
			SetUpdate(bson.M{"$set": c}).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.collection(storage.CandleCollection(kind)).BulkWrite(ctx, writes, opts); err != nil {
		return fmt.Errorf("bulk upsert %d %s: %w", len(candles), kind, err)
	}
	return nil
}

func (s *Store) SaveCandle(ctx context.Context, kind models.CandleKind, candle models.Candle) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.collection(storage.CandleCollection(kind)).UpdateOne(ctx, candleFilter(candle), bson.M{"$set": candle}, opts)
	if err != nil {
		return fmt.Errorf("save %s for %s: %w", kind, candle.Key, err)
	}
	return nil
}

func (s *Store) GetGridTradeLastOrder(ctx context.Context, symbol string, side models.OrderSide) (models.OrderRecord, bool, error) {
	var doc gridTradeOrderDocument
	key := storage.GridTradeLastOrderKey(symbol, side)
	err := s.collection(storage.CollectionGridTradeOrder).FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.OrderRecord{}, false, nil
		}
		return models.OrderRecord{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	return doc.Order, true, nil
}

func (s *Store) UpdateGridTradeLastOrder(ctx context.Context, symbol string, side models.OrderSide, rec models.OrderRecord) error {
	key := storage.GridTradeLastOrderKey(symbol, side)
	doc := gridTradeOrderDocument{Key: key, Order: rec}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection(storage.CollectionGridTradeOrder).ReplaceOne(ctx, bson.M{"key": key}, doc, opts); err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetManualOrder(ctx context.Context, symbol string, orderID int64) (models.OrderRecord, bool, error) {
	var doc manualOrderDocument
	filter := bson.M{"symbol": symbol, "orderId": orderID}
	err := s.collection(storage.CollectionManualOrders).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.OrderRecord{}, false, nil
		}
		return models.OrderRecord{}, false, fmt.Errorf("get manual order %s/%d: %w", symbol, orderID, err)
	}
	return doc.Order, true, nil
}

func (s *Store) SaveManualOrder(ctx context.Context, symbol string, orderID int64, rec models.OrderRecord) error {
	filter := bson.M{"symbol": symbol, "orderId": orderID}
	doc := manualOrderDocument{Symbol: symbol, OrderID: orderID, Order: rec}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection(storage.CollectionManualOrders).ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("save manual order %s/%d: %w", symbol, orderID, err)
	}
	return nil
}

func (s *Store) SaveOverrideAction(ctx context.Context, symbol string, action models.OverrideAction, reason string) error {
	doc := overrideDocument{Key: symbol, Reason: reason, OverrideAction: action}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection(storage.CollectionOverride).ReplaceOne(ctx, bson.M{"key": symbol}, doc, opts); err != nil {
		return fmt.Errorf("save override for %s: %w", symbol, err)
	}
	return nil
}

func (s *Store) GetOverrideAction(ctx context.Context, symbol string) (optional.Option[models.OverrideAction], error) {
	var doc overrideDocument
	err := s.collection(storage.CollectionOverride).FindOne(ctx, bson.M{"key": symbol}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return optional.None[models.OverrideAction](), nil
		}
		return optional.None[models.OverrideAction](), fmt.Errorf("get override for %s: %w", symbol, err)
	}
	return optional.Some(doc.OverrideAction), nil
}

func (s *Store) RemoveOverrideAction(ctx context.Context, symbol string) error {
	if _, err := s.collection(storage.CollectionOverride).DeleteOne(ctx, bson.M{"key": symbol}); err != nil {
		return fmt.Errorf("remove override for %s: %w", symbol, err)
	}
	return nil
}

func (s *Store) GetLastBuyPrice(ctx context.Context, symbol string) (optional.Option[float64], error) {
	var doc lastBuyPriceDocument
	key := storage.LastBuyPriceKey(symbol)
	err := s.collection(storage.CollectionSymbols).FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return optional.None[float64](), nil
		}
		return optional.None[float64](), fmt.Errorf("get %s: %w", key, err)
	}
	return optional.Some(doc.LastBuyPrice), nil
}

func (s *Store) CountOpenTrades(ctx context.Context) (int, error) {
	filter := bson.M{
		"key":          bson.M{"$regex": "-last-buy-price$"},
		"lastBuyPrice": bson.M{"$gt": 0},
	}
	n, err := s.collection(storage.CollectionSymbols).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count open trades: %w", err)
	}
	return int(n), nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	opts := options.Replace().SetUpsert(true)
	doc := snapshotToDocument(snap)
	if _, err := s.collection(storage.CollectionSnapshots).ReplaceOne(ctx, bson.M{"symbol": snap.Symbol}, doc, opts); err != nil {
		return fmt.Errorf("save snapshot for %s: %w", snap.Symbol, err)
	}
	return nil
}

// ListSnapshots returns the last saved snapshot of every symbol.
func (s *Store) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	cur, err := s.collection(storage.CollectionSnapshots).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	var docs []snapshotDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}

	snaps := make([]models.Snapshot, 0, len(docs))
	for _, d := range docs {
		snaps = append(snaps, documentToSnapshot(d))
	}
	return snaps, nil
}
