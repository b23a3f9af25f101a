// Package audit keeps a row-level trail of every processed import row in
// Mongo, outside the relational ledger: the raw payload as the file carried
// it, plus the outcome. It exists for dispute review, not for serving reads.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mg "collectra/internal/config/connections/mongo"
	"collectra/internal/ports"
)

const RowAuditCollection = "import_row_audit"

type RowStore struct {
	mg *mg.Mongo
}

func NewRowStore(m *mg.Mongo) *RowStore {
	return &RowStore{mg: m}
}

func (s *RowStore) Insert(ctx context.Context, item ports.RowAuditItem) error {
	if s.mg == nil || s.mg.Database == nil {
		return mongo.ErrClientDisconnected
	}

	doc := bson.D{
		{Key: "batch_id", Value: item.BatchID},
		{Key: "row_number", Value: item.RowNumber},
		{Key: "entity_type", Value: item.EntityType},
		{Key: "entity_id", Value: item.EntityID},
		{Key: "payload", Value: item.Payload},
		{Key: "status", Value: item.Status},
		{Key: "error", Value: item.Error},
		{Key: "created_at", Value: time.Now().UTC()},
	}

	_, err := s.mg.Database.Collection(RowAuditCollection).InsertOne(ctx, doc, options.InsertOne())
	return err
}

// ListByBatch returns the audit trail for one batch in row order.
func (s *RowStore) ListByBatch(ctx context.Context, batchID string) ([]ports.RowAuditItem, error) {
	if s.mg == nil || s.mg.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}

	opts := options.Find().SetSort(bson.D{{Key: "row_number", Value: 1}})
	cur, err := s.mg.Database.Collection(RowAuditCollection).Find(ctx, bson.M{"batch_id": batchID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]ports.RowAuditItem, 0)
	for cur.Next(ctx) {
		var doc struct {
			BatchID    string `bson:"batch_id"`
			RowNumber  int    `bson:"row_number"`
			EntityType string `bson:"entity_type"`
			EntityID   string `bson:"entity_id"`
			Payload    string `bson:"payload"`
			Status     string `bson:"status"`
			Error      string `bson:"error"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		items = append(items, ports.RowAuditItem{
			BatchID:    doc.BatchID,
			RowNumber:  doc.RowNumber,
			EntityType: doc.EntityType,
			EntityID:   doc.EntityID,
			Payload:    doc.Payload,
			Status:     doc.Status,
			Error:      doc.Error,
		})
	}
	return items, cur.Err()
}
