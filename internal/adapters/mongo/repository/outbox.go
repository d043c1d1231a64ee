package repository

import (
	"context"
	"time"

	"github.com/rafaelleal24/catalog/internal/adapters/mongo/document"
	"github.com/rafaelleal24/catalog/internal/adapters/outbox"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OutboxRepository struct {
	*BaseRepository[document.OutboxDocument]
}

func NewOutboxRepository(db *mongo.Database) outbox.Repository {
	return &OutboxRepository{
		BaseRepository: NewBaseRepository[document.OutboxDocument](db),
	}
}

// Insert records an entry; pass a session context to join the caller's
// transaction.
func (r *OutboxRepository) Insert(ctx context.Context, entry outbox.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return r.BaseRepository.Insert(ctx, &document.OutboxDocument{
		EventName:  entry.EventName,
		EntityName: entry.EntityName,
		EventData:  string(entry.EventData),
		CreatedAt:  createdAt,
	})
}

// FetchPending returns the oldest entries first.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]outbox.Entry, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	docs, err := r.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	entries := make([]outbox.Entry, len(docs))
	for i, doc := range docs {
		entries[i] = outbox.Entry{
			ID:         doc.ID.Hex(),
			EventName:  doc.EventName,
			EntityName: doc.EntityName,
			EventData:  []byte(doc.EventData),
			CreatedAt:  doc.CreatedAt,
		}
	}

	return entries, nil
}

func (r *OutboxRepository) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}
