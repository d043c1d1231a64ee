package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rafaelleal24/catalog/internal/adapters/mongo/document"
	"github.com/rafaelleal24/catalog/internal/adapters/outbox"
	"github.com/rafaelleal24/catalog/internal/core/domain"
	"github.com/rafaelleal24/catalog/internal/core/port"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProductRepository struct {
	*BaseRepository[document.ProductDocument]
	db     *mongo.Database
	outbox outbox.Repository
}

// NewProductRepository returns the products repository. With a non-nil
// outbox every insert also records a product.created event in the same
// transaction, which requires a replica set.
func NewProductRepository(db *mongo.Database, outbox outbox.Repository) port.ProductPort {
	return &ProductRepository{
		BaseRepository: NewBaseRepository[document.ProductDocument](db),
		db:             db,
		outbox:         outbox,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	doc := document.ToProductDocument(product)

	if r.outbox == nil {
		if err := r.Insert(ctx, doc); err != nil {
			return err
		}
		product.ID = domain.ID(doc.ID.Hex())
		return nil
	}

	created := *product
	created.ID = domain.ID(doc.ID.Hex())
	eventData, err := json.Marshal(domain.NewProductCreatedEvent(&created))
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := r.Insert(sessCtx, doc); err != nil {
			return nil, err
		}

		entry := outbox.Entry{
			EventName:  domain.ProductCreatedEventName,
			EntityName: domain.ProductEntityName,
			EventData:  eventData,
		}
		if err := r.outbox.Insert(sessCtx, entry); err != nil {
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	product.ID = created.ID
	return nil
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	docs, err := r.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].ToDomain()
	}

	return products, nil
}
