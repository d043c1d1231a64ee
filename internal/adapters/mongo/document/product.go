package document

import (
	"time"

	"github.com/rafaelleal24/catalog/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       int64              `bson:"price"`
	ImageURL    string             `bson:"imageUrl"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (doc ProductDocument) GetID() primitive.ObjectID {
	return doc.ID
}

func (ProductDocument) CollectionName() string {
	return ProductCollection
}

func (doc *ProductDocument) ToDomain() *domain.Product {
	return &domain.Product{
		ID:          domain.ID(doc.ID.Hex()),
		Name:        doc.Name,
		Description: doc.Description,
		Price:       domain.Amount(doc.Price),
		ImageURL:    doc.ImageURL,
		CreatedAt:   doc.CreatedAt,
	}
}

// ToProductDocument maps a product to a document with a freshly generated ID.
func ToProductDocument(p *domain.Product) *ProductDocument {
	return &ProductDocument{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Description: p.Description,
		Price:       int64(p.Price),
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}
