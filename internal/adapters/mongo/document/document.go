package document

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	ProductCollection = "products"
	OutboxCollection  = "outbox"
)

// Document is a stored record. CollectionName must work on the zero value.
type Document interface {
	GetID() primitive.ObjectID
	CollectionName() string
}
