package outbox

import (
	"context"
	"time"
)

// Entry is an event recorded alongside a write, waiting to be published.
type Entry struct {
	ID         string
	EventName  string
	EntityName string
	EventData  []byte
	CreatedAt  time.Time
}

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

// Repository stores pending entries. Insert must honour a session context so
// entries commit together with the write that produced them.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	FetchPending(ctx context.Context, limit int) ([]Entry, error)
	Delete(ctx context.Context, id string) error
}
