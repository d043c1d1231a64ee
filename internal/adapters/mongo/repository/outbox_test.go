package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/rafaelleal24/catalog/internal/adapters/mongo/repository"
	"github.com/rafaelleal24/catalog/internal/adapters/outbox"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
)

func TestOutboxRepository_Insert(t *testing.T) {
	freshDB := testClient.Database("test_outbox_insert")
	repo := repository.NewOutboxRepository(freshDB)
	ctx := context.Background()

	t.Run("inserts entry successfully", func(t *testing.T) {
		entry := outbox.Entry{
			EventName:  "product.created",
			EntityName: "product",
			EventData:  []byte(`{"product_id":"123"}`),
		}

		err := repo.Insert(ctx, entry)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestOutboxRepository_FetchPending(t *testing.T) {
	freshDB := testClient.Database("test_outbox_fetch")
	repo := repository.NewOutboxRepository(freshDB)
	ctx := context.Background()

	t.Run("returns empty when no entries", func(t *testing.T) {
		entries, err := repo.FetchPending(ctx, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected 0 entries, got %d", len(entries))
		}
	})

	t.Run("fetches inserted entries oldest first", func(t *testing.T) {
		_ = repo.Insert(ctx, outbox.Entry{EventName: "evt.1", EntityName: "product", EventData: []byte(`{"n":1}`)})
		_ = repo.Insert(ctx, outbox.Entry{EventName: "evt.2", EntityName: "product", EventData: []byte(`{"n":2}`)})

		entries, err := repo.FetchPending(ctx, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for i, e := range entries {
			if e.ID == "" {
				t.Fatalf("entry[%d] has empty ID", i)
			}
		}
		if entries[0].EventName != "evt.1" || string(entries[0].EventData) != `{"n":1}` {
			t.Fatalf("expected evt.1 first, got %+v", entries[0])
		}
	})

	t.Run("keeps explicit created_at", func(t *testing.T) {
		occurred := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		_ = repo.Insert(ctx, outbox.Entry{EventName: "evt.0", EntityName: "product", EventData: []byte(`{}`), CreatedAt: occurred})

		entries, err := repo.FetchPending(ctx, 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 1 || entries[0].EventName != "evt.0" {
			t.Fatalf("expected evt.0 first, got %+v", entries)
		}
		if !entries[0].CreatedAt.Equal(occurred) {
			t.Fatalf("expected created_at %v, got %v", occurred, entries[0].CreatedAt)
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		entries, err := repo.FetchPending(ctx, 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry (limit=1), got %d", len(entries))
		}
	})
}

func TestOutboxRepository_Delete(t *testing.T) {
	freshDB := testClient.Database("test_outbox_delete")
	repo := repository.NewOutboxRepository(freshDB)
	ctx := context.Background()

	t.Run("deletes entry by ID", func(t *testing.T) {
		_ = repo.Insert(ctx, outbox.Entry{EventName: "evt.del", EntityName: "product", EventData: []byte(`{}`)})

		entries, _ := repo.FetchPending(ctx, 10)
		if len(entries) == 0 {
			t.Fatal("setup: expected at least 1 entry")
		}

		if err := repo.Delete(ctx, entries[0].ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		remaining, _ := repo.FetchPending(ctx, 10)
		if len(remaining) != 0 {
			t.Fatalf("expected 0 entries after delete, got %d", len(remaining))
		}
	})

	t.Run("returns not found for missing entry", func(t *testing.T) {
		err := repo.Delete(ctx, "aabbccddee112233aabbccdd")
		if !serviceerrors.IsOfKind(err, serviceerrors.KindNotFound) {
			t.Fatalf("expected KindNotFound, got %v", err)
		}
	})

	t.Run("returns error for invalid ID", func(t *testing.T) {
		err := repo.Delete(ctx, "bad-id")
		if !serviceerrors.IsOfKind(err, serviceerrors.KindInvalidRequest) {
			t.Fatalf("expected KindInvalidRequest, got %v", err)
		}
	})
}
