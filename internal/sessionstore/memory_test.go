package sessionstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"surveychat/internal/model"
)

func newMemoryStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(StoreTypeMemory)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestMemoryStorePutAndGet(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	defer store.Close()

	now := time.Now()
	session := &model.Session{
		SessionID: "s1",
		OwnerID:   "u1",
		Messages: []model.Message{
			{Role: model.RoleSystem, Content: "sys", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if session.Version != 1 {
		t.Fatalf("expected version 1 after Put, got %d", session.Version)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.OwnerID != "u1" || len(got.Messages) != 1 {
		t.Fatalf("unexpected session: %+v", got)
	}

	absent, err := store.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get absent failed: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected nil for absent session, got %+v", absent)
	}
}

func TestMemoryStorePutDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	defer store.Close()

	if err := store.Put(ctx, &model.Session{SessionID: "s1", OwnerID: "u1"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	err := store.Put(ctx, &model.Session{SessionID: "s1", OwnerID: "u2"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemoryStoreConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	defer store.Close()

	if err := store.Put(ctx, &model.Session{SessionID: "s1", OwnerID: "u1"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	messages := []model.Message{
		{Role: model.RoleUser, Content: "hello", Timestamp: time.Now()},
	}
	if err := store.UpdateMessages(ctx, "s1", messages, time.Now(), 1); err != nil {
		t.Fatalf("UpdateMessages failed: %v", err)
	}

	// Replaying the same version must conflict.
	err := store.UpdateMessages(ctx, "s1", messages, time.Now(), 1)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Version != 2 || len(got.Messages) != 1 {
		t.Fatalf("unexpected session after update: %+v", got)
	}

	err = store.UpdateMessages(ctx, "missing", messages, time.Now(), 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreCountByOwner(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	defer store.Close()

	for _, tc := range []struct{ id, owner string }{
		{"s1", "u1"}, {"s2", "u1"}, {"s3", "u2"},
	} {
		if err := store.Put(ctx, &model.Session{SessionID: tc.id, OwnerID: tc.owner}); err != nil {
			t.Fatalf("Put %s failed: %v", tc.id, err)
		}
	}

	count, err := store.CountByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("CountByOwner failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 sessions for u1, got %d", count)
	}

	count, err = store.CountByOwner(ctx, "nobody")
	if err != nil {
		t.Fatalf("CountByOwner failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 sessions, got %d", count)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	defer store.Close()

	if err := store.Put(ctx, &model.Session{
		SessionID: "s1",
		OwnerID:   "u1",
		Messages:  []model.Message{{Role: model.RoleUser, Content: "original"}},
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Messages[0].Content = "mutated"
	got.OwnerID = "intruder"

	fresh, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fresh.Messages[0].Content != "original" || fresh.OwnerID != "u1" {
		t.Fatalf("stored record was mutated through a returned copy: %+v", fresh)
	}
}

func TestNewStoreInvalidType(t *testing.T) {
	if _, err := NewStore(StoreType("dynamo")); !errors.Is(err, ErrInvalidStoreType) {
		t.Fatalf("expected ErrInvalidStoreType, got %v", err)
	}
	if _, err := NewStore(StoreTypeRedis); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for redis without client, got %v", err)
	}
}
