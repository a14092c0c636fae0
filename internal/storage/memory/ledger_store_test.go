package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

func TestLedgerStore_PutAndGet(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	rec := &domain.LedgerRecord{
		Kind:      domain.LedgerBlock,
		Key:       "19000000",
		Payload:   []byte(`{"hash":"0xabc"}`),
		CreatedAt: 1704067200000,
	}

	inserted, err := store.Put(ctx, rec)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !inserted {
		t.Error("First put should report inserted")
	}

	result, err := store.Get(ctx, domain.LedgerBlock, "19000000")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(result.Payload) != `{"hash":"0xabc"}` {
		t.Errorf("Payload mismatch: %s", result.Payload)
	}
}

func TestLedgerStore_ReplayKeepsFirstPayload(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	first := &domain.LedgerRecord{
		Kind: domain.LedgerTransaction, Key: "0xaaa", Payload: []byte(`{"v":1}`),
	}
	if inserted, err := store.Put(ctx, first); err != nil || !inserted {
		t.Fatalf("First put failed: inserted=%v err=%v", inserted, err)
	}

	replay := &domain.LedgerRecord{
		Kind: domain.LedgerTransaction, Key: "0xaaa", Payload: []byte(`{"v":2}`),
	}
	inserted, err := store.Put(ctx, replay)
	if err != nil {
		t.Fatalf("Replay put failed: %v", err)
	}
	if inserted {
		t.Error("Replay should not report inserted")
	}

	result, _ := store.Get(ctx, domain.LedgerTransaction, "0xaaa")
	if string(result.Payload) != `{"v":1}` {
		t.Errorf("First payload should be retained, got %s", result.Payload)
	}
}

func TestLedgerStore_KindsSeparate(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	if _, err := store.Put(ctx, &domain.LedgerRecord{Kind: domain.LedgerTransaction, Key: "42", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// A block with the same textual key lives in a different namespace
	if _, err := store.Get(ctx, domain.LedgerBlock, "42"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLedgerStore_InvalidInput(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	if _, err := store.Put(ctx, &domain.LedgerRecord{Kind: domain.LedgerBlock, Key: "abc"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for non-numeric block key, got %v", err)
	}
	if _, err := store.Put(ctx, &domain.LedgerRecord{Kind: "receipt", Key: "x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown kind, got %v", err)
	}
}
