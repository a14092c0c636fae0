package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

func TestResolveIdentity_Idempotent(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	first, err := svc.ResolveIdentity(ctx, domain.EntityKindToken, "0xAbC123", 1, "FOO", "Foo Token")
	if err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}
	second, err := svc.ResolveIdentity(ctx, domain.EntityKindToken, "0xABC123", 1, "FOO", "Foo Token")
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}

	if first.EntityID != second.EntityID {
		t.Errorf("Resolving twice should yield the same id: %d vs %d", first.EntityID, second.EntityID)
	}
	if second.Address != "0xabc123" {
		t.Errorf("Address should be normalized, got %s", second.Address)
	}
}

func TestResolveIdentity_UnknownChain(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	_, err := svc.ResolveIdentity(ctx, domain.EntityKindToken, "0xabc", 999, "FOO", "Foo")
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unregistered chain, got %v", err)
	}
}

func TestResolveIdentity_Validation(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	cases := []struct {
		name    string
		kind    domain.EntityKind
		address string
		chainID int64
	}{
		{"empty_address", domain.EntityKindToken, "   ", 1},
		{"zero_chain", domain.EntityKindToken, "0xabc", 0},
		{"negative_chain", domain.EntityKindToken, "0xabc", -5},
		{"unknown_kind", "pool", "0xabc", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ResolveIdentity(ctx, tc.kind, tc.address, tc.chainID, "S", "N")
			if !errors.Is(err, storage.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestResolveIdentity_KindsSeparate(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	token, err := svc.ResolveIdentity(ctx, domain.EntityKindToken, "0xboth", 1, "TOK", "Token")
	if err != nil {
		t.Fatalf("Token resolve failed: %v", err)
	}
	nft, err := svc.ResolveIdentity(ctx, domain.EntityKindNFT, "0xboth", 1, "COLL", "Collection")
	if err != nil {
		t.Fatalf("NFT resolve failed: %v", err)
	}
	if token.EntityID == nft.EntityID {
		t.Error("Token and NFT maps should assign independent identities")
	}
}

func TestAddChain_Idempotent(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	// Chain 1 is already registered by the test harness
	if err := svc.AddChain(ctx, 1, "ethereum"); err != nil {
		t.Fatalf("Re-adding a known chain should be a no-op, got %v", err)
	}

	if err := svc.AddChain(ctx, 137, "polygon"); err != nil {
		t.Fatalf("AddChain failed: %v", err)
	}
	chains, err := svc.ListChains(ctx)
	if err != nil {
		t.Fatalf("ListChains failed: %v", err)
	}
	if len(chains) != 2 {
		t.Errorf("Expected 2 chains, got %d", len(chains))
	}
}
