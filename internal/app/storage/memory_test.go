package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/R3E-Network/light_api/internal/app/domain/paymaster"
	"github.com/R3E-Network/light_api/internal/app/domain/wallet"
)

func TestMemoryPaymasters(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	created, err := store.CreatePaymaster(ctx, paymaster.Paymaster{ID: "pm-1", Address: "0xabc", ChainID: 1})
	if err != nil {
		t.Fatalf("create paymaster: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	if _, err := store.CreatePaymaster(ctx, paymaster.Paymaster{ID: "pm-1"}); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}

	got, err := store.GetPaymaster(ctx, "pm-1")
	if err != nil {
		t.Fatalf("get paymaster: %v", err)
	}
	if got.Address != "0xabc" || got.ChainID != 1 {
		t.Fatalf("unexpected paymaster %+v", got)
	}

	if _, err := store.GetPaymaster(ctx, "PM-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected exact-match lookup, got %v", err)
	}

	generated, err := store.CreatePaymaster(ctx, paymaster.Paymaster{Address: "0xdef", ChainID: 11155111})
	if err != nil {
		t.Fatalf("create paymaster: %v", err)
	}
	if generated.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestMemoryWallets(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	addr := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	if _, err := store.CreateWallet(ctx, wallet.Wallet{Address: addr, FactoryAddress: "0xf", Salt: "0x00"}); err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	got, err := store.GetWallet(ctx, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if got.Address != addr {
		t.Fatalf("expected stored checksum address, got %s", got.Address)
	}

	if _, err := store.GetWallet(ctx, "0x0000000000000000000000000000000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
