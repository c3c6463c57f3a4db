package storage

import (
	"context"
	"errors"

	"github.com/R3E-Network/light_api/internal/app/domain/paymaster"
	"github.com/R3E-Network/light_api/internal/app/domain/wallet"
)

// ErrNotFound is returned by stores when no record matches the lookup.
var ErrNotFound = errors.New("record not found")

// PaymasterStore persists paymaster registrations.
type PaymasterStore interface {
	CreatePaymaster(ctx context.Context, pm paymaster.Paymaster) (paymaster.Paymaster, error)
	GetPaymaster(ctx context.Context, id string) (paymaster.Paymaster, error)
}

// WalletStore persists counterfactual wallets.
type WalletStore interface {
	CreateWallet(ctx context.Context, w wallet.Wallet) (wallet.Wallet, error)
	GetWallet(ctx context.Context, address string) (wallet.Wallet, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}
