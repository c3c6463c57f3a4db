package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/R3E-Network/light_api/internal/app/domain/paymaster"
	"github.com/R3E-Network/light_api/internal/app/domain/wallet"
)

// Memory is a thread-safe in-memory store used by tests and the
// database-less development mode.
type Memory struct {
	mu         sync.RWMutex
	paymasters map[string]paymaster.Paymaster
	wallets    map[string]wallet.Wallet
}

var (
	_ PaymasterStore = (*Memory)(nil)
	_ WalletStore    = (*Memory)(nil)
	_ Pinger         = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		paymasters: make(map[string]paymaster.Paymaster),
		wallets:    make(map[string]wallet.Wallet),
	}
}

// PingContext always succeeds.
func (m *Memory) PingContext(context.Context) error {
	return nil
}

func (m *Memory) CreatePaymaster(_ context.Context, pm paymaster.Paymaster) (paymaster.Paymaster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pm.ID == "" {
		pm.ID = uuid.NewString()
	} else if _, exists := m.paymasters[pm.ID]; exists {
		return paymaster.Paymaster{}, fmt.Errorf("paymaster %s already exists", pm.ID)
	}

	now := time.Now().UTC()
	pm.CreatedAt = now
	pm.UpdatedAt = now

	m.paymasters[pm.ID] = pm
	return pm, nil
}

func (m *Memory) GetPaymaster(_ context.Context, id string) (paymaster.Paymaster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pm, ok := m.paymasters[id]
	if !ok {
		return paymaster.Paymaster{}, ErrNotFound
	}
	return pm, nil
}

func (m *Memory) CreateWallet(_ context.Context, w wallet.Wallet) (wallet.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(w.Address)
	if _, exists := m.wallets[key]; exists {
		return wallet.Wallet{}, fmt.Errorf("wallet %s already exists", w.Address)
	}
	w.CreatedAt = time.Now().UTC()

	m.wallets[key] = w
	return w, nil
}

func (m *Memory) GetWallet(_ context.Context, address string) (wallet.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.wallets[strings.ToLower(address)]
	if !ok {
		return wallet.Wallet{}, ErrNotFound
	}
	return w, nil
}
