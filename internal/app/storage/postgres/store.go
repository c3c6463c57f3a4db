package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/R3E-Network/light_api/internal/app/domain/paymaster"
	"github.com/R3E-Network/light_api/internal/app/domain/wallet"
	"github.com/R3E-Network/light_api/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var (
	_ storage.PaymasterStore = (*Store)(nil)
	_ storage.WalletStore    = (*Store)(nil)
	_ storage.Pinger         = (*Store)(nil)
)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// PingContext checks the database connection.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- PaymasterStore ---------------------------------------------------------

func (s *Store) CreatePaymaster(ctx context.Context, pm paymaster.Paymaster) (paymaster.Paymaster, error) {
	if pm.ID == "" {
		pm.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	pm.CreatedAt = now
	pm.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO paymasters (id, address, chain_id, created_at, updated_at)
		VALUES (:id, :address, :chain_id, :created_at, :updated_at)
	`, pm)
	if err != nil {
		return paymaster.Paymaster{}, fmt.Errorf("insert paymaster %s: %w", pm.ID, err)
	}
	return pm, nil
}

func (s *Store) GetPaymaster(ctx context.Context, id string) (paymaster.Paymaster, error) {
	var pm paymaster.Paymaster
	err := s.db.GetContext(ctx, &pm, `
		SELECT id, address, chain_id, created_at, updated_at
		FROM paymasters
		WHERE id = $1
	`, id)
	if err != nil {
		return paymaster.Paymaster{}, mapNotFound(err)
	}
	return pm, nil
}

// --- WalletStore ------------------------------------------------------------

func (s *Store) CreateWallet(ctx context.Context, w wallet.Wallet) (wallet.Wallet, error) {
	w.CreatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO wallets (address, factory_address, salt, created_at)
		VALUES (:address, :factory_address, :salt, :created_at)
	`, w)
	if err != nil {
		return wallet.Wallet{}, fmt.Errorf("insert wallet %s: %w", w.Address, err)
	}
	return w, nil
}

func (s *Store) GetWallet(ctx context.Context, address string) (wallet.Wallet, error) {
	var w wallet.Wallet
	err := s.db.GetContext(ctx, &w, `
		SELECT address, factory_address, salt, created_at
		FROM wallets
		WHERE lower(address) = lower($1)
	`, address)
	if err != nil {
		return wallet.Wallet{}, mapNotFound(err)
	}
	return w, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}
