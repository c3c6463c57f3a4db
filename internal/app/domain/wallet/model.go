package wallet

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Wallet is a counterfactual smart account derived from a factory and salt.
type Wallet struct {
	Address        string    `db:"address"`
	FactoryAddress string    `db:"factory_address"`
	Salt           string    `db:"salt"`
	CreatedAt      time.Time `db:"created_at"`
}

// Public is the API representation of a wallet.
type Public struct {
	Address        string `json:"address"`
	FactoryAddress string `json:"factory_address"`
	Salt           string `json:"salt"`
}

// Public strips storage bookkeeping from w.
func (w Wallet) Public() Public {
	return Public{
		Address:        w.Address,
		FactoryAddress: w.FactoryAddress,
		Salt:           w.Salt,
	}
}

// NormalizeAddress returns the EIP-55 checksum form of a hex address.
// ok is false when raw is not a 20-byte hex address.
func NormalizeAddress(raw string) (string, bool) {
	if !common.IsHexAddress(raw) {
		return "", false
	}
	return common.HexToAddress(raw).Hex(), true
}
