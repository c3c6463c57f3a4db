// Package gas fetches per-chain gas price quotes and normalizes them into
// four speed tiers.
package gas

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GasEstimationParams is the EIP-1559 fee pair for one speed tier, in wei per gas.
type GasEstimationParams struct {
	MaxPriorityFeePerGas *hexutil.Big `json:"max_priority_fee_per_gas"`
	MaxFeePerGas         *hexutil.Big `json:"max_fee_per_gas"`
}

// GasEstimation holds the fee pair for every speed tier.
type GasEstimation struct {
	Low     GasEstimationParams `json:"low"`
	Average GasEstimationParams `json:"average"`
	High    GasEstimationParams `json:"high"`
	Instant GasEstimationParams `json:"instant"`
}

// newParams uses value for both fees. Each field gets its own big.Int.
func newParams(value uint64) GasEstimationParams {
	return GasEstimationParams{
		MaxPriorityFeePerGas: (*hexutil.Big)(new(big.Int).SetUint64(value)),
		MaxFeePerGas:         (*hexutil.Big)(new(big.Int).SetUint64(value)),
	}
}

// gasNowData is the four-tier quote returned by gasnow-style providers.
type gasNowData struct {
	Slow     uint64
	Standard uint64
	Fast     uint64
	Rapid    uint64
}

func (d gasNowData) estimation() *GasEstimation {
	return &GasEstimation{
		Low:     newParams(d.Slow),
		Average: newParams(d.Standard),
		High:    newParams(d.Fast),
		Instant: newParams(d.Rapid),
	}
}
