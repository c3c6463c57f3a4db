package gas

import (
	"errors"
	"fmt"
)

// ErrUnsupportedChain is matched by every UnsupportedChainError.
var ErrUnsupportedChain = errors.New("unsupported chain ID")

// UnsupportedChainError is returned for a chain id with no configured provider.
type UnsupportedChainError struct {
	ChainID uint64
}

func (e *UnsupportedChainError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnsupportedChain, e.ChainID)
}

func (e *UnsupportedChainError) Is(target error) bool {
	return target == ErrUnsupportedChain
}

// RequestError wraps a failed provider call: transport error, bad status or
// an undecodable body.
type RequestError struct {
	ChainID    uint64
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gas request for chain %d to %s failed with status %d: %v", e.ChainID, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gas request for chain %d to %s failed: %v", e.ChainID, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
