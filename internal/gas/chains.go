package gas

import "sort"

const (
	ChainIDMainnet uint64 = 1
	ChainIDSepolia uint64 = 11155111
)

var defaultEndpoints = map[uint64]string{
	ChainIDMainnet: "https://beaconcha.in/api/v1/execution/gasnow",
	ChainIDSepolia: "https://sepolia.beaconcha.in/api/v1/execution/gasnow",
}

// EndpointFor returns the default provider URL for chainID.
func EndpointFor(chainID uint64) (string, error) {
	url, ok := defaultEndpoints[chainID]
	if !ok {
		return "", &UnsupportedChainError{ChainID: chainID}
	}
	return url, nil
}

// SupportedChains lists the chain ids with a default provider, ascending.
func SupportedChains() []uint64 {
	ids := make([]uint64, 0, len(defaultEndpoints))
	for id := range defaultEndpoints {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
