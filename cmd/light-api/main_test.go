package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/light_api/internal/gas"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGasCommand_InvalidChainID(t *testing.T) {
	_, err := execute(t, "gas", "mainnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid chain id")
}

func TestGasCommand_UnsupportedChain(t *testing.T) {
	_, err := execute(t, "gas", "137")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gas.ErrUnsupportedChain))
}

func TestMigrateCommand_RejectsUnknownDirection(t *testing.T) {
	_, err := execute(t, "migrate", "sideways")
	require.Error(t, err)
}
