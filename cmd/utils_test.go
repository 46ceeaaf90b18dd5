package cmd_test

import (
	"testing"

	. "github.com/FactomWyomingEntity/prosper-stake/cmd"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestParseAccount(t *testing.T) {
	require := require.New(t)

	a, err := ParseAccount("0x2000000000000000000000000000000000000001")
	require.NoError(err)
	require.Equal(common.HexToAddress("0x2000000000000000000000000000000000000001"), a)

	a, err = ParseAccount("2000000000000000000000000000000000000001")
	require.NoError(err)
	require.Equal(common.HexToAddress("0x2000000000000000000000000000000000000001"), a)

	_, err = ParseAccount("FA2jK2HcLnRdS94dEcU27rF3meoJfpUcZPSinpb7AwQvPRY6RL1Q")
	require.Error(err)
}

func TestParseAmount(t *testing.T) {
	require := require.New(t)

	a, err := ParseAmount("100000000")
	require.NoError(err)
	require.Equal(uint64(100000000), a.Uint64())

	_, err = ParseAmount("-1")
	require.Error(err)
	_, err = ParseAmount("1.5")
	require.Error(err)
}
