package loghelp_test

import (
	"testing"

	. "github.com/FactomWyomingEntity/prosper-stake/loghelp"
	"github.com/stretchr/testify/require"
)

func TestShortenRepoFilePath(t *testing.T) {
	require := require.New(t)

	require.Equal("prosper-stake/accounting/ledger.go",
		ShortenRepoFilePath("/home/billy/go/src/github.com/FactomWyomingEntity/prosper-stake/accounting/ledger.go", "", 0))
	require.Equal("Prosper-Stake/main.go",
		ShortenRepoFilePath("/src/Prosper-Stake/main.go", "", 0))

	// Too deep to find the repo dir
	require.Equal("/a/b/c/d/e/f/g/h.go",
		ShortenRepoFilePath("/a/b/c/d/e/f/g/h.go", "", 0))
}
