package cmd

import (
	"fmt"
	"os"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ParseAccount is for when using user input. It only accepts hex
// addresses, with or without the 0x prefix.
func ParseAccount(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses a raw integer token amount
func ParseAmount(s string) (*uint256.Int, error) {
	a, err := database.ParseAmount(s)
	if err != nil {
		return nil, err
	}
	return a.Int(), nil
}

func exitErr(err error) {
	fmt.Println(err.Error())
	os.Exit(1)
}
