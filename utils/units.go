package utils

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const EtherDecimals = 18

var (
	ErrNegativeAmount  = errors.New("amount can't be negative")
	ErrTooManyDecimals = errors.New("fractional component exceeds decimals")
)

// ParseUnits converts a human readable decimal amount into base units.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("can't parse amount %q: %w", value, err)
	}
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, ErrTooManyDecimals
	}
	return shifted.BigInt(), nil
}

func ParseEther(value string) (*big.Int, error) {
	return ParseUnits(value, EtherDecimals)
}

// FormatUnits converts base units into a decimal string.
func FormatUnits(value *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}
