package helpers

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// MaxAmount is the largest representable balance, 2^128 - 1
var MaxAmount = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// StringToAmount converts a decimal string to an amount, panics on empty strings and errors
func StringToAmount(s string) *uint256.Int {
	if s == "" {
		panic("string is empty")
	}

	amount, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}

	return amount
}

// ParseAmount converts a decimal string to an amount bounded by MaxAmount
func ParseAmount(s string) (*uint256.Int, error) {
	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		return nil, fmt.Errorf("cannot decode %s into amount", s)
	}

	if b.Sign() < 0 {
		return nil, fmt.Errorf("amount %s is negative", s)
	}

	amount, overflow := uint256.FromBig(b)
	if overflow || amount.Gt(MaxAmount) {
		return nil, fmt.Errorf("amount %s overflows 128 bits", s)
	}

	return amount, nil
}

// IsValidAmount verifies that string is a valid non-negative 128-bit integer
func IsValidAmount(s string) bool {
	if s == "" {
		return false
	}

	_, err := ParseAmount(s)
	return err == nil
}

// AmountToString renders an amount as a decimal string
func AmountToString(a *uint256.Int) string {
	if a == nil {
		return "0"
	}
	return a.ToBig().String()
}

// CheckedAdd returns a + b, false if the result exceeds MaxAmount
func CheckedAdd(a, b *uint256.Int) (*uint256.Int, bool) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || z.Gt(MaxAmount) {
		return nil, false
	}
	return z, true
}

// CheckedSub returns a - b, false on underflow
func CheckedSub(a, b *uint256.Int) (*uint256.Int, bool) {
	if a.Lt(b) {
		return nil, false
	}
	return new(uint256.Int).Sub(a, b), true
}

// CheckedMul returns a * b, false if the result exceeds MaxAmount
func CheckedMul(a, b *uint256.Int) (*uint256.Int, bool) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow || z.Gt(MaxAmount) {
		return nil, false
	}
	return z, true
}

// Min returns the smaller of a and b
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// Copy returns a copy of a, zero for nil
func Copy(a *uint256.Int) *uint256.Int {
	if a == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(a)
}
