package types

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the length of an account id in bytes
const AddressLength = 32

// Address is an on-chain account id
type Address [AddressLength]byte

// BytesToAddress converts bytes to Address, left-cropping when b is longer than AddressLength
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress parses a 0x-prefixed hex string, returning the zero address on malformed input
func HexToAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		return Address{}
	}
	return a
}

// ParseAddress parses a 0x-prefixed hex string into an Address
func ParseAddress(s string) (Address, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("address should be %d bytes, got %d", AddressLength, len(b))
	}
	return BytesToAddress(b), nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string {
	return hexutil.Encode(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Compare(a2 Address) int {
	return bytes.Compare(a.Bytes(), a2.Bytes())
}

// SetBytes sets the address to the value of b
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
