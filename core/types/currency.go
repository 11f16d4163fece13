package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// CurrencyKind tags the CurrencyID union
type CurrencyKind uint8

const (
	CurrencyNative CurrencyKind = iota
	CurrencyWrapped
)

const (
	nativeText  = "native"
	wrappedText = "wrapped:"
)

// CurrencyID identifies either the native token or a wrapped asset
type CurrencyID struct {
	Kind    CurrencyKind
	AssetID uint32
}

// NativeCurrency returns the id of the chain token
func NativeCurrency() CurrencyID {
	return CurrencyID{Kind: CurrencyNative}
}

// WrappedCurrency returns the id of a wrapped asset
func WrappedCurrency(id uint32) CurrencyID {
	return CurrencyID{Kind: CurrencyWrapped, AssetID: id}
}

func (c CurrencyID) IsNative() bool {
	return c.Kind == CurrencyNative
}

func (c CurrencyID) IsWrapped() bool {
	return c.Kind == CurrencyWrapped
}

// Valid reports whether the tag is known and the native variant carries no asset id
func (c CurrencyID) Valid() bool {
	switch c.Kind {
	case CurrencyNative:
		return c.AssetID == 0
	case CurrencyWrapped:
		return true
	}
	return false
}

// Bytes returns the 5-byte storage key form: tag followed by big-endian asset id
func (c CurrencyID) Bytes() []byte {
	b := make([]byte, 5)
	b[0] = byte(c.Kind)
	binary.BigEndian.PutUint32(b[1:], c.AssetID)
	return b
}

// CurrencyFromBytes is the inverse of CurrencyID.Bytes
func CurrencyFromBytes(b []byte) CurrencyID {
	if len(b) < 5 {
		return CurrencyID{}
	}
	return CurrencyID{Kind: CurrencyKind(b[0]), AssetID: binary.BigEndian.Uint32(b[1:5])}
}

// Less orders native first, then wrapped assets by id
func (c CurrencyID) Less(other CurrencyID) bool {
	if c.Kind != other.Kind {
		return c.Kind < other.Kind
	}
	return c.AssetID < other.AssetID
}

func (c CurrencyID) String() string {
	if c.IsNative() {
		return nativeText
	}
	return wrappedText + strconv.FormatUint(uint64(c.AssetID), 10)
}

// ParseCurrencyID parses "native" or "wrapped:<id>"
func ParseCurrencyID(s string) (CurrencyID, error) {
	if s == nativeText {
		return NativeCurrency(), nil
	}
	if !strings.HasPrefix(s, wrappedText) {
		return CurrencyID{}, fmt.Errorf("unknown currency %q", s)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(s, wrappedText), 10, 32)
	if err != nil {
		return CurrencyID{}, fmt.Errorf("invalid wrapped asset id in %q: %v", s, err)
	}
	return WrappedCurrency(uint32(id)), nil
}

func (c CurrencyID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CurrencyID) UnmarshalText(input []byte) error {
	parsed, err := ParseCurrencyID(string(input))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
