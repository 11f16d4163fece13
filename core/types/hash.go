package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// HashLength is the expected length of the hash
const HashLength = 32

// Hash represents the 32 byte keccak-256 hash of arbitrary data
type Hash [HashLength]byte

// BytesToHash sets b to hash, left-cropping when b is longer than HashLength
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash parses a 0x-prefixed hex string into a Hash
func HexToHash(s string) (Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("hash should be %d bytes, got %d", HashLength, len(b))
	}
	return BytesToHash(b), nil
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(input []byte) error {
	parsed, err := HexToHash(string(input))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Keccak256 calculates the keccak-256 digest of the concatenated input
func Keccak256(data ...[]byte) Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}

	var h Hash
	d.Sum(h[:0])
	return h
}

// RlpHash encodes x with rlp and hashes the result
func RlpHash(x interface{}) Hash {
	b, err := rlp.EncodeToBytes(x)
	if err != nil {
		panic(err)
	}
	return Keccak256(b)
}
