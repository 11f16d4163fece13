package bus

import (
	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/types"
)

type Assets interface {
	GetAsset(types.CurrencyID) *Asset
	AddIssuance(types.CurrencyID, *uint256.Int)
	SubIssuance(types.CurrencyID, *uint256.Int)
}

type Asset struct {
	Currency types.CurrencyID
	Symbol   string
	Enabled  bool
	Issuance *uint256.Int
}
