package bus

import (
	"math/big"

	"github.com/tidelabs/tidecore/core/types"
)

type Checker interface {
	AddBalance(types.CurrencyID, *big.Int)
	AddIssuance(types.CurrencyID, *big.Int)
}
