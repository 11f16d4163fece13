package bus

import (
	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/types"
)

type Accounts interface {
	GetBalance(types.Address, types.CurrencyID) *uint256.Int
	GetHeld(types.Address, types.CurrencyID) *uint256.Int
	Release(types.Address, types.CurrencyID, *uint256.Int) *code.Error
	SetLock(types.Address, types.LockID, *uint256.Int)
	RemoveLock(types.Address, types.LockID)
}
