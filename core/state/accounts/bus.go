package accounts

import (
	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/types"
)

type Bus struct {
	accounts *Accounts
}

func NewBus(accounts *Accounts) *Bus {
	return &Bus{accounts: accounts}
}

func (b *Bus) GetBalance(address types.Address, currency types.CurrencyID) *uint256.Int {
	return b.accounts.GetBalance(address, currency)
}

func (b *Bus) GetHeld(address types.Address, currency types.CurrencyID) *uint256.Int {
	return b.accounts.GetHeld(address, currency)
}

func (b *Bus) Release(address types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	return b.accounts.Release(address, currency, amount)
}

func (b *Bus) SetLock(address types.Address, id types.LockID, amount *uint256.Int) {
	b.accounts.SetLock(address, id, amount)
}

func (b *Bus) RemoveLock(address types.Address, id types.LockID) {
	b.accounts.RemoveLock(address, id)
}
