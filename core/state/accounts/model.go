package accounts

import (
	"sort"
	"sync"

	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/types"
)

type Model struct {
	Frozen   bool
	Balances []Balance
	Locks    []Lock

	address   types.Address
	markDirty func(types.Address)
	lock      sync.RWMutex
}

type Balance struct {
	Currency types.CurrencyID
	Free     *uint256.Int
	Held     *uint256.Int
}

type Lock struct {
	ID     types.LockID
	Amount *uint256.Int
}

func (model *Model) Address() types.Address {
	return model.address
}

func (model *Model) findBalance(currency types.CurrencyID) int {
	for i, balance := range model.Balances {
		if balance.Currency == currency {
			return i
		}
	}
	return -1
}

func (model *Model) getFree(currency types.CurrencyID) *uint256.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	if i := model.findBalance(currency); i != -1 {
		return new(uint256.Int).Set(model.Balances[i].Free)
	}
	return new(uint256.Int)
}

func (model *Model) getHeld(currency types.CurrencyID) *uint256.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	if i := model.findBalance(currency); i != -1 {
		return new(uint256.Int).Set(model.Balances[i].Held)
	}
	return new(uint256.Int)
}

func (model *Model) setBalance(currency types.CurrencyID, free, held *uint256.Int) {
	model.lock.Lock()
	defer model.lock.Unlock()

	i := model.findBalance(currency)
	if free.IsZero() && held.IsZero() {
		if i != -1 {
			model.Balances = append(model.Balances[:i], model.Balances[i+1:]...)
		}
	} else if i != -1 {
		model.Balances[i].Free = free
		model.Balances[i].Held = held
	} else {
		model.Balances = append(model.Balances, Balance{Currency: currency, Free: free, Held: held})
		sort.SliceStable(model.Balances, func(i, j int) bool {
			return model.Balances[i].Currency.Less(model.Balances[j].Currency)
		})
	}

	model.markDirty(model.address)
}

func (model *Model) balances() []Balance {
	model.lock.RLock()
	defer model.lock.RUnlock()

	list := make([]Balance, 0, len(model.Balances))
	for _, balance := range model.Balances {
		list = append(list, Balance{
			Currency: balance.Currency,
			Free:     new(uint256.Int).Set(balance.Free),
			Held:     new(uint256.Int).Set(balance.Held),
		})
	}
	return list
}

func (model *Model) maxLock() *uint256.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	max := new(uint256.Int)
	for _, lock := range model.Locks {
		if lock.Amount.Gt(max) {
			max.Set(lock.Amount)
		}
	}
	return max
}

func (model *Model) getLock(id types.LockID) *uint256.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	for _, lock := range model.Locks {
		if lock.ID == id {
			return new(uint256.Int).Set(lock.Amount)
		}
	}
	return nil
}

func (model *Model) setLock(id types.LockID, amount *uint256.Int) {
	model.lock.Lock()
	defer model.lock.Unlock()

	for i, lock := range model.Locks {
		if lock.ID == id {
			model.Locks[i].Amount = new(uint256.Int).Set(amount)
			model.markDirty(model.address)
			return
		}
	}

	model.Locks = append(model.Locks, Lock{ID: id, Amount: new(uint256.Int).Set(amount)})
	model.markDirty(model.address)
}

func (model *Model) removeLock(id types.LockID) {
	model.lock.Lock()
	defer model.lock.Unlock()

	for i, lock := range model.Locks {
		if lock.ID == id {
			model.Locks = append(model.Locks[:i], model.Locks[i+1:]...)
			model.markDirty(model.address)
			return
		}
	}
}

func (model *Model) isFrozen() bool {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.Frozen
}

func (model *Model) setFrozen(frozen bool) {
	model.lock.Lock()
	defer model.lock.Unlock()

	if model.Frozen != frozen {
		model.Frozen = frozen
		model.markDirty(model.address)
	}
}

func (model *Model) isEmpty() bool {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return !model.Frozen && len(model.Balances) == 0 && len(model.Locks) == 0
}
