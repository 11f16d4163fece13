package accounts

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

const mainPrefix = byte('a')

type RAccounts interface {
	Export(state *types.AppState)
	GetBalance(address types.Address, currency types.CurrencyID) *uint256.Int
	GetHeld(address types.Address, currency types.CurrencyID) *uint256.Int
	GetLocked(address types.Address) *uint256.Int
	GetLock(address types.Address, id types.LockID) *uint256.Int
	GetSpendable(address types.Address, currency types.CurrencyID) *uint256.Int
	GetBalances(address types.Address) []Balance
	IsFrozen(address types.Address) bool
	CheckTransfer(from, to types.Address, currency types.CurrencyID, amount *uint256.Int, held bool) *code.Error
}

// Accounts is the currency ledger: free and held balances per currency,
// named locks on the native balance and the frozen flag.
//
// Every mutation validates before it touches the model and returns a *code.Error,
// balance changes are reported to the checker and issuance changes to the asset registry.
type Accounts struct {
	list  map[types.Address]*Model
	dirty map[types.Address]struct{}

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewAccounts(stateBus *bus.Bus, db *iavl.ImmutableTree) *Accounts {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	accounts := &Accounts{db: immutableTree, bus: stateBus, list: map[types.Address]*Model{}, dirty: map[types.Address]struct{}{}}
	accounts.bus.SetAccounts(NewBus(accounts))

	return accounts
}

func (a *Accounts) immutableTree() *iavl.ImmutableTree {
	db := a.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (a *Accounts) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	a.db.Store(immutableTree)
}

func (a *Accounts) Commit(db *iavl.MutableTree) error {
	for _, address := range a.getOrderedDirtyAccounts() {
		account := a.getFromMap(address)
		a.lock.Lock()
		delete(a.dirty, address)
		a.lock.Unlock()

		path := getPath(address)
		if account.isEmpty() {
			db.Remove(path)
			continue
		}

		account.lock.RLock()
		data, err := rlp.EncodeToBytes(account)
		account.lock.RUnlock()
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", address.String(), err)
		}

		db.Set(path, data)
	}

	return nil
}

func (a *Accounts) getOrderedDirtyAccounts() []types.Address {
	a.lock.RLock()
	keys := make([]types.Address, 0, len(a.dirty))
	for k := range a.dirty {
		keys = append(keys, k)
	}
	a.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func (a *Accounts) GetBalance(address types.Address, currency types.CurrencyID) *uint256.Int {
	account := a.get(address)
	if account == nil {
		return new(uint256.Int)
	}
	return account.getFree(currency)
}

func (a *Accounts) GetHeld(address types.Address, currency types.CurrencyID) *uint256.Int {
	account := a.get(address)
	if account == nil {
		return new(uint256.Int)
	}
	return account.getHeld(currency)
}

// GetLocked returns the native amount frozen by locks, the largest lock wins
func (a *Accounts) GetLocked(address types.Address) *uint256.Int {
	account := a.get(address)
	if account == nil {
		return new(uint256.Int)
	}
	return account.maxLock()
}

// GetLock returns the amount of the named lock, nil when there is no such lock
func (a *Accounts) GetLock(address types.Address, id types.LockID) *uint256.Int {
	account := a.get(address)
	if account == nil {
		return nil
	}
	return account.getLock(id)
}

// GetSpendable returns the free balance minus locks for native, the free balance otherwise
func (a *Accounts) GetSpendable(address types.Address, currency types.CurrencyID) *uint256.Int {
	account := a.get(address)
	if account == nil {
		return new(uint256.Int)
	}
	return spendable(account, currency)
}

func spendable(account *Model, currency types.CurrencyID) *uint256.Int {
	free := account.getFree(currency)
	if !currency.IsNative() {
		return free
	}
	available, ok := helpers.CheckedSub(free, account.maxLock())
	if !ok {
		return new(uint256.Int)
	}
	return available
}

func (a *Accounts) GetBalances(address types.Address) []Balance {
	account := a.get(address)
	if account == nil {
		return nil
	}
	return account.balances()
}

func (a *Accounts) IsFrozen(address types.Address) bool {
	account := a.get(address)
	if account == nil {
		return false
	}
	return account.isFrozen()
}

func (a *Accounts) SetFrozen(address types.Address, frozen bool) {
	a.getOrNew(address).setFrozen(frozen)
}

func (a *Accounts) checkAsset(currency types.CurrencyID) (*bus.Asset, *code.Error) {
	asset := a.bus.Assets().GetAsset(currency)
	if asset == nil {
		return nil, code.NewError(code.AssetNotExists, fmt.Sprintf("asset %s not exists", currency), code.NewAssetNotExists(currency.String()))
	}
	return asset, nil
}

func (a *Accounts) checkSpendable(account *Model, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	if account.isFrozen() {
		return code.NewError(code.AccountFrozen, fmt.Sprintf("account %s is frozen", account.address), code.NewAccountFrozen(account.address.String()))
	}

	if spendable(account, currency).Lt(amount) {
		if account.getFree(currency).Lt(amount) {
			return code.NewError(code.InsufficientFunds, fmt.Sprintf("insufficient funds for sender account: %s. Wanted %s %s", account.address, helpers.AmountToString(amount), currency),
				code.NewInsufficientFunds(account.address.String(), helpers.AmountToString(amount), currency.String()))
		}
		return code.NewError(code.LiquidityRestricts, fmt.Sprintf("account %s liquidity restrictions prevent withdrawal of %s %s", account.address, helpers.AmountToString(amount), currency),
			code.NewLiquidityRestricts(account.address.String(), helpers.AmountToString(amount), currency.String()))
	}

	return nil
}

func checkHeld(account *Model, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	if account.getHeld(currency).Lt(amount) {
		return code.NewError(code.InsufficientHeld, fmt.Sprintf("held balance of %s is not sufficient. Wanted %s %s", account.address, helpers.AmountToString(amount), currency),
			code.NewInsufficientHeld(account.address.String(), helpers.AmountToString(amount), currency.String()))
	}
	return nil
}

func overflow(address types.Address, currency types.CurrencyID) *code.Error {
	return code.NewError(code.AmountOverflow, fmt.Sprintf("balance of %s overflows for %s", currency, address), code.NewAmountOverflow(currency.String(), address.String()))
}

// Mint creates amount of currency on the free balance of address
func (a *Accounts) Mint(address types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	asset, err := a.checkAsset(currency)
	if err != nil {
		return err
	}
	if _, ok := helpers.CheckedAdd(asset.Issuance, amount); !ok {
		return overflow(address, currency)
	}

	account := a.getOrNew(address)
	free, ok := helpers.CheckedAdd(account.getFree(currency), amount)
	if !ok {
		return overflow(address, currency)
	}

	account.setBalance(currency, free, account.getHeld(currency))
	a.bus.Assets().AddIssuance(currency, amount)
	a.bus.Checker().AddBalance(currency, amount.ToBig())

	return nil
}

// Burn destroys amount of currency from the spendable balance of address
func (a *Accounts) Burn(address types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	if _, err := a.checkAsset(currency); err != nil {
		return err
	}

	account := a.getOrNew(address)
	if err := a.checkSpendable(account, currency, amount); err != nil {
		return err
	}

	free := account.getFree(currency)
	account.setBalance(currency, free.Sub(free, amount), account.getHeld(currency))
	a.bus.Assets().SubIssuance(currency, amount)
	a.bus.Checker().AddBalance(currency, new(big.Int).Neg(amount.ToBig()))

	return nil
}

// BurnHeld destroys amount of currency from the held balance of address
func (a *Accounts) BurnHeld(address types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	if _, err := a.checkAsset(currency); err != nil {
		return err
	}

	account := a.getOrNew(address)
	if err := checkHeld(account, currency, amount); err != nil {
		return err
	}

	held := account.getHeld(currency)
	account.setBalance(currency, account.getFree(currency), held.Sub(held, amount))
	a.bus.Assets().SubIssuance(currency, amount)
	a.bus.Checker().AddBalance(currency, new(big.Int).Neg(amount.ToBig()))

	return nil
}

// Hold moves amount from the spendable balance to the held balance
func (a *Accounts) Hold(address types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	if _, err := a.checkAsset(currency); err != nil {
		return err
	}

	account := a.getOrNew(address)
	if err := a.checkSpendable(account, currency, amount); err != nil {
		return err
	}
	held, ok := helpers.CheckedAdd(account.getHeld(currency), amount)
	if !ok {
		return overflow(address, currency)
	}

	free := account.getFree(currency)
	account.setBalance(currency, free.Sub(free, amount), held)

	return nil
}

// Release moves amount from the held balance back to the free balance
func (a *Accounts) Release(address types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	account := a.getOrNew(address)
	if err := checkHeld(account, currency, amount); err != nil {
		return err
	}
	free, ok := helpers.CheckedAdd(account.getFree(currency), amount)
	if !ok {
		return overflow(address, currency)
	}

	held := account.getHeld(currency)
	account.setBalance(currency, free, held.Sub(held, amount))

	return nil
}

// Transfer moves amount from the spendable balance of from to the free balance of to
func (a *Accounts) Transfer(from, to types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	if _, err := a.checkAsset(currency); err != nil {
		return err
	}

	sender := a.getOrNew(from)
	if err := a.checkSpendable(sender, currency, amount); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	recipient := a.getOrNew(to)
	received, ok := helpers.CheckedAdd(recipient.getFree(currency), amount)
	if !ok {
		return overflow(to, currency)
	}

	free := sender.getFree(currency)
	sender.setBalance(currency, free.Sub(free, amount), sender.getHeld(currency))
	recipient.setBalance(currency, received, recipient.getHeld(currency))

	value := amount.ToBig()
	a.bus.Checker().AddBalance(currency, new(big.Int).Neg(value))
	a.bus.Checker().AddBalance(currency, value)

	return nil
}

// TransferHeld moves amount from the held balance of from to the free balance of to
func (a *Accounts) TransferHeld(from, to types.Address, currency types.CurrencyID, amount *uint256.Int) *code.Error {
	sender := a.getOrNew(from)
	if err := checkHeld(sender, currency, amount); err != nil {
		return err
	}

	if from == to {
		return a.Release(from, currency, amount)
	}

	recipient := a.getOrNew(to)
	received, ok := helpers.CheckedAdd(recipient.getFree(currency), amount)
	if !ok {
		return overflow(to, currency)
	}

	held := sender.getHeld(currency)
	sender.setBalance(currency, sender.getFree(currency), held.Sub(held, amount))
	recipient.setBalance(currency, received, recipient.getHeld(currency))

	value := amount.ToBig()
	a.bus.Checker().AddBalance(currency, new(big.Int).Neg(value))
	a.bus.Checker().AddBalance(currency, value)

	return nil
}

// CheckTransfer reports the error Transfer or, with held set, TransferHeld would
// return without changing any balance
func (a *Accounts) CheckTransfer(from, to types.Address, currency types.CurrencyID, amount *uint256.Int, held bool) *code.Error {
	if _, err := a.checkAsset(currency); err != nil {
		return err
	}

	sender := a.get(from)
	if sender == nil {
		sender = &Model{address: from}
	}
	if held {
		if err := checkHeld(sender, currency, amount); err != nil {
			return err
		}
	} else if err := a.checkSpendable(sender, currency, amount); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	var free *uint256.Int
	if recipient := a.get(to); recipient != nil {
		free = recipient.getFree(currency)
	} else {
		free = new(uint256.Int)
	}
	if _, ok := helpers.CheckedAdd(free, amount); !ok {
		return overflow(to, currency)
	}
	return nil
}

// SetLock sets or replaces the named lock on the native balance
func (a *Accounts) SetLock(address types.Address, id types.LockID, amount *uint256.Int) {
	if amount.IsZero() {
		a.RemoveLock(address, id)
		return
	}
	a.getOrNew(address).setLock(id, amount)
}

func (a *Accounts) RemoveLock(address types.Address, id types.LockID) {
	account := a.get(address)
	if account == nil {
		return
	}
	account.removeLock(id)
}

// SetBalance overwrites both balances of address, it is used by genesis import only
func (a *Accounts) SetBalance(address types.Address, currency types.CurrencyID, free, held *uint256.Int) {
	account := a.getOrNew(address)
	old := new(big.Int).Add(account.getFree(currency).ToBig(), account.getHeld(currency).ToBig())
	account.setBalance(currency, helpers.Copy(free), helpers.Copy(held))

	total := new(big.Int).Add(free.ToBig(), held.ToBig())
	a.bus.Checker().AddBalance(currency, total.Sub(total, old))
}

func (a *Accounts) get(address types.Address) *Model {
	if account := a.getFromMap(address); account != nil {
		return account
	}

	immutableTree := a.immutableTree()
	if immutableTree == nil {
		return nil
	}

	_, enc := immutableTree.Get(getPath(address))
	if len(enc) == 0 {
		return nil
	}

	account := &Model{}
	if err := rlp.DecodeBytes(enc, account); err != nil {
		panic(fmt.Sprintf("failed to decode account at address %s: %s", address.String(), err))
	}

	account.address = address
	account.markDirty = a.markDirty

	a.setToMap(address, account)
	return account
}

func (a *Accounts) getOrNew(address types.Address) *Model {
	account := a.get(address)
	if account == nil {
		account = &Model{
			address:   address,
			markDirty: a.markDirty,
		}
		a.setToMap(address, account)
	}

	return account
}

func (a *Accounts) markDirty(addr types.Address) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.dirty[addr] = struct{}{}
}

func (a *Accounts) Export(state *types.AppState) {
	a.immutableTree().IterateRange([]byte{mainPrefix}, []byte{mainPrefix + 1}, true, func(key []byte, value []byte) bool {
		address := types.BytesToAddress(key[1:])
		account := a.get(address)

		acc := types.Account{
			Address: address,
			Frozen:  account.isFrozen(),
		}

		for _, b := range account.balances() {
			if !b.Free.IsZero() {
				acc.Balance = append(acc.Balance, types.Balance{Currency: b.Currency, Value: helpers.AmountToString(b.Free)})
			}
			if !b.Held.IsZero() {
				acc.Held = append(acc.Held, types.Balance{Currency: b.Currency, Value: helpers.AmountToString(b.Held)})
			}
		}

		account.lock.RLock()
		for _, lock := range account.Locks {
			acc.Locks = append(acc.Locks, types.Lock{ID: lock.ID.String(), Amount: helpers.AmountToString(lock.Amount)})
		}
		account.lock.RUnlock()

		state.Accounts = append(state.Accounts, acc)

		return false
	})
}

func (a *Accounts) getFromMap(address types.Address) *Model {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.list[address]
}

func (a *Accounts) setToMap(address types.Address, model *Model) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.list[address] = model
}

func getPath(address types.Address) []byte {
	path := []byte{mainPrefix}
	return append(path, address[:]...)
}
