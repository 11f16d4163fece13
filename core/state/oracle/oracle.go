package oracle

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

const mainPrefix = byte('o')

const (
	configPrefix      = byte('c')
	marketMakerPrefix = byte('m')
	swapPrefix        = byte('s')
)

type ROracle interface {
	Export(state *types.AppState)
	IsEnabled() bool
	Account() types.Address
	IsMarketMaker(address types.Address) bool
	MarketMakers() []types.Address
	GetSwap(id types.Hash) *Swap
	GetSwaps() []*Swap
}

// Oracle keeps the swap queue settled by the oracle authority
type Oracle struct {
	config      *Config
	configDirty bool

	marketMakers      map[types.Address]bool
	dirtyMarketMakers map[types.Address]struct{}

	swaps      map[types.Hash]*Swap
	dirtySwaps map[types.Hash]struct{}

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewOracle(stateBus *bus.Bus, db *iavl.ImmutableTree) *Oracle {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Oracle{
		db:                immutableTree,
		bus:               stateBus,
		marketMakers:      map[types.Address]bool{},
		dirtyMarketMakers: map[types.Address]struct{}{},
		swaps:             map[types.Hash]*Swap{},
		dirtySwaps:        map[types.Hash]struct{}{},
	}
}

func (o *Oracle) immutableTree() *iavl.ImmutableTree {
	db := o.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (o *Oracle) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	o.db.Store(immutableTree)
}

func (o *Oracle) Commit(db *iavl.MutableTree) error {
	o.lock.Lock()
	if o.configDirty {
		o.configDirty = false
		data, err := rlp.EncodeToBytes(o.config)
		if err != nil {
			o.lock.Unlock()
			return fmt.Errorf("can't encode oracle config: %v", err)
		}
		db.Set([]byte{mainPrefix, configPrefix}, data)
	}

	makers := make([]types.Address, 0, len(o.dirtyMarketMakers))
	for address := range o.dirtyMarketMakers {
		makers = append(makers, address)
	}
	sort.SliceStable(makers, func(i, j int) bool {
		return bytes.Compare(makers[i].Bytes(), makers[j].Bytes()) == 1
	})
	for _, address := range makers {
		delete(o.dirtyMarketMakers, address)
		path := getPath(marketMakerPrefix, address[:])
		if o.marketMakers[address] {
			db.Set(path, []byte{1})
			continue
		}
		delete(o.marketMakers, address)
		db.Remove(path)
	}
	o.lock.Unlock()

	for _, id := range o.getOrderedDirtySwaps() {
		swap := o.getFromMap(id)

		o.lock.Lock()
		delete(o.dirtySwaps, id)
		o.lock.Unlock()

		path := getPath(swapPrefix, id[:])
		swap.lock.RLock()
		deleted := swap.deleted
		swap.lock.RUnlock()
		if deleted {
			o.lock.Lock()
			delete(o.swaps, id)
			o.lock.Unlock()

			db.Remove(path)
			continue
		}

		swap.lock.RLock()
		data, err := rlp.EncodeToBytes(swap)
		swap.lock.RUnlock()
		if err != nil {
			return fmt.Errorf("can't encode swap %s: %v", id, err)
		}
		db.Set(path, data)
	}

	return nil
}

func (o *Oracle) getOrderedDirtySwaps() []types.Hash {
	o.lock.RLock()
	keys := make([]types.Hash, 0, len(o.dirtySwaps))
	for k := range o.dirtySwaps {
		keys = append(keys, k)
	}
	o.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func (o *Oracle) getConfig() *Config {
	if o.config != nil {
		return o.config
	}

	o.config = &Config{}
	immutableTree := o.immutableTree()
	if immutableTree == nil {
		return o.config
	}
	_, enc := immutableTree.Get([]byte{mainPrefix, configPrefix})
	if len(enc) == 0 {
		return o.config
	}
	if err := rlp.DecodeBytes(enc, o.config); err != nil {
		panic(fmt.Sprintf("failed to decode oracle config: %s", err))
	}
	return o.config
}

func (o *Oracle) IsEnabled() bool {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.getConfig().Enabled
}

func (o *Oracle) SetEnabled(enabled bool) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.getConfig().Enabled = enabled
	o.configDirty = true
}

// Account returns the oracle authority, the zero address when none is set
func (o *Oracle) Account() types.Address {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.getConfig().Account
}

func (o *Oracle) SetAccount(account types.Address) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.getConfig().Account = account
	o.configDirty = true
}

func (o *Oracle) IsMarketMaker(address types.Address) bool {
	o.lock.Lock()
	defer o.lock.Unlock()

	if isMarketMaker, ok := o.marketMakers[address]; ok {
		return isMarketMaker
	}

	immutableTree := o.immutableTree()
	if immutableTree == nil {
		return false
	}
	_, enc := immutableTree.Get(getPath(marketMakerPrefix, address[:]))
	o.marketMakers[address] = len(enc) != 0
	return len(enc) != 0
}

func (o *Oracle) AddMarketMaker(address types.Address) {
	o.setMarketMaker(address, true)
}

func (o *Oracle) RemoveMarketMaker(address types.Address) {
	o.setMarketMaker(address, false)
}

func (o *Oracle) setMarketMaker(address types.Address, isMarketMaker bool) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.marketMakers[address] = isMarketMaker
	o.dirtyMarketMakers[address] = struct{}{}
}

// MarketMakers returns the committed market makers together with the pending changes
func (o *Oracle) MarketMakers() []types.Address {
	set := map[types.Address]struct{}{}
	if immutableTree := o.immutableTree(); immutableTree != nil {
		start, end := []byte{mainPrefix, marketMakerPrefix}, []byte{mainPrefix, marketMakerPrefix + 1}
		immutableTree.IterateRange(start, end, true, func(key []byte, value []byte) bool {
			set[types.BytesToAddress(key[2:])] = struct{}{}
			return false
		})
	}

	o.lock.RLock()
	for address := range o.marketMakers {
		set[address] = struct{}{}
	}
	o.lock.RUnlock()

	var list []types.Address
	for address := range set {
		if o.IsMarketMaker(address) {
			list = append(list, address)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Compare(list[j]) == -1
	})
	return list
}

func (o *Oracle) GetSwap(id types.Hash) *Swap {
	swap := o.get(id)
	if swap == nil {
		return nil
	}

	swap.lock.RLock()
	defer swap.lock.RUnlock()
	if swap.deleted {
		return nil
	}
	return swap
}

// GetSwaps returns the requests still in the queue ordered by creation
func (o *Oracle) GetSwaps() []*Swap {
	ids := map[types.Hash]struct{}{}
	if immutableTree := o.immutableTree(); immutableTree != nil {
		start, end := []byte{mainPrefix, swapPrefix}, []byte{mainPrefix, swapPrefix + 1}
		immutableTree.IterateRange(start, end, true, func(key []byte, value []byte) bool {
			ids[types.BytesToHash(key[2:])] = struct{}{}
			return false
		})
	}

	o.lock.RLock()
	for id := range o.swaps {
		ids[id] = struct{}{}
	}
	o.lock.RUnlock()

	var list []*Swap
	for id := range ids {
		if swap := o.GetSwap(id); swap != nil {
			list = append(list, swap)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt < list[j].CreatedAt
		}
		return bytes.Compare(list[i].id[:], list[j].id[:]) == -1
	})
	return list
}

// AddSwap queues a new request, the caller has already placed the hold
func (o *Oracle) AddSwap(id types.Hash, swap *Swap) *Swap {
	stored := &Swap{
		Account:          swap.Account,
		AssetFrom:        swap.AssetFrom,
		AmountFrom:       helpers.Copy(swap.AmountFrom),
		AmountFromFilled: helpers.Copy(swap.AmountFromFilled),
		AssetTo:          swap.AssetTo,
		AmountTo:         helpers.Copy(swap.AmountTo),
		AmountToFilled:   helpers.Copy(swap.AmountToFilled),
		CreatedAt:        swap.CreatedAt,
		ExtrinsicHash:    swap.ExtrinsicHash,
		IsMarketMaker:    swap.IsMarketMaker,
		SwapType:         swap.SwapType,
		Slippage:         swap.Slippage,
		Status:           swap.Status,
		id:               id,
		markDirty:        o.markDirty,
	}

	o.lock.Lock()
	o.swaps[id] = stored
	o.dirtySwaps[id] = struct{}{}
	o.lock.Unlock()

	return stored
}

// Fill records a settled confirmation on swap and returns its new status
func (o *Oracle) Fill(swap *Swap, sent, received *uint256.Int) SwapStatus {
	return swap.fill(sent, received)
}

// Close moves swap to a terminal status and removes it from the queue
func (o *Oracle) Close(swap *Swap, status SwapStatus) {
	swap.close(status)
}

// CheckConfirmation validates a confirmation settling toSend of request against
// toReceive of counterpart
func CheckConfirmation(request, counterpart *Swap, toReceive, toSend *uint256.Int) *code.Error {
	if counterpart.id == request.id ||
		counterpart.AssetFrom != request.AssetTo || counterpart.AssetTo != request.AssetFrom {
		return code.NewError(code.AssetPairMismatch, fmt.Sprintf("swap %s does not mirror %s/%s", counterpart.id, request.AssetFrom, request.AssetTo),
			code.NewAssetPairMismatch(counterpart.id.String(), counterpart.AssetFrom.String(), counterpart.AssetTo.String()))
	}
	if status := counterpart.GetStatus(); !status.IsActive() {
		return code.NewError(code.SwapNotActive, fmt.Sprintf("swap %s is %s", counterpart.id, status), code.NewSwapNotActive(counterpart.id.String(), status.String()))
	}
	if toReceive.IsZero() {
		return code.NewError(code.ZeroAmount, "amount to receive is zero", code.NewZeroAmount("amount_to_receive"))
	}
	if toSend.IsZero() {
		return code.NewError(code.ZeroAmount, "amount to send is zero", code.NewZeroAmount("amount_to_send"))
	}
	if err := checkRemaining(request, toSend); err != nil {
		return err
	}
	if err := checkRemaining(counterpart, toReceive); err != nil {
		return err
	}
	if err := checkSlippage(request, toSend, toReceive); err != nil {
		return err
	}
	return checkSlippage(counterpart, toReceive, toSend)
}

func checkRemaining(swap *Swap, wanted *uint256.Int) *code.Error {
	remaining := swap.RemainingFrom()
	if wanted.Gt(remaining) {
		return code.NewError(code.OverFill, fmt.Sprintf("swap %s has %s left, wanted %s", swap.id, remaining.Dec(), wanted.Dec()),
			code.NewOverFill(swap.id.String(), remaining.Dec(), wanted.Dec()))
	}
	return nil
}

// checkSlippage verifies that a limit order gets at least its price lowered by slippage:
// received * amount_from >= sent * amount_to * (1 - slippage)
func checkSlippage(swap *Swap, sent, received *uint256.Int) *code.Error {
	if swap.SwapType != SwapLimit {
		return nil
	}

	got := new(big.Int).Mul(received.ToBig(), swap.AmountFrom.ToBig())
	got.Mul(got, big.NewInt(types.PermillDenominator))

	expected := new(big.Int).Mul(sent.ToBig(), swap.AmountTo.ToBig())
	expected.Mul(expected, big.NewInt(int64(swap.Slippage.Complement())))

	if got.Cmp(expected) < 0 {
		return code.NewError(code.SlippageExceeded, fmt.Sprintf("price of swap %s is out of its %s slippage", swap.id, swap.Slippage),
			code.NewSlippageExceeded(swap.id.String(), swap.Slippage.String()))
	}
	return nil
}

func (o *Oracle) get(id types.Hash) *Swap {
	if swap := o.getFromMap(id); swap != nil {
		return swap
	}

	immutableTree := o.immutableTree()
	if immutableTree == nil {
		return nil
	}

	_, enc := immutableTree.Get(getPath(swapPrefix, id[:]))
	if len(enc) == 0 {
		return nil
	}

	swap := &Swap{}
	if err := rlp.DecodeBytes(enc, swap); err != nil {
		panic(fmt.Sprintf("failed to decode swap %s: %s", id, err))
	}

	swap.id = id
	swap.markDirty = o.markDirty

	o.setToMap(id, swap)
	return swap
}

func (o *Oracle) markDirty(id types.Hash) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.dirtySwaps[id] = struct{}{}
}

func (o *Oracle) Export(state *types.AppState) {
	state.Oracle.Enabled = o.IsEnabled()
	if account := o.Account(); !account.IsZero() {
		state.Oracle.Account = &account
	}
	state.Oracle.MarketMakers = o.MarketMakers()

	for _, swap := range o.GetSwaps() {
		swap.lock.RLock()
		state.Oracle.Swaps = append(state.Oracle.Swaps, types.Swap{
			ID:               swap.id,
			Account:          swap.Account,
			AssetFrom:        swap.AssetFrom,
			AmountFrom:       helpers.AmountToString(swap.AmountFrom),
			AmountFromFilled: helpers.AmountToString(swap.AmountFromFilled),
			AssetTo:          swap.AssetTo,
			AmountTo:         helpers.AmountToString(swap.AmountTo),
			AmountToFilled:   helpers.AmountToString(swap.AmountToFilled),
			CreatedAt:        swap.CreatedAt,
			ExtrinsicHash:    swap.ExtrinsicHash,
			IsMarketMaker:    swap.IsMarketMaker,
			SwapType:         swap.SwapType.String(),
			Slippage:         swap.Slippage,
			Status:           swap.Status.String(),
		})
		swap.lock.RUnlock()
	}
}

func (o *Oracle) getFromMap(id types.Hash) *Swap {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return o.swaps[id]
}

func (o *Oracle) setToMap(id types.Hash, swap *Swap) {
	o.lock.Lock()
	defer o.lock.Unlock()

	o.swaps[id] = swap
}

func getPath(prefix byte, key []byte) []byte {
	path := []byte{mainPrefix, prefix}
	return append(path, key...)
}
