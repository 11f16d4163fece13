package assets

import (
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

const mainPrefix = byte('r')

// Native token metadata used until genesis overrides it
const (
	NativeName     = "Tide"
	NativeSymbol   = "TIDE"
	NativeDecimals = 12
)

type RAssets interface {
	Export(state *types.AppState)
	Exists(currency types.CurrencyID) bool
	GetInfo(currency types.CurrencyID) *Model
	CanMint(currency types.CurrencyID) *code.Error
	CheckRegister(currency types.CurrencyID, name, symbol string, stringLimit uint32) *code.Error
	List() []*Model
	Owner() *types.Address
}

// Assets is the registry of currencies known to the chain
type Assets struct {
	list  map[types.CurrencyID]*Model
	dirty map[types.CurrencyID]struct{}

	owner      *types.Address
	ownerDirty bool

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewAssets(stateBus *bus.Bus, db *iavl.ImmutableTree) *Assets {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	assets := &Assets{db: immutableTree, bus: stateBus, list: map[types.CurrencyID]*Model{}, dirty: map[types.CurrencyID]struct{}{}}
	assets.bus.SetAssets(NewBus(assets))

	return assets
}

func (a *Assets) immutableTree() *iavl.ImmutableTree {
	db := a.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (a *Assets) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	a.db.Store(immutableTree)
}

func (a *Assets) Commit(db *iavl.MutableTree) error {
	a.lock.Lock()
	if a.ownerDirty {
		a.ownerDirty = false
		if a.owner == nil {
			db.Remove(ownerPath())
		} else {
			db.Set(ownerPath(), a.owner.Bytes())
		}
	}
	a.lock.Unlock()

	for _, currency := range a.getOrderedDirty() {
		asset := a.getFromMap(currency)

		a.lock.Lock()
		delete(a.dirty, currency)
		a.lock.Unlock()

		asset.lock.RLock()
		data, err := rlp.EncodeToBytes(asset)
		asset.lock.RUnlock()
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", currency, err)
		}

		db.Set(getPath(currency), data)
	}

	return nil
}

func (a *Assets) getOrderedDirty() []types.CurrencyID {
	a.lock.RLock()
	keys := make([]types.CurrencyID, 0, len(a.dirty))
	for k := range a.dirty {
		keys = append(keys, k)
	}
	a.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})

	return keys
}

func (a *Assets) Exists(currency types.CurrencyID) bool {
	return a.get(currency) != nil
}

// GetInfo returns the registry record, native is always registered
func (a *Assets) GetInfo(currency types.CurrencyID) *Model {
	return a.get(currency)
}

// CanMint authorizes minting: the currency must be a registered and enabled wrapped asset
func (a *Assets) CanMint(currency types.CurrencyID) *code.Error {
	asset := a.get(currency)
	if asset == nil {
		return code.NewError(code.AssetNotExists, fmt.Sprintf("asset %s not exists", currency), code.NewAssetNotExists(currency.String()))
	}
	if !currency.IsWrapped() {
		return code.NewError(code.AssetNotMintable, fmt.Sprintf("asset %s can not be minted", currency), code.NewAssetNotMintable(currency.String()))
	}
	if !asset.IsEnabled() {
		return code.NewError(code.AssetDisabled, fmt.Sprintf("asset %s is disabled", currency), code.NewAssetDisabled(currency.String()))
	}
	return nil
}

// CheckRegister validates a new registry record
func (a *Assets) CheckRegister(currency types.CurrencyID, name, symbol string, stringLimit uint32) *code.Error {
	if !currency.Valid() || currency.IsNative() {
		return code.NewError(code.InvalidCurrency, fmt.Sprintf("currency %s can not be registered", currency), code.NewInvalidCurrency("currency", currency.String()))
	}
	if a.Exists(currency) {
		return code.NewError(code.AssetAlreadyExists, fmt.Sprintf("asset %s already exists", currency), code.NewAssetAlreadyExists(currency.String()))
	}
	if name == "" || uint32(len(name)) > stringLimit {
		return code.NewError(code.InvalidAssetName, fmt.Sprintf("asset name should be 1..%d bytes", stringLimit), code.NewInvalidAssetName(name))
	}
	if symbol == "" || uint32(len(symbol)) > stringLimit {
		return code.NewError(code.InvalidAssetSymbol, fmt.Sprintf("asset symbol should be 1..%d bytes", stringLimit), code.NewInvalidAssetSymbol(symbol))
	}
	return nil
}

func (a *Assets) Register(currency types.CurrencyID, name, symbol string, decimals uint8, enabled bool) {
	asset := &Model{
		Name:      name,
		Symbol:    symbol,
		Decimals:  decimals,
		Enabled:   enabled,
		Issuance:  new(uint256.Int),
		currency:  currency,
		markDirty: a.markDirty,
	}
	a.setToMap(currency, asset)
	a.markDirty(currency)
}

func (a *Assets) SetStatus(currency types.CurrencyID, enabled bool) {
	asset := a.get(currency)
	if asset == nil {
		return
	}
	asset.setEnabled(enabled)
}

func (a *Assets) AddIssuance(currency types.CurrencyID, amount *uint256.Int) {
	asset := a.get(currency)
	if asset == nil {
		panic(fmt.Sprintf("asset %s not exists", currency))
	}
	asset.addIssuance(amount)
	a.bus.Checker().AddIssuance(currency, amount.ToBig())
}

func (a *Assets) SubIssuance(currency types.CurrencyID, amount *uint256.Int) {
	asset := a.get(currency)
	if asset == nil {
		panic(fmt.Sprintf("asset %s not exists", currency))
	}
	asset.subIssuance(amount)
	a.bus.Checker().AddIssuance(currency, new(big.Int).Neg(amount.ToBig()))
}

// SetIssuance overwrites the issuance, it is used by genesis import only
func (a *Assets) SetIssuance(currency types.CurrencyID, amount *uint256.Int) {
	asset := a.get(currency)
	if asset == nil {
		panic(fmt.Sprintf("asset %s not exists", currency))
	}
	old := asset.GetIssuance().ToBig()
	asset.setIssuance(amount)
	a.bus.Checker().AddIssuance(currency, new(big.Int).Sub(amount.ToBig(), old))
}

func (a *Assets) Owner() *types.Address {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.owner != nil || a.ownerDirty {
		return a.owner
	}

	immutableTree := a.immutableTree()
	if immutableTree == nil {
		return nil
	}
	_, enc := immutableTree.Get(ownerPath())
	if len(enc) == 0 {
		return nil
	}
	owner := types.BytesToAddress(enc)
	a.owner = &owner
	return a.owner
}

func (a *Assets) SetOwner(owner *types.Address) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.owner = owner
	a.ownerDirty = true
}

// List returns the committed and cached records ordered by currency
func (a *Assets) List() []*Model {
	currencies := map[types.CurrencyID]struct{}{types.NativeCurrency(): {}}
	if immutableTree := a.immutableTree(); immutableTree != nil {
		immutableTree.IterateRange([]byte{mainPrefix}, []byte{mainPrefix + 1}, true, func(key []byte, value []byte) bool {
			if len(key) != len(getPath(types.NativeCurrency())) {
				return false
			}
			currencies[types.CurrencyFromBytes(key[1:])] = struct{}{}
			return false
		})
	}
	a.lock.RLock()
	for currency := range a.list {
		currencies[currency] = struct{}{}
	}
	a.lock.RUnlock()

	keys := make([]types.CurrencyID, 0, len(currencies))
	for currency := range currencies {
		keys = append(keys, currency)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})

	list := make([]*Model, 0, len(keys))
	for _, currency := range keys {
		list = append(list, a.get(currency))
	}
	return list
}

func (a *Assets) get(currency types.CurrencyID) *Model {
	if asset := a.getFromMap(currency); asset != nil {
		return asset
	}

	var enc []byte
	if immutableTree := a.immutableTree(); immutableTree != nil {
		_, enc = immutableTree.Get(getPath(currency))
	}
	if len(enc) == 0 {
		if !currency.IsNative() {
			return nil
		}
		asset := &Model{
			Name:      NativeName,
			Symbol:    NativeSymbol,
			Decimals:  NativeDecimals,
			Enabled:   true,
			Issuance:  new(uint256.Int),
			currency:  currency,
			markDirty: a.markDirty,
		}
		a.setToMap(currency, asset)
		return asset
	}

	asset := &Model{}
	if err := rlp.DecodeBytes(enc, asset); err != nil {
		panic(fmt.Sprintf("failed to decode asset %s: %s", currency, err))
	}

	asset.currency = currency
	asset.markDirty = a.markDirty

	a.setToMap(currency, asset)
	return asset
}

func (a *Assets) markDirty(currency types.CurrencyID) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.dirty[currency] = struct{}{}
}

func (a *Assets) Export(state *types.AppState) {
	for _, asset := range a.List() {
		asset.lock.RLock()
		state.Assets = append(state.Assets, types.Asset{
			Currency: asset.currency,
			Name:     asset.Name,
			Symbol:   asset.Symbol,
			Decimals: asset.Decimals,
			Enabled:  asset.Enabled,
			Issuance: helpers.AmountToString(asset.Issuance),
		})
		asset.lock.RUnlock()
	}
	state.AssetOwner = a.Owner()
}

func (a *Assets) getFromMap(currency types.CurrencyID) *Model {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.list[currency]
}

func (a *Assets) setToMap(currency types.CurrencyID, model *Model) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.list[currency] = model
}

func getPath(currency types.CurrencyID) []byte {
	return append([]byte{mainPrefix}, currency.Bytes()...)
}

func ownerPath() []byte {
	return []byte{mainPrefix, 'o'}
}
