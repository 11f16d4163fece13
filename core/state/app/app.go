package app

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
)

const mainPrefix = 'd'

type RApp interface {
	Export(state *types.AppState)
	Height() uint64
	Nonce() uint64
	LastSweptHeight() uint64
	Params() types.Params
}

// App keeps the security counter: block height, nonce source, params and the expiry sweep cursor
type App struct {
	model   *Model
	isDirty bool

	db atomic.Value

	bus *bus.Bus
	mx  sync.Mutex
}

func NewApp(stateBus *bus.Bus, db *iavl.ImmutableTree) *App {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	app := &App{bus: stateBus, db: immutableTree}
	app.bus.SetApp(app)

	return app
}

func (a *App) immutableTree() *iavl.ImmutableTree {
	db := a.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (a *App) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	a.db.Store(immutableTree)
}

func (a *App) Commit(db *iavl.MutableTree) error {
	a.mx.Lock()
	defer a.mx.Unlock()

	if !a.isDirty {
		return nil
	}

	a.isDirty = false

	data, err := rlp.EncodeToBytes(a.model)
	if err != nil {
		return fmt.Errorf("can't encode app model: %s", err)
	}

	path := []byte{mainPrefix}
	db.Set(path, data)

	return nil
}

func (a *App) Height() uint64 {
	return a.getOrNew().getHeight()
}

func (a *App) SetHeight(height uint64) {
	a.getOrNew().setHeight(height)
}

func (a *App) Nonce() uint64 {
	return a.getOrNew().getNonce()
}

func (a *App) SetNonce(nonce uint64) {
	a.getOrNew().setNonce(nonce)
}

// NextNonce returns a new value of the strictly increasing nonce
func (a *App) NextNonce() uint64 {
	return a.getOrNew().nextNonce()
}

func (a *App) LastSweptHeight() uint64 {
	return a.getOrNew().getLastSweptHeight()
}

func (a *App) SetLastSweptHeight(height uint64) {
	a.getOrNew().setLastSweptHeight(height)
}

func (a *App) Params() types.Params {
	return a.getOrNew().getParams()
}

func (a *App) SetParams(params types.Params) {
	a.getOrNew().setParams(params)
}

func (a *App) get() *Model {
	a.mx.Lock()
	defer a.mx.Unlock()

	if a.model != nil {
		return a.model
	}

	immutableTree := a.immutableTree()
	if immutableTree == nil {
		return nil
	}

	_, enc := immutableTree.Get([]byte{mainPrefix})
	if len(enc) == 0 {
		return nil
	}

	model := &Model{}
	if err := rlp.DecodeBytes(enc, model); err != nil {
		panic(fmt.Sprintf("failed to decode app model at: %s", err))
	}

	a.model = model
	a.model.markDirty = a.markDirty
	return a.model
}

func (a *App) getOrNew() *Model {
	model := a.get()
	if model == nil {
		model = &Model{
			Params:    types.DefaultParams(),
			markDirty: a.markDirty,
		}
		a.mx.Lock()
		a.model = model
		a.mx.Unlock()
	}

	return model
}

func (a *App) markDirty() {
	a.mx.Lock()
	defer a.mx.Unlock()

	a.isDirty = true
}

func (a *App) Export(state *types.AppState) {
	model := a.getOrNew()
	state.Security = types.Security{
		Height:          model.getHeight(),
		Nonce:           model.getNonce(),
		LastSweptHeight: model.getLastSweptHeight(),
	}
	state.Params = types.NewGenesisParams(model.getParams())
}
