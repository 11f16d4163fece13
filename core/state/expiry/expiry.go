package expiry

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tidelabs/tidecore/core/types"
)

const mainPrefix = byte('e')

type RExpiry interface {
	GetItems(height uint64) []Item
}

// Expiry indexes proposals and swaps by the height at which they time out
type Expiry struct {
	list  map[uint64]*Model
	dirty map[uint64]struct{}

	db atomic.Value

	lock sync.RWMutex
}

func NewExpiry(db *iavl.ImmutableTree) *Expiry {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Expiry{db: immutableTree, list: map[uint64]*Model{}, dirty: map[uint64]struct{}{}}
}

func (e *Expiry) immutableTree() *iavl.ImmutableTree {
	db := e.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (e *Expiry) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	e.db.Store(immutableTree)
}

func (e *Expiry) Commit(db *iavl.MutableTree) error {
	for _, height := range e.getOrderedDirty() {
		model := e.getFromMap(height)
		path := getPath(height)

		e.lock.Lock()
		delete(e.dirty, height)
		e.lock.Unlock()

		model.lock.RLock()
		if model.deleted || len(model.List) == 0 {
			e.lock.Lock()
			delete(e.list, height)
			e.lock.Unlock()

			db.Remove(path)
		} else {
			data, err := rlp.EncodeToBytes(model)
			if err != nil {
				model.lock.RUnlock()
				return fmt.Errorf("can't encode object at %d: %v", height, err)
			}

			db.Set(path, data)
		}
		model.lock.RUnlock()
	}

	return nil
}

func (e *Expiry) GetItems(height uint64) []Item {
	model := e.get(height)
	if model == nil {
		return nil
	}
	return model.Items()
}

// Add schedules id to be looked at on height
func (e *Expiry) Add(height uint64, kind ItemKind, id types.Hash) {
	e.getOrNew(height).addItem(kind, id)
}

// Delete drops the index of height once it has been swept
func (e *Expiry) Delete(height uint64) {
	model := e.get(height)
	if model == nil {
		return
	}

	model.delete()
}

func (e *Expiry) getOrNew(height uint64) *Model {
	model := e.get(height)
	if model == nil {
		model = &Model{
			height:    height,
			markDirty: e.markDirty,
		}
		e.setToMap(height, model)
	}

	return model
}

func (e *Expiry) get(height uint64) *Model {
	if model := e.getFromMap(height); model != nil {
		model.lock.RLock()
		deleted := model.deleted
		model.lock.RUnlock()
		if deleted {
			return nil
		}
		return model
	}

	immutableTree := e.immutableTree()
	if immutableTree == nil {
		return nil
	}

	_, enc := immutableTree.Get(getPath(height))
	if len(enc) == 0 {
		return nil
	}

	model := &Model{}
	if err := rlp.DecodeBytes(enc, model); err != nil {
		panic(fmt.Sprintf("failed to decode expiry index at height %d: %s", height, err))
	}

	model.height = height
	model.markDirty = e.markDirty

	e.setToMap(height, model)

	return model
}

func (e *Expiry) markDirty(height uint64) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.dirty[height] = struct{}{}
}

func (e *Expiry) getOrderedDirty() []uint64 {
	e.lock.Lock()
	keys := make([]uint64, 0, len(e.dirty))
	for k := range e.dirty {
		keys = append(keys, k)
	}
	e.lock.Unlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	return keys
}

func (e *Expiry) getFromMap(height uint64) *Model {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.list[height]
}

func (e *Expiry) setToMap(height uint64, model *Model) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.list[height] = model
}

func getPath(height uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, height)

	return append([]byte{mainPrefix}, b...)
}
