package expiry

import (
	"sync"

	"github.com/tidelabs/tidecore/core/types"
)

type ItemKind byte

const (
	KindProposal ItemKind = iota + 1
	KindSwap
)

// Item is a record that has to be looked at once its height is reached
type Item struct {
	Kind ItemKind
	ID   types.Hash
}

type Model struct {
	List []Item

	height    uint64
	deleted   bool
	markDirty func(height uint64)
	lock      sync.RWMutex
}

func (m *Model) delete() {
	m.lock.Lock()
	m.deleted = true
	m.lock.Unlock()

	m.markDirty(m.height)
}

func (m *Model) addItem(kind ItemKind, id types.Hash) {
	m.lock.Lock()
	m.List = append(m.List, Item{Kind: kind, ID: id})
	m.deleted = false
	m.lock.Unlock()

	m.markDirty(m.height)
}

func (m *Model) Items() []Item {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return append([]Item(nil), m.List...)
}

func (m *Model) Height() uint64 {
	return m.height
}
