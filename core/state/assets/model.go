package assets

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/types"
)

type Model struct {
	Name     string
	Symbol   string
	Decimals uint8
	Enabled  bool
	Issuance *uint256.Int

	currency  types.CurrencyID
	markDirty func(types.CurrencyID)
	lock      sync.RWMutex
}

func (m *Model) Currency() types.CurrencyID {
	return m.currency
}

func (m *Model) IsEnabled() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.Enabled
}

func (m *Model) GetIssuance() *uint256.Int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return new(uint256.Int).Set(m.Issuance)
}

func (m *Model) setEnabled(enabled bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Enabled != enabled {
		m.Enabled = enabled
		m.markDirty(m.currency)
	}
}

func (m *Model) addIssuance(amount *uint256.Int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Issuance = new(uint256.Int).Add(m.Issuance, amount)
	m.markDirty(m.currency)
}

func (m *Model) subIssuance(amount *uint256.Int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Issuance = new(uint256.Int).Sub(m.Issuance, amount)
	m.markDirty(m.currency)
}

func (m *Model) setIssuance(amount *uint256.Int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Issuance = new(uint256.Int).Set(amount)
	m.markDirty(m.currency)
}
