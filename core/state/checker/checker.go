package checker

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
)

// Checker verifies that per block the sum of balance changes of every currency
// equals the change of its issuance
type Checker struct {
	delta         map[types.CurrencyID]*big.Int
	issuanceDelta map[types.CurrencyID]*big.Int

	lock sync.RWMutex
}

func NewChecker(bus *bus.Bus) *Checker {
	checker := &Checker{
		delta:         map[types.CurrencyID]*big.Int{},
		issuanceDelta: map[types.CurrencyID]*big.Int{},
	}
	bus.SetChecker(checker)

	return checker
}

func (c *Checker) AddBalance(currency types.CurrencyID, value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	cValue, exists := c.delta[currency]
	if !exists {
		cValue = big.NewInt(0)
		c.delta[currency] = cValue
	}

	cValue.Add(cValue, value)
}

func (c *Checker) AddIssuance(currency types.CurrencyID, value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	cValue, exists := c.issuanceDelta[currency]
	if !exists {
		cValue = big.NewInt(0)
		c.issuanceDelta[currency] = cValue
	}

	cValue.Add(cValue, value)
}

// Reset resets checker currency data
func (c *Checker) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.delta = map[types.CurrencyID]*big.Int{}
	c.issuanceDelta = map[types.CurrencyID]*big.Int{}
}

func (c *Checker) Check() error {
	c.lock.RLock()
	defer c.lock.RUnlock()

	currencies := map[types.CurrencyID]struct{}{}
	for currency := range c.delta {
		currencies[currency] = struct{}{}
	}
	for currency := range c.issuanceDelta {
		currencies[currency] = struct{}{}
	}

	for currency := range currencies {
		delta := c.delta[currency]
		if delta == nil {
			delta = big.NewInt(0)
		}
		issuance := c.issuanceDelta[currency]
		if issuance == nil {
			issuance = big.NewInt(0)
		}

		if delta.Cmp(issuance) != 0 {
			return fmt.Errorf("invariants error on currency %s: %s", currency.String(), big.NewInt(0).Sub(issuance, delta).String())
		}
	}

	return nil
}
