package vesting

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

// Schedule releases PerPeriod every Period blocks starting from Start, PeriodCount times
type Schedule struct {
	Start       uint64
	Period      uint64
	PeriodCount uint32
	PerPeriod   *uint256.Int
}

// Total returns PerPeriod * PeriodCount, false on overflow
func (s Schedule) Total() (*uint256.Int, bool) {
	return helpers.CheckedMul(s.PerPeriod, uint256.NewInt(uint64(s.PeriodCount)))
}

// End returns the block at which nothing is locked, false on overflow
func (s Schedule) End() (uint64, bool) {
	duration, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(s.Period), uint256.NewInt(uint64(s.PeriodCount)))
	if overflow || !duration.IsUint64() {
		return 0, false
	}
	end, overflow := new(uint256.Int).AddOverflow(duration, uint256.NewInt(s.Start))
	if overflow || !end.IsUint64() {
		return 0, false
	}
	return end.Uint64(), true
}

// Locked returns the amount still locked at block now
func (s Schedule) Locked(now uint64) *uint256.Int {
	if s.Period == 0 {
		return new(uint256.Int)
	}

	remaining := uint64(s.PeriodCount)
	if now >= s.Start {
		elapsed := (now - s.Start) / s.Period
		if elapsed >= remaining {
			return new(uint256.Int)
		}
		remaining -= elapsed
	}

	locked, ok := helpers.CheckedMul(s.PerPeriod, uint256.NewInt(remaining))
	if !ok {
		return new(uint256.Int).Set(helpers.MaxAmount)
	}
	return locked
}

func (s Schedule) copy() Schedule {
	s.PerPeriod = helpers.Copy(s.PerPeriod)
	return s
}

type Model struct {
	Schedules []Schedule

	address   types.Address
	markDirty func(types.Address)
	lock      sync.RWMutex
}

func (m *Model) getSchedules() []Schedule {
	m.lock.RLock()
	defer m.lock.RUnlock()

	list := make([]Schedule, 0, len(m.Schedules))
	for _, s := range m.Schedules {
		list = append(list, s.copy())
	}
	return list
}

func (m *Model) setSchedules(schedules []Schedule) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Schedules = schedules
	m.markDirty(m.address)
}

func (m *Model) count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return len(m.Schedules)
}
