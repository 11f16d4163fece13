package vesting

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

const mainPrefix = byte('v')

// LockID is the id of the native balance lock holding the unvested amount
var LockID = types.NewLockID("ormlvest")

type RVesting interface {
	Export(state *types.AppState)
	GetSchedules(address types.Address) []Schedule
	Locked(address types.Address, now uint64) *uint256.Int
	Treasury() types.Address
	CheckSchedule(s Schedule, minAmount *uint256.Int) *code.Error
	CheckCapacity(address types.Address, added int, max uint32) *code.Error
}

// Vesting keeps the linear release schedules of accounts, the unvested total of an
// account is enforced as a single lock on its native balance
type Vesting struct {
	list  map[types.Address]*Model
	dirty map[types.Address]struct{}

	treasury      *types.Address
	treasuryDirty bool

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewVesting(stateBus *bus.Bus, db *iavl.ImmutableTree) *Vesting {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Vesting{db: immutableTree, bus: stateBus, list: map[types.Address]*Model{}, dirty: map[types.Address]struct{}{}}
}

func (v *Vesting) immutableTree() *iavl.ImmutableTree {
	db := v.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (v *Vesting) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	v.db.Store(immutableTree)
}

func (v *Vesting) Commit(db *iavl.MutableTree) error {
	v.lock.Lock()
	if v.treasuryDirty && v.treasury != nil {
		v.treasuryDirty = false
		db.Set([]byte{mainPrefix}, v.treasury.Bytes())
	}
	v.lock.Unlock()

	for _, address := range v.getOrderedDirty() {
		model := v.getFromMap(address)

		v.lock.Lock()
		delete(v.dirty, address)
		v.lock.Unlock()

		path := getPath(address)
		if model.count() == 0 {
			v.lock.Lock()
			delete(v.list, address)
			v.lock.Unlock()

			db.Remove(path)
			continue
		}

		model.lock.RLock()
		data, err := rlp.EncodeToBytes(model)
		model.lock.RUnlock()
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", address, err)
		}

		db.Set(path, data)
	}

	return nil
}

func (v *Vesting) getOrderedDirty() []types.Address {
	v.lock.RLock()
	keys := make([]types.Address, 0, len(v.dirty))
	for k := range v.dirty {
		keys = append(keys, k)
	}
	v.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

// Treasury receives the unvested remainder of stopped schedules
func (v *Vesting) Treasury() types.Address {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.treasury != nil {
		return *v.treasury
	}

	immutableTree := v.immutableTree()
	if immutableTree == nil {
		return types.Address{}
	}
	_, enc := immutableTree.Get([]byte{mainPrefix})
	treasury := types.BytesToAddress(enc)
	v.treasury = &treasury
	return treasury
}

func (v *Vesting) SetTreasury(treasury types.Address) {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.treasury = &treasury
	v.treasuryDirty = true
}

func (v *Vesting) GetSchedules(address types.Address) []Schedule {
	model := v.get(address)
	if model == nil {
		return nil
	}
	return model.getSchedules()
}

// Locked sums the unvested amount of all schedules of address at block now
func (v *Vesting) Locked(address types.Address, now uint64) *uint256.Int {
	total := new(uint256.Int)
	for _, s := range v.GetSchedules(address) {
		sum, ok := helpers.CheckedAdd(total, s.Locked(now))
		if !ok {
			return new(uint256.Int).Set(helpers.MaxAmount)
		}
		total = sum
	}
	return total
}

// CheckSchedule validates a schedule before it is stored
func (v *Vesting) CheckSchedule(s Schedule, minAmount *uint256.Int) *code.Error {
	if s.Period == 0 {
		return code.NewError(code.ZeroVestingPeriod, "vesting period is zero", code.NewZeroVestingPeriod())
	}
	if s.PeriodCount == 0 {
		return code.NewError(code.ZeroVestingPeriodCount, "vesting period count is zero", code.NewZeroVestingPeriodCount())
	}
	if s.PerPeriod == nil {
		return code.NewError(code.ZeroAmount, "vesting per period amount is not set", code.NewZeroAmount("per_period"))
	}

	total, ok := s.Total()
	if !ok {
		return code.NewError(code.AmountOverflow, "vesting total amount overflows", code.NewAmountOverflow(types.NativeCurrency().String(), ""))
	}
	if _, ok := s.End(); !ok {
		return code.NewError(code.AmountOverflow, "vesting end block overflows", code.NewAmountOverflow(types.NativeCurrency().String(), ""))
	}
	if total.Lt(minAmount) {
		return code.NewError(code.AmountLow, fmt.Sprintf("vesting amount %s is lower than %s", total.Dec(), minAmount.Dec()),
			code.NewAmountLow(total.Dec(), minAmount.Dec()))
	}

	return nil
}

// CheckCapacity verifies that address may hold added more schedules
func (v *Vesting) CheckCapacity(address types.Address, added int, max uint32) *code.Error {
	count := 0
	if model := v.get(address); model != nil {
		count = model.count()
	}
	if count+added > int(max) {
		return code.NewError(code.MaxVestingSchedulesExceeded, fmt.Sprintf("account %s can have at most %d vesting schedules", address, max),
			code.NewMaxVestingSchedulesExceeded(strconv.Itoa(int(max)), address.String()))
	}
	return nil
}

func (v *Vesting) AddSchedule(address types.Address, s Schedule) {
	model := v.getOrNew(address)
	schedules := model.getSchedules()
	model.setSchedules(append(schedules, s.copy()))
}

func (v *Vesting) SetSchedules(address types.Address, schedules []Schedule) {
	list := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		list = append(list, s.copy())
	}
	v.getOrNew(address).setSchedules(list)
}

// Claim drops fully vested schedules of address and recalculates its lock at block now,
// the remaining locked amount is returned
func (v *Vesting) Claim(address types.Address, now uint64) *uint256.Int {
	model := v.get(address)
	if model == nil {
		return new(uint256.Int)
	}

	total := new(uint256.Int)
	var remaining []Schedule
	for _, s := range model.getSchedules() {
		locked := s.Locked(now)
		if locked.IsZero() {
			continue
		}
		remaining = append(remaining, s)
		if sum, ok := helpers.CheckedAdd(total, locked); ok {
			total = sum
		} else {
			total.Set(helpers.MaxAmount)
		}
	}

	if len(remaining) != model.count() {
		model.setSchedules(remaining)
	}

	if total.IsZero() {
		v.bus.Accounts().RemoveLock(address, LockID)
	} else {
		v.bus.Accounts().SetLock(address, LockID, total)
	}

	v.bus.Events().AddEvent(&eventsdb.VestingLockUpdatedEvent{
		Address:   address,
		Locked:    total.Dec(),
		Schedules: uint32(len(remaining)),
	})

	return total
}

// Stop removes all schedules and the lock of address
func (v *Vesting) Stop(address types.Address) {
	model := v.get(address)
	if model == nil {
		return
	}
	model.setSchedules(nil)
	v.bus.Accounts().RemoveLock(address, LockID)

	v.bus.Events().AddEvent(&eventsdb.VestingLockUpdatedEvent{
		Address: address,
		Locked:  "0",
	})
}

func (v *Vesting) get(address types.Address) *Model {
	if model := v.getFromMap(address); model != nil {
		return model
	}

	immutableTree := v.immutableTree()
	if immutableTree == nil {
		return nil
	}

	_, enc := immutableTree.Get(getPath(address))
	if len(enc) == 0 {
		return nil
	}

	model := &Model{}
	if err := rlp.DecodeBytes(enc, model); err != nil {
		panic(fmt.Sprintf("failed to decode vesting schedules of %s: %s", address, err))
	}

	model.address = address
	model.markDirty = v.markDirty

	v.setToMap(address, model)
	return model
}

func (v *Vesting) getOrNew(address types.Address) *Model {
	model := v.get(address)
	if model == nil {
		model = &Model{
			address:   address,
			markDirty: v.markDirty,
		}
		v.setToMap(address, model)
	}
	return model
}

func (v *Vesting) markDirty(address types.Address) {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.dirty[address] = struct{}{}
}

func (v *Vesting) Export(state *types.AppState) {
	state.Vesting.Treasury = v.Treasury()

	v.immutableTree().IterateRange([]byte{mainPrefix}, []byte{mainPrefix + 1}, true, func(key []byte, value []byte) bool {
		if len(key) != 1+types.AddressLength {
			return false
		}
		address := types.BytesToAddress(key[1:])
		for _, s := range v.GetSchedules(address) {
			state.Vesting.Schedules = append(state.Vesting.Schedules, types.VestingSchedule{
				Address:     address,
				Start:       s.Start,
				Period:      s.Period,
				PeriodCount: s.PeriodCount,
				PerPeriod:   helpers.AmountToString(s.PerPeriod),
			})
		}
		return false
	})
}

func (v *Vesting) getFromMap(address types.Address) *Model {
	v.lock.RLock()
	defer v.lock.RUnlock()

	return v.list[address]
}

func (v *Vesting) setToMap(address types.Address, model *Model) {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.list[address] = model
}

func getPath(address types.Address) []byte {
	path := []byte{mainPrefix}
	return append(path, address[:]...)
}
