package vesting

import (
	"testing"

	"github.com/holiman/uint256"
	db "github.com/tendermint/tm-db"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/accounts"
	"github.com/tidelabs/tidecore/core/state/assets"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/state/checker"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
	"github.com/tidelabs/tidecore/tree"
)

func TestSchedule_Locked(t *testing.T) {
	t.Parallel()
	s := Schedule{Start: 0, Period: 10, PeriodCount: 2, PerPeriod: uint256.NewInt(10)}

	for _, tc := range []struct {
		now    uint64
		locked uint64
	}{
		{0, 20},
		{9, 20},
		{10, 10},
		{11, 10},
		{19, 10},
		{20, 0},
		{21, 0},
	} {
		if got := s.Locked(tc.now).Uint64(); got != tc.locked {
			t.Fatalf("locked at %d: want %d, got %d", tc.now, tc.locked, got)
		}
	}

	cliff := Schedule{Start: 100, Period: 5, PeriodCount: 3, PerPeriod: uint256.NewInt(7)}
	if cliff.Locked(50).Uint64() != 21 {
		t.Fatal("everything should be locked before start")
	}
	end, ok := cliff.End()
	if !ok || end != 115 {
		t.Fatalf("wrong end %d", end)
	}
	if !cliff.Locked(end).IsZero() || cliff.Locked(end-1).IsZero() {
		t.Fatal("lock should reach zero exactly at the end block")
	}
}

func TestSchedule_LockedIsNonIncreasing(t *testing.T) {
	t.Parallel()
	schedules := []Schedule{
		{Start: 3, Period: 7, PeriodCount: 5, PerPeriod: uint256.NewInt(11)},
		{Start: 0, Period: 1, PeriodCount: 40, PerPeriod: uint256.NewInt(1)},
		{Start: 17, Period: 13, PeriodCount: 1, PerPeriod: uint256.NewInt(1000)},
	}
	for _, s := range schedules {
		prev := s.Locked(0)
		for now := uint64(1); now < 100; now++ {
			locked := s.Locked(now)
			if locked.Gt(prev) {
				t.Fatalf("locked increased at %d for %+v", now, s)
			}
			prev = locked
		}
	}
}

func TestVesting_CheckSchedule(t *testing.T) {
	t.Parallel()
	v := NewVesting(bus.NewBus(), nil)
	min := uint256.NewInt(5)

	for _, tc := range []struct {
		schedule Schedule
		code     uint32
	}{
		{Schedule{Start: 0, Period: 0, PeriodCount: 1, PerPeriod: uint256.NewInt(10)}, code.ZeroVestingPeriod},
		{Schedule{Start: 0, Period: 1, PeriodCount: 0, PerPeriod: uint256.NewInt(10)}, code.ZeroVestingPeriodCount},
		{Schedule{Start: 0, Period: 1, PeriodCount: 1, PerPeriod: uint256.NewInt(3)}, code.AmountLow},
		{Schedule{Start: 0, Period: 1, PeriodCount: 2, PerPeriod: helpers.MaxAmount}, code.AmountOverflow},
		{Schedule{Start: 1, Period: ^uint64(0), PeriodCount: 1, PerPeriod: uint256.NewInt(10)}, code.AmountOverflow},
	} {
		err := v.CheckSchedule(tc.schedule, min)
		if err == nil || err.Code != tc.code {
			t.Fatalf("expected %d for %+v, got %v", tc.code, tc.schedule, err)
		}
	}

	if err := v.CheckSchedule(Schedule{Start: 0, Period: 10, PeriodCount: 2, PerPeriod: uint256.NewInt(10)}, min); err != nil {
		t.Fatal(err)
	}
}

func TestVesting_ClaimUpdatesLock(t *testing.T) {
	t.Parallel()
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	b := bus.NewBus()
	checker.NewChecker(b)
	registry := assets.NewAssets(b, mutableTree.GetLastImmutable())
	ledger := accounts.NewAccounts(b, mutableTree.GetLastImmutable())
	v := NewVesting(b, mutableTree.GetLastImmutable())

	x := types.Address{0xa}
	if err := ledger.Mint(x, types.NativeCurrency(), uint256.NewInt(20)); err != nil {
		t.Fatal(err)
	}
	v.AddSchedule(x, Schedule{Start: 0, Period: 10, PeriodCount: 2, PerPeriod: uint256.NewInt(10)})

	if v.Claim(x, 9).Uint64() != 20 || ledger.GetLocked(x).Uint64() != 20 {
		t.Fatal("locked should be 20 at block 9")
	}
	if v.Claim(x, 11).Uint64() != 10 || ledger.GetSpendable(x, types.NativeCurrency()).Uint64() != 10 {
		t.Fatal("locked should be 10 at block 11")
	}

	if _, _, err := mutableTree.Commit(registry, ledger, v); err != nil {
		t.Fatal(err)
	}

	restored := NewVesting(b, mutableTree.GetLastImmutable())
	if len(restored.GetSchedules(x)) != 1 {
		t.Fatal("schedule is not restored")
	}

	if !v.Claim(x, 21).IsZero() {
		t.Fatal("nothing should be locked at block 21")
	}
	if len(v.GetSchedules(x)) != 0 {
		t.Fatal("finished schedule should be removed")
	}
	if ledger.GetLock(x, LockID) != nil {
		t.Fatal("lock should be removed")
	}

	if _, _, err := mutableTree.Commit(registry, ledger, v); err != nil {
		t.Fatal(err)
	}
	if len(NewVesting(b, mutableTree.GetLastImmutable()).GetSchedules(x)) != 0 {
		t.Fatal("schedules should be deleted from storage")
	}
}

func TestVesting_CheckCapacity(t *testing.T) {
	t.Parallel()
	v := NewVesting(bus.NewBus(), nil)
	x := types.Address{1}

	v.AddSchedule(x, Schedule{Start: 0, Period: 1, PeriodCount: 1, PerPeriod: uint256.NewInt(5)})
	v.AddSchedule(x, Schedule{Start: 0, Period: 1, PeriodCount: 1, PerPeriod: uint256.NewInt(5)})

	err := v.CheckCapacity(x, 1, 2)
	if err == nil || err.Code != code.MaxVestingSchedulesExceeded {
		t.Fatalf("expected MaxVestingSchedulesExceeded, got %v", err)
	}
	if err.Kind() != code.KindCapacity {
		t.Fatalf("expected capacity kind, got %s", err.Kind())
	}
	if err := v.CheckCapacity(types.Address{2}, 2, 2); err != nil {
		t.Fatal(err)
	}
}
