package app

import (
	"testing"

	"github.com/cosmos/iavl"
	db "github.com/tendermint/tm-db"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
)

func TestApp_NextNonceIsStrictlyIncreasing(t *testing.T) {
	t.Parallel()
	mutableTree, err := iavl.NewMutableTree(db.NewMemDB(), 1024)
	if err != nil {
		t.Fatal(err)
	}
	a := NewApp(bus.NewBus(), nil)

	a.SetNonce(10)
	prev := a.Nonce()
	for i := 0; i < 5; i++ {
		next := a.NextNonce()
		if next <= prev {
			t.Fatalf("nonce %d is not greater than %d", next, prev)
		}
		prev = next
	}

	if err := a.Commit(mutableTree); err != nil {
		t.Fatal(err)
	}
	if _, _, err := mutableTree.SaveVersion(); err != nil {
		t.Fatal(err)
	}

	immutableTree, err := mutableTree.GetImmutable(1)
	if err != nil {
		t.Fatal(err)
	}
	restored := NewApp(bus.NewBus(), immutableTree)
	if restored.Nonce() != 15 {
		t.Fatalf("nonce is not restored, got %d", restored.Nonce())
	}
	if restored.NextNonce() != 16 {
		t.Fatal("restored nonce does not continue the sequence")
	}
}

func TestApp_ParamsRoundTrip(t *testing.T) {
	t.Parallel()
	mutableTree, err := iavl.NewMutableTree(db.NewMemDB(), 1024)
	if err != nil {
		t.Fatal(err)
	}
	a := NewApp(bus.NewBus(), nil)

	params := types.DefaultParams()
	params.ProposalsCap = 3
	params.MaxVestingSchedules = 2
	a.SetParams(params)
	a.SetHeight(7)
	a.SetLastSweptHeight(6)

	if err := a.Commit(mutableTree); err != nil {
		t.Fatal(err)
	}
	if _, _, err := mutableTree.SaveVersion(); err != nil {
		t.Fatal(err)
	}
	immutableTree, err := mutableTree.GetImmutable(1)
	if err != nil {
		t.Fatal(err)
	}

	restored := NewApp(bus.NewBus(), immutableTree)
	if restored.Params().ProposalsCap != 3 || restored.Params().MaxVestingSchedules != 2 {
		t.Fatalf("params are not restored: %+v", restored.Params())
	}
	if restored.Params().MinVestedTransfer.Uint64() != 1 {
		t.Fatalf("min vested transfer is not restored: %s", restored.Params().MinVestedTransfer)
	}

	appState := new(types.AppState)
	restored.Export(appState)
	if appState.Security.Height != 7 || appState.Security.LastSweptHeight != 6 {
		t.Fatalf("wrong exported security counter %+v", appState.Security)
	}
}
