package assets

import (
	"testing"

	"github.com/holiman/uint256"
	db "github.com/tendermint/tm-db"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/state/checker"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/tree"
)

func TestAssets_RegisterAndCommit(t *testing.T) {
	t.Parallel()
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	b := bus.NewBus()
	checker.NewChecker(b)
	a := NewAssets(b, mutableTree.GetLastImmutable())

	currency := types.WrappedCurrency(4)
	if err := a.CheckRegister(currency, "Ethereum", "ETH", 255); err != nil {
		t.Fatal(err)
	}
	a.Register(currency, "Ethereum", "ETH", 18, false)
	owner := types.Address{7}
	a.SetOwner(&owner)

	if _, _, err := mutableTree.Commit(a); err != nil {
		t.Fatal(err)
	}

	restored := NewAssets(bus.NewBus(), mutableTree.GetLastImmutable())
	if err := restored.CheckRegister(currency, "Ethereum", "ETH", 255); err == nil || err.Code != code.AssetAlreadyExists {
		t.Fatalf("expected AssetAlreadyExists, got %v", err)
	}
	if err := restored.CanMint(currency); err == nil || err.Code != code.AssetDisabled {
		t.Fatalf("expected AssetDisabled, got %v", err)
	}
	if restored.Owner() == nil || *restored.Owner() != owner {
		t.Fatal("owner is not restored")
	}

	list := restored.List()
	if len(list) != 2 {
		t.Fatalf("expected native and one wrapped asset, got %d", len(list))
	}
	if !list[0].Currency().IsNative() || list[1].Currency() != currency {
		t.Fatal("wrong order of assets")
	}
}

func TestAssets_CanMint(t *testing.T) {
	t.Parallel()
	b := bus.NewBus()
	checker.NewChecker(b)
	a := NewAssets(b, nil)

	if err := a.CanMint(types.NativeCurrency()); err == nil || err.Code != code.AssetNotMintable {
		t.Fatalf("expected AssetNotMintable, got %v", err)
	}
	if err := a.CanMint(types.WrappedCurrency(1)); err == nil || err.Code != code.AssetNotExists {
		t.Fatalf("expected AssetNotExists, got %v", err)
	}

	a.Register(types.WrappedCurrency(1), "Bitcoin", "BTC", 8, true)
	if err := a.CanMint(types.WrappedCurrency(1)); err != nil {
		t.Fatal(err)
	}

	a.AddIssuance(types.WrappedCurrency(1), uint256.NewInt(5))
	if a.GetInfo(types.WrappedCurrency(1)).GetIssuance().Uint64() != 5 {
		t.Fatal("wrong issuance")
	}
}

func TestAssets_CheckRegisterValidation(t *testing.T) {
	t.Parallel()
	a := NewAssets(bus.NewBus(), nil)

	if err := a.CheckRegister(types.NativeCurrency(), "Tide", "TIDE", 255); err == nil || err.Code != code.InvalidCurrency {
		t.Fatalf("expected InvalidCurrency, got %v", err)
	}
	if err := a.CheckRegister(types.WrappedCurrency(2), "", "X", 255); err == nil || err.Code != code.InvalidAssetName {
		t.Fatalf("expected InvalidAssetName, got %v", err)
	}
	if err := a.CheckRegister(types.WrappedCurrency(2), "Name", "TOOLONG", 4); err == nil || err.Code != code.InvalidAssetSymbol {
		t.Fatalf("expected InvalidAssetSymbol, got %v", err)
	}
}
