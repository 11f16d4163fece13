package expiry

import (
	"testing"

	db "github.com/tendermint/tm-db"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/tree"
)

func TestExpiryToAddModel(t *testing.T) {
	t.Parallel()
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	e := NewExpiry(mutableTree.GetLastImmutable())

	proposal, swap := types.Keccak256([]byte("proposal")), types.Keccak256([]byte("swap"))
	e.Add(101, KindProposal, proposal)
	e.Add(101, KindSwap, swap)

	if _, _, err := mutableTree.Commit(e); err != nil {
		t.Fatal(err)
	}

	restored := NewExpiry(mutableTree.GetLastImmutable())
	items := restored.GetItems(101)
	if len(items) != 2 {
		t.Fatalf("Incorrect amount of items: %d", len(items))
	}
	if items[0].Kind != KindProposal || items[0].ID != proposal {
		t.Fatalf("Invalid item %+v", items[0])
	}
	if items[1].Kind != KindSwap || items[1].ID != swap {
		t.Fatalf("Invalid item %+v", items[1])
	}

	if len(restored.GetItems(100)) != 0 {
		t.Fatal("Items at empty height")
	}
}

func TestExpiryToDeleteModel(t *testing.T) {
	t.Parallel()
	mutableTree, _ := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	e := NewExpiry(mutableTree.GetLastImmutable())

	e.Add(5, KindSwap, types.Keccak256([]byte("swap")))
	if _, _, err := mutableTree.Commit(e); err != nil {
		t.Fatal(err)
	}

	e.Delete(5)
	if len(e.GetItems(5)) != 0 {
		t.Fatal("Items not deleted")
	}

	if _, _, err := mutableTree.Commit(e); err != nil {
		t.Fatal(err)
	}

	if _, enc := mutableTree.GetLastImmutable().Get(getPath(5)); len(enc) != 0 {
		t.Fatal("Index is still stored")
	}

	e.Add(5, KindProposal, types.Keccak256([]byte("proposal")))
	if len(e.GetItems(5)) != 1 {
		t.Fatal("Index not recreated after delete")
	}
}
