package appdb

import (
	"bytes"
	"testing"
	"time"

	db "github.com/tendermint/tm-db"
)

func TestAppDB_Heights(t *testing.T) {
	t.Parallel()

	memDB := db.NewMemDB()
	appDB := NewAppDB(memDB)
	if h := appDB.GetLastHeight(); h != 0 {
		t.Fatalf("empty db height %d", h)
	}

	appDB.SetLastHeight(42)
	appDB.SetStartHeight(7)
	appDB.SaveStartHeight()
	appDB.SetLastBlockHash([]byte{1, 2, 3})

	reopened := NewAppDB(memDB)
	if h := reopened.GetLastHeight(); h != 42 {
		t.Fatalf("last height, want %d, got %d", 42, h)
	}
	if h := reopened.GetStartHeight(); h != 7 {
		t.Fatalf("start height, want %d, got %d", 7, h)
	}
	want := make([]byte, 32)
	copy(want, []byte{1, 2, 3})
	if hash := reopened.GetLastBlockHash(); !bytes.Equal(hash, want) {
		t.Fatalf("hash, want %x, got %x", want, hash)
	}
}

func TestAppDB_BlocksTime(t *testing.T) {
	t.Parallel()

	appDB := NewAppDB(db.NewMemDB())
	if sum, count := appDB.GetLastBlockTimeDelta(); sum != 0 || count != 0 {
		t.Fatalf("empty delta %d/%d", sum, count)
	}

	start := time.Unix(100, 0)
	for i := 0; i < 6; i++ {
		appDB.AddBlocksTime(start.Add(time.Duration(i*5) * time.Second))
	}
	appDB.SaveBlocksTime()

	sum, count := NewAppDB(appDB.db).GetLastBlockTimeDelta()
	if count != BlocksTimeCount-1 {
		t.Fatalf("count, want %d, got %d", BlocksTimeCount-1, count)
	}
	if sum != 15 {
		t.Fatalf("sum, want %d, got %d", 15, sum)
	}
}

func TestAppDB_Versions(t *testing.T) {
	t.Parallel()

	appDB := NewAppDB(db.NewMemDB())
	appDB.AddVersion("v1", 1)
	appDB.AddVersion("v2", 100)
	appDB.SaveVersions()

	reopened := NewAppDB(appDB.db)
	if name := reopened.GetVersionName(50); name != "v1" {
		t.Fatalf("version at 50, want %s, got %s", "v1", name)
	}
	if name := reopened.GetVersionName(100); name != "v2" {
		t.Fatalf("version at 100, want %s, got %s", "v2", name)
	}
}
