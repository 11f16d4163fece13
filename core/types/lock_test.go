package types

import "testing"

func TestLockID(t *testing.T) {
	t.Parallel()
	if NewLockID("ormlvest").String() != "ormlvest" {
		t.Fatal("wrong lock id string")
	}
	if NewLockID("long_lock_id").String() != "long_loc" {
		t.Fatal("lock id should be cropped to 8 bytes")
	}
	if NewLockID("a").String() != "a" {
		t.Fatal("trailing zero bytes should be trimmed")
	}
}
