package types

// LockID names a lock on the native balance
type LockID [8]byte

// NewLockID converts up to 8 bytes of s into a LockID
func NewLockID(s string) LockID {
	var id LockID
	copy(id[:], s)
	return id
}

func (id LockID) String() string {
	n := len(id)
	for n > 0 && id[n-1] == 0 {
		n--
	}
	return string(id[:n])
}
