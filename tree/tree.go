package tree

import (
	"sync"

	"github.com/cosmos/iavl"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"
)

// saver is a state module flushing its dirty cache into the mutable tree
type saver interface {
	Commit(db *iavl.MutableTree) error
	SetImmutableTree(immutableTree *iavl.ImmutableTree)
}

type MTree interface {
	Commit(savers ...saver) ([]byte, int64, error)
	GetLastImmutable() *iavl.ImmutableTree
	DeleteVersion(version int64) error
	Version() int64
	Hash() []byte
	AvailableVersions() []int
}

type mutableTree struct {
	tree *iavl.MutableTree
	db   dbm.DB

	lock sync.RWMutex
}

// NewMutableTree opens the versioned tree. With height == 0 the latest saved
// version is loaded, otherwise versions above height are discarded.
func NewMutableTree(height uint64, db dbm.DB, cacheSize int, initialVersion uint64) (MTree, error) {
	tree, err := iavl.NewMutableTreeWithOpts(db, cacheSize, &iavl.Options{InitialVersion: initialVersion})
	if err != nil {
		return nil, errors.Wrap(err, "can't create mutable tree")
	}

	if height == 0 {
		if _, err := tree.Load(); err != nil {
			return nil, errors.Wrap(err, "can't load latest version")
		}
		return &mutableTree{tree: tree, db: db}, nil
	}

	if _, err := tree.LoadVersionForOverwriting(int64(height)); err != nil {
		return nil, errors.Wrapf(err, "can't load version %d", height)
	}

	return &mutableTree{tree: tree, db: db}, nil
}

// NewImmutableTree returns the read-only tree saved at height
func NewImmutableTree(height uint64, db dbm.DB) (*iavl.ImmutableTree, error) {
	tree, err := iavl.NewMutableTree(db, 1024)
	if err != nil {
		return nil, errors.Wrap(err, "can't create mutable tree")
	}
	if _, err := tree.LazyLoadVersion(int64(height)); err != nil {
		return nil, errors.Wrapf(err, "can't load version %d", height)
	}
	immutableTree, err := tree.GetImmutable(int64(height))
	if err != nil {
		return nil, errors.Wrapf(err, "can't get immutable tree at %d", height)
	}
	return immutableTree, nil
}

func (t *mutableTree) Commit(savers ...saver) ([]byte, int64, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, s := range savers {
		if err := s.Commit(t.tree); err != nil {
			return nil, 0, err
		}
	}

	hash, version, err := t.tree.SaveVersion()
	if err != nil {
		return hash, version, errors.Wrap(err, "can't save version")
	}

	immutableTree, err := t.tree.GetImmutable(version)
	if err != nil {
		return hash, version, errors.Wrapf(err, "can't get immutable tree at %d", version)
	}

	for _, s := range savers {
		s.SetImmutableTree(immutableTree)
	}

	return hash, version, nil
}

func (t *mutableTree) GetLastImmutable() *iavl.ImmutableTree {
	t.lock.RLock()
	defer t.lock.RUnlock()

	version := t.tree.Version()
	if version == 0 || !t.tree.VersionExists(version) {
		return iavl.NewImmutableTree(dbm.NewMemDB(), 1024)
	}

	immutableTree, err := t.tree.GetImmutable(version)
	if err != nil {
		panic(err)
	}

	return immutableTree
}

func (t *mutableTree) DeleteVersion(version int64) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.tree.VersionExists(version) {
		return nil
	}

	return t.tree.DeleteVersion(version)
}

func (t *mutableTree) Version() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Version()
}

func (t *mutableTree) Hash() []byte {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Hash()
}

func (t *mutableTree) AvailableVersions() []int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.AvailableVersions()
}
