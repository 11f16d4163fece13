package utils

import (
	"sync"

	"github.com/pkg/errors"
	db "github.com/tendermint/tm-db"
)

// Storage opens the node databases once and hands out the same handles afterwards
type Storage struct {
	dir     string
	backend db.BackendType

	mu       sync.Mutex
	stateDB  db.DB
	eventsDB db.DB
	appDB    db.DB
}

func NewStorage(dir string, backend string) *Storage {
	return &Storage{dir: dir, backend: db.BackendType(backend)}
}

func (s *Storage) open(handle *db.DB, name string) (db.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *handle != nil {
		return *handle, nil
	}

	newDB, err := db.NewDB(name, s.backend, s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", name)
	}
	*handle = newDB
	return newDB, nil
}

func (s *Storage) StateDB() (db.DB, error) {
	return s.open(&s.stateDB, "state")
}

func (s *Storage) EventsDB() (db.DB, error) {
	return s.open(&s.eventsDB, "events")
}

func (s *Storage) AppDB() (db.DB, error) {
	return s.open(&s.appDB, "app")
}

func (s *Storage) Dir() string {
	return s.dir
}

// Close closes every opened database and returns the first error
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for _, handle := range []*db.DB{&s.stateDB, &s.eventsDB, &s.appDB} {
		if *handle == nil {
			continue
		}
		if err := (*handle).Close(); err != nil && first == nil {
			first = err
		}
		*handle = nil
	}
	return first
}
