package events

import (
	"encoding/binary"
	"sync"

	"github.com/tendermint/go-amino"
	db "github.com/tendermint/tm-db"
)

// IEventsDB is an interface of Events
type IEventsDB interface {
	AddEvent(event Event)
	LoadEvents(height uint32) Events
	CommitEvents(height uint32) error
}

type eventsStore struct {
	cdc *amino.Codec
	sync.RWMutex
	db        db.DB
	pending   pendingEvents
	idAddress map[uint32][32]byte
	addressID map[[32]byte]uint32
}

type pendingEvents struct {
	sync.Mutex
	items Events
}

// NewEventsStore creates new events store in given DB
func NewEventsStore(db db.DB) IEventsDB {
	codec := amino.NewCodec()
	codec.RegisterInterface((*compact)(nil), nil)
	codec.RegisterConcrete(&proposalSubmitted{}, "proposalSubmitted", nil)
	codec.RegisterConcrete(&proposalVoted{}, "proposalVoted", nil)
	codec.RegisterConcrete(&proposalFinalized{}, "proposalFinalized", nil)
	codec.RegisterConcrete(&proposalExecutionFailed{}, "proposalExecutionFailed", nil)
	codec.RegisterConcrete(&burned{}, "burned", nil)
	codec.RegisterConcrete(&swapFilled{}, "swapFilled", nil)
	codec.RegisterConcrete(&swapClosed{}, "swapClosed", nil)
	codec.RegisterConcrete(&vestingLockUpdated{}, "vestingLockUpdated", nil)

	return &eventsStore{
		cdc:       codec,
		RWMutex:   sync.RWMutex{},
		db:        db,
		pending:   pendingEvents{},
		idAddress: make(map[uint32][32]byte),
		addressID: make(map[[32]byte]uint32),
	}
}

func (store *eventsStore) cacheAddress(id uint32, address [32]byte) {
	store.idAddress[id] = address
	store.addressID[address] = id
}

func (store *eventsStore) AddEvent(event Event) {
	store.pending.Lock()
	defer store.pending.Unlock()
	store.pending.items = append(store.pending.items, event)
}

func (store *eventsStore) LoadEvents(height uint32) Events {
	store.loadCache()

	bytes, err := store.db.Get(uint32ToBytes(height))
	if err != nil {
		panic(err)
	}
	if len(bytes) == 0 {
		return Events{}
	}

	var items []compact
	if err := store.cdc.UnmarshalBinaryBare(bytes, &items); err != nil {
		panic(err)
	}

	store.RLock()
	defer store.RUnlock()

	resultEvents := make(Events, 0, len(items))
	for _, compactEvent := range items {
		resultEvents = append(resultEvents, compactEvent.compile(store.idAddress[compactEvent.addressID()]))
	}

	return resultEvents
}

// CommitEvents stores the pending events under height and clears the queue
func (store *eventsStore) CommitEvents(height uint32) error {
	store.loadCache()

	store.pending.Lock()
	defer store.pending.Unlock()
	if len(store.pending.items) == 0 {
		return nil
	}

	store.Lock()
	defer store.Unlock()

	var data []compact
	for _, item := range store.pending.items {
		address := store.saveAddress(item.address())
		data = append(data, item.convert(address))
	}

	bytes, err := store.cdc.MarshalBinaryBare(data)
	if err != nil {
		return err
	}

	if err := store.db.Set(uint32ToBytes(height), bytes); err != nil {
		return err
	}

	store.pending.items = Events{}
	return nil
}

func (store *eventsStore) loadCache() {
	store.Lock()
	if len(store.idAddress) == 0 {
		store.loadAddresses()
	}
	store.Unlock()
}

const addressPrefix = "address"
const addressesCountKey = "addresses"

func (store *eventsStore) saveAddress(address [32]byte) uint32 {
	if id, ok := store.addressID[address]; ok {
		return id
	}

	id := uint32(len(store.addressID))
	store.cacheAddress(id, address)

	if err := store.db.Set(append([]byte(addressPrefix), uint32ToBytes(id)...), address[:]); err != nil {
		panic(err)
	}
	if err := store.db.Set([]byte(addressesCountKey), uint32ToBytes(uint32(len(store.addressID)))); err != nil {
		panic(err)
	}
	return id
}

func (store *eventsStore) loadAddresses() {
	count, err := store.db.Get([]byte(addressesCountKey))
	if err != nil {
		panic(err)
	}
	if len(count) > 0 {
		for id := uint32(0); id < binary.BigEndian.Uint32(count); id++ {
			address, _ := store.db.Get(append([]byte(addressPrefix), uint32ToBytes(id)...))
			var key [32]byte
			copy(key[:], address)
			store.cacheAddress(id, key)
		}
	}
}

func uint32ToBytes(height uint32) []byte {
	var h = make([]byte, 4)
	binary.BigEndian.PutUint32(h, height)
	return h
}
