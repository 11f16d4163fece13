package bus

import (
	eventsdb "github.com/tidelabs/tidecore/core/events"
)

type Bus struct {
	accounts Accounts
	assets   Assets
	app      App
	checker  Checker
	events   eventsdb.IEventsDB
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SetAccounts(accounts Accounts) {
	b.accounts = accounts
}

func (b *Bus) Accounts() Accounts {
	return b.accounts
}

func (b *Bus) SetAssets(assets Assets) {
	b.assets = assets
}

func (b *Bus) Assets() Assets {
	return b.assets
}

func (b *Bus) SetApp(app App) {
	b.app = app
}

func (b *Bus) App() App {
	return b.app
}

func (b *Bus) SetChecker(checker Checker) {
	b.checker = checker
}

func (b *Bus) Checker() Checker {
	return b.checker
}

func (b *Bus) SetEvents(events eventsdb.IEventsDB) {
	b.events = events
}

// Events returns the events store, read-only states get a store discarding everything
func (b *Bus) Events() eventsdb.IEventsDB {
	if b.events == nil {
		return discardEvents{}
	}
	return b.events
}

type discardEvents struct{}

func (discardEvents) AddEvent(eventsdb.Event) {}

func (discardEvents) LoadEvents(uint32) eventsdb.Events { return eventsdb.Events{} }

func (discardEvents) CommitEvents(uint32) error { return nil }
