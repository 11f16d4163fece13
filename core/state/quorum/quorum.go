package quorum

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

const mainPrefix = byte('q')

const (
	configPrefix    = byte('c')
	proposalPrefix  = byte('p')
	txIndexPrefix   = byte('h')
	publicKeyPrefix = byte('k')
	burnedPrefix    = byte('b')
	watchPrefix     = byte('w')
)

type RQuorum interface {
	Export(state *types.AppState)
	Config() Config
	IsEnabled() bool
	IsMember(address types.Address) bool
	Threshold() uint16
	ActiveProposals() uint32
	BurnedCount() uint32
	GetProposal(id types.Hash) *Proposal
	GetProposals() []*Proposal
	ProposalByExternalRef(ref types.Hash) (types.Hash, bool)
	Tally(proposal *Proposal) (yes, remaining int)
	Outcome(proposal *Proposal) Status
	GetPublicKeys(currency types.CurrencyID) []PublicKey
	HasPublicKey(member types.Address, currency types.CurrencyID) bool
	GetBurned(id types.Hash) *BurnedItem
	GetBurnedItems() map[types.Hash]*BurnedItem
	GetWatchList(address types.Address) []WatchEntry
	CheckConfiguration(members []types.Address, threshold uint16, votesLimit uint32) *code.Error
}

type txIndexEntry struct {
	id      types.Hash
	removed bool
}

// Quorum keeps the member set and every record the members vote or attest on
type Quorum struct {
	config      *Config
	configDirty bool

	proposals      map[types.Hash]*Proposal
	dirtyProposals map[types.Hash]struct{}

	txIndex      map[types.Hash]*txIndexEntry
	dirtyTxIndex map[types.Hash]struct{}

	publicKeys      map[types.CurrencyID]*PublicKeys
	dirtyPublicKeys map[types.CurrencyID]struct{}

	burned      map[types.Hash]*BurnedItem
	dirtyBurned map[types.Hash]struct{}

	watchLists map[types.Address]*WatchList
	dirtyWatch map[types.Address]struct{}

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewQuorum(stateBus *bus.Bus, db *iavl.ImmutableTree) *Quorum {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Quorum{
		db:              immutableTree,
		bus:             stateBus,
		proposals:       map[types.Hash]*Proposal{},
		dirtyProposals:  map[types.Hash]struct{}{},
		txIndex:         map[types.Hash]*txIndexEntry{},
		dirtyTxIndex:    map[types.Hash]struct{}{},
		publicKeys:      map[types.CurrencyID]*PublicKeys{},
		dirtyPublicKeys: map[types.CurrencyID]struct{}{},
		burned:          map[types.Hash]*BurnedItem{},
		dirtyBurned:     map[types.Hash]struct{}{},
		watchLists:      map[types.Address]*WatchList{},
		dirtyWatch:      map[types.Address]struct{}{},
	}
}

func (q *Quorum) immutableTree() *iavl.ImmutableTree {
	db := q.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (q *Quorum) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	q.db.Store(immutableTree)
}

func (q *Quorum) Commit(db *iavl.MutableTree) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.configDirty {
		q.configDirty = false
		data, err := rlp.EncodeToBytes(q.config)
		if err != nil {
			return fmt.Errorf("can't encode quorum config: %v", err)
		}
		db.Set([]byte{mainPrefix, configPrefix}, data)
	}

	for _, id := range orderedHashes(q.dirtyProposals) {
		delete(q.dirtyProposals, id)
		proposal := q.proposals[id]
		path := getPath(proposalPrefix, id[:])
		if proposal == nil {
			delete(q.proposals, id)
			db.Remove(path)
			continue
		}

		proposal.lock.RLock()
		data, err := rlp.EncodeToBytes(proposal)
		proposal.lock.RUnlock()
		if err != nil {
			return fmt.Errorf("can't encode proposal %s: %v", id, err)
		}
		db.Set(path, data)
	}

	for _, ref := range orderedHashes(q.dirtyTxIndex) {
		delete(q.dirtyTxIndex, ref)
		entry := q.txIndex[ref]
		path := getPath(txIndexPrefix, ref[:])
		if entry.removed {
			delete(q.txIndex, ref)
			db.Remove(path)
			continue
		}
		db.Set(path, entry.id.Bytes())
	}

	currencies := make([]types.CurrencyID, 0, len(q.dirtyPublicKeys))
	for currency := range q.dirtyPublicKeys {
		currencies = append(currencies, currency)
	}
	sort.SliceStable(currencies, func(i, j int) bool {
		return bytes.Compare(currencies[i].Bytes(), currencies[j].Bytes()) == 1
	})
	for _, currency := range currencies {
		delete(q.dirtyPublicKeys, currency)
		data, err := rlp.EncodeToBytes(q.publicKeys[currency])
		if err != nil {
			return fmt.Errorf("can't encode public keys of %s: %v", currency, err)
		}
		db.Set(getPath(publicKeyPrefix, currency.Bytes()), data)
	}

	for _, id := range orderedHashes(q.dirtyBurned) {
		delete(q.dirtyBurned, id)
		item := q.burned[id]
		path := getPath(burnedPrefix, id[:])
		if item == nil {
			delete(q.burned, id)
			db.Remove(path)
			continue
		}
		data, err := rlp.EncodeToBytes(item)
		if err != nil {
			return fmt.Errorf("can't encode burned item %s: %v", id, err)
		}
		db.Set(path, data)
	}

	addresses := make([]types.Address, 0, len(q.dirtyWatch))
	for address := range q.dirtyWatch {
		addresses = append(addresses, address)
	}
	sort.SliceStable(addresses, func(i, j int) bool {
		return bytes.Compare(addresses[i].Bytes(), addresses[j].Bytes()) == 1
	})
	for _, address := range addresses {
		delete(q.dirtyWatch, address)
		list := q.watchLists[address]
		path := getPath(watchPrefix, address[:])
		if list == nil || len(list.Entries) == 0 {
			delete(q.watchLists, address)
			db.Remove(path)
			continue
		}
		data, err := rlp.EncodeToBytes(list)
		if err != nil {
			return fmt.Errorf("can't encode watch list of %s: %v", address, err)
		}
		db.Set(path, data)
	}

	return nil
}

func orderedHashes(dirty map[types.Hash]struct{}) []types.Hash {
	keys := make([]types.Hash, 0, len(dirty))
	for k := range dirty {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})
	return keys
}

func (q *Quorum) getConfig() *Config {
	if q.config != nil {
		return q.config
	}

	q.config = &Config{}
	immutableTree := q.immutableTree()
	if immutableTree == nil {
		return q.config
	}
	_, enc := immutableTree.Get([]byte{mainPrefix, configPrefix})
	if len(enc) == 0 {
		return q.config
	}
	if err := rlp.DecodeBytes(enc, q.config); err != nil {
		panic(fmt.Sprintf("failed to decode quorum config: %s", err))
	}
	return q.config
}

// Config returns a copy of the member set
func (q *Quorum) Config() Config {
	q.lock.Lock()
	defer q.lock.Unlock()

	config := *q.getConfig()
	config.Members = append([]types.Address(nil), config.Members...)
	return config
}

func (q *Quorum) IsEnabled() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.getConfig().Enabled
}

func (q *Quorum) IsMember(address types.Address) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.getConfig().isMember(address)
}

func (q *Quorum) Threshold() uint16 {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.getConfig().Threshold
}

func (q *Quorum) ActiveProposals() uint32 {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.getConfig().ActiveProposals
}

func (q *Quorum) BurnedCount() uint32 {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.getConfig().BurnedItems
}

func (q *Quorum) SetEnabled(enabled bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.getConfig().Enabled = enabled
	q.configDirty = true
}

// SetConfiguration replaces the member set, votes already cast stay valid
func (q *Quorum) SetConfiguration(members []types.Address, threshold uint16) {
	q.lock.Lock()
	defer q.lock.Unlock()

	config := q.getConfig()
	config.Members = append([]types.Address(nil), members...)
	config.Threshold = threshold
	q.configDirty = true
}

// CheckConfiguration validates a member set before it replaces the current one
func (q *Quorum) CheckConfiguration(members []types.Address, threshold uint16, votesLimit uint32) *code.Error {
	invalid := func(log string) *code.Error {
		return code.NewError(code.InvalidConfiguration, log, code.NewInvalidConfiguration(strconv.Itoa(len(members)), strconv.Itoa(int(threshold))))
	}

	if len(members) == 0 {
		return invalid("quorum members are empty")
	}
	if uint32(len(members)) > votesLimit {
		return code.NewError(code.VotesLimitExceeded, fmt.Sprintf("quorum can have at most %d members", votesLimit),
			code.NewVotesLimitExceeded(strconv.Itoa(int(votesLimit))))
	}
	if threshold == 0 || int(threshold) > len(members) {
		return invalid(fmt.Sprintf("threshold %d is out of range 1..%d", threshold, len(members)))
	}
	seen := make(map[types.Address]struct{}, len(members))
	for _, member := range members {
		if _, ok := seen[member]; ok {
			return invalid(fmt.Sprintf("member %s is duplicated", member))
		}
		seen[member] = struct{}{}
	}
	return nil
}

func (q *Quorum) GetProposal(id types.Hash) *Proposal {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.getProposal(id)
}

func (q *Quorum) getProposal(id types.Hash) *Proposal {
	if proposal, ok := q.proposals[id]; ok {
		return proposal
	}

	immutableTree := q.immutableTree()
	if immutableTree == nil {
		return nil
	}
	_, enc := immutableTree.Get(getPath(proposalPrefix, id[:]))
	if len(enc) == 0 {
		return nil
	}

	proposal := &Proposal{}
	if err := rlp.DecodeBytes(enc, proposal); err != nil {
		panic(fmt.Sprintf("failed to decode proposal %s: %s", id, err))
	}
	proposal.id = id
	proposal.markDirty = q.markProposalDirty
	q.proposals[id] = proposal
	return proposal
}

// GetProposals returns the committed proposals together with the ones created since
func (q *Quorum) GetProposals() []*Proposal {
	ids := map[types.Hash]struct{}{}
	if immutableTree := q.immutableTree(); immutableTree != nil {
		start, end := []byte{mainPrefix, proposalPrefix}, []byte{mainPrefix, proposalPrefix + 1}
		immutableTree.IterateRange(start, end, true, func(key []byte, value []byte) bool {
			ids[types.BytesToHash(key[2:])] = struct{}{}
			return false
		})
	}

	q.lock.RLock()
	for id := range q.proposals {
		ids[id] = struct{}{}
	}
	q.lock.RUnlock()

	var list []*Proposal
	for _, id := range orderedHashes(ids) {
		if proposal := q.GetProposal(id); proposal != nil {
			list = append(list, proposal)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt < list[j].CreatedAt
	})
	return list
}

func (q *Quorum) markProposalDirty(id types.Hash) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.dirtyProposals[id] = struct{}{}
}

// AddProposal stores a new active proposal carrying the proposer's vote
func (q *Quorum) AddProposal(id types.Hash, data ProposalData, proposer types.Address, height uint64) *Proposal {
	proposal := &Proposal{
		Data:      data,
		Proposer:  proposer,
		CreatedAt: height,
		Votes:     []Vote{{Member: proposer, Approve: true}},
		Status:    StatusActive,
		id:        id,
		markDirty: q.markProposalDirty,
	}
	if data.Amount != nil {
		proposal.Data.Amount = helpers.Copy(data.Amount)
	}

	q.lock.Lock()
	q.proposals[id] = proposal
	q.dirtyProposals[id] = struct{}{}
	q.getConfig().ActiveProposals++
	q.configDirty = true
	if ref, ok := data.ExternalRef(); ok {
		q.txIndex[ref] = &txIndexEntry{id: id}
		q.dirtyTxIndex[ref] = struct{}{}
	}
	q.lock.Unlock()

	if data.Kind == KindMint {
		q.addWatchEntry(data.Account, WatchEntry{
			ProposalID: id,
			Currency:   data.Currency,
			Amount:     helpers.Copy(data.Amount),
			CreatedAt:  height,
		})
	}

	return proposal
}

func (q *Quorum) Vote(proposal *Proposal, member types.Address, approve bool) {
	proposal.addVote(member, approve)
}

// MarkExecutionFailed keeps an accepted but not executable proposal open for manual rejection
func (q *Quorum) MarkExecutionFailed(proposal *Proposal) {
	if proposal.GetStatus() != StatusActive || proposal.IsExecutionFailed() {
		return
	}
	proposal.setExecutionFailed()
}

// Tally counts the affirmative votes and the current members that did not vote yet
func (q *Quorum) Tally(proposal *Proposal) (yes, remaining int) {
	votes := proposal.GetVotes()
	voted := make(map[types.Address]struct{}, len(votes))
	for _, vote := range votes {
		voted[vote.Member] = struct{}{}
		if vote.Approve {
			yes++
		}
	}

	for _, member := range q.Config().Members {
		if _, ok := voted[member]; !ok {
			remaining++
		}
	}
	return yes, remaining
}

// Outcome is the status the proposal reaches against the current threshold
func (q *Quorum) Outcome(proposal *Proposal) Status {
	threshold := int(q.Threshold())
	yes, remaining := q.Tally(proposal)
	if yes >= threshold {
		return StatusAccepted
	}
	if yes+remaining < threshold {
		return StatusRejected
	}
	return StatusActive
}

// Finalize moves an active proposal to a terminal status. The external reference of
// accepted proposals stays indexed, the mint watch entry is confirmed on accept.
func (q *Quorum) Finalize(proposal *Proposal, status Status) {
	if proposal.GetStatus() != StatusActive || status == StatusActive {
		return
	}
	proposal.setStatus(status)

	q.lock.Lock()
	config := q.getConfig()
	if config.ActiveProposals > 0 {
		config.ActiveProposals--
	}
	q.configDirty = true
	if ref, ok := proposal.Data.ExternalRef(); ok && status != StatusAccepted {
		q.removeTxIndex(ref)
	}
	q.lock.Unlock()

	if status == StatusAccepted && proposal.Data.Kind == KindMint {
		q.confirmWatchEntry(proposal.Data.Account, proposal.ID())
	}
}

// Purge deletes the proposal record together with its watch entry
func (q *Quorum) Purge(proposal *Proposal) {
	id := proposal.ID()

	q.lock.Lock()
	q.proposals[id] = nil
	q.dirtyProposals[id] = struct{}{}
	q.lock.Unlock()

	if proposal.Data.Kind == KindMint {
		q.removeWatchEntry(proposal.Data.Account, id)
	}
}

func (q *Quorum) removeTxIndex(ref types.Hash) {
	q.txIndex[ref] = &txIndexEntry{removed: true}
	q.dirtyTxIndex[ref] = struct{}{}
}

// ProposalByExternalRef returns the proposal holding the external reference
func (q *Quorum) ProposalByExternalRef(ref types.Hash) (types.Hash, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if entry, ok := q.txIndex[ref]; ok {
		return entry.id, !entry.removed
	}

	immutableTree := q.immutableTree()
	if immutableTree == nil {
		return types.Hash{}, false
	}
	_, enc := immutableTree.Get(getPath(txIndexPrefix, ref[:]))
	if len(enc) == 0 {
		return types.Hash{}, false
	}
	id := types.BytesToHash(enc)
	q.txIndex[ref] = &txIndexEntry{id: id}
	return id, true
}

func (q *Quorum) getPublicKeys(currency types.CurrencyID) *PublicKeys {
	if keys, ok := q.publicKeys[currency]; ok {
		return keys
	}

	keys := &PublicKeys{}
	if immutableTree := q.immutableTree(); immutableTree != nil {
		_, enc := immutableTree.Get(getPath(publicKeyPrefix, currency.Bytes()))
		if len(enc) != 0 {
			if err := rlp.DecodeBytes(enc, keys); err != nil {
				panic(fmt.Sprintf("failed to decode public keys of %s: %s", currency, err))
			}
		}
	}
	q.publicKeys[currency] = keys
	return keys
}

func (q *Quorum) GetPublicKeys(currency types.CurrencyID) []PublicKey {
	q.lock.Lock()
	defer q.lock.Unlock()

	return append([]PublicKey(nil), q.getPublicKeys(currency).Keys...)
}

func (q *Quorum) HasPublicKey(member types.Address, currency types.CurrencyID) bool {
	for _, key := range q.GetPublicKeys(currency) {
		if key.Member == member {
			return true
		}
	}
	return false
}

func (q *Quorum) AddPublicKey(member types.Address, currency types.CurrencyID, key string) {
	q.lock.Lock()
	defer q.lock.Unlock()

	keys := q.getPublicKeys(currency)
	keys.Keys = append(keys.Keys, PublicKey{Member: member, Key: key})
	q.dirtyPublicKeys[currency] = struct{}{}
}

func (q *Quorum) getBurned(id types.Hash) *BurnedItem {
	if item, ok := q.burned[id]; ok {
		return item
	}

	immutableTree := q.immutableTree()
	if immutableTree == nil {
		return nil
	}
	_, enc := immutableTree.Get(getPath(burnedPrefix, id[:]))
	if len(enc) == 0 {
		return nil
	}
	item := &BurnedItem{}
	if err := rlp.DecodeBytes(enc, item); err != nil {
		panic(fmt.Sprintf("failed to decode burned item %s: %s", id, err))
	}
	q.burned[id] = item
	return item
}

func (q *Quorum) GetBurned(id types.Hash) *BurnedItem {
	q.lock.Lock()
	defer q.lock.Unlock()

	item := q.getBurned(id)
	if item == nil {
		return nil
	}
	return item.copy()
}

// GetBurnedItems returns the queued withdrawals keyed by id
func (q *Quorum) GetBurnedItems() map[types.Hash]*BurnedItem {
	ids := map[types.Hash]struct{}{}
	if immutableTree := q.immutableTree(); immutableTree != nil {
		start, end := []byte{mainPrefix, burnedPrefix}, []byte{mainPrefix, burnedPrefix + 1}
		immutableTree.IterateRange(start, end, true, func(key []byte, value []byte) bool {
			ids[types.BytesToHash(key[2:])] = struct{}{}
			return false
		})
	}

	q.lock.RLock()
	for id := range q.burned {
		ids[id] = struct{}{}
	}
	q.lock.RUnlock()

	items := make(map[types.Hash]*BurnedItem, len(ids))
	for id := range ids {
		if item := q.GetBurned(id); item != nil {
			items[id] = item
		}
	}
	return items
}

// AddBurned queues a withdrawal awaiting attestation
func (q *Quorum) AddBurned(id types.Hash, item BurnedItem) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.burned[id] = item.copy()
	q.dirtyBurned[id] = struct{}{}
	q.getConfig().BurnedItems++
	q.configDirty = true
}

// Attest records the attestation of member and returns the attestation count,
// a repeated attestation changes nothing
func (q *Quorum) Attest(id types.Hash, member types.Address) int {
	q.lock.Lock()
	defer q.lock.Unlock()

	item := q.getBurned(id)
	if item == nil {
		return 0
	}
	if !item.hasAttested(member) {
		item.Attestations = append(item.Attestations, member)
		q.dirtyBurned[id] = struct{}{}
	}
	return len(item.Attestations)
}

func (q *Quorum) RemoveBurned(id types.Hash) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.getBurned(id) == nil {
		return
	}
	q.burned[id] = nil
	q.dirtyBurned[id] = struct{}{}
	config := q.getConfig()
	if config.BurnedItems > 0 {
		config.BurnedItems--
	}
	q.configDirty = true
}

func (q *Quorum) getWatchList(address types.Address) *WatchList {
	if list, ok := q.watchLists[address]; ok {
		return list
	}

	list := &WatchList{}
	if immutableTree := q.immutableTree(); immutableTree != nil {
		_, enc := immutableTree.Get(getPath(watchPrefix, address[:]))
		if len(enc) != 0 {
			if err := rlp.DecodeBytes(enc, list); err != nil {
				panic(fmt.Sprintf("failed to decode watch list of %s: %s", address, err))
			}
		}
	}
	q.watchLists[address] = list
	return list
}

func (q *Quorum) GetWatchList(address types.Address) []WatchEntry {
	q.lock.Lock()
	defer q.lock.Unlock()

	entries := q.getWatchList(address).Entries
	list := make([]WatchEntry, 0, len(entries))
	for _, entry := range entries {
		entry.Amount = helpers.Copy(entry.Amount)
		list = append(list, entry)
	}
	return list
}

func (q *Quorum) addWatchEntry(address types.Address, entry WatchEntry) {
	q.lock.Lock()
	defer q.lock.Unlock()

	list := q.getWatchList(address)
	list.Entries = append(list.Entries, entry)
	q.dirtyWatch[address] = struct{}{}
}

func (q *Quorum) confirmWatchEntry(address types.Address, id types.Hash) {
	q.lock.Lock()
	defer q.lock.Unlock()

	list := q.getWatchList(address)
	for i := range list.Entries {
		if list.Entries[i].ProposalID == id {
			list.Entries[i].Confirmed = true
			q.dirtyWatch[address] = struct{}{}
		}
	}
}

func (q *Quorum) removeWatchEntry(address types.Address, id types.Hash) {
	q.lock.Lock()
	defer q.lock.Unlock()

	list := q.getWatchList(address)
	entries := list.Entries[:0]
	for _, entry := range list.Entries {
		if entry.ProposalID != id {
			entries = append(entries, entry)
		}
	}
	list.Entries = entries
	q.dirtyWatch[address] = struct{}{}
}

func (q *Quorum) Export(state *types.AppState) {
	config := q.Config()
	state.Quorum.Enabled = config.Enabled
	state.Quorum.Members = config.Members
	state.Quorum.Threshold = config.Threshold

	immutableTree := q.immutableTree()
	if immutableTree == nil {
		return
	}

	for _, proposal := range q.GetProposals() {
		data := proposal.Data
		exported := types.Proposal{
			ID:             proposal.ID(),
			Kind:           data.Kind.String(),
			Account:        data.Account,
			Currency:       data.Currency,
			Amount:         helpers.AmountToString(data.Amount),
			ExternalTxHash: data.ExternalTxHash,
			Members:        data.Members,
			Threshold:      data.Threshold,
			Proposer:       proposal.Proposer,
			CreatedAt:      proposal.CreatedAt,
			Status:         proposal.GetStatus().String(),

			ExecutionFailed: proposal.IsExecutionFailed(),
		}
		if data.Kind == KindTransfer {
			to := data.To
			exported.To = &to
		}
		for _, vote := range proposal.GetVotes() {
			exported.Votes = append(exported.Votes, types.Vote{Member: vote.Member, Approve: vote.Approve})
		}
		state.Quorum.Proposals = append(state.Quorum.Proposals, exported)
	}

	start, end := []byte{mainPrefix, txIndexPrefix}, []byte{mainPrefix, txIndexPrefix + 1}
	immutableTree.IterateRange(start, end, true, func(key []byte, value []byte) bool {
		if q.GetProposal(types.BytesToHash(value)) == nil {
			state.Quorum.ProcessedTx = append(state.Quorum.ProcessedTx, types.BytesToHash(key[2:]))
		}
		return false
	})

	start, end = []byte{mainPrefix, publicKeyPrefix}, []byte{mainPrefix, publicKeyPrefix + 1}
	immutableTree.IterateRange(start, end, true, func(key []byte, value []byte) bool {
		currency := types.CurrencyFromBytes(key[2:])
		for _, key := range q.GetPublicKeys(currency) {
			state.Quorum.PublicKeys = append(state.Quorum.PublicKeys, types.PublicKey{
				Currency:  currency,
				Member:    key.Member,
				PublicKey: key.Key,
			})
		}
		return false
	})

	items := q.GetBurnedItems()
	for _, id := range sortedIDs(items) {
		item := items[id]
		state.Quorum.BurnedQueue = append(state.Quorum.BurnedQueue, types.BurnedItem{
			ID:              id,
			Account:         item.Account,
			Currency:        item.Currency,
			Amount:          helpers.AmountToString(item.Amount),
			ExternalAddress: item.ExternalAddress,
			CreatedAt:       item.CreatedAt,
			Attestations:    item.Attestations,
		})
	}

	start, end = []byte{mainPrefix, watchPrefix}, []byte{mainPrefix, watchPrefix + 1}
	immutableTree.IterateRange(start, end, true, func(key []byte, value []byte) bool {
		account := types.BytesToAddress(key[2:])
		for _, entry := range q.GetWatchList(account) {
			state.Quorum.WatchLists = append(state.Quorum.WatchLists, types.WatchListRow{
				Account:    account,
				ProposalID: entry.ProposalID,
				Currency:   entry.Currency,
				Amount:     helpers.AmountToString(entry.Amount),
				CreatedAt:  entry.CreatedAt,
				Confirmed:  entry.Confirmed,
			})
		}
		return false
	})
}

func sortedIDs(items map[types.Hash]*BurnedItem) []types.Hash {
	ids := make([]types.Hash, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i].Bytes(), ids[j].Bytes()) == -1
	})
	return ids
}

// RestoreProposal puts an exported proposal record back without creating a watch entry
func (q *Quorum) RestoreProposal(id types.Hash, data ProposalData, proposer types.Address, createdAt uint64, votes []Vote, status Status) {
	restored := &Proposal{
		Data:      data,
		Proposer:  proposer,
		CreatedAt: createdAt,
		Votes:     append([]Vote(nil), votes...),
		Status:    status,
		id:        id,
		markDirty: q.markProposalDirty,
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	q.proposals[id] = restored
	q.dirtyProposals[id] = struct{}{}
	if restored.Status == StatusActive {
		q.getConfig().ActiveProposals++
		q.configDirty = true
	}
	if ref, ok := restored.Data.ExternalRef(); ok && (restored.Status == StatusActive || restored.Status == StatusAccepted) {
		q.txIndex[ref] = &txIndexEntry{id: id}
		q.dirtyTxIndex[ref] = struct{}{}
	}
}

// MarkProcessed indexes the external reference of an accepted and already purged proposal
func (q *Quorum) MarkProcessed(ref types.Hash) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.txIndex[ref] = &txIndexEntry{}
	q.dirtyTxIndex[ref] = struct{}{}
}

// RestoreWatchEntry appends an exported watch entry
func (q *Quorum) RestoreWatchEntry(address types.Address, entry WatchEntry) {
	q.addWatchEntry(address, entry)
}

func (b *BurnedItem) copy() *BurnedItem {
	item := *b
	item.Amount = helpers.Copy(b.Amount)
	item.Attestations = append([]types.Address(nil), b.Attestations...)
	return &item
}

func getPath(prefix byte, key []byte) []byte {
	path := []byte{mainPrefix, prefix}
	return append(path, key...)
}
