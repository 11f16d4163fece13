package quorum

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/types"
)

type ProposalKind byte

const (
	KindMint ProposalKind = iota
	KindBurn
	KindTransfer
	KindUpdateConfiguration
)

func (k ProposalKind) String() string {
	switch k {
	case KindMint:
		return "Mint"
	case KindBurn:
		return "Burn"
	case KindTransfer:
		return "Transfer"
	case KindUpdateConfiguration:
		return "UpdateConfiguration"
	}
	return "Unknown"
}

// ParseProposalKind is the inverse of ProposalKind.String
func ParseProposalKind(s string) (ProposalKind, bool) {
	for k := KindMint; k <= KindUpdateConfiguration; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

type Status byte

const (
	StatusActive Status = iota
	StatusAccepted
	StatusRejected
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	case StatusExpired:
		return "Expired"
	}
	return "Unknown"
}

// ParseStatus is the inverse of Status.String
func ParseStatus(s string) (Status, bool) {
	for st := StatusActive; st <= StatusExpired; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// ProposalData is the operation a proposal executes once accepted.
// Mint, Burn and Transfer use Account, Currency, Amount and ExternalTxHash, Transfer also To,
// UpdateConfiguration uses Members and Threshold.
type ProposalData struct {
	Kind           ProposalKind
	Account        types.Address
	To             types.Address
	Currency       types.CurrencyID
	Amount         *uint256.Int
	ExternalTxHash string
	Members        []types.Address
	Threshold      uint16
}

// ExternalRef returns the key of the duplicate external reference index, false when
// the proposal carries no external reference
func (d ProposalData) ExternalRef() (types.Hash, bool) {
	if d.Kind == KindUpdateConfiguration || d.ExternalTxHash == "" {
		return types.Hash{}, false
	}
	return types.Keccak256([]byte(d.ExternalTxHash)), true
}

type Vote struct {
	Member  types.Address
	Approve bool
}

type Proposal struct {
	Data      ProposalData
	Proposer  types.Address
	CreatedAt uint64
	Votes     []Vote
	Status    Status
	// Set once an accepted tally failed to execute, a reject vote then closes the proposal
	ExecutionFailed bool

	id        types.Hash
	markDirty func(types.Hash)
	lock      sync.RWMutex
}

func (p *Proposal) ID() types.Hash {
	return p.id
}

func (p *Proposal) GetStatus() Status {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.Status
}

func (p *Proposal) GetVotes() []Vote {
	p.lock.RLock()
	defer p.lock.RUnlock()

	votes := make([]Vote, len(p.Votes))
	copy(votes, p.Votes)
	return votes
}

func (p *Proposal) IsExecutionFailed() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.ExecutionFailed
}

// VoteOf returns the vote of member, false when member did not vote
func (p *Proposal) VoteOf(member types.Address) (Vote, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	for _, vote := range p.Votes {
		if vote.Member == member {
			return vote, true
		}
	}
	return Vote{}, false
}

// HasVoted reports whether member already cast a vote
func (p *Proposal) HasVoted(member types.Address) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	for _, vote := range p.Votes {
		if vote.Member == member {
			return true
		}
	}
	return false
}

// addVote records the vote of member, replacing the previous one of the same member
func (p *Proposal) addVote(member types.Address, approve bool) {
	p.lock.Lock()
	replaced := false
	for i := range p.Votes {
		if p.Votes[i].Member == member {
			p.Votes[i].Approve = approve
			replaced = true
		}
	}
	if !replaced {
		p.Votes = append(p.Votes, Vote{Member: member, Approve: approve})
	}
	p.lock.Unlock()

	p.markDirty(p.id)
}

func (p *Proposal) setExecutionFailed() {
	p.lock.Lock()
	p.ExecutionFailed = true
	p.lock.Unlock()

	p.markDirty(p.id)
}

func (p *Proposal) setStatus(status Status) {
	p.lock.Lock()
	p.Status = status
	p.lock.Unlock()

	p.markDirty(p.id)
}

// Config is the member set of the quorum
type Config struct {
	Enabled   bool
	Members   []types.Address
	Threshold uint16

	ActiveProposals uint32
	BurnedItems     uint32
}

func (c *Config) isMember(address types.Address) bool {
	for _, member := range c.Members {
		if member == address {
			return true
		}
	}
	return false
}

type PublicKey struct {
	Member types.Address
	Key    string
}

// PublicKeys are the keys quorum members use on the external chain of one currency
type PublicKeys struct {
	Keys []PublicKey
}

// BurnedItem is a withdrawal whose funds are held until the quorum attests the external burn
type BurnedItem struct {
	Account         types.Address
	Currency        types.CurrencyID
	Amount          *uint256.Int
	ExternalAddress string
	CreatedAt       uint64
	Attestations    []types.Address
}

func (b *BurnedItem) hasAttested(member types.Address) bool {
	for _, attested := range b.Attestations {
		if attested == member {
			return true
		}
	}
	return false
}

type WatchEntry struct {
	ProposalID types.Hash
	Currency   types.CurrencyID
	Amount     *uint256.Int
	CreatedAt  uint64
	Confirmed  bool
}

// WatchList holds the mint proposals submitted for an account
type WatchList struct {
	Entries []WatchEntry
}
