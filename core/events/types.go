package events

import (
	"math/big"

	"github.com/tidelabs/tidecore/core/types"
)

// Event type names
const (
	TypeProposalSubmittedEvent       = "tidechain/ProposalSubmittedEvent"
	TypeProposalVotedEvent           = "tidechain/ProposalVotedEvent"
	TypeProposalFinalizedEvent       = "tidechain/ProposalFinalizedEvent"
	TypeProposalExecutionFailedEvent = "tidechain/ProposalExecutionFailedEvent"
	TypeBurnedEvent                  = "tidechain/BurnedEvent"
	TypeSwapFilledEvent              = "tidechain/SwapFilledEvent"
	TypeSwapClosedEvent              = "tidechain/SwapClosedEvent"
	TypeVestingLockUpdatedEvent      = "tidechain/VestingLockUpdatedEvent"
)

type Event interface {
	Type() string
	AddressString() string
	address() types.Address
	convert(addressID uint32) compact
}

type compact interface {
	compile(address [32]byte) Event
	addressID() uint32
}

type Events []Event

func amountBytes(s string) []byte {
	bi, ok := big.NewInt(0).SetString(s, 10)
	if !ok {
		return nil
	}
	return bi.Bytes()
}

func amountString(b []byte) string {
	return big.NewInt(0).SetBytes(b).String()
}

type proposalSubmitted struct {
	ProposalID [32]byte
	AddressID  uint32
	Kind       string
}

func (e *proposalSubmitted) compile(address [32]byte) Event {
	event := new(ProposalSubmittedEvent)
	event.ProposalID = e.ProposalID
	event.Proposer = address
	event.Kind = e.Kind
	return event
}

func (e *proposalSubmitted) addressID() uint32 {
	return e.AddressID
}

type ProposalSubmittedEvent struct {
	ProposalID types.Hash    `json:"proposal_id"`
	Proposer   types.Address `json:"proposer"`
	Kind       string        `json:"kind"`
}

func (pe *ProposalSubmittedEvent) Type() string {
	return TypeProposalSubmittedEvent
}

func (pe *ProposalSubmittedEvent) AddressString() string {
	return pe.Proposer.String()
}

func (pe *ProposalSubmittedEvent) address() types.Address {
	return pe.Proposer
}

func (pe *ProposalSubmittedEvent) convert(addressID uint32) compact {
	return &proposalSubmitted{ProposalID: pe.ProposalID, AddressID: addressID, Kind: pe.Kind}
}

type proposalVoted struct {
	ProposalID [32]byte
	AddressID  uint32
	Approve    bool
}

func (e *proposalVoted) compile(address [32]byte) Event {
	event := new(ProposalVotedEvent)
	event.ProposalID = e.ProposalID
	event.Member = address
	event.Approve = e.Approve
	return event
}

func (e *proposalVoted) addressID() uint32 {
	return e.AddressID
}

type ProposalVotedEvent struct {
	ProposalID types.Hash    `json:"proposal_id"`
	Member     types.Address `json:"member"`
	Approve    bool          `json:"approve"`
}

func (pe *ProposalVotedEvent) Type() string {
	return TypeProposalVotedEvent
}

func (pe *ProposalVotedEvent) AddressString() string {
	return pe.Member.String()
}

func (pe *ProposalVotedEvent) address() types.Address {
	return pe.Member
}

func (pe *ProposalVotedEvent) convert(addressID uint32) compact {
	return &proposalVoted{ProposalID: pe.ProposalID, AddressID: addressID, Approve: pe.Approve}
}

type proposalFinalized struct {
	ProposalID [32]byte
	AddressID  uint32
	Status     string
}

func (e *proposalFinalized) compile(address [32]byte) Event {
	event := new(ProposalFinalizedEvent)
	event.ProposalID = e.ProposalID
	event.Proposer = address
	event.Status = e.Status
	return event
}

func (e *proposalFinalized) addressID() uint32 {
	return e.AddressID
}

type ProposalFinalizedEvent struct {
	ProposalID types.Hash    `json:"proposal_id"`
	Proposer   types.Address `json:"proposer"`
	Status     string        `json:"status"`
}

func (pe *ProposalFinalizedEvent) Type() string {
	return TypeProposalFinalizedEvent
}

func (pe *ProposalFinalizedEvent) AddressString() string {
	return pe.Proposer.String()
}

func (pe *ProposalFinalizedEvent) address() types.Address {
	return pe.Proposer
}

func (pe *ProposalFinalizedEvent) convert(addressID uint32) compact {
	return &proposalFinalized{ProposalID: pe.ProposalID, AddressID: addressID, Status: pe.Status}
}

type proposalExecutionFailed struct {
	ProposalID [32]byte
	AddressID  uint32
	Code       uint32
	Log        string
}

func (e *proposalExecutionFailed) compile(address [32]byte) Event {
	event := new(ProposalExecutionFailedEvent)
	event.ProposalID = e.ProposalID
	event.Member = address
	event.Code = e.Code
	event.Log = e.Log
	return event
}

func (e *proposalExecutionFailed) addressID() uint32 {
	return e.AddressID
}

// ProposalExecutionFailedEvent is emitted when an accepted proposal could not be applied,
// Member is the voter whose vote reached the threshold
type ProposalExecutionFailedEvent struct {
	ProposalID types.Hash    `json:"proposal_id"`
	Member     types.Address `json:"member"`
	Code       uint32        `json:"code"`
	Log        string        `json:"log"`
}

func (pe *ProposalExecutionFailedEvent) Type() string {
	return TypeProposalExecutionFailedEvent
}

func (pe *ProposalExecutionFailedEvent) AddressString() string {
	return pe.Member.String()
}

func (pe *ProposalExecutionFailedEvent) address() types.Address {
	return pe.Member
}

func (pe *ProposalExecutionFailedEvent) convert(addressID uint32) compact {
	return &proposalExecutionFailed{ProposalID: pe.ProposalID, AddressID: addressID, Code: pe.Code, Log: pe.Log}
}

type burned struct {
	ItemID    [32]byte
	AddressID uint32
	Currency  []byte
	Amount    []byte
}

func (e *burned) compile(address [32]byte) Event {
	event := new(BurnedEvent)
	event.ItemID = e.ItemID
	event.Account = address
	event.Currency = types.CurrencyFromBytes(e.Currency)
	event.Amount = amountString(e.Amount)
	return event
}

func (e *burned) addressID() uint32 {
	return e.AddressID
}

type BurnedEvent struct {
	ItemID   types.Hash       `json:"item_id"`
	Account  types.Address    `json:"account"`
	Currency types.CurrencyID `json:"currency"`
	Amount   string           `json:"amount"`
}

func (be *BurnedEvent) Type() string {
	return TypeBurnedEvent
}

func (be *BurnedEvent) AddressString() string {
	return be.Account.String()
}

func (be *BurnedEvent) address() types.Address {
	return be.Account
}

func (be *BurnedEvent) convert(addressID uint32) compact {
	return &burned{ItemID: be.ItemID, AddressID: addressID, Currency: be.Currency.Bytes(), Amount: amountBytes(be.Amount)}
}

type swapFilled struct {
	RequestID  [32]byte
	AddressID  uint32
	AmountFrom []byte
	AmountTo   []byte
	Status     string
}

func (e *swapFilled) compile(address [32]byte) Event {
	event := new(SwapFilledEvent)
	event.RequestID = e.RequestID
	event.Account = address
	event.AmountFrom = amountString(e.AmountFrom)
	event.AmountTo = amountString(e.AmountTo)
	event.Status = e.Status
	return event
}

func (e *swapFilled) addressID() uint32 {
	return e.AddressID
}

// SwapFilledEvent reports one side of a settled confirmation
type SwapFilledEvent struct {
	RequestID  types.Hash    `json:"request_id"`
	Account    types.Address `json:"account"`
	AmountFrom string        `json:"amount_from"`
	AmountTo   string        `json:"amount_to"`
	Status     string        `json:"status"`
}

func (se *SwapFilledEvent) Type() string {
	return TypeSwapFilledEvent
}

func (se *SwapFilledEvent) AddressString() string {
	return se.Account.String()
}

func (se *SwapFilledEvent) address() types.Address {
	return se.Account
}

func (se *SwapFilledEvent) convert(addressID uint32) compact {
	return &swapFilled{
		RequestID:  se.RequestID,
		AddressID:  addressID,
		AmountFrom: amountBytes(se.AmountFrom),
		AmountTo:   amountBytes(se.AmountTo),
		Status:     se.Status,
	}
}

type swapClosed struct {
	RequestID [32]byte
	AddressID uint32
	Status    string
	Released  []byte
}

func (e *swapClosed) compile(address [32]byte) Event {
	event := new(SwapClosedEvent)
	event.RequestID = e.RequestID
	event.Account = address
	event.Status = e.Status
	event.Released = amountString(e.Released)
	return event
}

func (e *swapClosed) addressID() uint32 {
	return e.AddressID
}

type SwapClosedEvent struct {
	RequestID types.Hash    `json:"request_id"`
	Account   types.Address `json:"account"`
	Status    string        `json:"status"`
	Released  string        `json:"released"`
}

func (se *SwapClosedEvent) Type() string {
	return TypeSwapClosedEvent
}

func (se *SwapClosedEvent) AddressString() string {
	return se.Account.String()
}

func (se *SwapClosedEvent) address() types.Address {
	return se.Account
}

func (se *SwapClosedEvent) convert(addressID uint32) compact {
	return &swapClosed{RequestID: se.RequestID, AddressID: addressID, Status: se.Status, Released: amountBytes(se.Released)}
}

type vestingLockUpdated struct {
	AddressID uint32
	Locked    []byte
	Schedules uint32
}

func (e *vestingLockUpdated) compile(address [32]byte) Event {
	event := new(VestingLockUpdatedEvent)
	event.Address = address
	event.Locked = amountString(e.Locked)
	event.Schedules = e.Schedules
	return event
}

func (e *vestingLockUpdated) addressID() uint32 {
	return e.AddressID
}

type VestingLockUpdatedEvent struct {
	Address   types.Address `json:"address"`
	Locked    string        `json:"locked"`
	Schedules uint32        `json:"schedules"`
}

func (ve *VestingLockUpdatedEvent) Type() string {
	return TypeVestingLockUpdatedEvent
}

func (ve *VestingLockUpdatedEvent) AddressString() string {
	return ve.Address.String()
}

func (ve *VestingLockUpdatedEvent) address() types.Address {
	return ve.Address
}

func (ve *VestingLockUpdatedEvent) convert(addressID uint32) compact {
	return &vestingLockUpdated{AddressID: addressID, Locked: amountBytes(ve.Locked), Schedules: ve.Schedules}
}
