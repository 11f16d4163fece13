package code

import (
	"encoding/json"
	"strconv"
)

// Codes for call checks and delivers responses
const (
	// general
	OK                 uint32 = 0
	UnknownCall        uint32 = 100
	BadOrigin          uint32 = 101
	AssetNotExists     uint32 = 102
	BlockNotStarted    uint32 = 103
	DecodeError        uint32 = 106
	InsufficientFunds  uint32 = 107
	AmountOverflow     uint32 = 112
	ZeroAmount         uint32 = 113
	InvalidCurrency    uint32 = 114
	StringTooLong      uint32 = 115
	AccountFrozen      uint32 = 130
	InsufficientHeld   uint32 = 131
	LiquidityRestricts uint32 = 132

	// asset registry
	AssetAlreadyExists uint32 = 201
	InvalidAssetSymbol uint32 = 203
	InvalidAssetName   uint32 = 204
	AssetDisabled      uint32 = 205
	AssetNotMintable   uint32 = 206

	// quorum
	NotMember               uint32 = 601
	ProposalNotFound        uint32 = 602
	ProposalNotActive       uint32 = 603
	AlreadyVoted            uint32 = 604
	ProposalsCapExceeded    uint32 = 605
	ThresholdNotMet         uint32 = 606
	ProposalExpired         uint32 = 607
	ProposalAlreadyExists   uint32 = 608
	ProposalExecutionFailed uint32 = 609
	QuorumDisabled          uint32 = 610
	InvalidConfiguration    uint32 = 611
	PublicKeyAlreadyExists  uint32 = 612
	PubkeyLimitExceeded     uint32 = 613
	BurnedCapExceeded       uint32 = 614
	BurnedItemNotFound      uint32 = 615
	WatchListLimitExceeded  uint32 = 616
	VotesLimitExceeded      uint32 = 617

	// oracle
	OracleDisabled       uint32 = 701
	NotOracleAuthority   uint32 = 702
	SwapNotFound         uint32 = 703
	SwapNotActive        uint32 = 704
	SameAssetPair        uint32 = 705
	AssetPairMismatch    uint32 = 706
	OverFill             uint32 = 707
	SlippageExceeded     uint32 = 708
	TooManyConfirmations uint32 = 709
	IsNotOwnerOfSwap     uint32 = 710
	InvalidSlippage      uint32 = 711
	EmptyConfirmations   uint32 = 712
	MarketMakerNotFound  uint32 = 713

	// vesting
	ZeroVestingPeriod           uint32 = 801
	ZeroVestingPeriodCount      uint32 = 802
	AmountLow                   uint32 = 803
	MaxVestingSchedulesExceeded uint32 = 804
	VestingNotFound             uint32 = 805
)

// Kind groups response codes into the error taxonomy
type Kind byte

const (
	KindNone Kind = iota
	KindAuthorization
	KindNotFound
	KindState
	KindCapacity
	KindValidation
	KindArithmetic
	KindLedger
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindState:
		return "StateError"
	case KindCapacity:
		return "CapacityError"
	case KindValidation:
		return "ValidationError"
	case KindArithmetic:
		return "ArithmeticError"
	case KindLedger:
		return "LedgerError"
	}

	return "UnknownError"
}

var kinds = map[uint32]Kind{
	OK:                          KindNone,
	UnknownCall:                 KindValidation,
	BadOrigin:                   KindAuthorization,
	AssetNotExists:              KindNotFound,
	BlockNotStarted:             KindState,
	DecodeError:                 KindValidation,
	InsufficientFunds:           KindLedger,
	AmountOverflow:              KindArithmetic,
	ZeroAmount:                  KindValidation,
	InvalidCurrency:             KindValidation,
	StringTooLong:               KindValidation,
	AccountFrozen:               KindLedger,
	InsufficientHeld:            KindLedger,
	LiquidityRestricts:          KindLedger,
	AssetAlreadyExists:          KindValidation,
	InvalidAssetSymbol:          KindValidation,
	InvalidAssetName:            KindValidation,
	AssetDisabled:               KindState,
	AssetNotMintable:            KindValidation,
	NotMember:                   KindAuthorization,
	ProposalNotFound:            KindNotFound,
	ProposalNotActive:           KindState,
	AlreadyVoted:                KindValidation,
	ProposalsCapExceeded:        KindCapacity,
	ThresholdNotMet:             KindState,
	ProposalExpired:             KindState,
	ProposalAlreadyExists:       KindValidation,
	ProposalExecutionFailed:     KindLedger,
	QuorumDisabled:              KindState,
	InvalidConfiguration:        KindValidation,
	PublicKeyAlreadyExists:      KindValidation,
	PubkeyLimitExceeded:         KindCapacity,
	BurnedCapExceeded:           KindCapacity,
	BurnedItemNotFound:          KindNotFound,
	WatchListLimitExceeded:      KindCapacity,
	VotesLimitExceeded:          KindCapacity,
	OracleDisabled:              KindState,
	NotOracleAuthority:          KindAuthorization,
	SwapNotFound:                KindNotFound,
	SwapNotActive:               KindState,
	SameAssetPair:               KindValidation,
	AssetPairMismatch:           KindValidation,
	OverFill:                    KindValidation,
	SlippageExceeded:            KindValidation,
	TooManyConfirmations:        KindCapacity,
	IsNotOwnerOfSwap:            KindAuthorization,
	InvalidSlippage:             KindValidation,
	EmptyConfirmations:          KindValidation,
	MarketMakerNotFound:         KindNotFound,
	ZeroVestingPeriod:           KindValidation,
	ZeroVestingPeriodCount:      KindValidation,
	AmountLow:                   KindValidation,
	MaxVestingSchedulesExceeded: KindCapacity,
	VestingNotFound:             KindNotFound,
}

// KindOf returns the taxonomy kind of a response code
func KindOf(code uint32) Kind {
	if kind, ok := kinds[code]; ok {
		return kind
	}
	return KindValidation
}

// Error is a typed failure of a state operation
type Error struct {
	Code uint32
	Log  string
	Info interface{}
}

// NewError creates an Error, info is a JSON-encodable payload of the affected identifiers
func NewError(code uint32, log string, info interface{}) *Error {
	return &Error{Code: code, Log: log, Info: info}
}

func (e *Error) Error() string {
	return e.Log
}

func (e *Error) Kind() Kind {
	return KindOf(e.Code)
}

// EncodeInfo encodes the payload to json
func (e *Error) EncodeInfo() string {
	if e.Info == nil {
		return ""
	}
	marshaled, err := json.Marshal(e.Info)
	if err != nil {
		panic(err)
	}
	return string(marshaled)
}

type badOrigin struct {
	Code     string `json:"code,omitempty"`
	Origin   string `json:"origin,omitempty"`
	Required string `json:"required,omitempty"`
}

func NewBadOrigin(origin string, required string) *badOrigin {
	return &badOrigin{Code: strconv.Itoa(int(BadOrigin)), Origin: origin, Required: required}
}

type assetNotExists struct {
	Code     string `json:"code,omitempty"`
	Currency string `json:"currency,omitempty"`
}

func NewAssetNotExists(currency string) *assetNotExists {
	return &assetNotExists{Code: strconv.Itoa(int(AssetNotExists)), Currency: currency}
}

type assetState struct {
	Code     string `json:"code,omitempty"`
	Currency string `json:"currency,omitempty"`
}

func NewAssetDisabled(currency string) *assetState {
	return &assetState{Code: strconv.Itoa(int(AssetDisabled)), Currency: currency}
}

func NewAssetNotMintable(currency string) *assetState {
	return &assetState{Code: strconv.Itoa(int(AssetNotMintable)), Currency: currency}
}

func NewAssetAlreadyExists(currency string) *assetState {
	return &assetState{Code: strconv.Itoa(int(AssetAlreadyExists)), Currency: currency}
}

type insufficientFunds struct {
	Code        string `json:"code,omitempty"`
	Sender      string `json:"sender,omitempty"`
	NeededValue string `json:"needed_value,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

func NewInsufficientFunds(sender string, value string, currency string) *insufficientFunds {
	return &insufficientFunds{Code: strconv.Itoa(int(InsufficientFunds)), Sender: sender, NeededValue: value, Currency: currency}
}

func NewInsufficientHeld(sender string, value string, currency string) *insufficientFunds {
	return &insufficientFunds{Code: strconv.Itoa(int(InsufficientHeld)), Sender: sender, NeededValue: value, Currency: currency}
}

func NewLiquidityRestricts(sender string, value string, currency string) *insufficientFunds {
	return &insufficientFunds{Code: strconv.Itoa(int(LiquidityRestricts)), Sender: sender, NeededValue: value, Currency: currency}
}

type amountOverflow struct {
	Code     string `json:"code,omitempty"`
	Currency string `json:"currency,omitempty"`
	Address  string `json:"address,omitempty"`
}

func NewAmountOverflow(currency string, address string) *amountOverflow {
	return &amountOverflow{Code: strconv.Itoa(int(AmountOverflow)), Currency: currency, Address: address}
}

type accountFrozen struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewAccountFrozen(address string) *accountFrozen {
	return &accountFrozen{Code: strconv.Itoa(int(AccountFrozen)), Address: address}
}

type wrongValue struct {
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
	Limit string `json:"limit,omitempty"`
}

func NewZeroAmount(field string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(ZeroAmount)), Field: field, Value: "0"}
}

func NewInvalidCurrency(field string, value string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(InvalidCurrency)), Field: field, Value: value}
}

func NewStringTooLong(field string, length string, limit string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(StringTooLong)), Field: field, Value: length, Limit: limit}
}

func NewInvalidAssetName(name string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(InvalidAssetName)), Field: "name", Value: name}
}

func NewInvalidAssetSymbol(symbol string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(InvalidAssetSymbol)), Field: "symbol", Value: symbol}
}

func NewInvalidSlippage(value string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(InvalidSlippage)), Field: "slippage", Value: value}
}

func NewAmountLow(value string, min string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(AmountLow)), Field: "amount", Value: value, Limit: min}
}

func NewZeroVestingPeriod() *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(ZeroVestingPeriod)), Field: "period", Value: "0"}
}

func NewZeroVestingPeriodCount() *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(ZeroVestingPeriodCount)), Field: "period_count", Value: "0"}
}

type capacity struct {
	Code  string `json:"code,omitempty"`
	Limit string `json:"limit,omitempty"`
	Scope string `json:"scope,omitempty"`
}

func NewProposalsCapExceeded(limit string) *capacity {
	return &capacity{Code: strconv.Itoa(int(ProposalsCapExceeded)), Limit: limit}
}

func NewPubkeyLimitExceeded(limit string, currency string) *capacity {
	return &capacity{Code: strconv.Itoa(int(PubkeyLimitExceeded)), Limit: limit, Scope: currency}
}

func NewBurnedCapExceeded(limit string) *capacity {
	return &capacity{Code: strconv.Itoa(int(BurnedCapExceeded)), Limit: limit}
}

func NewWatchListLimitExceeded(limit string, address string) *capacity {
	return &capacity{Code: strconv.Itoa(int(WatchListLimitExceeded)), Limit: limit, Scope: address}
}

func NewVotesLimitExceeded(limit string) *capacity {
	return &capacity{Code: strconv.Itoa(int(VotesLimitExceeded)), Limit: limit}
}

func NewTooManyConfirmations(limit string) *capacity {
	return &capacity{Code: strconv.Itoa(int(TooManyConfirmations)), Limit: limit}
}

func NewMaxVestingSchedulesExceeded(limit string, address string) *capacity {
	return &capacity{Code: strconv.Itoa(int(MaxVestingSchedulesExceeded)), Limit: limit, Scope: address}
}

type notMember struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewNotMember(address string) *notMember {
	return &notMember{Code: strconv.Itoa(int(NotMember)), Address: address}
}

type proposal struct {
	Code       string `json:"code,omitempty"`
	ProposalID string `json:"proposal_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Member     string `json:"member,omitempty"`
}

func NewProposalNotFound(id string) *proposal {
	return &proposal{Code: strconv.Itoa(int(ProposalNotFound)), ProposalID: id}
}

func NewProposalNotActive(id string, status string) *proposal {
	return &proposal{Code: strconv.Itoa(int(ProposalNotActive)), ProposalID: id, Status: status}
}

func NewProposalExpired(id string) *proposal {
	return &proposal{Code: strconv.Itoa(int(ProposalExpired)), ProposalID: id}
}

func NewAlreadyVoted(id string, member string) *proposal {
	return &proposal{Code: strconv.Itoa(int(AlreadyVoted)), ProposalID: id, Member: member}
}

type thresholdNotMet struct {
	Code       string `json:"code,omitempty"`
	ProposalID string `json:"proposal_id,omitempty"`
	Votes      string `json:"votes,omitempty"`
	Threshold  string `json:"threshold,omitempty"`
}

func NewThresholdNotMet(id string, votes string, threshold string) *thresholdNotMet {
	return &thresholdNotMet{Code: strconv.Itoa(int(ThresholdNotMet)), ProposalID: id, Votes: votes, Threshold: threshold}
}

type proposalAlreadyExists struct {
	Code           string `json:"code,omitempty"`
	ProposalID     string `json:"proposal_id,omitempty"`
	ExternalTxHash string `json:"external_tx_hash,omitempty"`
}

func NewProposalAlreadyExists(id string, externalTxHash string) *proposalAlreadyExists {
	return &proposalAlreadyExists{Code: strconv.Itoa(int(ProposalAlreadyExists)), ProposalID: id, ExternalTxHash: externalTxHash}
}

type executionFailed struct {
	Code       string `json:"code,omitempty"`
	ProposalID string `json:"proposal_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
	ReasonCode string `json:"reason_code,omitempty"`
}

func NewProposalExecutionFailed(id string, reason *Error) *executionFailed {
	return &executionFailed{Code: strconv.Itoa(int(ProposalExecutionFailed)), ProposalID: id, Reason: reason.Log, ReasonCode: strconv.Itoa(int(reason.Code))}
}

type disabled struct {
	Code   string `json:"code,omitempty"`
	Module string `json:"module,omitempty"`
}

func NewQuorumDisabled() *disabled {
	return &disabled{Code: strconv.Itoa(int(QuorumDisabled)), Module: "quorum"}
}

func NewOracleDisabled() *disabled {
	return &disabled{Code: strconv.Itoa(int(OracleDisabled)), Module: "oracle"}
}

type invalidConfiguration struct {
	Code      string `json:"code,omitempty"`
	Members   string `json:"members,omitempty"`
	Threshold string `json:"threshold,omitempty"`
}

func NewInvalidConfiguration(members string, threshold string) *invalidConfiguration {
	return &invalidConfiguration{Code: strconv.Itoa(int(InvalidConfiguration)), Members: members, Threshold: threshold}
}

type publicKeyAlreadyExists struct {
	Code     string `json:"code,omitempty"`
	Member   string `json:"member,omitempty"`
	Currency string `json:"currency,omitempty"`
}

func NewPublicKeyAlreadyExists(member string, currency string) *publicKeyAlreadyExists {
	return &publicKeyAlreadyExists{Code: strconv.Itoa(int(PublicKeyAlreadyExists)), Member: member, Currency: currency}
}

type itemNotFound struct {
	Code string `json:"code,omitempty"`
	ID   string `json:"id,omitempty"`
}

func NewBurnedItemNotFound(id string) *itemNotFound {
	return &itemNotFound{Code: strconv.Itoa(int(BurnedItemNotFound)), ID: id}
}

func NewSwapNotFound(id string) *itemNotFound {
	return &itemNotFound{Code: strconv.Itoa(int(SwapNotFound)), ID: id}
}

func NewMarketMakerNotFound(address string) *itemNotFound {
	return &itemNotFound{Code: strconv.Itoa(int(MarketMakerNotFound)), ID: address}
}

func NewVestingNotFound(address string) *itemNotFound {
	return &itemNotFound{Code: strconv.Itoa(int(VestingNotFound)), ID: address}
}

type notOracleAuthority struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewNotOracleAuthority(address string) *notOracleAuthority {
	return &notOracleAuthority{Code: strconv.Itoa(int(NotOracleAuthority)), Address: address}
}

type swapState struct {
	Code   string `json:"code,omitempty"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Owner  string `json:"owner,omitempty"`
}

func NewSwapNotActive(id string, status string) *swapState {
	return &swapState{Code: strconv.Itoa(int(SwapNotActive)), ID: id, Status: status}
}

func NewIsNotOwnerOfSwap(id string, owner string) *swapState {
	return &swapState{Code: strconv.Itoa(int(IsNotOwnerOfSwap)), ID: id, Owner: owner}
}

type assetPair struct {
	Code      string `json:"code,omitempty"`
	AssetFrom string `json:"asset_from,omitempty"`
	AssetTo   string `json:"asset_to,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func NewSameAssetPair(asset string) *assetPair {
	return &assetPair{Code: strconv.Itoa(int(SameAssetPair)), AssetFrom: asset, AssetTo: asset}
}

func NewAssetPairMismatch(requestID string, assetFrom string, assetTo string) *assetPair {
	return &assetPair{Code: strconv.Itoa(int(AssetPairMismatch)), RequestID: requestID, AssetFrom: assetFrom, AssetTo: assetTo}
}

type overFill struct {
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Remaining string `json:"remaining,omitempty"`
	Wanted    string `json:"wanted,omitempty"`
}

func NewOverFill(requestID string, remaining string, wanted string) *overFill {
	return &overFill{Code: strconv.Itoa(int(OverFill)), RequestID: requestID, Remaining: remaining, Wanted: wanted}
}

type slippageExceeded struct {
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Slippage  string `json:"slippage,omitempty"`
}

func NewSlippageExceeded(requestID string, slippage string) *slippageExceeded {
	return &slippageExceeded{Code: strconv.Itoa(int(SlippageExceeded)), RequestID: requestID, Slippage: slippage}
}

func NewEmptyConfirmations() *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(EmptyConfirmations)), Field: "confirmations", Value: "0"}
}

type decodeError struct {
	Code string `json:"code,omitempty"`
}

func NewDecodeError() *decodeError {
	return &decodeError{Code: strconv.Itoa(int(DecodeError))}
}

type unknownCall struct {
	Code string `json:"code,omitempty"`
	Type string `json:"type,omitempty"`
}

func NewUnknownCall(callType string) *unknownCall {
	return &unknownCall{Code: strconv.Itoa(int(UnknownCall)), Type: callType}
}
