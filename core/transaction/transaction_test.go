package transaction

import (
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	db "github.com/tendermint/tm-db"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/oracle"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/core/state/vesting"
	"github.com/tidelabs/tidecore/core/types"
)

var (
	memberA       = types.Address{0xa1}
	memberB       = types.Address{0xa2}
	memberC       = types.Address{0xa3}
	alice         = types.Address{0xb1}
	bob           = types.Address{0xb2}
	marketMaker   = types.Address{0xc1}
	oracleAccount = types.Address{0xc2}
	treasury      = types.Address{0xd1}

	native = types.NativeCurrency()
	usdt   = types.WrappedCurrency(4)
)

var txNonce uint64

func genesis() types.AppState {
	return types.AppState{
		Params: types.NewGenesisParams(types.DefaultParams()),
		Assets: []types.Asset{
			{Currency: native, Name: "Tide", Symbol: "TIDE", Decimals: 12, Enabled: true},
			{Currency: usdt, Name: "Tether", Symbol: "USDT", Decimals: 6, Enabled: true},
		},
		Accounts: []types.Account{
			{
				Address: alice,
				Balance: []types.Balance{{Currency: native, Value: "1000"}, {Currency: usdt, Value: "500"}},
			},
			{
				Address: marketMaker,
				Balance: []types.Balance{{Currency: native, Value: "1000"}, {Currency: usdt, Value: "500"}},
			},
		},
		Quorum: types.Quorum{
			Enabled:   true,
			Members:   []types.Address{memberA, memberB, memberC},
			Threshold: 2,
		},
		Oracle: types.Oracle{
			Enabled:      true,
			Account:      &oracleAccount,
			MarketMakers: []types.Address{marketMaker},
		},
		Vesting: types.Vesting{Treasury: treasury},
	}
}

func getState(t *testing.T, modify func(appState *types.AppState)) *state.State {
	t.Helper()

	s, err := state.NewState(0, db.NewMemDB(), nil, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	appState := genesis()
	if modify != nil {
		modify(&appState)
	}
	if err := s.Import(appState); err != nil {
		t.Fatal(err)
	}

	return s
}

func encodeTx(t *testing.T, txType TxType, data interface{}) []byte {
	t.Helper()

	encodedData, err := rlp.EncodeToBytes(data)
	if err != nil {
		t.Fatal(err)
	}

	tx := Transaction{
		Nonce: atomic.AddUint64(&txNonce, 1),
		Type:  txType,
		Data:  encodedData,
	}

	encodedTx, err := tx.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	return encodedTx
}

func runTx(t *testing.T, context state.Interface, auth AuthContext, data Data, block uint64) Response {
	t.Helper()
	return NewExecutor(GetData).RunTx(context, auth, encodeTx(t, data.TxType(), data), block)
}

func mustRun(t *testing.T, context state.Interface, auth AuthContext, data Data, block uint64) Response {
	t.Helper()

	response := runTx(t, context, auth, data, block)
	if response.Code != code.OK {
		t.Fatalf("Response code is not 0. Error: %s", response.Log)
	}
	return response
}

func expectCode(t *testing.T, response Response, expected uint32) {
	t.Helper()

	if response.Code != expected {
		t.Fatalf("Response code is not %d, got %d. Error: %s", expected, response.Code, response.Log)
	}
}

func checkState(t *testing.T, s *state.State) {
	t.Helper()

	if err := s.Check(); err != nil {
		t.Fatal(err)
	}
}

func expectBalance(t *testing.T, s *state.State, address types.Address, currency types.CurrencyID, expected uint64) {
	t.Helper()

	if balance := s.Accounts.GetBalance(address, currency); !balance.Eq(uint256.NewInt(expected)) {
		t.Fatalf("Balance of %s in %s is not correct. Expected %d, got %s", address, currency, expected, balance.Dec())
	}
}

func expectHeld(t *testing.T, s *state.State, address types.Address, currency types.CurrencyID, expected uint64) {
	t.Helper()

	if held := s.Accounts.GetHeld(address, currency); !held.Eq(uint256.NewInt(expected)) {
		t.Fatalf("Held balance of %s in %s is not correct. Expected %d, got %s", address, currency, expected, held.Dec())
	}
}

func findTag(response Response, key string) (string, bool) {
	for _, tag := range response.Tags {
		if string(tag.Key) == key {
			return string(tag.Value), true
		}
	}
	return "", false
}

func mintProposal(account types.Address, amount uint64, externalTx string) SubmitProposalData {
	return SubmitProposalData{Proposal: quorum.ProposalData{
		Kind:           quorum.KindMint,
		Account:        account,
		Currency:       usdt,
		Amount:         uint256.NewInt(amount),
		ExternalTxHash: externalTx,
	}}
}

func TestExecutorRejectsMalformedTx(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)
	executor := NewExecutor(GetData)

	response := executor.RunTx(cState, SignedAuth(alice), []byte{0x01, 0x02, 0x03}, 1)
	expectCode(t, response, code.DecodeError)

	response = executor.RunTx(cState, SignedAuth(alice), make([]byte, maxTxLength+1), 1)
	expectCode(t, response, code.DecodeError)

	response = executor.RunTx(cState, SignedAuth(alice), encodeTx(t, TxType(0x7f), ClaimData{}), 1)
	expectCode(t, response, code.UnknownCall)
}

func TestExecutorChecksOrigin(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	transfer := TransferData{Currency: native, To: bob, Value: uint256.NewInt(10)}
	expectCode(t, runTx(t, cState, RootAuth(), transfer, 1), code.BadOrigin)
	expectCode(t, runTx(t, cState, AuthContext{}, transfer, 1), code.BadOrigin)
	expectCode(t, runTx(t, cState, SignedAuth(alice), SetOracleStatusData{Enabled: false}, 1), code.BadOrigin)
	expectCode(t, runTx(t, cState, SignedAuth(alice), mintProposal(alice, 1, "0x01"), 1), code.NotMember)
	expectCode(t, runTx(t, cState, SignedAuth(alice), MarketMakerData{Account: bob, add: true}, 1), code.NotOracleAuthority)

	expectBalance(t, cState, alice, native, 1000)
}

func TestTransferTx(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(alice), TransferData{Currency: native, To: bob, Value: uint256.NewInt(10)}, 1)

	expectBalance(t, cState, alice, native, 990)
	expectBalance(t, cState, bob, native, 10)

	if from, ok := findTag(response, "tx.from"); !ok || from == "" {
		t.Fatalf("tx.from tag is missing")
	}
	if origin, _ := findTag(response, "tx.origin"); origin != "signed" {
		t.Fatalf("invalid tx.origin tag %q", origin)
	}

	expectCode(t, runTx(t, cState, SignedAuth(bob), TransferData{Currency: native, To: alice, Value: uint256.NewInt(11)}, 1), code.InsufficientFunds)
	expectCode(t, runTx(t, cState, SignedAuth(bob), TransferData{Currency: native, To: alice, Value: new(uint256.Int)}, 1), code.ZeroAmount)

	checkState(t, cState)
}

func TestCheckStateDoesNotChangeState(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := runTx(t, state.NewCheckState(cState), SignedAuth(alice), TransferData{Currency: native, To: bob, Value: uint256.NewInt(10)}, 1)
	expectCode(t, response, code.OK)
	if len(response.Tags) != 0 {
		t.Fatalf("check response carries tags: %v", response.Tags)
	}

	expectBalance(t, cState, alice, native, 1000)
	expectBalance(t, cState, bob, native, 0)
}

func TestMintProposalAcceptedByThreshold(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0xabc"), 1)
	id := types.BytesToHash(response.Data)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusActive.String() {
		t.Fatalf("proposal should stay active, got %s", status)
	}
	expectBalance(t, cState, alice, usdt, 500)

	expectCode(t, runTx(t, cState, SignedAuth(memberB), mintProposal(alice, 100, "0xabc"), 1), code.ProposalAlreadyExists)

	response = mustRun(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id, approve: true}, 2)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusAccepted.String() {
		t.Fatalf("proposal should be accepted, got %s", status)
	}

	expectBalance(t, cState, alice, usdt, 600)
	if issuance := cState.Assets.GetInfo(usdt).GetIssuance(); !issuance.Eq(uint256.NewInt(1100)) {
		t.Fatalf("issuance of usdt is not correct, got %s", issuance.Dec())
	}

	expectCode(t, runTx(t, cState, SignedAuth(memberC), VoteProposalData{ProposalID: id, approve: true}, 3), code.ProposalNotActive)
	expectCode(t, runTx(t, cState, SignedAuth(memberC), mintProposal(alice, 100, "0xabc"), 3), code.ProposalAlreadyExists)

	checkState(t, cState)
}

func TestProposalRejectedWhenThresholdUnreachable(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0xdef"), 1)
	id := types.BytesToHash(response.Data)

	response = mustRun(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id}, 2)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusActive.String() {
		t.Fatalf("proposal should stay active, got %s", status)
	}

	response = mustRun(t, cState, SignedAuth(memberC), VoteProposalData{ProposalID: id}, 3)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusRejected.String() {
		t.Fatalf("proposal should be rejected, got %s", status)
	}
	expectBalance(t, cState, alice, usdt, 500)

	// the reference of a rejected proposal may be proposed again
	mustRun(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0xdef"), 4)
}

func TestProposalAlreadyVoted(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0x01"), 1)
	id := types.BytesToHash(response.Data)

	expectCode(t, runTx(t, cState, SignedAuth(memberA), VoteProposalData{ProposalID: id, approve: true}, 2), code.AlreadyVoted)
	expectCode(t, runTx(t, cState, SignedAuth(memberA), VoteProposalData{ProposalID: id}, 2), code.AlreadyVoted)
	expectCode(t, runTx(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: types.Hash{1}, approve: true}, 2), code.ProposalNotFound)
}

func TestProposalsCap(t *testing.T) {
	t.Parallel()
	cState := getState(t, func(appState *types.AppState) {
		appState.Params.ProposalsCap = 1
	})

	mustRun(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0x01"), 1)
	expectCode(t, runTx(t, cState, SignedAuth(memberB), mintProposal(alice, 100, "0x02"), 1), code.ProposalsCapExceeded)
}

func TestProposalThresholdReadOnEvaluation(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0x01"), 1)
	id := types.BytesToHash(response.Data)

	expectCode(t, runTx(t, cState, SignedAuth(memberA), EvalProposalStateData{ProposalID: id}, 2), code.ThresholdNotMet)

	mustRun(t, cState, RootAuth(), SetQuorumConfigurationData{Members: []types.Address{memberA, memberB, memberC}, Threshold: 1}, 2)

	response = mustRun(t, cState, SignedAuth(memberA), EvalProposalStateData{ProposalID: id}, 3)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusAccepted.String() {
		t.Fatalf("proposal should be accepted, got %s", status)
	}
	expectBalance(t, cState, alice, usdt, 600)

	checkState(t, cState)
}

func burnProposal(account types.Address, amount uint64, externalTx string) SubmitProposalData {
	return SubmitProposalData{Proposal: quorum.ProposalData{
		Kind:           quorum.KindBurn,
		Account:        account,
		Currency:       usdt,
		Amount:         uint256.NewInt(amount),
		ExternalTxHash: externalTx,
	}}
}

func countExecutionFailures(t *testing.T, events eventsdb.IEventsDB, height uint32) int {
	t.Helper()

	if err := events.CommitEvents(height); err != nil {
		t.Fatal(err)
	}

	var count int
	for _, event := range events.LoadEvents(height) {
		if _, ok := event.(*eventsdb.ProposalExecutionFailedEvent); ok {
			count++
		}
	}
	return count
}

func TestFailedProposalClosedByReject(t *testing.T) {
	t.Parallel()
	events := eventsdb.NewEventsStore(db.NewMemDB())
	cState, err := state.NewState(0, db.NewMemDB(), events, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := cState.Import(genesis()); err != nil {
		t.Fatal(err)
	}

	response := mustRun(t, cState, SignedAuth(memberA), burnProposal(alice, 10000, "0xb1"), 1)
	id := types.BytesToHash(response.Data)

	response = mustRun(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id, approve: true}, 2)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusActive.String() {
		t.Fatalf("proposal should stay active, got %s", status)
	}
	if executionCode, _ := findTag(response, "tx.execution_code"); executionCode != "107" {
		t.Fatalf("expected execution code 107, got %q", executionCode)
	}
	if count := countExecutionFailures(t, events, 2); count != 1 {
		t.Fatalf("expected 1 execution failure event, got %d", count)
	}
	if !cState.Quorum.GetProposal(id).IsExecutionFailed() {
		t.Fatal("proposal is not marked as failed")
	}
	expectBalance(t, cState, alice, usdt, 500)

	// evaluation reports the failure without recording it again
	expectCode(t, runTx(t, cState, SignedAuth(memberC), EvalProposalStateData{ProposalID: id}, 3), code.ProposalExecutionFailed)
	if count := countExecutionFailures(t, events, 3); count != 0 {
		t.Fatalf("evaluation emitted %d execution failure events", count)
	}

	response = mustRun(t, cState, SignedAuth(memberC), VoteProposalData{ProposalID: id}, 4)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusRejected.String() {
		t.Fatalf("proposal should be rejected, got %s", status)
	}
	if status := cState.Quorum.GetProposal(id).GetStatus(); status != quorum.StatusRejected {
		t.Fatalf("proposal should be rejected, got %s", status)
	}
	if active := cState.Quorum.ActiveProposals(); active != 0 {
		t.Fatalf("expected no active proposals, got %d", active)
	}
	expectBalance(t, cState, alice, usdt, 500)

	// the reference is free again
	mustRun(t, cState, SignedAuth(memberA), burnProposal(alice, 100, "0xb1"), 5)

	checkState(t, cState)
}

func TestFailedProposalApprovalWithdrawn(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(memberA), burnProposal(alice, 10000, "0xb2"), 1)
	id := types.BytesToHash(response.Data)

	// a reject before any execution failure is a plain vote
	expectCode(t, runTx(t, cState, SignedAuth(memberA), VoteProposalData{ProposalID: id}, 2), code.AlreadyVoted)

	mustRun(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id, approve: true}, 2)
	expectCode(t, runTx(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id, approve: true}, 3), code.AlreadyVoted)

	response = mustRun(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id}, 3)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusRejected.String() {
		t.Fatalf("proposal should be rejected, got %s", status)
	}
	if vote, ok := cState.Quorum.GetProposal(id).VoteOf(memberB); !ok || vote.Approve {
		t.Fatalf("vote of %s should be replaced by a reject", memberB)
	}
	if active := cState.Quorum.ActiveProposals(); active != 0 {
		t.Fatalf("expected no active proposals, got %d", active)
	}
}

func TestFailedProposalRetriedByEvaluation(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(memberA), burnProposal(alice, 800, "0xb3"), 1)
	id := types.BytesToHash(response.Data)

	response = mustRun(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id, approve: true}, 2)
	if executionCode, _ := findTag(response, "tx.execution_code"); executionCode != "107" {
		t.Fatalf("expected execution code 107, got %q", executionCode)
	}
	expectCode(t, runTx(t, cState, SignedAuth(memberA), EvalProposalStateData{ProposalID: id}, 3), code.ProposalExecutionFailed)

	mustRun(t, cState, SignedAuth(marketMaker), TransferData{Currency: usdt, To: alice, Value: uint256.NewInt(500)}, 3)

	response = mustRun(t, cState, SignedAuth(memberC), EvalProposalStateData{ProposalID: id}, 4)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusAccepted.String() {
		t.Fatalf("proposal should be accepted, got %s", status)
	}
	expectBalance(t, cState, alice, usdt, 200)
	if active := cState.Quorum.ActiveProposals(); active != 0 {
		t.Fatalf("expected no active proposals, got %d", active)
	}

	// an accepted reference stays taken
	expectCode(t, runTx(t, cState, SignedAuth(memberA), burnProposal(alice, 100, "0xb3"), 5), code.ProposalAlreadyExists)

	checkState(t, cState)
}

func TestUpdateConfigurationProposal(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	update := SubmitProposalData{Proposal: quorum.ProposalData{
		Kind:      quorum.KindUpdateConfiguration,
		Members:   []types.Address{memberA, memberB},
		Threshold: 1,
	}}
	response := mustRun(t, cState, SignedAuth(memberA), update, 1)
	id := types.BytesToHash(response.Data)

	response = mustRun(t, cState, SignedAuth(memberC), VoteProposalData{ProposalID: id, approve: true}, 2)
	if status, _ := findTag(response, "tx.proposal_status"); status != quorum.StatusAccepted.String() {
		t.Fatalf("proposal should be accepted, got %s", status)
	}

	config := cState.Quorum.Config()
	if len(config.Members) != 2 || config.Threshold != 1 {
		t.Fatalf("configuration is not updated: %d members, threshold %d", len(config.Members), config.Threshold)
	}

	expectCode(t, runTx(t, cState, SignedAuth(memberC), mintProposal(alice, 100, "0x05"), 3), code.NotMember)

	// a single vote now meets the threshold
	mustRun(t, cState, SignedAuth(memberB), mintProposal(alice, 100, "0x05"), 3)
	expectBalance(t, cState, alice, usdt, 600)

	checkState(t, cState)
}

func TestProposalExpired(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)
	lifetime := cState.App.Params().ProposalLifetime

	response := mustRun(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0x01"), 1)
	id := types.BytesToHash(response.Data)

	expectCode(t, runTx(t, cState, SignedAuth(memberB), VoteProposalData{ProposalID: id, approve: true}, 1+lifetime), code.ProposalExpired)

	proposals, _ := SweepExpired(cState, 1+lifetime)
	if proposals != 1 {
		t.Fatalf("expected 1 swept proposal, got %d", proposals)
	}
	if cState.Quorum.GetProposal(id) != nil {
		t.Fatalf("expired proposal is not purged")
	}
	if _, ok := cState.Quorum.ProposalByExternalRef(types.Keccak256([]byte("0x01"))); ok {
		t.Fatalf("reference of expired proposal is still indexed")
	}
	if cState.App.LastSweptHeight() != 1+lifetime {
		t.Fatalf("last swept height is %d", cState.App.LastSweptHeight())
	}
}

func TestQuorumDisabled(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	mustRun(t, cState, RootAuth(), SetQuorumStatusData{Enabled: false}, 1)
	expectCode(t, runTx(t, cState, SignedAuth(memberA), mintProposal(alice, 100, "0x01"), 1), code.QuorumDisabled)
	expectCode(t, runTx(t, cState, SignedAuth(alice), WithdrawalData{Currency: usdt, Amount: uint256.NewInt(1), ExternalAddress: "0x01"}, 1), code.QuorumDisabled)
}

func TestSubmitPublicKeys(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	keys := SubmitPublicKeysData{Keys: []PublicKeyItem{{Currency: usdt, PublicKey: "0x02aa"}}}
	mustRun(t, cState, SignedAuth(memberA), keys, 1)
	expectCode(t, runTx(t, cState, SignedAuth(memberA), keys, 2), code.PublicKeyAlreadyExists)

	if list := cState.Quorum.GetPublicKeys(usdt); len(list) != 1 || list[0].Key != "0x02aa" {
		t.Fatalf("invalid public keys %v", list)
	}
}

func TestWithdrawalAcknowledgedIdempotently(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	expectCode(t, runTx(t, cState, SignedAuth(alice), WithdrawalData{Currency: native, Amount: uint256.NewInt(50), ExternalAddress: "0xfe"}, 1), code.InvalidCurrency)

	response := mustRun(t, cState, SignedAuth(alice), WithdrawalData{Currency: usdt, Amount: uint256.NewInt(50), ExternalAddress: "0xfe"}, 1)
	id := types.BytesToHash(response.Data)

	expectBalance(t, cState, alice, usdt, 450)
	expectHeld(t, cState, alice, usdt, 50)

	for i := 0; i < 2; i++ {
		response = mustRun(t, cState, SignedAuth(memberA), AcknowledgeBurnedData{ItemID: id}, 2)
		if burned, _ := findTag(response, "tx.burned"); burned != "false" {
			t.Fatalf("item should not be burned after the first member")
		}
	}
	if item := cState.Quorum.GetBurned(id); item == nil || len(item.Attestations) != 1 {
		t.Fatalf("repeated attestation of a member is counted: %+v", item)
	}

	response = mustRun(t, cState, SignedAuth(memberB), AcknowledgeBurnedData{ItemID: id}, 3)
	if burned, _ := findTag(response, "tx.burned"); burned != "true" {
		t.Fatalf("item should be burned")
	}

	expectBalance(t, cState, alice, usdt, 450)
	expectHeld(t, cState, alice, usdt, 0)
	if issuance := cState.Assets.GetInfo(usdt).GetIssuance(); !issuance.Eq(uint256.NewInt(950)) {
		t.Fatalf("issuance of usdt is not correct, got %s", issuance.Dec())
	}

	expectCode(t, runTx(t, cState, SignedAuth(memberB), AcknowledgeBurnedData{ItemID: id}, 4), code.BurnedItemNotFound)
	expectHeld(t, cState, alice, usdt, 0)

	checkState(t, cState)
}

func TestSwapFilledByTwoConfirmations(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(alice), SwapData{
		AssetFrom:  native,
		AmountFrom: uint256.NewInt(100),
		AssetTo:    usdt,
		AmountTo:   uint256.NewInt(200),
		SwapType:   oracle.SwapMarket,
	}, 1)
	request := types.BytesToHash(response.Data)
	expectBalance(t, cState, alice, native, 900)
	expectHeld(t, cState, alice, native, 100)

	response = mustRun(t, cState, SignedAuth(marketMaker), SwapData{
		AssetFrom:  usdt,
		AmountFrom: uint256.NewInt(400),
		AssetTo:    native,
		AmountTo:   uint256.NewInt(200),
		SwapType:   oracle.SwapLimit,
		Slippage:   types.PermillFromPercent(1),
	}, 1)
	counterpart := types.BytesToHash(response.Data)
	if mm, _ := findTag(response, "tx.market_maker"); mm != "true" {
		t.Fatalf("market maker request is not flagged")
	}
	expectHeld(t, cState, marketMaker, usdt, 0)

	expectCode(t, runTx(t, cState, SignedAuth(alice), ConfirmSwapData{RequestID: request, Confirmations: []SwapConfirmation{
		{RequestID: counterpart, AmountToReceive: uint256.NewInt(120), AmountToSend: uint256.NewInt(60)},
	}}, 2), code.NotOracleAuthority)

	response = mustRun(t, cState, SignedAuth(oracleAccount), ConfirmSwapData{RequestID: request, Confirmations: []SwapConfirmation{
		{RequestID: counterpart, AmountToReceive: uint256.NewInt(120), AmountToSend: uint256.NewInt(60)},
		{RequestID: counterpart, AmountToReceive: uint256.NewInt(80), AmountToSend: uint256.NewInt(40)},
	}}, 2)

	var results []ConfirmationResult
	if err := json.Unmarshal(response.Data, &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Code != code.OK || results[1].Code != code.OK {
		t.Fatalf("invalid confirmation results %+v", results)
	}

	expectBalance(t, cState, alice, native, 900)
	expectHeld(t, cState, alice, native, 0)
	expectBalance(t, cState, alice, usdt, 700)
	expectBalance(t, cState, marketMaker, native, 1100)
	expectBalance(t, cState, marketMaker, usdt, 300)

	if cState.Oracle.GetSwap(request) != nil {
		t.Fatalf("completed request is still queued")
	}
	swap := cState.Oracle.GetSwap(counterpart)
	if swap == nil || swap.GetStatus() != oracle.StatusPartiallyFilled {
		t.Fatalf("counterpart should be partially filled")
	}
	if remaining := swap.RemainingFrom(); !remaining.Eq(uint256.NewInt(200)) {
		t.Fatalf("counterpart remaining is %s", remaining.Dec())
	}

	checkState(t, cState)
}

func TestConfirmSwapSkipsInvalidConfirmations(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	response := mustRun(t, cState, SignedAuth(alice), SwapData{
		AssetFrom:  native,
		AmountFrom: uint256.NewInt(100),
		AssetTo:    usdt,
		AmountTo:   uint256.NewInt(200),
	}, 1)
	request := types.BytesToHash(response.Data)

	response = mustRun(t, cState, SignedAuth(marketMaker), SwapData{
		AssetFrom:  usdt,
		AmountFrom: uint256.NewInt(200),
		AssetTo:    native,
		AmountTo:   uint256.NewInt(100),
	}, 1)
	counterpart := types.BytesToHash(response.Data)

	response = mustRun(t, cState, RootAuth(), ConfirmSwapData{RequestID: request, Confirmations: []SwapConfirmation{
		{RequestID: types.Hash{1}, AmountToReceive: uint256.NewInt(10), AmountToSend: uint256.NewInt(5)},
		{RequestID: counterpart, AmountToReceive: uint256.NewInt(10), AmountToSend: uint256.NewInt(500)},
		{RequestID: counterpart, AmountToReceive: uint256.NewInt(20), AmountToSend: uint256.NewInt(10)},
	}}, 2)

	var results []ConfirmationResult
	if err := json.Unmarshal(response.Data, &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 || results[0].Code != code.SwapNotFound || results[1].Code != code.OverFill || results[2].Code != code.OK {
		t.Fatalf("invalid confirmation results %+v", results)
	}
	if skipped, _ := findTag(response, "tx.confirmations_skipped"); skipped != "2" {
		t.Fatalf("invalid skipped tag %q", skipped)
	}

	expectHeld(t, cState, alice, native, 90)
	expectBalance(t, cState, alice, usdt, 520)

	expectCode(t, runTx(t, cState, RootAuth(), ConfirmSwapData{RequestID: request}, 2), code.EmptyConfirmations)

	checkState(t, cState)
}

func TestCancelSwap(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	expectCode(t, runTx(t, cState, SignedAuth(alice), SwapData{
		AssetFrom:  native,
		AmountFrom: uint256.NewInt(10),
		AssetTo:    native,
		AmountTo:   uint256.NewInt(10),
	}, 1), code.SameAssetPair)

	response := mustRun(t, cState, SignedAuth(alice), SwapData{
		AssetFrom:  native,
		AmountFrom: uint256.NewInt(100),
		AssetTo:    usdt,
		AmountTo:   uint256.NewInt(200),
	}, 1)
	request := types.BytesToHash(response.Data)

	expectCode(t, runTx(t, cState, SignedAuth(bob), CancelSwapData{RequestID: request}, 2), code.IsNotOwnerOfSwap)

	mustRun(t, cState, RootAuth(), SetOracleStatusData{Enabled: false}, 2)
	mustRun(t, cState, SignedAuth(alice), CancelSwapData{RequestID: request}, 2)

	expectBalance(t, cState, alice, native, 1000)
	expectHeld(t, cState, alice, native, 0)
	if cState.Oracle.GetSwap(request) != nil {
		t.Fatalf("cancelled request is still queued")
	}

	expectCode(t, runTx(t, cState, SignedAuth(alice), CancelSwapData{RequestID: request}, 3), code.SwapNotFound)
	expectCode(t, runTx(t, cState, SignedAuth(alice), SwapData{
		AssetFrom:  native,
		AmountFrom: uint256.NewInt(100),
		AssetTo:    usdt,
		AmountTo:   uint256.NewInt(200),
	}, 3), code.OracleDisabled)

	checkState(t, cState)
}

func TestSwapExpired(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)
	lifetime := cState.App.Params().SwapLifetime

	response := mustRun(t, cState, SignedAuth(alice), SwapData{
		AssetFrom:  native,
		AmountFrom: uint256.NewInt(100),
		AssetTo:    usdt,
		AmountTo:   uint256.NewInt(200),
	}, 1)
	request := types.BytesToHash(response.Data)

	if _, swaps := SweepExpired(cState, lifetime); swaps != 0 {
		t.Fatalf("request expired too early")
	}
	if _, swaps := SweepExpired(cState, 1+lifetime); swaps != 1 {
		t.Fatalf("request is not expired")
	}

	if cState.Oracle.GetSwap(request) != nil {
		t.Fatalf("expired request is still queued")
	}
	expectBalance(t, cState, alice, native, 1000)
	expectHeld(t, cState, alice, native, 0)
}

func TestMarketMakers(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	expectCode(t, runTx(t, cState, SignedAuth(oracleAccount), MarketMakerData{Account: bob}, 1), code.MarketMakerNotFound)
	mustRun(t, cState, SignedAuth(oracleAccount), MarketMakerData{Account: bob, add: true}, 1)
	if !cState.Oracle.IsMarketMaker(bob) {
		t.Fatalf("%s is not a market maker", bob)
	}

	mustRun(t, cState, RootAuth(), MarketMakerData{Account: bob}, 2)
	if cState.Oracle.IsMarketMaker(bob) {
		t.Fatalf("%s is still a market maker", bob)
	}

	mustRun(t, cState, RootAuth(), SetOracleAccountData{Account: bob}, 3)
	expectCode(t, runTx(t, cState, SignedAuth(oracleAccount), MarketMakerData{Account: alice, add: true}, 3), code.NotOracleAuthority)
}

func TestVestedTransferAndClaim(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	schedule := vesting.Schedule{Start: 0, Period: 10, PeriodCount: 2, PerPeriod: uint256.NewInt(10)}
	mustRun(t, cState, SignedAuth(alice), VestedTransferData{Dest: bob, Schedule: schedule}, 1)

	expectBalance(t, cState, alice, native, 980)
	expectBalance(t, cState, bob, native, 20)
	if lock := cState.Accounts.GetLock(bob, vesting.LockID); lock == nil || !lock.Eq(uint256.NewInt(20)) {
		t.Fatalf("vesting lock is not correct: %v", lock)
	}
	expectCode(t, runTx(t, cState, SignedAuth(bob), TransferData{Currency: native, To: alice, Value: uint256.NewInt(1)}, 1), code.LiquidityRestricts)

	mustRun(t, cState, SignedAuth(bob), ClaimData{}, 10)
	if lock := cState.Accounts.GetLock(bob, vesting.LockID); lock == nil || !lock.Eq(uint256.NewInt(10)) {
		t.Fatalf("vesting lock is not correct: %v", lock)
	}
	if spendable := cState.Accounts.GetSpendable(bob, native); !spendable.Eq(uint256.NewInt(10)) {
		t.Fatalf("spendable balance is %s", spendable.Dec())
	}

	mustRun(t, cState, SignedAuth(alice), ClaimForData{Dest: bob}, 20)
	if lock := cState.Accounts.GetLock(bob, vesting.LockID); lock != nil {
		t.Fatalf("vesting lock is not removed: %s", lock.Dec())
	}
	if schedules := cState.Vesting.GetSchedules(bob); len(schedules) != 0 {
		t.Fatalf("vested schedules are not dropped: %v", schedules)
	}

	// nothing to claim
	mustRun(t, cState, SignedAuth(bob), ClaimData{}, 21)

	expectCode(t, runTx(t, cState, SignedAuth(alice), VestedTransferData{Dest: bob, Schedule: vesting.Schedule{Period: 0, PeriodCount: 2, PerPeriod: uint256.NewInt(10)}}, 21), code.ZeroVestingPeriod)

	checkState(t, cState)
}

func TestVestingSchedulesCap(t *testing.T) {
	t.Parallel()
	cState := getState(t, func(appState *types.AppState) {
		appState.Params.MaxVestingSchedules = 1
	})

	schedule := vesting.Schedule{Start: 5, Period: 10, PeriodCount: 1, PerPeriod: uint256.NewInt(10)}
	mustRun(t, cState, SignedAuth(alice), VestedTransferData{Dest: bob, Schedule: schedule}, 1)
	expectCode(t, runTx(t, cState, SignedAuth(alice), VestedTransferData{Dest: bob, Schedule: schedule}, 1), code.MaxVestingSchedulesExceeded)
}

func TestUpdateAndStopVestingSchedules(t *testing.T) {
	t.Parallel()
	cState := getState(t, nil)

	schedule := vesting.Schedule{Start: 0, Period: 10, PeriodCount: 2, PerPeriod: uint256.NewInt(10)}
	mustRun(t, cState, SignedAuth(alice), VestedTransferData{Dest: bob, Schedule: schedule}, 1)

	tooLarge := vesting.Schedule{Start: 0, Period: 10, PeriodCount: 2, PerPeriod: uint256.NewInt(50)}
	expectCode(t, runTx(t, cState, RootAuth(), UpdateVestingSchedulesData{Who: bob, Schedules: []vesting.Schedule{tooLarge}}, 1), code.InsufficientFunds)
	expectCode(t, runTx(t, cState, SignedAuth(bob), UpdateVestingSchedulesData{Who: bob}, 1), code.BadOrigin)

	mustRun(t, cState, RootAuth(), StopVestingSchedulesData{Who: bob}, 10)

	expectBalance(t, cState, bob, native, 10)
	expectBalance(t, cState, treasury, native, 10)
	if lock := cState.Accounts.GetLock(bob, vesting.LockID); lock != nil {
		t.Fatalf("vesting lock is not removed: %s", lock.Dec())
	}

	expectCode(t, runTx(t, cState, RootAuth(), StopVestingSchedulesData{Who: bob}, 11), code.VestingNotFound)

	mustRun(t, cState, RootAuth(), UpdateVestingSchedulesData{Who: bob, Schedules: []vesting.Schedule{
		{Start: 20, Period: 5, PeriodCount: 2, PerPeriod: uint256.NewInt(5)},
	}}, 12)
	if lock := cState.Accounts.GetLock(bob, vesting.LockID); lock == nil || !lock.Eq(uint256.NewInt(10)) {
		t.Fatalf("vesting lock is not correct: %v", lock)
	}

	checkState(t, cState)
}

func TestRegisterAsset(t *testing.T) {
	t.Parallel()
	cState := getState(t, func(appState *types.AppState) {
		appState.AssetOwner = &bob
	})

	btc := types.WrappedCurrency(1)
	expectCode(t, runTx(t, cState, SignedAuth(alice), RegisterAssetData{Currency: btc, Name: "Bitcoin", Symbol: "BTC", Decimals: 8}, 1), code.BadOrigin)
	mustRun(t, cState, SignedAuth(bob), RegisterAssetData{Currency: btc, Name: "Bitcoin", Symbol: "BTC", Decimals: 8}, 1)
	expectCode(t, runTx(t, cState, RootAuth(), RegisterAssetData{Currency: btc, Name: "Bitcoin", Symbol: "BTC", Decimals: 8}, 1), code.AssetAlreadyExists)

	mustRun(t, cState, RootAuth(), SetAssetStatusData{Currency: btc, Enabled: false}, 2)
	if cState.Assets.GetInfo(btc).IsEnabled() {
		t.Fatalf("asset is still enabled")
	}
	expectCode(t, runTx(t, cState, RootAuth(), SetAssetStatusData{Currency: native, Enabled: false}, 2), code.InvalidCurrency)
}
