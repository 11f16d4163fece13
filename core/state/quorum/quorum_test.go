package quorum

import (
	"testing"

	"github.com/holiman/uint256"
	db "github.com/tendermint/tm-db"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/tree"
)

var (
	memberA = types.Address{1}
	memberB = types.Address{2}
	memberC = types.Address{3}
	account = types.Address{9}
)

func newQuorum(t *testing.T) (*Quorum, tree.MTree) {
	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	if err != nil {
		t.Fatal(err)
	}
	q := NewQuorum(bus.NewBus(), mutableTree.GetLastImmutable())
	q.SetEnabled(true)
	q.SetConfiguration([]types.Address{memberA, memberB, memberC}, 2)
	return q, mutableTree
}

func mintData(ref string) ProposalData {
	return ProposalData{
		Kind:           KindMint,
		Account:        account,
		Currency:       types.WrappedCurrency(1),
		Amount:         uint256.NewInt(100),
		ExternalTxHash: ref,
	}
}

func TestQuorum_CheckConfiguration(t *testing.T) {
	t.Parallel()
	q, _ := newQuorum(t)

	tests := []struct {
		name      string
		members   []types.Address
		threshold uint16
		code      uint32
	}{
		{"empty", nil, 1, code.InvalidConfiguration},
		{"zero threshold", []types.Address{memberA}, 0, code.InvalidConfiguration},
		{"threshold above members", []types.Address{memberA, memberB}, 3, code.InvalidConfiguration},
		{"duplicated member", []types.Address{memberA, memberA}, 1, code.InvalidConfiguration},
		{"too many members", []types.Address{memberA, memberB, memberC}, 2, code.VotesLimitExceeded},
	}
	for _, tt := range tests {
		err := q.CheckConfiguration(tt.members, tt.threshold, 2)
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if err.Code != tt.code {
			t.Fatalf("%s: expected code %d, got %d", tt.name, tt.code, err.Code)
		}
	}

	if err := q.CheckConfiguration([]types.Address{memberA, memberB}, 2, 10); err != nil {
		t.Fatal(err)
	}
}

func TestQuorum_ThresholdReadAtEvaluation(t *testing.T) {
	t.Parallel()
	q, _ := newQuorum(t)

	id := types.Keccak256([]byte("proposal"))
	proposal := q.AddProposal(id, mintData("0xabc"), memberA, 1)

	if q.ActiveProposals() != 1 {
		t.Fatalf("active proposals %d", q.ActiveProposals())
	}
	if !proposal.HasVoted(memberA) {
		t.Fatal("proposer vote is not recorded")
	}
	if status := q.Outcome(proposal); status != StatusActive {
		t.Fatalf("expected Active, got %s", status)
	}

	q.SetConfiguration([]types.Address{memberA, memberB, memberC}, 1)
	if status := q.Outcome(proposal); status != StatusAccepted {
		t.Fatalf("expected Accepted with threshold 1, got %s", status)
	}

	q.SetConfiguration([]types.Address{memberA, memberB, memberC}, 3)
	q.Vote(proposal, memberB, true)
	if status := q.Outcome(proposal); status != StatusActive {
		t.Fatalf("expected Active with threshold 3, got %s", status)
	}
	q.Vote(proposal, memberC, true)
	if status := q.Outcome(proposal); status != StatusAccepted {
		t.Fatalf("expected Accepted, got %s", status)
	}
}

func TestQuorum_Tally(t *testing.T) {
	t.Parallel()
	q, _ := newQuorum(t)

	proposal := q.AddProposal(types.Keccak256([]byte("proposal")), mintData("0xabc"), memberA, 1)
	q.Vote(proposal, memberB, false)

	yes, remaining := q.Tally(proposal)
	if yes != 1 || remaining != 1 {
		t.Fatalf("expected 1 yes and 1 remaining, got %d and %d", yes, remaining)
	}
	if status := q.Outcome(proposal); status != StatusActive {
		t.Fatalf("expected Active, got %s", status)
	}

	q.Vote(proposal, memberC, false)
	if status := q.Outcome(proposal); status != StatusRejected {
		t.Fatalf("expected Rejected, got %s", status)
	}

	// votes of removed members stay counted
	q.SetConfiguration([]types.Address{memberB, memberC}, 1)
	yes, remaining = q.Tally(proposal)
	if yes != 1 || remaining != 0 {
		t.Fatalf("expected 1 yes and 0 remaining, got %d and %d", yes, remaining)
	}
}

func TestQuorum_FinalizeAndPurge(t *testing.T) {
	t.Parallel()
	q, mutableTree := newQuorum(t)

	accepted := q.AddProposal(types.Keccak256([]byte("accepted")), mintData("0x01"), memberA, 1)
	rejected := q.AddProposal(types.Keccak256([]byte("rejected")), mintData("0x02"), memberA, 1)
	if len(q.GetWatchList(account)) != 2 {
		t.Fatalf("watch list has %d entries", len(q.GetWatchList(account)))
	}

	if _, _, err := mutableTree.Commit(q); err != nil {
		t.Fatal(err)
	}

	q = NewQuorum(bus.NewBus(), mutableTree.GetLastImmutable())
	accepted = q.GetProposal(accepted.ID())
	rejected = q.GetProposal(rejected.ID())
	if accepted == nil || rejected == nil {
		t.Fatal("proposals not restored")
	}
	if accepted.Data.Amount.Uint64() != 100 || accepted.Data.ExternalTxHash != "0x01" {
		t.Fatalf("invalid proposal data %+v", accepted.Data)
	}

	q.Finalize(accepted, StatusAccepted)
	q.Finalize(rejected, StatusRejected)
	if q.ActiveProposals() != 0 {
		t.Fatalf("active proposals %d", q.ActiveProposals())
	}

	ref1, _ := mintData("0x01").ExternalRef()
	ref2, _ := mintData("0x02").ExternalRef()
	if _, ok := q.ProposalByExternalRef(ref1); !ok {
		t.Fatal("accepted reference is not indexed")
	}
	if _, ok := q.ProposalByExternalRef(ref2); ok {
		t.Fatal("rejected reference is still indexed")
	}

	watch := q.GetWatchList(account)
	for _, entry := range watch {
		if entry.ProposalID == accepted.ID() && !entry.Confirmed {
			t.Fatal("accepted mint is not confirmed")
		}
		if entry.ProposalID == rejected.ID() && entry.Confirmed {
			t.Fatal("rejected mint is confirmed")
		}
	}

	q.Purge(accepted)
	q.Purge(rejected)
	if q.GetProposal(accepted.ID()) != nil {
		t.Fatal("proposal is not purged")
	}
	if len(q.GetWatchList(account)) != 0 {
		t.Fatal("watch entries are not dropped")
	}

	if _, _, err := mutableTree.Commit(q); err != nil {
		t.Fatal(err)
	}

	q = NewQuorum(bus.NewBus(), mutableTree.GetLastImmutable())
	if q.GetProposal(accepted.ID()) != nil || len(q.GetProposals()) != 0 {
		t.Fatal("purged proposals are stored")
	}
	if _, ok := q.ProposalByExternalRef(ref1); !ok {
		t.Fatal("accepted reference is not kept")
	}
	if !q.IsEnabled() || q.Threshold() != 2 || !q.IsMember(memberC) {
		t.Fatal("config is not restored")
	}
}

func TestQuorum_AttestIsIdempotent(t *testing.T) {
	t.Parallel()
	q, mutableTree := newQuorum(t)

	id := types.Keccak256([]byte("withdrawal"))
	q.AddBurned(id, BurnedItem{
		Account:         account,
		Currency:        types.WrappedCurrency(1),
		Amount:          uint256.NewInt(50),
		ExternalAddress: "0xdead",
		CreatedAt:       3,
	})
	if q.BurnedCount() != 1 {
		t.Fatalf("burned count %d", q.BurnedCount())
	}

	if count := q.Attest(id, memberA); count != 1 {
		t.Fatalf("expected 1 attestation, got %d", count)
	}
	if _, _, err := mutableTree.Commit(q); err != nil {
		t.Fatal(err)
	}
	hash := mutableTree.Hash()

	if count := q.Attest(id, memberA); count != 1 {
		t.Fatalf("expected 1 attestation, got %d", count)
	}
	if _, _, err := mutableTree.Commit(q); err != nil {
		t.Fatal(err)
	}
	if string(hash) != string(mutableTree.Hash()) {
		t.Fatal("repeated attestation changed state")
	}

	q.RemoveBurned(id)
	if q.GetBurned(id) != nil || q.BurnedCount() != 0 {
		t.Fatal("burned item is not removed")
	}
	if q.Attest(id, memberB) != 0 {
		t.Fatal("attested removed item")
	}
}

func TestQuorum_PublicKeys(t *testing.T) {
	t.Parallel()
	q, mutableTree := newQuorum(t)

	currency := types.WrappedCurrency(4)
	q.AddPublicKey(memberA, currency, "key-a")
	q.AddPublicKey(memberB, currency, "key-b")
	if _, _, err := mutableTree.Commit(q); err != nil {
		t.Fatal(err)
	}

	q = NewQuorum(bus.NewBus(), mutableTree.GetLastImmutable())
	if !q.HasPublicKey(memberB, currency) {
		t.Fatal("public key is not restored")
	}
	if q.HasPublicKey(memberC, currency) || q.HasPublicKey(memberA, types.WrappedCurrency(5)) {
		t.Fatal("unexpected public key")
	}
	keys := q.GetPublicKeys(currency)
	if len(keys) != 2 || keys[0].Key != "key-a" {
		t.Fatalf("invalid keys %+v", keys)
	}

	state := new(types.AppState)
	q.Export(state)
	if len(state.Quorum.PublicKeys) != 2 || state.Quorum.Threshold != 2 || len(state.Quorum.Members) != 3 {
		t.Fatalf("invalid export %+v", state.Quorum)
	}
}
