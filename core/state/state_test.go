package state

import (
	"testing"

	db "github.com/tendermint/tm-db"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/core/types"
)

func genesisState() types.AppState {
	memberA, memberB := types.Address{1}, types.Address{2}
	oracleAccount := types.Address{7}
	usdt := types.WrappedCurrency(4)

	return types.AppState{
		Params:   types.NewGenesisParams(types.DefaultParams()),
		Security: types.Security{Height: 0, Nonce: 5},
		Assets: []types.Asset{
			{Currency: types.NativeCurrency(), Name: "Tide", Symbol: "TIDE", Decimals: 12, Enabled: true, Issuance: "1500"},
			{Currency: usdt, Name: "Tether", Symbol: "USDT", Decimals: 6, Enabled: true},
		},
		Accounts: []types.Account{
			{
				Address: memberA,
				Balance: []types.Balance{{Currency: types.NativeCurrency(), Value: "1000"}, {Currency: usdt, Value: "300"}},
				Held:    []types.Balance{{Currency: usdt, Value: "50"}},
			},
			{
				Address: types.Address{9},
				Balance: []types.Balance{{Currency: types.NativeCurrency(), Value: "500"}},
				Locks:   []types.Lock{{ID: "ormlvest", Amount: "20"}},
			},
		},
		Quorum: types.Quorum{
			Enabled:   true,
			Members:   []types.Address{memberA, memberB},
			Threshold: 2,
			PublicKeys: []types.PublicKey{
				{Currency: usdt, Member: memberA, PublicKey: "0x02aa"},
			},
			Proposals: []types.Proposal{
				{
					ID:             types.Keccak256([]byte("proposal")),
					Kind:           quorum.KindMint.String(),
					Account:        types.Address{9},
					Currency:       usdt,
					Amount:         "10",
					ExternalTxHash: "0xfeed",
					Proposer:       memberA,
					CreatedAt:      0,
					Status:         quorum.StatusActive.String(),
					Votes:          []types.Vote{{Member: memberA, Approve: true}},
				},
			},
		},
		Oracle: types.Oracle{
			Enabled:      true,
			Account:      &oracleAccount,
			MarketMakers: []types.Address{memberB},
		},
		Vesting: types.Vesting{
			Treasury: types.Address{8},
			Schedules: []types.VestingSchedule{
				{Address: types.Address{9}, Start: 0, Period: 10, PeriodCount: 2, PerPeriod: "10"},
			},
		},
	}
}

func TestStateExport(t *testing.T) {
	t.Parallel()

	state, err := NewState(0, db.NewMemDB(), eventsdb.NewEventsStore(db.NewMemDB()), 1024, 2, 1)
	if err != nil {
		t.Fatal(err)
	}

	genesis := genesisState()
	if err := genesis.Verify(); err != nil {
		t.Fatal(err)
	}
	if err := state.Import(genesis); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Commit(); err != nil {
		t.Fatal(err)
	}

	exported := state.Export()
	if err := exported.Verify(); err != nil {
		t.Fatal(err)
	}

	if exported.Security.Nonce != 5 {
		t.Fatalf("nonce %d", exported.Security.Nonce)
	}
	if len(exported.Assets) != 2 || exported.Assets[0].Issuance != "1500" || exported.Assets[1].Issuance != "350" {
		t.Fatalf("invalid assets %+v", exported.Assets)
	}
	if len(exported.Accounts) != 2 {
		t.Fatalf("invalid accounts %+v", exported.Accounts)
	}
	if len(exported.Quorum.Proposals) != 1 || exported.Quorum.Proposals[0].Amount != "10" || exported.Quorum.Threshold != 2 {
		t.Fatalf("invalid quorum %+v", exported.Quorum)
	}
	if len(exported.Quorum.PublicKeys) != 1 {
		t.Fatalf("invalid public keys %+v", exported.Quorum.PublicKeys)
	}
	if exported.Oracle.Account == nil || *exported.Oracle.Account != (types.Address{7}) || len(exported.Oracle.MarketMakers) != 1 {
		t.Fatalf("invalid oracle %+v", exported.Oracle)
	}
	if exported.Vesting.Treasury != (types.Address{8}) || len(exported.Vesting.Schedules) != 1 {
		t.Fatalf("invalid vesting %+v", exported.Vesting)
	}

	ref, _ := quorum.ProposalData{Kind: quorum.KindMint, ExternalTxHash: "0xfeed"}.ExternalRef()
	if _, ok := state.Quorum.ProposalByExternalRef(ref); !ok {
		t.Fatal("external reference is not indexed")
	}
	if items := state.Expiry.GetItems(genesis.Params.ProposalLifetime); len(items) != 1 {
		t.Fatalf("expected proposal expiry, got %d items", len(items))
	}
}

func TestStateImportIssuanceMismatch(t *testing.T) {
	t.Parallel()

	state, err := NewState(0, db.NewMemDB(), nil, 1024, 2, 1)
	if err != nil {
		t.Fatal(err)
	}

	genesis := genesisState()
	genesis.Assets[0].Issuance = "1499"
	if err := state.Import(genesis); err == nil {
		t.Fatal("expected issuance error")
	}
}
