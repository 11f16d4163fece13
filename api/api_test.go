package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidelabs/tidecore/cmd/utils"
	"github.com/tidelabs/tidecore/config"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/core/statistics"
	"github.com/tidelabs/tidecore/core/tidechain"
	"github.com/tidelabs/tidecore/core/transaction"
	"github.com/tidelabs/tidecore/core/types"
)

var (
	member = types.Address{0xa1}
	alice  = types.Address{0xb1}
	usdt   = types.WrappedCurrency(4)
)

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *errorBody      `json:"error"`
}

func newService(t *testing.T) (*Service, *tidechain.Blockchain) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DBBackend = "memdb"
	cfg.StateCacheSize = 100
	cfg.KeepLastStates = 10

	blockchain, err := tidechain.NewBlockchain(utils.NewStorage(t.TempDir(), "memdb"), cfg, statistics.New(statistics.NopMetrics()), nil)
	require.NoError(t, err)

	_, err = blockchain.InitChain(types.AppState{
		Params: types.NewGenesisParams(types.DefaultParams()),
		Assets: []types.Asset{
			{Currency: types.NativeCurrency(), Name: "Tide", Symbol: "TIDE", Decimals: 12, Enabled: true},
			{Currency: usdt, Name: "Tether", Symbol: "USDT", Decimals: 6, Enabled: true},
		},
		Accounts: []types.Account{
			{Address: alice, Balance: []types.Balance{{Currency: usdt, Value: "500"}}},
		},
		Quorum: types.Quorum{
			Enabled:   true,
			Members:   []types.Address{member},
			Threshold: 1,
		},
		Vesting: types.Vesting{Treasury: types.Address{0xd1}},
	}, 1)
	require.NoError(t, err)

	return NewService(blockchain, cfg, nil, "test"), blockchain
}

func get(t *testing.T, srv *Service, path string) (int, envelope) {
	t.Helper()

	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

	var body envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder.Code, body
}

func TestService_Status(t *testing.T) {
	t.Parallel()

	srv, _ := newService(t)

	status, body := get(t, srv, "/status")
	require.Equal(t, http.StatusOK, status)

	var result StatusResponse
	require.NoError(t, json.Unmarshal(body.Result, &result))
	assert.Equal(t, "test", result.Version)
	assert.Equal(t, uint64(1), result.LatestHeight)
	assert.Equal(t, uint64(1), result.InitialHeight)
	assert.Equal(t, int64(10), result.KeepLastStates)
	assert.Equal(t, uint64(1), result.OldestHeight)
	assert.NotEmpty(t, result.LatestAppHash)
}

func TestService_Balance(t *testing.T) {
	t.Parallel()

	srv, _ := newService(t)

	status, body := get(t, srv, "/balance/"+alice.String())
	require.Equal(t, http.StatusOK, status)

	var result AddressResponse
	require.NoError(t, json.Unmarshal(body.Result, &result))
	assert.Equal(t, alice, result.Address)
	require.Len(t, result.Balances, 1)
	assert.Equal(t, usdt, result.Balances[0].Currency)
	assert.Equal(t, "500", result.Balances[0].Free)
	assert.Equal(t, "0", result.Balances[0].Held)
	assert.False(t, result.Frozen)

	status, body = get(t, srv, "/balance/0x01")
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)

	status, _ = get(t, srv, "/balance/"+alice.String()+"?height=abc")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = get(t, srv, "/balance/"+alice.String()+"?height=100")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestService_Assets(t *testing.T) {
	t.Parallel()

	srv, _ := newService(t)

	status, body := get(t, srv, "/assets")
	require.Equal(t, http.StatusOK, status)

	var result []AssetResponse
	require.NoError(t, json.Unmarshal(body.Result, &result))
	require.Len(t, result, 2)

	symbols := map[string]bool{}
	for _, asset := range result {
		symbols[asset.Symbol] = asset.Enabled
	}
	assert.Equal(t, map[string]bool{"TIDE": true, "USDT": true}, symbols)
}

func TestService_ProposalNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newService(t)

	status, body := get(t, srv, "/proposal/"+types.Hash{0x01}.String())
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, code.ProposalNotFound, body.Error.Code)

	status, _ = get(t, srv, "/unknown")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestService_AcceptedMintAndEvents(t *testing.T) {
	t.Parallel()

	srv, blockchain := newService(t)

	encodedData, err := rlp.EncodeToBytes(transaction.SubmitProposalData{Proposal: quorum.ProposalData{
		Kind:           quorum.KindMint,
		Account:        alice,
		Currency:       usdt,
		Amount:         uint256.NewInt(25),
		ExternalTxHash: "0xfeed",
	}})
	require.NoError(t, err)
	submit := transaction.Transaction{Nonce: 1, Type: transaction.TypeSubmitProposal, Data: encodedData}
	tx, err := submit.Serialize()
	require.NoError(t, err)

	require.NoError(t, blockchain.BeginBlock(2, time.Unix(1650000000, 0)))
	require.Equal(t, code.OK, blockchain.DeliverTx(transaction.SignedAuth(member), tx).Code)
	_, err = blockchain.Commit()
	require.NoError(t, err)

	status, body := get(t, srv, "/proposals?status=Accepted")
	require.Equal(t, http.StatusOK, status)
	var proposals []ProposalResponse
	require.NoError(t, json.Unmarshal(body.Result, &proposals))
	require.Len(t, proposals, 1)
	assert.Equal(t, "Accepted", proposals[0].Status)
	assert.Equal(t, "25", proposals[0].Amount)
	assert.Equal(t, 1, proposals[0].Yes)

	status, body = get(t, srv, "/balance/"+alice.String())
	require.Equal(t, http.StatusOK, status)
	var balance AddressResponse
	require.NoError(t, json.Unmarshal(body.Result, &balance))
	require.Len(t, balance.Balances, 1)
	assert.Equal(t, "525", balance.Balances[0].Free)

	status, body = get(t, srv, "/balance/"+alice.String()+"?height=1")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Result, &balance))
	assert.Equal(t, "500", balance.Balances[0].Free)

	status, body = get(t, srv, "/events/2")
	require.Equal(t, http.StatusOK, status)
	var events []EventResponse
	require.NoError(t, json.Unmarshal(body.Result, &events))
	require.NotEmpty(t, events)
	assert.Equal(t, "tidechain/ProposalSubmittedEvent", events[0].Type)

	status, _ = get(t, srv, "/events/3")
	assert.Equal(t, http.StatusNotFound, status)
}
