package state

import (
	"fmt"
	"sync"

	"github.com/cosmos/iavl"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	tmlog "github.com/tendermint/tendermint/libs/log"
	db "github.com/tendermint/tm-db"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state/accounts"
	"github.com/tidelabs/tidecore/core/state/app"
	"github.com/tidelabs/tidecore/core/state/assets"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/state/checker"
	"github.com/tidelabs/tidecore/core/state/expiry"
	"github.com/tidelabs/tidecore/core/state/oracle"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/core/state/vesting"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
	"github.com/tidelabs/tidecore/tree"
)

type Interface interface {
	isValue_State()
}

type CheckState struct {
	state *State
}

func NewCheckState(state *State) *CheckState {
	return &CheckState{state: state}
}

func (cs *CheckState) isValue_State() {}

func (cs *CheckState) Export() types.AppState {
	appState := new(types.AppState)
	cs.App().Export(appState)
	cs.Assets().Export(appState)
	cs.Accounts().Export(appState)
	cs.Quorum().Export(appState)
	cs.Oracle().Export(appState)
	cs.Vesting().Export(appState)

	return *appState
}

func (cs *CheckState) App() app.RApp {
	return cs.state.App
}
func (cs *CheckState) Accounts() accounts.RAccounts {
	return cs.state.Accounts
}
func (cs *CheckState) Assets() assets.RAssets {
	return cs.state.Assets
}
func (cs *CheckState) Vesting() vesting.RVesting {
	return cs.state.Vesting
}
func (cs *CheckState) Quorum() quorum.RQuorum {
	return cs.state.Quorum
}
func (cs *CheckState) Oracle() oracle.ROracle {
	return cs.state.Oracle
}
func (cs *CheckState) Expiry() expiry.RExpiry {
	return cs.state.Expiry
}

type State struct {
	App            *app.App
	Accounts       *accounts.Accounts
	Assets         *assets.Assets
	Vesting        *vesting.Vesting
	Quorum         *quorum.Quorum
	Oracle         *oracle.Oracle
	Expiry         *expiry.Expiry
	Checker        *checker.Checker
	db             db.DB
	events         eventsdb.IEventsDB
	tree           tree.MTree
	keepLastStates int64
	logger         tmlog.Logger

	bus            *bus.Bus
	lock           sync.RWMutex
	height         int64
	initialVersion int64
}

func (s *State) isValue_State() {}

func NewState(height uint64, db db.DB, events eventsdb.IEventsDB, cacheSize int, keepLastStates int64, initialVersion uint64) (*State, error) {
	iavlTree, err := tree.NewMutableTree(height, db, cacheSize, initialVersion)
	if err != nil {
		return nil, err
	}

	state := newStateForTree(iavlTree.GetLastImmutable(), events, db, keepLastStates)
	state.tree = iavlTree
	state.height = iavlTree.Version()
	state.initialVersion = int64(initialVersion)

	return state, nil
}

func NewCheckStateAtHeight(height uint64, db db.DB) (*CheckState, error) {
	iavlTree, err := tree.NewImmutableTree(height, db)
	if err != nil {
		return nil, err
	}
	return NewCheckState(newStateForTree(iavlTree, nil, db, 0)), nil
}

func (s *State) SetLogger(logger tmlog.Logger) {
	s.logger = logger
}

func (s *State) Logger() tmlog.Logger {
	return s.logger
}

// Events is the queue of the block events, it discards them when the state has no store
func (s *State) Events() eventsdb.IEventsDB {
	return s.bus.Events()
}

func (s *State) Tree() tree.MTree {
	return s.tree
}

func (s *State) Height() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.height
}

func (s *State) Lock() {
	s.lock.Lock()
}

func (s *State) Unlock() {
	s.lock.Unlock()
}

func (s *State) RLock() {
	s.lock.RLock()
}

func (s *State) RUnlock() {
	s.lock.RUnlock()
}

// Check verifies that balance changes since the last commit match the issuance changes
func (s *State) Check() error {
	return s.Checker.Check()
}

func (s *State) Commit() ([]byte, error) {
	s.Checker.Reset()

	hash, version, err := s.tree.Commit(
		s.Accounts,
		s.App,
		s.Assets,
		s.Vesting,
		s.Quorum,
		s.Oracle,
		s.Expiry,
	)
	if err != nil {
		return hash, err
	}

	s.lock.Lock()
	s.height = version
	s.lock.Unlock()

	versionToDelete := version - s.keepLastStates - 1
	if s.keepLastStates <= 0 || versionToDelete < s.initialVersion || versionToDelete <= 0 {
		return hash, nil
	}

	if err := s.tree.DeleteVersion(versionToDelete); err != nil {
		s.logger.Error("DeleteVersion failed", "version", versionToDelete, "err", err)
	}

	return hash, nil
}

// Import fills an empty state from genesis. Issuance of every asset is recomputed
// from the balances and has to match the declared one when it is set.
func (s *State) Import(state types.AppState) error {
	params := state.Params.ToParams()
	s.App.SetParams(params)
	s.App.SetHeight(state.Security.Height)
	s.App.SetNonce(state.Security.Nonce)
	s.App.SetLastSweptHeight(state.Security.LastSweptHeight)

	for _, a := range state.Assets {
		if !a.Currency.IsNative() {
			s.Assets.Register(a.Currency, a.Name, a.Symbol, a.Decimals, a.Enabled)
		}
	}
	s.Assets.SetOwner(state.AssetOwner)

	totals := map[types.CurrencyID]*uint256.Int{}
	for _, a := range state.Accounts {
		free := map[types.CurrencyID]*uint256.Int{}
		held := map[types.CurrencyID]*uint256.Int{}
		for _, b := range a.Balance {
			free[b.Currency] = helpers.StringToAmount(b.Value)
		}
		for _, b := range a.Held {
			held[b.Currency] = helpers.StringToAmount(b.Value)
		}

		for _, list := range []map[types.CurrencyID]*uint256.Int{free, held} {
			for currency, value := range list {
				total, ok := helpers.CheckedAdd(helpers.Copy(totals[currency]), value)
				if !ok {
					return fmt.Errorf("issuance of %s overflows", currency)
				}
				totals[currency] = total
			}
		}

		for currency, value := range free {
			s.Accounts.SetBalance(a.Address, currency, value, helpers.Copy(held[currency]))
		}
		for currency, value := range held {
			if _, ok := free[currency]; !ok {
				s.Accounts.SetBalance(a.Address, currency, new(uint256.Int), value)
			}
		}

		for _, lock := range a.Locks {
			s.Accounts.SetLock(a.Address, types.NewLockID(lock.ID), helpers.StringToAmount(lock.Amount))
		}
		if a.Frozen {
			s.Accounts.SetFrozen(a.Address, true)
		}
	}

	for _, a := range state.Assets {
		total := helpers.Copy(totals[a.Currency])
		if a.Issuance != "" && !helpers.StringToAmount(a.Issuance).Eq(total) {
			return fmt.Errorf("issuance of %s is %s, balances sum up to %s", a.Currency, a.Issuance, total.Dec())
		}
	}
	for currency, total := range totals {
		s.Assets.SetIssuance(currency, total)
	}

	if err := s.importQuorum(state, params); err != nil {
		return err
	}
	if err := s.importOracle(state, params); err != nil {
		return err
	}

	s.Vesting.SetTreasury(state.Vesting.Treasury)
	for _, schedule := range state.Vesting.Schedules {
		s.Vesting.AddSchedule(schedule.Address, vesting.Schedule{
			Start:       schedule.Start,
			Period:      schedule.Period,
			PeriodCount: schedule.PeriodCount,
			PerPeriod:   helpers.StringToAmount(schedule.PerPeriod),
		})
	}

	if err := s.Checker.Check(); err != nil {
		return errors.Wrap(err, "genesis balances do not match issuance")
	}
	s.Checker.Reset()

	return nil
}

func (s *State) importQuorum(state types.AppState, params types.Params) error {
	s.Quorum.SetEnabled(state.Quorum.Enabled)
	if len(state.Quorum.Members) != 0 {
		s.Quorum.SetConfiguration(state.Quorum.Members, state.Quorum.Threshold)
	}

	for _, key := range state.Quorum.PublicKeys {
		s.Quorum.AddPublicKey(key.Member, key.Currency, key.PublicKey)
	}

	for _, p := range state.Quorum.Proposals {
		kind, ok := quorum.ParseProposalKind(p.Kind)
		if !ok {
			return fmt.Errorf("unknown kind %q of proposal %s", p.Kind, p.ID)
		}
		status, ok := quorum.ParseStatus(p.Status)
		if !ok {
			return fmt.Errorf("unknown status %q of proposal %s", p.Status, p.ID)
		}

		data := quorum.ProposalData{
			Kind:           kind,
			Account:        p.Account,
			Currency:       p.Currency,
			ExternalTxHash: p.ExternalTxHash,
			Members:        p.Members,
			Threshold:      p.Threshold,
		}
		if p.To != nil {
			data.To = *p.To
		}
		if p.Amount != "" {
			amount, err := helpers.ParseAmount(p.Amount)
			if err != nil {
				return errors.Wrapf(err, "amount of proposal %s", p.ID)
			}
			data.Amount = amount
		}

		var votes []quorum.Vote
		for _, vote := range p.Votes {
			votes = append(votes, quorum.Vote{Member: vote.Member, Approve: vote.Approve})
		}

		s.Quorum.RestoreProposal(p.ID, data, p.Proposer, p.CreatedAt, votes, status)
		if p.ExecutionFailed {
			s.Quorum.MarkExecutionFailed(s.Quorum.GetProposal(p.ID))
		}
		s.Expiry.Add(s.expiryHeight(p.CreatedAt+params.ProposalLifetime), expiry.KindProposal, p.ID)
	}

	for _, ref := range state.Quorum.ProcessedTx {
		s.Quorum.MarkProcessed(ref)
	}

	for _, item := range state.Quorum.BurnedQueue {
		s.Quorum.AddBurned(item.ID, quorum.BurnedItem{
			Account:         item.Account,
			Currency:        item.Currency,
			Amount:          helpers.StringToAmount(item.Amount),
			ExternalAddress: item.ExternalAddress,
			CreatedAt:       item.CreatedAt,
			Attestations:    item.Attestations,
		})
	}

	for _, row := range state.Quorum.WatchLists {
		s.Quorum.RestoreWatchEntry(row.Account, quorum.WatchEntry{
			ProposalID: row.ProposalID,
			Currency:   row.Currency,
			Amount:     helpers.StringToAmount(row.Amount),
			CreatedAt:  row.CreatedAt,
			Confirmed:  row.Confirmed,
		})
	}

	return nil
}

func (s *State) importOracle(state types.AppState, params types.Params) error {
	s.Oracle.SetEnabled(state.Oracle.Enabled)
	if state.Oracle.Account != nil {
		s.Oracle.SetAccount(*state.Oracle.Account)
	}
	for _, maker := range state.Oracle.MarketMakers {
		s.Oracle.AddMarketMaker(maker)
	}

	for _, swap := range state.Oracle.Swaps {
		swapType, ok := oracle.ParseSwapType(swap.SwapType)
		if !ok {
			return fmt.Errorf("unknown type %q of swap %s", swap.SwapType, swap.ID)
		}
		status, ok := oracle.ParseSwapStatus(swap.Status)
		if !ok || !status.IsActive() {
			return fmt.Errorf("swap %s can't be imported with status %q", swap.ID, swap.Status)
		}

		s.Oracle.AddSwap(swap.ID, &oracle.Swap{
			Account:          swap.Account,
			AssetFrom:        swap.AssetFrom,
			AmountFrom:       helpers.StringToAmount(swap.AmountFrom),
			AmountFromFilled: helpers.StringToAmount(swap.AmountFromFilled),
			AssetTo:          swap.AssetTo,
			AmountTo:         helpers.StringToAmount(swap.AmountTo),
			AmountToFilled:   helpers.StringToAmount(swap.AmountToFilled),
			CreatedAt:        swap.CreatedAt,
			ExtrinsicHash:    swap.ExtrinsicHash,
			IsMarketMaker:    swap.IsMarketMaker,
			SwapType:         swapType,
			Slippage:         swap.Slippage,
			Status:           status,
		})
		if status == oracle.StatusPending {
			s.Expiry.Add(s.expiryHeight(swap.CreatedAt+params.SwapLifetime), expiry.KindSwap, swap.ID)
		}
	}

	return nil
}

// expiryHeight keeps restored records reachable by the sweep
func (s *State) expiryHeight(height uint64) uint64 {
	if swept := s.App.LastSweptHeight(); height <= swept {
		return swept + 1
	}
	return height
}

func (s *State) Export() types.AppState {
	state, err := NewCheckStateAtHeight(uint64(s.tree.Version()), s.db)
	if err != nil {
		panic(fmt.Sprintf("Create new state at height %d failed: %s", s.tree.Version(), err))
	}

	return state.Export()
}

func newStateForTree(immutableTree *iavl.ImmutableTree, events eventsdb.IEventsDB, db db.DB, keepLastStates int64) *State {
	stateBus := bus.NewBus()
	stateBus.SetEvents(events)

	stateChecker := checker.NewChecker(stateBus)

	appState := app.NewApp(stateBus, immutableTree)

	assetsState := assets.NewAssets(stateBus, immutableTree)

	accountsState := accounts.NewAccounts(stateBus, immutableTree)

	vestingState := vesting.NewVesting(stateBus, immutableTree)

	quorumState := quorum.NewQuorum(stateBus, immutableTree)

	oracleState := oracle.NewOracle(stateBus, immutableTree)

	expiryState := expiry.NewExpiry(immutableTree)

	return &State{
		App:      appState,
		Accounts: accountsState,
		Assets:   assetsState,
		Vesting:  vestingState,
		Quorum:   quorumState,
		Oracle:   oracleState,
		Expiry:   expiryState,
		Checker:  stateChecker,

		height:         immutableTree.Version(),
		bus:            stateBus,
		db:             db,
		events:         events,
		keepLastStates: keepLastStates,
		logger:         tmlog.NewNopLogger(),
	}
}
