package tidechain

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	abciTypes "github.com/tendermint/tendermint/abci/types"
	tmlog "github.com/tendermint/tendermint/libs/log"
	db "github.com/tendermint/tm-db"
	"github.com/tidelabs/tidecore/cmd/utils"
	"github.com/tidelabs/tidecore/config"
	"github.com/tidelabs/tidecore/core/appdb"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/statistics"
	"github.com/tidelabs/tidecore/core/transaction"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/version"
)

// Blockchain is a main structure of Tidecore. The host calls InitChain once, then
// BeginBlock, DeliverTx for every call of the block and Commit, one block at a time.
type Blockchain struct {
	logger tmlog.Logger

	executor      *transaction.Executor
	statisticData *statistics.Data

	appDB        *appdb.AppDB
	stateDB      db.DB
	eventsDB     eventsdb.IEventsDB
	stateDeliver *state.State
	stateCheck   *state.CheckState
	height       uint64 // last committed height
	blockHeight  uint64 // height of the block being delivered, zero between blocks

	cfg      *config.Config
	storages *utils.Storage
}

// NewBlockchain opens the databases of storages and loads the last committed state
func NewBlockchain(storages *utils.Storage, cfg *config.Config, statisticData *statistics.Data, logger tmlog.Logger) (*Blockchain, error) {
	if logger == nil {
		logger = tmlog.NewNopLogger()
	}

	appDatabase, err := storages.AppDB()
	if err != nil {
		return nil, err
	}
	stateDB, err := storages.StateDB()
	if err != nil {
		return nil, err
	}

	var events eventsdb.IEventsDB
	if cfg.EventsEnabled {
		eventsDatabase, err := storages.EventsDB()
		if err != nil {
			return nil, err
		}
		events = eventsdb.NewEventsStore(eventsDatabase)
	}

	blockchain := &Blockchain{
		logger:        logger.With("module", "tidechain"),
		executor:      transaction.NewExecutor(transaction.GetData),
		statisticData: statisticData,
		appDB:         appdb.NewAppDB(appDatabase),
		stateDB:       stateDB,
		eventsDB:      events,
		cfg:           cfg,
		storages:      storages,
	}

	if blockchain.appDB.GetLastHeight() != 0 {
		if err := blockchain.initState(); err != nil {
			return nil, err
		}
		if name := blockchain.appDB.GetVersionName(blockchain.Height()); name != version.Version {
			blockchain.appDB.AddVersion(version.Version, blockchain.Height()+1)
		}
	}

	return blockchain, nil
}

func (blockchain *Blockchain) initState() error {
	initialHeight := blockchain.appDB.GetStartHeight()
	currentHeight := blockchain.appDB.GetLastHeight()

	stateDeliver, err := state.NewState(currentHeight,
		blockchain.stateDB,
		blockchain.eventsDB,
		blockchain.cfg.StateCacheSize,
		blockchain.cfg.KeepLastStates,
		initialHeight)
	if err != nil {
		return errors.Wrapf(err, "load state at height %d", currentHeight)
	}
	stateDeliver.SetLogger(blockchain.logger.With("module", "state"))

	height := currentHeight
	if height == 0 {
		height = initialHeight
	}
	atomic.StoreUint64(&blockchain.height, height)
	blockchain.stateDeliver = stateDeliver
	blockchain.stateCheck = state.NewCheckState(stateDeliver)

	return nil
}

// InitChain imports the genesis state and commits it as version initialHeight. Only called once.
func (blockchain *Blockchain) InitChain(genesisState types.AppState, initialHeight uint64) ([]byte, error) {
	if blockchain.appDB.GetLastHeight() != 0 {
		return nil, fmt.Errorf("chain is already initialized at height %d", blockchain.appDB.GetLastHeight())
	}
	if initialHeight == 0 {
		initialHeight = 1
	}
	if err := genesisState.Verify(); err != nil {
		return nil, errors.Wrap(err, "verify genesis")
	}

	blockchain.appDB.SetStartHeight(initialHeight)
	blockchain.appDB.AddVersion(version.Version, initialHeight)
	if err := blockchain.initState(); err != nil {
		return nil, err
	}

	if err := blockchain.stateDeliver.Import(genesisState); err != nil {
		return nil, errors.Wrap(err, "import genesis")
	}
	if err := blockchain.stateDeliver.Check(); err != nil {
		return nil, err
	}
	hash, err := blockchain.stateDeliver.Commit()
	if err != nil {
		return nil, err
	}
	if committed := uint64(blockchain.stateDeliver.Tree().Version()); committed != initialHeight {
		return nil, fmt.Errorf("genesis committed as version %d instead of %d", committed, initialHeight)
	}

	blockchain.appDB.SetLastBlockHash(hash)
	blockchain.appDB.SetLastHeight(initialHeight)
	blockchain.appDB.SaveStartHeight()
	blockchain.appDB.SaveVersions()
	atomic.StoreUint64(&blockchain.height, initialHeight)

	blockchain.logger.Info("Genesis imported",
		"height", initialHeight,
		"assets", len(genesisState.Assets),
		"accounts", len(genesisState.Accounts),
		"hash", fmt.Sprintf("%X", hash))

	return hash, nil
}

// BeginBlock opens the block at height and runs the expiry sweep for it
func (blockchain *Blockchain) BeginBlock(height uint64, blockTime time.Time) error {
	if blockchain.stateDeliver == nil {
		return errors.New("chain is not initialized")
	}
	if current := blockchain.Height(); height != current+1 {
		return fmt.Errorf("unexpected block height %d, last committed %d", height, current)
	}
	if atomic.LoadUint64(&blockchain.blockHeight) != 0 {
		return fmt.Errorf("block %d is not committed yet", atomic.LoadUint64(&blockchain.blockHeight))
	}

	blockchain.statisticData.SetStartBlock(height, time.Now(), blockTime)
	blockchain.appDB.AddBlocksTime(blockTime)

	blockchain.stateDeliver.App.SetHeight(height)

	proposals, swaps := transaction.SweepExpired(blockchain.stateDeliver, height)
	if proposals != 0 || swaps != 0 {
		blockchain.logger.Info("Expired items swept", "height", height, "proposals", proposals, "swaps", swaps)
	}
	metrics := blockchain.statisticData.Metrics()
	metrics.ExpiredProposals.Add(float64(proposals))
	metrics.ExpiredSwaps.Add(float64(swaps))

	atomic.StoreUint64(&blockchain.blockHeight, height)
	return nil
}

// DeliverTx deliver a tx for full processing
func (blockchain *Blockchain) DeliverTx(auth transaction.AuthContext, tx []byte) abciTypes.ResponseDeliverTx {
	height := atomic.LoadUint64(&blockchain.blockHeight)
	if height == 0 {
		return abciTypes.ResponseDeliverTx{
			Code: code.BlockNotStarted,
			Log:  "no block is open",
		}
	}

	response := blockchain.executor.RunTx(blockchain.stateDeliver, auth, tx, height)

	metrics := blockchain.statisticData.Metrics()
	if response.Code != code.OK {
		metrics.FailedTxs.With("code", strconv.Itoa(int(response.Code))).Add(1)
		blockchain.logger.Debug("Transaction failed", "height", height, "code", response.Code, "log", response.Log)
	} else {
		metrics.Txs.With("type", txTypeTag(response.Tags)).Add(1)
	}

	return abciTypes.ResponseDeliverTx{
		Code: response.Code,
		Data: response.Data,
		Log:  response.Log,
		Info: response.Info,
		Events: []abciTypes.Event{
			{
				Type:       "tags",
				Attributes: response.Tags,
			},
		},
	}
}

func txTypeTag(tags []abciTypes.EventAttribute) string {
	for _, tag := range tags {
		if string(tag.Key) == "tx.type" {
			return string(tag.Value)
		}
	}
	return ""
}

// CheckTx validates a tx against the current state without changing it
func (blockchain *Blockchain) CheckTx(auth transaction.AuthContext, tx []byte) abciTypes.ResponseCheckTx {
	response := blockchain.executor.RunTx(blockchain.CurrentState(), auth, tx, blockchain.Height()+1)

	return abciTypes.ResponseCheckTx{
		Code: response.Code,
		Data: response.Data,
		Log:  response.Log,
		Info: response.Info,
	}
}

// Commit the state and return the application Merkle root hash
func (blockchain *Blockchain) Commit() ([]byte, error) {
	height := atomic.LoadUint64(&blockchain.blockHeight)
	if height == 0 {
		return nil, errors.New("no block to commit")
	}

	if err := blockchain.stateDeliver.Check(); err != nil {
		return nil, errors.Wrapf(err, "height %d", height)
	}

	// Flush events db
	if blockchain.eventsDB != nil {
		if err := blockchain.eventsDB.CommitEvents(uint32(height)); err != nil {
			return nil, err
		}
	}

	hash, err := blockchain.stateDeliver.Commit()
	if err != nil {
		return nil, err
	}

	{ // Persist application hash and height
		blockchain.appDB.SetLastBlockHash(hash)
		blockchain.appDB.SetLastHeight(height)
		blockchain.appDB.SaveBlocksTime()
		blockchain.appDB.SaveVersions()
	}

	atomic.StoreUint64(&blockchain.height, height)
	atomic.StoreUint64(&blockchain.blockHeight, 0)

	blockchain.statisticData.SetEndBlockDuration(time.Now(), height)
	blockchain.statisticData.Metrics().ActiveProposals.Set(float64(blockchain.stateCheck.Quorum().ActiveProposals()))

	blockchain.logger.Info("Block committed", "height", height, "hash", fmt.Sprintf("%X", hash))

	return hash, nil
}

// CurrentState returns the read-only view of the latest state
func (blockchain *Blockchain) CurrentState() *state.CheckState {
	return blockchain.stateCheck
}

// CheckStateAtHeight loads the read-only state committed at height
func (blockchain *Blockchain) CheckStateAtHeight(height uint64) (*state.CheckState, error) {
	return state.NewCheckStateAtHeight(height, blockchain.stateDB)
}

// AvailableVersions returns the state versions kept in the database
func (blockchain *Blockchain) AvailableVersions() []int {
	if blockchain.stateDeliver == nil {
		return nil
	}
	return blockchain.stateDeliver.Tree().AvailableVersions()
}

// Height returns the last committed height
func (blockchain *Blockchain) Height() uint64 {
	return atomic.LoadUint64(&blockchain.height)
}

// StartHeight returns the height of the genesis state
func (blockchain *Blockchain) StartHeight() uint64 {
	return blockchain.appDB.GetStartHeight()
}

// LastBlockHash returns the app hash of the last committed block
func (blockchain *Blockchain) LastBlockHash() []byte {
	return blockchain.appDB.GetLastBlockHash()
}

// AverageBlockTime returns the average time between the latest blocks
func (blockchain *Blockchain) AverageBlockTime() time.Duration {
	sum, count := blockchain.appDB.GetLastBlockTimeDelta()
	if count == 0 {
		return 0
	}
	return time.Duration(sum) * time.Second / time.Duration(count)
}

// Events returns the events stored for height, nil when events are disabled
func (blockchain *Blockchain) Events(height uint64) eventsdb.Events {
	if blockchain.eventsDB == nil {
		return nil
	}
	return blockchain.eventsDB.LoadEvents(uint32(height))
}

func (blockchain *Blockchain) StatisticData() *statistics.Data {
	return blockchain.statisticData
}

// Close closes db connections
func (blockchain *Blockchain) Close() error {
	return blockchain.storages.Close()
}
