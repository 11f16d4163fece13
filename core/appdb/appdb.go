package appdb

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	tmjson "github.com/tendermint/tendermint/libs/json"
	db "github.com/tendermint/tm-db"
)

const (
	hashPath        = "hash"
	heightPath      = "height"
	startHeightPath = "startHeight"
	blocksTimePath  = "blockDelta"
	versionsPath    = "versions"
)

// AppDB is responsible for storing basic information about app state on disk
type AppDB struct {
	db db.DB

	startHeight    uint64
	lastHeight     uint64
	lastTimeBlocks []uint64

	isDirtyVersions bool
	versions        []*Version
}

// NewAppDB wraps an opened database
func NewAppDB(database db.DB) *AppDB {
	return &AppDB{db: database}
}

// Close closes db connection
func (appDB *AppDB) Close() error {
	return appDB.db.Close()
}

// GetLastBlockHash returns latest app hash stored on disk
func (appDB *AppDB) GetLastBlockHash() []byte {
	rawHash, err := appDB.db.Get([]byte(hashPath))
	if err != nil {
		panic(err)
	}

	if len(rawHash) == 0 {
		return nil
	}

	var hash [32]byte
	copy(hash[:], rawHash)
	return hash[:]
}

// SetLastBlockHash stores given app hash on disk, panics on error
func (appDB *AppDB) SetLastBlockHash(hash []byte) {
	if err := appDB.db.Set([]byte(hashPath), hash); err != nil {
		panic(err)
	}
}

// GetLastHeight returns latest block height stored on disk
func (appDB *AppDB) GetLastHeight() uint64 {
	val := atomic.LoadUint64(&appDB.lastHeight)
	if val != 0 {
		return val
	}

	result, err := appDB.db.Get([]byte(heightPath))
	if err != nil {
		panic(err)
	}

	if len(result) != 0 {
		val = binary.BigEndian.Uint64(result)
		atomic.StoreUint64(&appDB.lastHeight, val)
	}

	return val
}

// SetLastHeight stores given block height on disk, panics on error
func (appDB *AppDB) SetLastHeight(height uint64) {
	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, height)

	if err := appDB.db.Set([]byte(heightPath), h); err != nil {
		panic(err)
	}

	atomic.StoreUint64(&appDB.lastHeight, height)
}

// SetStartHeight remembers the genesis height, SaveStartHeight persists it
func (appDB *AppDB) SetStartHeight(height uint64) {
	atomic.StoreUint64(&appDB.startHeight, height)
}

// SaveStartHeight stores the start height on disk, panics on error
func (appDB *AppDB) SaveStartHeight() {
	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, atomic.LoadUint64(&appDB.startHeight))

	if err := appDB.db.Set([]byte(startHeightPath), h); err != nil {
		panic(err)
	}
}

// GetStartHeight returns start height stored on disk
func (appDB *AppDB) GetStartHeight() uint64 {
	val := atomic.LoadUint64(&appDB.startHeight)
	if val != 0 {
		return val
	}

	result, err := appDB.db.Get([]byte(startHeightPath))
	if err != nil {
		panic(err)
	}

	if len(result) != 0 {
		val = binary.BigEndian.Uint64(result)
		atomic.StoreUint64(&appDB.startHeight, val)
	}

	return val
}

const BlocksTimeCount = 4

func (appDB *AppDB) loadBlocksTime() {
	if len(appDB.lastTimeBlocks) != 0 {
		return
	}

	result, err := appDB.db.Get([]byte(blocksTimePath))
	if err != nil {
		panic(err)
	}
	if len(result) == 0 {
		return
	}

	if err := tmjson.Unmarshal(result, &appDB.lastTimeBlocks); err != nil {
		panic(err)
	}
}

// GetLastBlockTimeDelta returns the sum of time deltas in seconds between the latest blocks and their count
func (appDB *AppDB) GetLastBlockTimeDelta() (sumTimes int, count int) {
	appDB.loadBlocksTime()
	return calcBlockDelta(appDB.lastTimeBlocks)
}

func calcBlockDelta(times []uint64) (sumTimes int, num int) {
	count := len(times)
	if count < 2 {
		return 0, 0
	}

	var res int
	for i, timestamp := range times[1:] {
		res += int(timestamp - times[i])
	}
	return res, count - 1
}

func (appDB *AppDB) AddBlocksTime(time time.Time) {
	appDB.loadBlocksTime()

	appDB.lastTimeBlocks = append(appDB.lastTimeBlocks, uint64(time.Unix()))
	count := len(appDB.lastTimeBlocks)
	if count > BlocksTimeCount {
		appDB.lastTimeBlocks = appDB.lastTimeBlocks[count-BlocksTimeCount:]
	}
}

func (appDB *AppDB) SaveBlocksTime() {
	data, err := tmjson.Marshal(appDB.lastTimeBlocks)
	if err != nil {
		panic(err)
	}

	if err := appDB.db.Set([]byte(blocksTimePath), data); err != nil {
		panic(err)
	}
}

// Version is a node release that started processing blocks at Height
type Version struct {
	Name   string
	Height uint64
}

func (appDB *AppDB) GetVersionName(height uint64) string {
	lastVersionName := ""
	for _, version := range appDB.GetVersions() {
		if version.Height > height {
			return lastVersionName
		}
		lastVersionName = version.Name
	}

	return lastVersionName
}

func (appDB *AppDB) GetVersions() []*Version {
	if len(appDB.versions) == 0 {
		result, err := appDB.db.Get([]byte(versionsPath))
		if err != nil {
			panic(err)
		}
		if len(result) != 0 {
			if err := tmjson.Unmarshal(result, &appDB.versions); err != nil {
				panic(err)
			}
		}
	}

	return appDB.versions
}

func (appDB *AppDB) AddVersion(v string, height uint64) {
	appDB.GetVersions()

	appDB.versions = append(appDB.versions, &Version{
		Name:   v,
		Height: height,
	})
	appDB.isDirtyVersions = true
}

func (appDB *AppDB) SaveVersions() {
	if !appDB.isDirtyVersions {
		return
	}
	data, err := tmjson.Marshal(appDB.versions)
	if err != nil {
		panic(err)
	}

	if err := appDB.db.Set([]byte(versionsPath), data); err != nil {
		panic(err)
	}

	appDB.isDirtyVersions = false
}
