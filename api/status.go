package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatusResponse struct {
	Version          string  `json:"version"`
	LatestAppHash    string  `json:"latest_app_hash"`
	LatestHeight     uint64  `json:"latest_height"`
	InitialHeight    uint64  `json:"initial_height"`
	LastBlockSeconds float64 `json:"last_block_seconds"`
	AverageBlockTime float64 `json:"average_block_time"`
	KeepLastStates   int64   `json:"keep_last_states"`
	OldestHeight     uint64  `json:"oldest_height"`
	Nonce            uint64  `json:"nonce"`
	LastSweptHeight  uint64  `json:"last_swept_height"`
}

// Status returns the height and the security counter of the node
func (s *Service) Status(c *gin.Context) {
	cState := s.blockchain.CurrentState()
	if cState == nil {
		s.fail(c, http.StatusServiceUnavailable, http.StatusServiceUnavailable, "chain is not initialized")
		return
	}

	var oldest uint64
	if versions := s.blockchain.AvailableVersions(); len(versions) != 0 {
		oldest = uint64(versions[0])
	}

	s.ok(c, StatusResponse{
		Version:          s.version,
		LatestAppHash:    fmt.Sprintf("%X", s.blockchain.LastBlockHash()),
		LatestHeight:     s.blockchain.Height(),
		InitialHeight:    s.blockchain.StartHeight(),
		LastBlockSeconds: s.blockchain.StatisticData().GetLastBlockInfo().Duration,
		AverageBlockTime: s.blockchain.AverageBlockTime().Seconds(),
		KeepLastStates:   s.cfg.KeepLastStates,
		OldestHeight:     oldest,
		Nonce:            cState.App().Nonce(),
		LastSweptHeight:  cState.App().LastSweptHeight(),
	})
}
