package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	tmlog "github.com/tendermint/tendermint/libs/log"
	"github.com/tidelabs/tidecore/config"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/tidechain"
)

// Service serves read-only queries over the node state
type Service struct {
	blockchain *tidechain.Blockchain
	cfg        *config.Config
	logger     tmlog.Logger
	version    string
}

func NewService(blockchain *tidechain.Blockchain, cfg *config.Config, logger tmlog.Logger, version string) *Service {
	if logger == nil {
		logger = tmlog.NewNopLogger()
	}
	return &Service{blockchain: blockchain, cfg: cfg, logger: logger.With("module", "api"), version: version}
}

// Handler returns the gin router with every route of the API
func (s *Service) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.responseTime)

	r.GET("/status", s.Status)
	r.GET("/assets", s.Assets)
	r.GET("/balance/:address", s.Balance)
	r.GET("/proposals", s.Proposals)
	r.GET("/proposal/:id", s.Proposal)
	r.GET("/swap/:id", s.Swap)
	r.GET("/vesting/:address", s.Vesting)
	r.GET("/quorum", s.Quorum)
	r.GET("/oracle", s.Oracle)
	r.GET("/events/:height", s.Events)
	if s.cfg.Prometheus {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		s.fail(c, http.StatusNotFound, http.StatusNotFound, "route not found")
	})

	return r
}

func (s *Service) responseTime(c *gin.Context) {
	start := time.Now()
	c.Next()

	path := c.FullPath()
	if path == "" {
		return
	}
	s.blockchain.StatisticData().SetApiTime(time.Since(start), path)
}

type errorBody struct {
	Code    uint32 `json:"code"`
	Message string `json:"message"`
}

func (s *Service) ok(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (s *Service) fail(c *gin.Context, status int, code uint32, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: message}})
}

// getStateForRequest returns the state at the "height" query parameter, the current one without it
func (s *Service) getStateForRequest(c *gin.Context) (*state.CheckState, bool) {
	heightParam := c.Query("height")
	if heightParam == "" {
		return s.blockchain.CurrentState(), true
	}

	height, err := strconv.ParseUint(heightParam, 10, 64)
	if err != nil {
		s.fail(c, http.StatusBadRequest, http.StatusBadRequest, "invalid height")
		return nil, false
	}
	if height == 0 || height == s.blockchain.Height() {
		return s.blockchain.CurrentState(), true
	}

	cState, err := s.blockchain.CheckStateAtHeight(height)
	if err != nil {
		s.fail(c, http.StatusNotFound, http.StatusNotFound, err.Error())
		return nil, false
	}
	return cState, true
}
