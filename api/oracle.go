package api

import (
	"github.com/gin-gonic/gin"
	"github.com/tidelabs/tidecore/core/types"
)

type OracleResponse struct {
	Enabled      bool            `json:"enabled"`
	Account      types.Address   `json:"account"`
	MarketMakers []types.Address `json:"market_makers"`
	Swaps        []SwapResponse  `json:"swaps"`
}

// Oracle returns the oracle authority, the market makers and the swap queue
func (s *Service) Oracle(c *gin.Context) {
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	o := cState.Oracle()
	lifetime := cState.App().Params().SwapLifetime
	swaps := o.GetSwaps()
	result := OracleResponse{
		Enabled:      o.IsEnabled(),
		Account:      o.Account(),
		MarketMakers: o.MarketMakers(),
		Swaps:        make([]SwapResponse, 0, len(swaps)),
	}
	if result.MarketMakers == nil {
		result.MarketMakers = []types.Address{}
	}
	for _, swap := range swaps {
		result.Swaps = append(result.Swaps, swapResponse(swap, lifetime))
	}

	s.ok(c, result)
}
