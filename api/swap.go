package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/oracle"
	"github.com/tidelabs/tidecore/core/types"
)

type SwapResponse struct {
	ID               types.Hash       `json:"id"`
	Account          types.Address    `json:"account"`
	AssetFrom        types.CurrencyID `json:"asset_from"`
	AmountFrom       string           `json:"amount_from"`
	AmountFromFilled string           `json:"amount_from_filled"`
	AssetTo          types.CurrencyID `json:"asset_to"`
	AmountTo         string           `json:"amount_to"`
	AmountToFilled   string           `json:"amount_to_filled"`
	CreatedAt        uint64           `json:"created_at"`
	ExpiresAt        uint64           `json:"expires_at"`
	ExtrinsicHash    types.Hash       `json:"extrinsic_hash"`
	IsMarketMaker    bool             `json:"is_market_maker"`
	SwapType         string           `json:"swap_type"`
	Slippage         string           `json:"slippage"`
	Status           string           `json:"status"`
}

func swapResponse(swap *oracle.Swap, lifetime uint64) SwapResponse {
	fromFilled, toFilled := swap.Filled()
	return SwapResponse{
		ID:               swap.ID(),
		Account:          swap.Account,
		AssetFrom:        swap.AssetFrom,
		AmountFrom:       swap.AmountFrom.Dec(),
		AmountFromFilled: fromFilled.Dec(),
		AssetTo:          swap.AssetTo,
		AmountTo:         swap.AmountTo.Dec(),
		AmountToFilled:   toFilled.Dec(),
		CreatedAt:        swap.CreatedAt,
		ExpiresAt:        swap.CreatedAt + lifetime,
		ExtrinsicHash:    swap.ExtrinsicHash,
		IsMarketMaker:    swap.IsMarketMaker,
		SwapType:         swap.SwapType.String(),
		Slippage:         swap.Slippage.String(),
		Status:           swap.GetStatus().String(),
	}
}

// Swap returns an active swap request
func (s *Service) Swap(c *gin.Context) {
	id, err := types.HexToHash(c.Param("id"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, http.StatusBadRequest, "invalid swap id: "+err.Error())
		return
	}
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	swap := cState.Oracle().GetSwap(id)
	if swap == nil {
		s.fail(c, http.StatusNotFound, code.SwapNotFound, "swap not found")
		return
	}

	s.ok(c, swapResponse(swap, cState.App().Params().SwapLifetime))
}
