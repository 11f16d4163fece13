package api

import (
	"github.com/gin-gonic/gin"
	"github.com/tidelabs/tidecore/core/types"
)

type AssetResponse struct {
	Currency types.CurrencyID `json:"currency"`
	Name     string           `json:"name"`
	Symbol   string           `json:"symbol"`
	Decimals uint8            `json:"decimals"`
	Enabled  bool             `json:"enabled"`
	Issuance string           `json:"issuance"`
}

// Assets lists the registry with the current issuance of every asset
func (s *Service) Assets(c *gin.Context) {
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	list := cState.Assets().List()
	result := make([]AssetResponse, 0, len(list))
	for _, asset := range list {
		if asset == nil {
			continue
		}
		result = append(result, AssetResponse{
			Currency: asset.Currency(),
			Name:     asset.Name,
			Symbol:   asset.Symbol,
			Decimals: asset.Decimals,
			Enabled:  asset.IsEnabled(),
			Issuance: asset.GetIssuance().Dec(),
		})
	}

	s.ok(c, result)
}
