package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidelabs/tidecore/core/types"
)

type PublicKeyResponse struct {
	Member types.Address `json:"member"`
	Key    string        `json:"key"`
}

type QuorumResponse struct {
	Enabled         bool                                     `json:"enabled"`
	Members         []types.Address                          `json:"members"`
	Threshold       uint16                                   `json:"threshold"`
	ActiveProposals uint32                                   `json:"active_proposals"`
	BurnedItems     uint32                                   `json:"burned_items"`
	PublicKeys      map[types.CurrencyID][]PublicKeyResponse `json:"public_keys,omitempty"`
}

// Quorum returns the member set of the quorum and the keys submitted for the "currency" query parameter
func (s *Service) Quorum(c *gin.Context) {
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	q := cState.Quorum()
	config := q.Config()
	result := QuorumResponse{
		Enabled:         config.Enabled,
		Members:         config.Members,
		Threshold:       config.Threshold,
		ActiveProposals: config.ActiveProposals,
		BurnedItems:     config.BurnedItems,
	}

	if currencyParam := c.Query("currency"); currencyParam != "" {
		currency, err := types.ParseCurrencyID(currencyParam)
		if err != nil {
			s.fail(c, http.StatusBadRequest, http.StatusBadRequest, err.Error())
			return
		}
		keys := q.GetPublicKeys(currency)
		list := make([]PublicKeyResponse, 0, len(keys))
		for _, key := range keys {
			list = append(list, PublicKeyResponse{Member: key.Member, Key: key.Key})
		}
		result.PublicKeys = map[types.CurrencyID][]PublicKeyResponse{currency: list}
	}

	s.ok(c, result)
}
