package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidelabs/tidecore/core/types"
)

type BalanceResponse struct {
	Currency types.CurrencyID `json:"currency"`
	Free     string           `json:"free"`
	Held     string           `json:"held"`
}

type AddressResponse struct {
	Address  types.Address     `json:"address"`
	Balances []BalanceResponse `json:"balances"`
	Locked   string            `json:"locked"`
	Frozen   bool              `json:"frozen"`
}

func (s *Service) parseAddress(c *gin.Context) (types.Address, bool) {
	address, err := types.ParseAddress(c.Param("address"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, http.StatusBadRequest, "invalid address: "+err.Error())
		return types.Address{}, false
	}
	return address, true
}

// Balance returns free and held balances of an account
func (s *Service) Balance(c *gin.Context) {
	address, ok := s.parseAddress(c)
	if !ok {
		return
	}
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	accounts := cState.Accounts()
	balances := accounts.GetBalances(address)
	result := AddressResponse{
		Address:  address,
		Balances: make([]BalanceResponse, 0, len(balances)),
		Locked:   accounts.GetLocked(address).Dec(),
		Frozen:   accounts.IsFrozen(address),
	}
	for _, balance := range balances {
		result.Balances = append(result.Balances, BalanceResponse{
			Currency: balance.Currency,
			Free:     balance.Free.Dec(),
			Held:     balance.Held.Dec(),
		})
	}

	s.ok(c, result)
}
