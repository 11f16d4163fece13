package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

type VoteResponse struct {
	Member  types.Address `json:"member"`
	Approve bool          `json:"approve"`
}

type ProposalResponse struct {
	ID             types.Hash       `json:"id"`
	Kind           string           `json:"kind"`
	Status         string           `json:"status"`
	Proposer       types.Address    `json:"proposer"`
	CreatedAt      uint64           `json:"created_at"`
	ExpiresAt      uint64           `json:"expires_at"`
	Account        types.Address    `json:"account"`
	To             *types.Address   `json:"to,omitempty"`
	Currency       types.CurrencyID `json:"currency"`
	Amount         string           `json:"amount,omitempty"`
	ExternalTxHash string           `json:"external_tx_hash,omitempty"`
	Members        []types.Address  `json:"members,omitempty"`
	Threshold      uint16           `json:"threshold,omitempty"`
	Votes          []VoteResponse   `json:"votes"`
	Yes            int              `json:"yes"`
	Remaining      int              `json:"remaining"`
}

func proposalResponse(q quorum.RQuorum, proposal *quorum.Proposal, lifetime uint64) ProposalResponse {
	data := proposal.Data
	yes, remaining := q.Tally(proposal)

	response := ProposalResponse{
		ID:             proposal.ID(),
		Kind:           data.Kind.String(),
		Status:         proposal.GetStatus().String(),
		Proposer:       proposal.Proposer,
		CreatedAt:      proposal.CreatedAt,
		ExpiresAt:      proposal.CreatedAt + lifetime,
		Account:        data.Account,
		Currency:       data.Currency,
		ExternalTxHash: data.ExternalTxHash,
		Members:        data.Members,
		Threshold:      data.Threshold,
		Yes:            yes,
		Remaining:      remaining,
	}
	if data.Kind != quorum.KindUpdateConfiguration {
		response.Amount = helpers.AmountToString(data.Amount)
	}
	if data.Kind == quorum.KindTransfer {
		to := data.To
		response.To = &to
	}

	votes := proposal.GetVotes()
	response.Votes = make([]VoteResponse, 0, len(votes))
	for _, vote := range votes {
		response.Votes = append(response.Votes, VoteResponse{Member: vote.Member, Approve: vote.Approve})
	}

	return response
}

// Proposals lists the stored proposals, optionally filtered by the "status" query parameter
func (s *Service) Proposals(c *gin.Context) {
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	var filter *quorum.Status
	if statusParam := c.Query("status"); statusParam != "" {
		status, ok := quorum.ParseStatus(statusParam)
		if !ok {
			s.fail(c, http.StatusBadRequest, http.StatusBadRequest, "unknown status "+statusParam)
			return
		}
		filter = &status
	}

	lifetime := cState.App().Params().ProposalLifetime
	proposals := cState.Quorum().GetProposals()
	result := make([]ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		if proposal == nil || (filter != nil && proposal.GetStatus() != *filter) {
			continue
		}
		result = append(result, proposalResponse(cState.Quorum(), proposal, lifetime))
	}

	s.ok(c, result)
}

// Proposal returns a proposal with its votes and the current tally
func (s *Service) Proposal(c *gin.Context) {
	id, err := types.HexToHash(c.Param("id"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, http.StatusBadRequest, "invalid proposal id: "+err.Error())
		return
	}
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	proposal := cState.Quorum().GetProposal(id)
	if proposal == nil {
		s.fail(c, http.StatusNotFound, code.ProposalNotFound, "proposal not found")
		return
	}

	s.ok(c, proposalResponse(cState.Quorum(), proposal, cState.App().Params().ProposalLifetime))
}
