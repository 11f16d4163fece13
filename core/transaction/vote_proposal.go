package transaction

import (
	"fmt"
	"strconv"

	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/core/types"
)

// VoteProposalData is acknowledge_proposal or reject_proposal depending on the call type
type VoteProposalData struct {
	ProposalID types.Hash

	approve bool
}

func (data VoteProposalData) TxType() TxType {
	if data.approve {
		return TypeAcknowledgeProposal
	}
	return TypeRejectProposal
}

func (data VoteProposalData) Policy() Policy {
	return QuorumMemberPolicy
}

func (data VoteProposalData) basicCheck(tx *Transaction, context *state.CheckState, currentBlock uint64) (*quorum.Proposal, *Response) {
	proposal, errResp := activeProposal(context, data.ProposalID, currentBlock)
	if errResp != nil {
		return nil, failed(errResp)
	}

	if vote, voted := proposal.VoteOf(tx.Sender()); voted && !data.withdrawsApproval(proposal, vote) {
		return nil, failed(code.NewError(code.AlreadyVoted, fmt.Sprintf("%s already voted for proposal %s", tx.Sender(), data.ProposalID),
			code.NewAlreadyVoted(data.ProposalID.String(), tx.Sender().String())))
	}

	return proposal, nil
}

// withdrawsApproval reports a reject by a member who approved a proposal that then failed to execute
func (data VoteProposalData) withdrawsApproval(proposal *quorum.Proposal, previous quorum.Vote) bool {
	return !data.approve && previous.Approve && proposal.IsExecutionFailed()
}

func (data VoteProposalData) String() string {
	return fmt.Sprintf("VOTE PROPOSAL id:%s approve:%t", data.ProposalID, data.approve)
}

func (data VoteProposalData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	sender := tx.Sender()

	proposal, response := data.basicCheck(tx, toCheckState(context), currentBlock)
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Quorum.Vote(proposal, sender, data.approve)
		deliverState.Events().AddEvent(&eventsdb.ProposalVotedEvent{
			ProposalID: proposal.ID(),
			Member:     sender,
			Approve:    data.approve,
		})

		if !data.approve && proposal.IsExecutionFailed() {
			finalizeProposal(deliverState, proposal, quorum.StatusRejected)
			tags = append(proposalTags(proposal, quorum.StatusRejected, nil), tag("tx.approve", strconv.FormatBool(data.approve), false))
			return Response{
				Code: code.OK,
				Tags: tags,
			}
		}

		status, errResp := evaluateVotedProposal(deliverState, proposal, sender)

		tags = append(proposalTags(proposal, status, errResp), tag("tx.approve", strconv.FormatBool(data.approve), false))
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}
