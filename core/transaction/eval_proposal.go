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

type EvalProposalStateData struct {
	ProposalID types.Hash
}

func (data EvalProposalStateData) TxType() TxType {
	return TypeEvalProposalState
}

func (data EvalProposalStateData) Policy() Policy {
	return QuorumMemberPolicy
}

// activeProposal returns the proposal a member may still vote on or evaluate
func activeProposal(context *state.CheckState, id types.Hash, currentBlock uint64) (*quorum.Proposal, *code.Error) {
	if errResp := checkQuorumEnabled(context); errResp != nil {
		return nil, errResp
	}

	proposal := context.Quorum().GetProposal(id)
	if proposal == nil {
		return nil, code.NewError(code.ProposalNotFound, fmt.Sprintf("proposal %s not found", id), code.NewProposalNotFound(id.String()))
	}
	if status := proposal.GetStatus(); status != quorum.StatusActive {
		return nil, code.NewError(code.ProposalNotActive, fmt.Sprintf("proposal %s is %s", id, status), code.NewProposalNotActive(id.String(), status.String()))
	}
	if currentBlock >= proposal.CreatedAt+context.App().Params().ProposalLifetime {
		return nil, code.NewError(code.ProposalExpired, fmt.Sprintf("proposal %s is expired", id), code.NewProposalExpired(id.String()))
	}

	return proposal, nil
}

func (data EvalProposalStateData) basicCheck(tx *Transaction, context *state.CheckState, currentBlock uint64) (*quorum.Proposal, *Response) {
	proposal, errResp := activeProposal(context, data.ProposalID, currentBlock)
	if errResp != nil {
		return nil, failed(errResp)
	}

	if context.Quorum().Outcome(proposal) == quorum.StatusActive {
		yes, _ := context.Quorum().Tally(proposal)
		threshold := context.Quorum().Threshold()
		return nil, failed(code.NewError(code.ThresholdNotMet, fmt.Sprintf("proposal %s has %d of %d votes", data.ProposalID, yes, threshold),
			code.NewThresholdNotMet(data.ProposalID.String(), strconv.Itoa(yes), strconv.Itoa(int(threshold)))))
	}

	return proposal, nil
}

func (data EvalProposalStateData) String() string {
	return fmt.Sprintf("EVAL PROPOSAL id:%s", data.ProposalID)
}

func (data EvalProposalStateData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	proposal, response := data.basicCheck(tx, toCheckState(context), currentBlock)
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		status, errResp := evaluateProposal(deliverState, proposal)
		if errResp != nil {
			return errorResponse(code.NewError(code.ProposalExecutionFailed, fmt.Sprintf("proposal %s execution failed: %s", proposal.ID(), errResp.Log),
				code.NewProposalExecutionFailed(proposal.ID().String(), errResp)))
		}
		tags = proposalTags(proposal, status, nil)
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

// evaluateProposal finalizes the proposal once the current tally decides it. An accepted
// proposal is executed first, when execution fails nothing changes and the failure is returned.
func evaluateProposal(deliverState *state.State, proposal *quorum.Proposal) (quorum.Status, *code.Error) {
	status := deliverState.Quorum.Outcome(proposal)
	switch status {
	case quorum.StatusActive:
		return status, nil
	case quorum.StatusAccepted:
		if errResp := executeProposal(deliverState, proposal.Data); errResp != nil {
			return quorum.StatusActive, errResp
		}
	}

	finalizeProposal(deliverState, proposal, status)
	return status, nil
}

// evaluateVotedProposal evaluates the proposal after a successful submit or vote. An execution
// failure does not fail the call: the proposal is marked, so a later reject vote can close it.
func evaluateVotedProposal(deliverState *state.State, proposal *quorum.Proposal, member types.Address) (quorum.Status, *code.Error) {
	status, errResp := evaluateProposal(deliverState, proposal)
	if errResp == nil {
		return status, nil
	}

	deliverState.Quorum.MarkExecutionFailed(proposal)
	deliverState.Events().AddEvent(&eventsdb.ProposalExecutionFailedEvent{
		ProposalID: proposal.ID(),
		Member:     member,
		Code:       errResp.Code,
		Log:        errResp.Log,
	})
	deliverState.Logger().Info("proposal execution failed", "proposal", proposal.ID(), "code", errResp.Code, "err", errResp.Log)
	return status, errResp
}

func finalizeProposal(deliverState *state.State, proposal *quorum.Proposal, status quorum.Status) {
	deliverState.Quorum.Finalize(proposal, status)
	deliverState.Events().AddEvent(&eventsdb.ProposalFinalizedEvent{
		ProposalID: proposal.ID(),
		Proposer:   proposal.Proposer,
		Status:     status.String(),
	})
	deliverState.Logger().Info("proposal finalized", "proposal", proposal.ID(), "kind", proposal.Data.Kind, "status", status)
}

// executeProposal applies an accepted proposal, every branch is a single ledger
// operation validating before it mutates
func executeProposal(deliverState *state.State, data quorum.ProposalData) *code.Error {
	switch data.Kind {
	case quorum.KindMint:
		if errResp := deliverState.Assets.CanMint(data.Currency); errResp != nil {
			return errResp
		}
		return deliverState.Accounts.Mint(data.Account, data.Currency, data.Amount)
	case quorum.KindBurn:
		return deliverState.Accounts.Burn(data.Account, data.Currency, data.Amount)
	case quorum.KindTransfer:
		return deliverState.Accounts.Transfer(data.Account, data.To, data.Currency, data.Amount)
	case quorum.KindUpdateConfiguration:
		params := deliverState.App.Params()
		if errResp := deliverState.Quorum.CheckConfiguration(data.Members, data.Threshold, params.VotesLimit); errResp != nil {
			return errResp
		}
		deliverState.Quorum.SetConfiguration(data.Members, data.Threshold)
		return nil
	}

	return code.NewError(code.UnknownCall, fmt.Sprintf("unknown proposal kind %d", data.Kind), code.NewUnknownCall(data.Kind.String()))
}

func proposalTags(proposal *quorum.Proposal, status quorum.Status, executionErr *code.Error) []abcTypes.EventAttribute {
	tags := []abcTypes.EventAttribute{
		tag("tx.proposal_id", proposal.ID().String(), true),
		tag("tx.proposal_status", status.String(), true),
	}
	if executionErr != nil {
		tags = append(tags,
			tag("tx.execution_code", strconv.Itoa(int(executionErr.Code)), false),
			tag("tx.execution_log", executionErr.Log, false),
		)
	}
	return tags
}
