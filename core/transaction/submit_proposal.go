package transaction

import (
	"fmt"
	"strconv"

	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/expiry"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/helpers"
)

// SubmitProposalData opens a proposal voted by the quorum, the proposer votes for it
type SubmitProposalData struct {
	Proposal quorum.ProposalData
}

func (data SubmitProposalData) TxType() TxType {
	return TypeSubmitProposal
}

func (data SubmitProposalData) Policy() Policy {
	return QuorumMemberPolicy
}

func checkQuorumEnabled(context *state.CheckState) *code.Error {
	if !context.Quorum().IsEnabled() {
		return code.NewError(code.QuorumDisabled, "quorum is disabled", code.NewQuorumDisabled())
	}
	return nil
}

func (data SubmitProposalData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if errResp := checkQuorumEnabled(context); errResp != nil {
		return failed(errResp)
	}

	params := context.App().Params()
	if context.Quorum().ActiveProposals() >= params.ProposalsCap {
		return failed(code.NewError(code.ProposalsCapExceeded, fmt.Sprintf("there are %d active proposals already", params.ProposalsCap),
			code.NewProposalsCapExceeded(strconv.Itoa(int(params.ProposalsCap)))))
	}

	proposal := data.Proposal
	switch proposal.Kind {
	case quorum.KindMint, quorum.KindBurn, quorum.KindTransfer:
		if errResp := checkAsset(context, proposal.Currency); errResp != nil {
			return failed(errResp)
		}
		if errResp := checkAmount("amount", proposal.Amount); errResp != nil {
			return failed(errResp)
		}
		if errResp := checkString("external_tx_hash", proposal.ExternalTxHash, params.StringLimit); errResp != nil {
			return failed(errResp)
		}
	case quorum.KindUpdateConfiguration:
		if errResp := context.Quorum().CheckConfiguration(proposal.Members, proposal.Threshold, params.VotesLimit); errResp != nil {
			return failed(errResp)
		}
	default:
		return failed(code.NewError(code.UnknownCall, fmt.Sprintf("unknown proposal kind %d", proposal.Kind),
			code.NewUnknownCall(proposal.Kind.String())))
	}

	if ref, ok := proposal.ExternalRef(); ok {
		if id, exists := context.Quorum().ProposalByExternalRef(ref); exists {
			return failed(code.NewError(code.ProposalAlreadyExists, fmt.Sprintf("external tx %s is already proposed by %s", proposal.ExternalTxHash, id),
				code.NewProposalAlreadyExists(id.String(), proposal.ExternalTxHash)))
		}
	}

	if proposal.Kind == quorum.KindMint && uint32(len(context.Quorum().GetWatchList(proposal.Account))) >= params.WatchListLimit {
		return failed(code.NewError(code.WatchListLimitExceeded, fmt.Sprintf("watch list of %s is full", proposal.Account),
			code.NewWatchListLimitExceeded(strconv.Itoa(int(params.WatchListLimit)), proposal.Account.String())))
	}

	return nil
}

func (data SubmitProposalData) String() string {
	p := data.Proposal
	if p.Kind == quorum.KindUpdateConfiguration {
		return fmt.Sprintf("SUBMIT PROPOSAL kind:%s members:%d threshold:%d", p.Kind, len(p.Members), p.Threshold)
	}
	return fmt.Sprintf("SUBMIT PROPOSAL kind:%s account:%s currency:%s amount:%s external:%s",
		p.Kind, p.Account, p.Currency, helpers.AmountToString(p.Amount), p.ExternalTxHash)
}

func (data SubmitProposalData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	sender := tx.Sender()

	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	var result []byte
	if deliverState, ok := context.(*state.State); ok {
		params := deliverState.App.Params()
		id := deriveID(data.Proposal, deliverState.App.NextNonce())
		proposal := deliverState.Quorum.AddProposal(id, data.Proposal, sender, currentBlock)
		deliverState.Expiry.Add(currentBlock+params.ProposalLifetime, expiry.KindProposal, id)

		deliverState.Events().AddEvent(&eventsdb.ProposalSubmittedEvent{
			ProposalID: id,
			Proposer:   sender,
			Kind:       data.Proposal.Kind.String(),
		})

		status, errResp := evaluateVotedProposal(deliverState, proposal, sender)

		result = id.Bytes()
		tags = proposalTags(proposal, status, errResp)
	}

	return Response{
		Code: code.OK,
		Data: result,
		Tags: tags,
	}
}
