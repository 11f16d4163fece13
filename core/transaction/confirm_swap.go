package transaction

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/oracle"
	"github.com/tidelabs/tidecore/core/types"
)

// SwapConfirmation settles AmountToSend of the confirmed request against
// AmountToReceive of the counterpart request RequestID
type SwapConfirmation struct {
	RequestID       types.Hash
	AmountToReceive *uint256.Int
	AmountToSend    *uint256.Int
}

type ConfirmSwapData struct {
	RequestID     types.Hash
	Confirmations []SwapConfirmation
}

// ConfirmationResult reports a confirmation of the batch, Code is zero when it was applied
type ConfirmationResult struct {
	RequestID types.Hash `json:"request_id"`
	Code      uint32     `json:"code"`
	Log       string     `json:"log,omitempty"`
}

func (data ConfirmSwapData) TxType() TxType {
	return TypeConfirmSwap
}

func (data ConfirmSwapData) Policy() Policy {
	return RootOrOraclePolicy
}

func (data ConfirmSwapData) basicCheck(tx *Transaction, context *state.CheckState) (*oracle.Swap, *Response) {
	if errResp := checkOracleEnabled(context); errResp != nil {
		return nil, failed(errResp)
	}

	if len(data.Confirmations) == 0 {
		return nil, failed(code.NewError(code.EmptyConfirmations, "no confirmations", code.NewEmptyConfirmations()))
	}
	if limit := context.App().Params().MaxConfirmations; uint32(len(data.Confirmations)) > limit {
		return nil, failed(code.NewError(code.TooManyConfirmations, fmt.Sprintf("at most %d confirmations are allowed", limit),
			code.NewTooManyConfirmations(strconv.Itoa(int(limit)))))
	}

	request, errResp := activeSwap(context, data.RequestID)
	if errResp != nil {
		return nil, failed(errResp)
	}

	return request, nil
}

func activeSwap(context *state.CheckState, id types.Hash) (*oracle.Swap, *code.Error) {
	swap := context.Oracle().GetSwap(id)
	if swap == nil {
		return nil, code.NewError(code.SwapNotFound, fmt.Sprintf("swap %s not found", id), code.NewSwapNotFound(id.String()))
	}
	if status := swap.GetStatus(); !status.IsActive() {
		return nil, code.NewError(code.SwapNotActive, fmt.Sprintf("swap %s is %s", id, status), code.NewSwapNotActive(id.String(), status.String()))
	}
	return swap, nil
}

func (data ConfirmSwapData) String() string {
	return fmt.Sprintf("CONFIRM SWAP id:%s confirmations:%d", data.RequestID, len(data.Confirmations))
}

func (data ConfirmSwapData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	request, response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	var result []byte
	if deliverState, ok := context.(*state.State); ok {
		results := make([]ConfirmationResult, 0, len(data.Confirmations))
		applied := 0
		for _, confirmation := range data.Confirmations {
			if errResp := settleConfirmation(deliverState, request, confirmation); errResp != nil {
				results = append(results, ConfirmationResult{RequestID: confirmation.RequestID, Code: errResp.Code, Log: errResp.Log})
				continue
			}
			results = append(results, ConfirmationResult{RequestID: confirmation.RequestID})
			applied++
		}

		encoded, err := json.Marshal(results)
		if err != nil {
			panic(err)
		}
		result = encoded

		tags = []abcTypes.EventAttribute{
			tag("tx.request_id", data.RequestID.String(), true),
			tag("tx.request_status", request.GetStatus().String(), true),
			tag("tx.confirmations_applied", strconv.Itoa(applied), false),
			tag("tx.confirmations_skipped", strconv.Itoa(len(data.Confirmations)-applied), false),
		}
	}

	return Response{
		Code: code.OK,
		Data: result,
		Tags: tags,
	}
}

// settleConfirmation checks a confirmation against the current state of both requests and,
// when every check passes, moves the funds both ways and records the fills
func settleConfirmation(deliverState *state.State, request *oracle.Swap, confirmation SwapConfirmation) *code.Error {
	toReceive, toSend := confirmation.AmountToReceive, confirmation.AmountToSend
	if toReceive == nil {
		toReceive = new(uint256.Int)
	}
	if toSend == nil {
		toSend = new(uint256.Int)
	}

	counterpart := deliverState.Oracle.GetSwap(confirmation.RequestID)
	if counterpart == nil {
		return code.NewError(code.SwapNotFound, fmt.Sprintf("swap %s not found", confirmation.RequestID), code.NewSwapNotFound(confirmation.RequestID.String()))
	}
	if status := request.GetStatus(); !status.IsActive() {
		return code.NewError(code.SwapNotActive, fmt.Sprintf("swap %s is %s", request.ID(), status), code.NewSwapNotActive(request.ID().String(), status.String()))
	}
	if errResp := oracle.CheckConfirmation(request, counterpart, toReceive, toSend); errResp != nil {
		return errResp
	}

	accounts := deliverState.Accounts
	if errResp := accounts.CheckTransfer(request.Account, counterpart.Account, request.AssetFrom, toSend, !request.IsMarketMaker); errResp != nil {
		return errResp
	}
	if errResp := accounts.CheckTransfer(counterpart.Account, request.Account, counterpart.AssetFrom, toReceive, !counterpart.IsMarketMaker); errResp != nil {
		return errResp
	}

	if errResp := pay(deliverState, request, counterpart.Account, toSend); errResp != nil {
		return errResp
	}
	if errResp := pay(deliverState, counterpart, request.Account, toReceive); errResp != nil {
		return errResp
	}

	for _, fill := range []struct {
		swap           *oracle.Swap
		sent, received *uint256.Int
	}{
		{request, toSend, toReceive},
		{counterpart, toReceive, toSend},
	} {
		status := deliverState.Oracle.Fill(fill.swap, fill.sent, fill.received)
		deliverState.Events().AddEvent(&eventsdb.SwapFilledEvent{
			RequestID:  fill.swap.ID(),
			Account:    fill.swap.Account,
			AmountFrom: fill.sent.Dec(),
			AmountTo:   fill.received.Dec(),
			Status:     status.String(),
		})
		if status == oracle.StatusCompleted {
			closeSwap(deliverState, fill.swap, oracle.StatusCompleted)
		}
	}

	return nil
}

// pay moves amount of the request source asset to the recipient, out of the hold
// unless the request belongs to a market maker
func pay(deliverState *state.State, swap *oracle.Swap, to types.Address, amount *uint256.Int) *code.Error {
	if swap.IsMarketMaker {
		return deliverState.Accounts.Transfer(swap.Account, to, swap.AssetFrom, amount)
	}
	return deliverState.Accounts.TransferHeld(swap.Account, to, swap.AssetFrom, amount)
}
