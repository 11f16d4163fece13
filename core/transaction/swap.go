package transaction

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/expiry"
	"github.com/tidelabs/tidecore/core/state/oracle"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

// SwapData queues a swap request for the oracle. Funds of accounts that are not
// market makers are held until the request is settled or closed.
type SwapData struct {
	AssetFrom  types.CurrencyID
	AmountFrom *uint256.Int
	AssetTo    types.CurrencyID
	AmountTo   *uint256.Int
	SwapType   oracle.SwapType
	Slippage   types.Permill
}

func (data SwapData) TxType() TxType {
	return TypeSwap
}

func (data SwapData) Policy() Policy {
	return SignedPolicy
}

func checkOracleEnabled(context *state.CheckState) *code.Error {
	if !context.Oracle().IsEnabled() {
		return code.NewError(code.OracleDisabled, "oracle is disabled", code.NewOracleDisabled())
	}
	return nil
}

func (data SwapData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if errResp := checkOracleEnabled(context); errResp != nil {
		return failed(errResp)
	}
	if errResp := checkAsset(context, data.AssetFrom); errResp != nil {
		return failed(errResp)
	}
	if errResp := checkAsset(context, data.AssetTo); errResp != nil {
		return failed(errResp)
	}
	if data.AssetFrom == data.AssetTo {
		return failed(code.NewError(code.SameAssetPair, fmt.Sprintf("swap of %s to itself", data.AssetFrom), code.NewSameAssetPair(data.AssetFrom.String())))
	}
	if errResp := checkAmount("amount_from", data.AmountFrom); errResp != nil {
		return failed(errResp)
	}
	if errResp := checkAmount("amount_to", data.AmountTo); errResp != nil {
		return failed(errResp)
	}
	if data.SwapType > oracle.SwapLimit {
		return failed(code.NewError(code.UnknownCall, fmt.Sprintf("unknown swap type %d", data.SwapType), code.NewUnknownCall(strconv.Itoa(int(data.SwapType)))))
	}
	if !data.Slippage.Valid() {
		return failed(code.NewError(code.InvalidSlippage, fmt.Sprintf("slippage %d is over %d", data.Slippage, types.PermillDenominator),
			code.NewInvalidSlippage(strconv.Itoa(int(data.Slippage)))))
	}

	if !context.Oracle().IsMarketMaker(tx.Sender()) {
		if errResp := context.Accounts().CheckTransfer(tx.Sender(), tx.Sender(), data.AssetFrom, data.AmountFrom, false); errResp != nil {
			return failed(errResp)
		}
	}

	return nil
}

func (data SwapData) String() string {
	return fmt.Sprintf("SWAP %s %s for %s %s type:%s slippage:%s",
		helpers.AmountToString(data.AmountFrom), data.AssetFrom, helpers.AmountToString(data.AmountTo), data.AssetTo, data.SwapType, data.Slippage)
}

func (data SwapData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	sender := tx.Sender()

	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	var result []byte
	if deliverState, ok := context.(*state.State); ok {
		isMarketMaker := deliverState.Oracle.IsMarketMaker(sender)
		if !isMarketMaker {
			if errResp := deliverState.Accounts.Hold(sender, data.AssetFrom, data.AmountFrom); errResp != nil {
				return errorResponse(errResp)
			}
		}

		id := deriveID(sender, deliverState.App.NextNonce())
		deliverState.Oracle.AddSwap(id, &oracle.Swap{
			Account:          sender,
			AssetFrom:        data.AssetFrom,
			AmountFrom:       data.AmountFrom,
			AmountFromFilled: new(uint256.Int),
			AssetTo:          data.AssetTo,
			AmountTo:         data.AmountTo,
			AmountToFilled:   new(uint256.Int),
			CreatedAt:        currentBlock,
			ExtrinsicHash:    tx.Hash(),
			IsMarketMaker:    isMarketMaker,
			SwapType:         data.SwapType,
			Slippage:         data.Slippage,
			Status:           oracle.StatusPending,
		})
		deliverState.Expiry.Add(currentBlock+deliverState.App.Params().SwapLifetime, expiry.KindSwap, id)

		result = id.Bytes()
		tags = []abcTypes.EventAttribute{
			tag("tx.request_id", id.String(), true),
			tag("tx.asset_from", data.AssetFrom.String(), true),
			tag("tx.asset_to", data.AssetTo.String(), true),
			tag("tx.market_maker", strconv.FormatBool(isMarketMaker), false),
		}
	}

	return Response{
		Code: code.OK,
		Data: result,
		Tags: tags,
	}
}

// closeSwap ends a request and gives the unfilled part of its hold back to the owner
func closeSwap(deliverState *state.State, swap *oracle.Swap, status oracle.SwapStatus) {
	released := new(uint256.Int)
	if !swap.IsMarketMaker {
		released = helpers.Min(swap.RemainingFrom(), deliverState.Accounts.GetHeld(swap.Account, swap.AssetFrom))
		if !released.IsZero() {
			if errResp := deliverState.Accounts.Release(swap.Account, swap.AssetFrom, released); errResp != nil {
				deliverState.Logger().Error("release of swap hold failed", "request", swap.ID(), "err", errResp.Log)
				released = new(uint256.Int)
			}
		}
	}

	deliverState.Oracle.Close(swap, status)
	deliverState.Events().AddEvent(&eventsdb.SwapClosedEvent{
		RequestID: swap.ID(),
		Account:   swap.Account,
		Status:    status.String(),
		Released:  released.Dec(),
	})
	deliverState.Logger().Info("swap closed", "request", swap.ID(), "status", status, "released", released.Dec())
}
