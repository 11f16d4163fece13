package transaction

import (
	"fmt"
	"strconv"

	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/oracle"
	"github.com/tidelabs/tidecore/core/types"
)

// CancelSwapData closes an active request, allowed to its owner, the oracle and root
type CancelSwapData struct {
	RequestID types.Hash
}

func (data CancelSwapData) TxType() TxType {
	return TypeCancelSwap
}

func (data CancelSwapData) Policy() Policy {
	return RootOrSignedPolicy
}

func (data CancelSwapData) basicCheck(tx *Transaction, context *state.CheckState) (*oracle.Swap, *Response) {
	swap, errResp := activeSwap(context, data.RequestID)
	if errResp != nil {
		return nil, failed(errResp)
	}

	auth := tx.Auth()
	if auth.IsSigned() && auth.Signer != swap.Account && auth.Signer != context.Oracle().Account() {
		return nil, failed(code.NewError(code.IsNotOwnerOfSwap, fmt.Sprintf("%s is not the owner of swap %s", auth.Signer, data.RequestID),
			code.NewIsNotOwnerOfSwap(data.RequestID.String(), swap.Account.String())))
	}

	return swap, nil
}

func (data CancelSwapData) String() string {
	return fmt.Sprintf("CANCEL SWAP id:%s", data.RequestID)
}

func (data CancelSwapData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	swap, response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		closeSwap(deliverState, swap, oracle.StatusCancelled)

		tags = []abcTypes.EventAttribute{
			tag("tx.request_id", data.RequestID.String(), true),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

// MarketMakerData is add_market_maker or remove_market_maker depending on the call type
type MarketMakerData struct {
	Account types.Address

	add bool
}

func (data MarketMakerData) TxType() TxType {
	if data.add {
		return TypeAddMarketMaker
	}
	return TypeRemoveMarketMaker
}

func (data MarketMakerData) Policy() Policy {
	return RootOrOraclePolicy
}

func (data MarketMakerData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if !data.add && !context.Oracle().IsMarketMaker(data.Account) {
		return failed(code.NewError(code.MarketMakerNotFound, fmt.Sprintf("%s is not a market maker", data.Account),
			code.NewMarketMakerNotFound(data.Account.String())))
	}
	return nil
}

func (data MarketMakerData) String() string {
	return fmt.Sprintf("MARKET MAKER account:%s add:%t", data.Account, data.add)
}

func (data MarketMakerData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		if data.add {
			deliverState.Oracle.AddMarketMaker(data.Account)
		} else {
			deliverState.Oracle.RemoveMarketMaker(data.Account)
		}

		tags = []abcTypes.EventAttribute{
			tag("tx.account", data.Account.String(), true),
			tag("tx.market_maker", strconv.FormatBool(data.add), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

type SetOracleAccountData struct {
	Account types.Address
}

func (data SetOracleAccountData) TxType() TxType {
	return TypeSetOracleAccount
}

func (data SetOracleAccountData) Policy() Policy {
	return RootPolicy
}

func (data SetOracleAccountData) String() string {
	return fmt.Sprintf("SET ORACLE ACCOUNT account:%s", data.Account)
}

func (data SetOracleAccountData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Oracle.SetAccount(data.Account)

		tags = []abcTypes.EventAttribute{
			tag("tx.account", data.Account.String(), true),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

type SetOracleStatusData struct {
	Enabled bool
}

func (data SetOracleStatusData) TxType() TxType {
	return TypeSetOracleStatus
}

func (data SetOracleStatusData) Policy() Policy {
	return RootPolicy
}

func (data SetOracleStatusData) String() string {
	return fmt.Sprintf("SET ORACLE STATUS enabled:%t", data.Enabled)
}

func (data SetOracleStatusData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Oracle.SetEnabled(data.Enabled)

		tags = []abcTypes.EventAttribute{
			tag("tx.enabled", strconv.FormatBool(data.Enabled), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}
