package transaction

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

type TransferData struct {
	Currency types.CurrencyID
	To       types.Address
	Value    *uint256.Int
}

func (data TransferData) TxType() TxType {
	return TypeTransfer
}

func (data TransferData) Policy() Policy {
	return SignedPolicy
}

func (data TransferData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if errResp := checkAsset(context, data.Currency); errResp != nil {
		return failed(errResp)
	}
	if errResp := checkAmount("value", data.Value); errResp != nil {
		return failed(errResp)
	}

	return nil
}

func (data TransferData) String() string {
	return fmt.Sprintf("TRANSFER to:%s currency:%s value:%s",
		data.To, data.Currency, helpers.AmountToString(data.Value))
}

func (data TransferData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	sender := tx.Sender()
	checkState := toCheckState(context)

	response := data.basicCheck(tx, checkState)
	if response != nil {
		return *response
	}

	if errResp := checkState.Accounts().CheckTransfer(sender, data.To, data.Currency, data.Value, false); errResp != nil {
		return errorResponse(errResp)
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		if errResp := deliverState.Accounts.Transfer(sender, data.To, data.Currency, data.Value); errResp != nil {
			return errorResponse(errResp)
		}

		tags = []abcTypes.EventAttribute{
			{Key: []byte("tx.to"), Value: []byte(hex.EncodeToString(data.To[:])), Index: true},
			{Key: []byte("tx.currency"), Value: []byte(data.Currency.String()), Index: true},
			{Key: []byte("tx.value"), Value: []byte(data.Value.Dec())},
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}
