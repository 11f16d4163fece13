package transaction

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	eventsdb "github.com/tidelabs/tidecore/core/events"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/quorum"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

// WithdrawalData holds Amount of a wrapped currency and queues it for the quorum,
// the funds are burned once the members attest the payout on the external chain
type WithdrawalData struct {
	Currency        types.CurrencyID
	Amount          *uint256.Int
	ExternalAddress string
}

func (data WithdrawalData) TxType() TxType {
	return TypeWithdrawal
}

func (data WithdrawalData) Policy() Policy {
	return SignedPolicy
}

func (data WithdrawalData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if errResp := checkQuorumEnabled(context); errResp != nil {
		return failed(errResp)
	}
	if errResp := checkAsset(context, data.Currency); errResp != nil {
		return failed(errResp)
	}
	if !data.Currency.IsWrapped() {
		return failed(code.NewError(code.InvalidCurrency, fmt.Sprintf("currency %s can not be withdrawn", data.Currency),
			code.NewInvalidCurrency("currency", data.Currency.String())))
	}
	if errResp := checkAmount("amount", data.Amount); errResp != nil {
		return failed(errResp)
	}

	params := context.App().Params()
	if data.ExternalAddress == "" {
		return failed(code.NewError(code.ZeroAmount, "external address is empty", code.NewZeroAmount("external_address")))
	}
	if errResp := checkString("external_address", data.ExternalAddress, params.StringLimit); errResp != nil {
		return failed(errResp)
	}

	if context.Quorum().BurnedCount() >= params.BurnedCap {
		return failed(code.NewError(code.BurnedCapExceeded, fmt.Sprintf("there are %d withdrawals queued already", params.BurnedCap),
			code.NewBurnedCapExceeded(strconv.Itoa(int(params.BurnedCap)))))
	}

	// a transfer to self checks the spendable balance and the frozen flag without moving funds
	if errResp := context.Accounts().CheckTransfer(tx.Sender(), tx.Sender(), data.Currency, data.Amount, false); errResp != nil {
		return failed(errResp)
	}

	return nil
}

func (data WithdrawalData) String() string {
	return fmt.Sprintf("WITHDRAWAL currency:%s amount:%s to:%s", data.Currency, helpers.AmountToString(data.Amount), data.ExternalAddress)
}

func (data WithdrawalData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	sender := tx.Sender()

	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	var result []byte
	if deliverState, ok := context.(*state.State); ok {
		if errResp := deliverState.Accounts.Hold(sender, data.Currency, data.Amount); errResp != nil {
			return errorResponse(errResp)
		}

		id := deriveID([]interface{}{sender, data.Currency, data.Amount, data.ExternalAddress}, deliverState.App.NextNonce())
		deliverState.Quorum.AddBurned(id, quorum.BurnedItem{
			Account:         sender,
			Currency:        data.Currency,
			Amount:          data.Amount,
			ExternalAddress: data.ExternalAddress,
			CreatedAt:       currentBlock,
		})

		result = id.Bytes()
		tags = []abcTypes.EventAttribute{
			tag("tx.item_id", id.String(), true),
			tag("tx.currency", data.Currency.String(), true),
			tag("tx.amount", data.Amount.Dec(), false),
		}
	}

	return Response{
		Code: code.OK,
		Data: result,
		Tags: tags,
	}
}

// AcknowledgeBurnedData attests that a queued withdrawal was paid out externally,
// repeated attestations of a member change nothing
type AcknowledgeBurnedData struct {
	ItemID types.Hash
}

func (data AcknowledgeBurnedData) TxType() TxType {
	return TypeAcknowledgeBurned
}

func (data AcknowledgeBurnedData) Policy() Policy {
	return QuorumMemberPolicy
}

func (data AcknowledgeBurnedData) basicCheck(tx *Transaction, context *state.CheckState) (*quorum.BurnedItem, *Response) {
	if errResp := checkQuorumEnabled(context); errResp != nil {
		return nil, failed(errResp)
	}

	item := context.Quorum().GetBurned(data.ItemID)
	if item == nil {
		return nil, failed(code.NewError(code.BurnedItemNotFound, fmt.Sprintf("burned item %s not found", data.ItemID),
			code.NewBurnedItemNotFound(data.ItemID.String())))
	}

	if errResp := context.Accounts().CheckTransfer(item.Account, item.Account, item.Currency, item.Amount, true); errResp != nil {
		return nil, failed(errResp)
	}

	return item, nil
}

func (data AcknowledgeBurnedData) String() string {
	return fmt.Sprintf("ACKNOWLEDGE BURNED id:%s", data.ItemID)
}

func (data AcknowledgeBurnedData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	sender := tx.Sender()
	checkState := toCheckState(context)

	item, response := data.basicCheck(tx, checkState)
	if response != nil {
		return *response
	}

	attestations := len(item.Attestations)
	if !hasAttested(item, sender) {
		attestations++
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		burned := attestations >= int(deliverState.Quorum.Threshold())
		if burned {
			if errResp := deliverState.Accounts.BurnHeld(item.Account, item.Currency, item.Amount); errResp != nil {
				return errorResponse(errResp)
			}
		}

		deliverState.Quorum.Attest(data.ItemID, sender)
		if burned {
			deliverState.Quorum.RemoveBurned(data.ItemID)
			deliverState.Events().AddEvent(&eventsdb.BurnedEvent{
				ItemID:   data.ItemID,
				Account:  item.Account,
				Currency: item.Currency,
				Amount:   item.Amount.Dec(),
			})
		}

		tags = []abcTypes.EventAttribute{
			tag("tx.item_id", data.ItemID.String(), true),
			tag("tx.attestations", strconv.Itoa(attestations), false),
			tag("tx.burned", strconv.FormatBool(burned), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

func hasAttested(item *quorum.BurnedItem, member types.Address) bool {
	for _, attested := range item.Attestations {
		if attested == member {
			return true
		}
	}
	return false
}
