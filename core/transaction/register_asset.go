package transaction

import (
	"fmt"
	"strconv"

	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/types"
)

// RegisterAssetData adds a wrapped currency to the registry, the asset starts enabled
type RegisterAssetData struct {
	Currency types.CurrencyID
	Name     string
	Symbol   string
	Decimals uint8
}

func (data RegisterAssetData) TxType() TxType {
	return TypeRegisterAsset
}

func (data RegisterAssetData) Policy() Policy {
	return RootOrAssetOwnerPolicy
}

func (data RegisterAssetData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	params := context.App().Params()
	if errResp := context.Assets().CheckRegister(data.Currency, data.Name, data.Symbol, params.StringLimit); errResp != nil {
		return failed(errResp)
	}

	return nil
}

func (data RegisterAssetData) String() string {
	return fmt.Sprintf("REGISTER ASSET currency:%s symbol:%s decimals:%d", data.Currency, data.Symbol, data.Decimals)
}

func (data RegisterAssetData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Assets.Register(data.Currency, data.Name, data.Symbol, data.Decimals, true)

		tags = []abcTypes.EventAttribute{
			{Key: []byte("tx.currency"), Value: []byte(data.Currency.String()), Index: true},
			{Key: []byte("tx.symbol"), Value: []byte(data.Symbol)},
			{Key: []byte("tx.decimals"), Value: []byte(strconv.Itoa(int(data.Decimals)))},
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

type SetAssetStatusData struct {
	Currency types.CurrencyID
	Enabled  bool
}

func (data SetAssetStatusData) TxType() TxType {
	return TypeSetAssetStatus
}

func (data SetAssetStatusData) Policy() Policy {
	return RootOrAssetOwnerPolicy
}

func (data SetAssetStatusData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if errResp := checkAsset(context, data.Currency); errResp != nil {
		return failed(errResp)
	}
	if data.Currency.IsNative() {
		return failed(code.NewError(code.InvalidCurrency, "status of the native currency can not be changed",
			code.NewInvalidCurrency("currency", data.Currency.String())))
	}

	return nil
}

func (data SetAssetStatusData) String() string {
	return fmt.Sprintf("SET ASSET STATUS currency:%s enabled:%t", data.Currency, data.Enabled)
}

func (data SetAssetStatusData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Assets.SetStatus(data.Currency, data.Enabled)

		tags = []abcTypes.EventAttribute{
			{Key: []byte("tx.currency"), Value: []byte(data.Currency.String()), Index: true},
			{Key: []byte("tx.enabled"), Value: []byte(strconv.FormatBool(data.Enabled))},
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}
