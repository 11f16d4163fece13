package transaction

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

func checkAmount(field string, amount *uint256.Int) *code.Error {
	if amount == nil || amount.IsZero() {
		return code.NewError(code.ZeroAmount, fmt.Sprintf("%s is zero", field), code.NewZeroAmount(field))
	}
	if amount.Gt(helpers.MaxAmount) {
		return code.NewError(code.AmountOverflow, fmt.Sprintf("%s overflows 128 bits", field), code.NewAmountOverflow("", ""))
	}
	return nil
}

func checkString(field string, value string, limit uint32) *code.Error {
	if uint32(len(value)) > limit {
		return code.NewError(code.StringTooLong, fmt.Sprintf("%s is longer than %d bytes", field, limit),
			code.NewStringTooLong(field, strconv.Itoa(len(value)), strconv.Itoa(int(limit))))
	}
	return nil
}

func checkAsset(context *state.CheckState, currency types.CurrencyID) *code.Error {
	if !context.Assets().Exists(currency) {
		return code.NewError(code.AssetNotExists, fmt.Sprintf("asset %s not exists", currency), code.NewAssetNotExists(currency.String()))
	}
	return nil
}

func toCheckState(context state.Interface) *state.CheckState {
	if checkState, ok := context.(*state.CheckState); ok {
		return checkState
	}
	return state.NewCheckState(context.(*state.State))
}

// deriveID hashes the call content together with a security counter nonce
func deriveID(content interface{}, nonce uint64) types.Hash {
	return rlpHash([]interface{}{content, nonce})
}

func tag(key string, value string, index bool) abcTypes.EventAttribute {
	return abcTypes.EventAttribute{Key: []byte(key), Value: []byte(value), Index: index}
}
