package transaction

import (
	"fmt"
	"strconv"
	"strings"

	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/types"
)

type PublicKeyItem struct {
	Currency  types.CurrencyID
	PublicKey string
}

// SubmitPublicKeysData registers the external chain keys of a member, one per currency
type SubmitPublicKeysData struct {
	Keys []PublicKeyItem
}

func (data SubmitPublicKeysData) TxType() TxType {
	return TypeSubmitPublicKeys
}

func (data SubmitPublicKeysData) Policy() Policy {
	return QuorumMemberPolicy
}

func (data SubmitPublicKeysData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if errResp := checkQuorumEnabled(context); errResp != nil {
		return failed(errResp)
	}

	params := context.App().Params()
	limit := strconv.Itoa(int(params.PubkeyLimitPerAsset))
	if uint32(len(data.Keys)) > params.PubkeyLimitPerAsset {
		return failed(code.NewError(code.PubkeyLimitExceeded, fmt.Sprintf("at most %d keys can be submitted at once", params.PubkeyLimitPerAsset),
			code.NewPubkeyLimitExceeded(limit, "")))
	}

	member := tx.Sender()
	seen := map[types.CurrencyID]struct{}{}
	for _, item := range data.Keys {
		if errResp := checkAsset(context, item.Currency); errResp != nil {
			return failed(errResp)
		}
		if item.PublicKey == "" {
			return failed(code.NewError(code.ZeroAmount, "public key is empty", code.NewZeroAmount("public_key")))
		}
		if errResp := checkString("public_key", item.PublicKey, params.StringLimit); errResp != nil {
			return failed(errResp)
		}

		if _, ok := seen[item.Currency]; ok || context.Quorum().HasPublicKey(member, item.Currency) {
			return failed(code.NewError(code.PublicKeyAlreadyExists, fmt.Sprintf("%s has a public key for %s already", member, item.Currency),
				code.NewPublicKeyAlreadyExists(member.String(), item.Currency.String())))
		}
		seen[item.Currency] = struct{}{}

		if uint32(len(context.Quorum().GetPublicKeys(item.Currency))) >= params.PubkeyLimitPerAsset {
			return failed(code.NewError(code.PubkeyLimitExceeded, fmt.Sprintf("%s has %d public keys already", item.Currency, params.PubkeyLimitPerAsset),
				code.NewPubkeyLimitExceeded(limit, item.Currency.String())))
		}
	}

	return nil
}

func (data SubmitPublicKeysData) String() string {
	currencies := make([]string, 0, len(data.Keys))
	for _, item := range data.Keys {
		currencies = append(currencies, item.Currency.String())
	}
	return fmt.Sprintf("SUBMIT PUBLIC KEYS currencies:%s", strings.Join(currencies, ","))
}

func (data SubmitPublicKeysData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		for _, item := range data.Keys {
			deliverState.Quorum.AddPublicKey(tx.Sender(), item.Currency, item.PublicKey)
		}

		tags = []abcTypes.EventAttribute{
			tag("tx.public_keys", strconv.Itoa(len(data.Keys)), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}
