package transaction

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
)

const maxTxLength = 64 * 1024

// Response represents standard response from tx delivery/check
type Response struct {
	Code uint32                    `json:"code,omitempty"`
	Data []byte                    `json:"data,omitempty"`
	Log  string                    `json:"log,omitempty"`
	Info string                    `json:"-"`
	Tags []abcTypes.EventAttribute `json:"tags,omitempty"`
}

func errorResponse(err *code.Error) Response {
	return Response{
		Code: err.Code,
		Log:  err.Log,
		Info: err.EncodeInfo(),
	}
}

func failed(err *code.Error) *Response {
	response := errorResponse(err)
	return &response
}

type Executor struct {
	decodeTxFunc func(txType TxType) (Data, bool)
}

func NewExecutor(decodeTxFunc func(txType TxType) (Data, bool)) *Executor {
	return &Executor{decodeTxFunc: decodeTxFunc}
}

// RunTx executes transaction in given context. With a *state.CheckState only the checks run,
// with a *state.State the call is delivered.
func (e *Executor) RunTx(context state.Interface, auth AuthContext, rawTx []byte, currentBlock uint64) Response {
	if len(rawTx) > maxTxLength {
		return Response{
			Code: code.DecodeError,
			Log:  fmt.Sprintf("TX length is over %d bytes", maxTxLength),
			Info: EncodeError(code.NewDecodeError()),
		}
	}

	tx, err := e.DecodeFromBytes(rawTx)
	if err != nil {
		if errors.Is(err, errUnknownCall) {
			return Response{
				Code: code.UnknownCall,
				Log:  err.Error(),
				Info: EncodeError(code.NewUnknownCall(tx.Type.String())),
			}
		}
		return Response{
			Code: code.DecodeError,
			Log:  err.Error(),
			Info: EncodeError(code.NewDecodeError()),
		}
	}
	tx.SetAuth(auth)

	var checkState *state.CheckState
	var isCheck bool
	if checkState, isCheck = context.(*state.CheckState); !isCheck {
		checkState = state.NewCheckState(context.(*state.State))
	}

	if errResp := tx.decodedData.Policy()(auth, checkState); errResp != nil {
		return errorResponse(errResp)
	}

	response := tx.decodedData.Run(tx, context, currentBlock)
	if response.Code != code.OK || isCheck {
		response.Tags = nil
		return response
	}

	response.Tags = append(response.Tags,
		abcTypes.EventAttribute{Key: []byte("tx.origin"), Value: []byte(auth.Origin.String())},
		abcTypes.EventAttribute{Key: []byte("tx.type"), Value: []byte(hex.EncodeToString([]byte{byte(tx.Type)})), Index: true},
	)
	if auth.IsSigned() {
		response.Tags = append(response.Tags,
			abcTypes.EventAttribute{Key: []byte("tx.from"), Value: []byte(hex.EncodeToString(auth.Signer[:])), Index: true},
		)
	}

	return response
}

var errUnknownCall = errors.New("unknown call type")

// DecodeFromBytes decodes the envelope and the call data. On an unknown call type
// the returned transaction carries the type.
func (e *Executor) DecodeFromBytes(buf []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := rlp.DecodeBytes(buf, tx); err != nil {
		return nil, err
	}

	data, ok := e.decodeTxFunc(tx.Type)
	if !ok {
		return tx, fmt.Errorf("%w %s", errUnknownCall, tx.Type)
	}
	if err := rlp.DecodeBytes(tx.Data, data); err != nil {
		return nil, err
	}
	tx.SetDecodedData(data)

	return tx, nil
}

// EncodeError encodes the error payload to json
func EncodeError(data interface{}) string {
	marshaled, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return string(marshaled)
}
