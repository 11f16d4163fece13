package transaction

import (
	"fmt"
	"strconv"

	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/types"
)

type SetQuorumConfigurationData struct {
	Members   []types.Address
	Threshold uint16
}

func (data SetQuorumConfigurationData) TxType() TxType {
	return TypeSetQuorumConfiguration
}

func (data SetQuorumConfigurationData) Policy() Policy {
	return RootPolicy
}

func (data SetQuorumConfigurationData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	params := context.App().Params()
	if errResp := context.Quorum().CheckConfiguration(data.Members, data.Threshold, params.VotesLimit); errResp != nil {
		return failed(errResp)
	}
	return nil
}

func (data SetQuorumConfigurationData) String() string {
	return fmt.Sprintf("SET QUORUM CONFIGURATION members:%d threshold:%d", len(data.Members), data.Threshold)
}

func (data SetQuorumConfigurationData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Quorum.SetConfiguration(data.Members, data.Threshold)

		tags = []abcTypes.EventAttribute{
			tag("tx.members", strconv.Itoa(len(data.Members)), false),
			tag("tx.threshold", strconv.Itoa(int(data.Threshold)), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

type SetQuorumStatusData struct {
	Enabled bool
}

func (data SetQuorumStatusData) TxType() TxType {
	return TypeSetQuorumStatus
}

func (data SetQuorumStatusData) Policy() Policy {
	return RootPolicy
}

func (data SetQuorumStatusData) String() string {
	return fmt.Sprintf("SET QUORUM STATUS enabled:%t", data.Enabled)
}

func (data SetQuorumStatusData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Quorum.SetEnabled(data.Enabled)

		tags = []abcTypes.EventAttribute{
			tag("tx.enabled", strconv.FormatBool(data.Enabled), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}
