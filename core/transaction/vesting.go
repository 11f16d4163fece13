package transaction

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tidelabs/tidecore/core/code"
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/vesting"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

// VestedTransferData moves the schedule total of native currency to Dest and locks it there
type VestedTransferData struct {
	Dest     types.Address
	Schedule vesting.Schedule
}

func (data VestedTransferData) TxType() TxType {
	return TypeVestedTransfer
}

func (data VestedTransferData) Policy() Policy {
	return SignedPolicy
}

func (data VestedTransferData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	params := context.App().Params()
	if errResp := context.Vesting().CheckSchedule(data.Schedule, params.MinVestedTransfer); errResp != nil {
		return failed(errResp)
	}
	if errResp := context.Vesting().CheckCapacity(data.Dest, 1, params.MaxVestingSchedules); errResp != nil {
		return failed(errResp)
	}

	total, _ := data.Schedule.Total()
	if errResp := context.Accounts().CheckTransfer(tx.Sender(), data.Dest, types.NativeCurrency(), total, false); errResp != nil {
		return failed(errResp)
	}

	return nil
}

func (data VestedTransferData) String() string {
	return fmt.Sprintf("VESTED TRANSFER to:%s start:%d period:%d count:%d per_period:%s",
		data.Dest, data.Schedule.Start, data.Schedule.Period, data.Schedule.PeriodCount, helpers.AmountToString(data.Schedule.PerPeriod))
}

func (data VestedTransferData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		total, _ := data.Schedule.Total()
		if errResp := deliverState.Accounts.Transfer(tx.Sender(), data.Dest, types.NativeCurrency(), total); errResp != nil {
			return errorResponse(errResp)
		}

		deliverState.Vesting.AddSchedule(data.Dest, data.Schedule)
		locked := deliverState.Vesting.Claim(data.Dest, currentBlock)

		tags = []abcTypes.EventAttribute{
			tag("tx.to", data.Dest.String(), true),
			tag("tx.value", total.Dec(), false),
			tag("tx.locked", locked.Dec(), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

// ClaimData unlocks the vested part of the sender's schedules
type ClaimData struct{}

func (data ClaimData) TxType() TxType {
	return TypeClaim
}

func (data ClaimData) Policy() Policy {
	return SignedPolicy
}

func (data ClaimData) String() string {
	return "CLAIM"
}

func (data ClaimData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	return claim(context, tx.Sender(), currentBlock)
}

// ClaimForData unlocks the vested part of Dest's schedules, anyone may pay for it
type ClaimForData struct {
	Dest types.Address
}

func (data ClaimForData) TxType() TxType {
	return TypeClaimFor
}

func (data ClaimForData) Policy() Policy {
	return SignedPolicy
}

func (data ClaimForData) String() string {
	return fmt.Sprintf("CLAIM FOR %s", data.Dest)
}

func (data ClaimForData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	return claim(context, data.Dest, currentBlock)
}

func claim(context state.Interface, address types.Address, currentBlock uint64) Response {
	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		if len(deliverState.Vesting.GetSchedules(address)) == 0 {
			return Response{Code: code.OK}
		}

		locked := deliverState.Vesting.Claim(address, currentBlock)
		tags = []abcTypes.EventAttribute{
			tag("tx.account", address.String(), true),
			tag("tx.locked", locked.Dec(), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

// UpdateVestingSchedulesData replaces all schedules of Who
type UpdateVestingSchedulesData struct {
	Who       types.Address
	Schedules []vesting.Schedule
}

func (data UpdateVestingSchedulesData) TxType() TxType {
	return TypeUpdateVestingSchedules
}

func (data UpdateVestingSchedulesData) Policy() Policy {
	return RootPolicy
}

func (data UpdateVestingSchedulesData) basicCheck(tx *Transaction, context *state.CheckState, currentBlock uint64) *Response {
	params := context.App().Params()
	if limit := params.MaxVestingSchedules; len(data.Schedules) > int(limit) {
		return failed(code.NewError(code.MaxVestingSchedulesExceeded, fmt.Sprintf("account %s can have at most %d vesting schedules", data.Who, limit),
			code.NewMaxVestingSchedulesExceeded(strconv.Itoa(int(limit)), data.Who.String())))
	}

	locked := new(uint256.Int)
	for _, schedule := range data.Schedules {
		if errResp := context.Vesting().CheckSchedule(schedule, new(uint256.Int)); errResp != nil {
			return failed(errResp)
		}
		sum, ok := helpers.CheckedAdd(locked, schedule.Locked(currentBlock))
		if !ok {
			return failed(code.NewError(code.AmountOverflow, "vesting locked amount overflows",
				code.NewAmountOverflow(types.NativeCurrency().String(), data.Who.String())))
		}
		locked = sum
	}

	if free := context.Accounts().GetBalance(data.Who, types.NativeCurrency()); free.Lt(locked) {
		return failed(code.NewError(code.InsufficientFunds, fmt.Sprintf("balance of %s does not cover locked %s", data.Who, locked.Dec()),
			code.NewInsufficientFunds(data.Who.String(), locked.Dec(), types.NativeCurrency().String())))
	}

	return nil
}

func (data UpdateVestingSchedulesData) String() string {
	return fmt.Sprintf("UPDATE VESTING SCHEDULES who:%s schedules:%d", data.Who, len(data.Schedules))
}

func (data UpdateVestingSchedulesData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context), currentBlock)
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		deliverState.Vesting.SetSchedules(data.Who, data.Schedules)
		locked := deliverState.Vesting.Claim(data.Who, currentBlock)

		tags = []abcTypes.EventAttribute{
			tag("tx.account", data.Who.String(), true),
			tag("tx.locked", locked.Dec(), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}

// StopVestingSchedulesData ends the schedules of Who and moves the unvested rest to the treasury
type StopVestingSchedulesData struct {
	Who types.Address
}

func (data StopVestingSchedulesData) TxType() TxType {
	return TypeStopVestingSchedules
}

func (data StopVestingSchedulesData) Policy() Policy {
	return RootPolicy
}

func (data StopVestingSchedulesData) basicCheck(tx *Transaction, context *state.CheckState) *Response {
	if len(context.Vesting().GetSchedules(data.Who)) == 0 {
		return failed(code.NewError(code.VestingNotFound, fmt.Sprintf("account %s has no vesting schedules", data.Who),
			code.NewVestingNotFound(data.Who.String())))
	}
	if context.Accounts().IsFrozen(data.Who) {
		return failed(code.NewError(code.AccountFrozen, fmt.Sprintf("account %s is frozen", data.Who), code.NewAccountFrozen(data.Who.String())))
	}
	return nil
}

func (data StopVestingSchedulesData) String() string {
	return fmt.Sprintf("STOP VESTING SCHEDULES who:%s", data.Who)
}

func (data StopVestingSchedulesData) Run(tx *Transaction, context state.Interface, currentBlock uint64) Response {
	response := data.basicCheck(tx, toCheckState(context))
	if response != nil {
		return *response
	}

	var tags []abcTypes.EventAttribute
	if deliverState, ok := context.(*state.State); ok {
		native := types.NativeCurrency()
		treasury := deliverState.Vesting.Treasury()
		remainder := helpers.Min(deliverState.Vesting.Locked(data.Who, currentBlock), deliverState.Accounts.GetBalance(data.Who, native))

		previous := deliverState.Accounts.GetLock(data.Who, vesting.LockID)
		deliverState.Accounts.RemoveLock(data.Who, vesting.LockID)
		if !remainder.IsZero() {
			if errResp := deliverState.Accounts.Transfer(data.Who, treasury, native, remainder); errResp != nil {
				if previous != nil {
					deliverState.Accounts.SetLock(data.Who, vesting.LockID, previous)
				}
				return errorResponse(errResp)
			}
		}
		deliverState.Vesting.Stop(data.Who)

		tags = []abcTypes.EventAttribute{
			tag("tx.account", data.Who.String(), true),
			tag("tx.treasury", treasury.String(), false),
			tag("tx.value", remainder.Dec(), false),
		}
	}

	return Response{
		Code: code.OK,
		Tags: tags,
	}
}
