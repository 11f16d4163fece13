package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Params are the runtime constants of the chain, fixed by genesis
type Params struct {
	ProposalsCap        uint32
	BurnedCap           uint32
	ProposalLifetime    uint64
	StringLimit         uint32
	VotesLimit          uint32
	WatchListLimit      uint32
	PubkeyLimitPerAsset uint32
	SwapLifetime        uint64
	MaxConfirmations    uint32
	MaxVestingSchedules uint32
	MinVestedTransfer   *uint256.Int
}

// DefaultParams returns the values used by the main network
func DefaultParams() Params {
	return Params{
		ProposalsCap:        1000,
		BurnedCap:           1000,
		ProposalLifetime:    100,
		StringLimit:         255,
		VotesLimit:          10,
		WatchListLimit:      10000,
		PubkeyLimitPerAsset: 10,
		SwapLifetime:        14400,
		MaxConfirmations:    100,
		MaxVestingSchedules: 50,
		MinVestedTransfer:   uint256.NewInt(1),
	}
}

func (p Params) Verify() error {
	if p.ProposalsCap == 0 || p.BurnedCap == 0 || p.VotesLimit == 0 || p.MaxConfirmations == 0 {
		return fmt.Errorf("caps should be greater than zero")
	}
	if p.ProposalLifetime == 0 || p.SwapLifetime == 0 {
		return fmt.Errorf("lifetimes should be greater than zero")
	}
	if p.StringLimit == 0 {
		return fmt.Errorf("string limit should be greater than zero")
	}
	if p.MaxVestingSchedules == 0 {
		return fmt.Errorf("max vesting schedules should be greater than zero")
	}
	if p.MinVestedTransfer == nil {
		return fmt.Errorf("min vested transfer is not set")
	}
	return nil
}
