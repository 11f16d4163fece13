package api

import (
	"github.com/gin-gonic/gin"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

type ScheduleResponse struct {
	Start       uint64 `json:"start"`
	Period      uint64 `json:"period"`
	PeriodCount uint32 `json:"period_count"`
	PerPeriod   string `json:"per_period"`
	Locked      string `json:"locked"`
}

type VestingResponse struct {
	Address   types.Address      `json:"address"`
	Height    uint64             `json:"height"`
	Locked    string             `json:"locked"`
	Schedules []ScheduleResponse `json:"schedules"`
}

// Vesting returns the schedules of an account and the amount still locked at the state height
func (s *Service) Vesting(c *gin.Context) {
	address, ok := s.parseAddress(c)
	if !ok {
		return
	}
	cState, ok := s.getStateForRequest(c)
	if !ok {
		return
	}

	height := cState.App().Height()
	schedules := cState.Vesting().GetSchedules(address)
	result := VestingResponse{
		Address:   address,
		Height:    height,
		Locked:    cState.Vesting().Locked(address, height).Dec(),
		Schedules: make([]ScheduleResponse, 0, len(schedules)),
	}
	for _, schedule := range schedules {
		result.Schedules = append(result.Schedules, ScheduleResponse{
			Start:       schedule.Start,
			Period:      schedule.Period,
			PeriodCount: schedule.PeriodCount,
			PerPeriod:   helpers.AmountToString(schedule.PerPeriod),
			Locked:      schedule.Locked(height).Dec(),
		})
	}

	s.ok(c, result)
}
