package transaction

import (
	"github.com/tidelabs/tidecore/core/state"
	"github.com/tidelabs/tidecore/core/state/expiry"
	"github.com/tidelabs/tidecore/core/state/oracle"
	"github.com/tidelabs/tidecore/core/state/quorum"
)

// SweepExpired closes everything scheduled to expire on heights after the last swept one
// up to and including height. Active proposals become Expired and are purged together with
// finalized ones, pending swaps are closed as Expired and their holds are released.
func SweepExpired(deliverState *state.State, height uint64) (proposals, swaps int) {
	for h := deliverState.App.LastSweptHeight() + 1; h <= height; h++ {
		for _, item := range deliverState.Expiry.GetItems(h) {
			switch item.Kind {
			case expiry.KindProposal:
				proposal := deliverState.Quorum.GetProposal(item.ID)
				if proposal == nil {
					continue
				}
				if proposal.GetStatus() == quorum.StatusActive {
					finalizeProposal(deliverState, proposal, quorum.StatusExpired)
				}
				deliverState.Quorum.Purge(proposal)
				proposals++
			case expiry.KindSwap:
				swap := deliverState.Oracle.GetSwap(item.ID)
				if swap == nil || swap.GetStatus() != oracle.StatusPending {
					continue
				}
				closeSwap(deliverState, swap, oracle.StatusExpired)
				swaps++
			}
		}
		deliverState.Expiry.Delete(h)
	}

	if height > deliverState.App.LastSweptHeight() {
		deliverState.App.SetLastSweptHeight(height)
	}

	return proposals, swaps
}
