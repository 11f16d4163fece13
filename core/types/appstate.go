package types

import (
	"fmt"

	"github.com/tidelabs/tidecore/helpers"
)

type AppState struct {
	Note     string        `json:"note"`
	Params   GenesisParams `json:"params"`
	Security Security      `json:"security"`
	Accounts []Account     `json:"accounts,omitempty"`
	Assets   []Asset       `json:"assets,omitempty"`
	// AssetOwner may register assets next to root
	AssetOwner *Address `json:"asset_owner,omitempty"`
	Quorum     Quorum   `json:"quorum"`
	Oracle     Oracle   `json:"oracle"`
	Vesting    Vesting  `json:"vesting"`
}

type GenesisParams struct {
	ProposalsCap        uint32 `json:"proposals_cap"`
	BurnedCap           uint32 `json:"burned_cap"`
	ProposalLifetime    uint64 `json:"proposal_lifetime"`
	StringLimit         uint32 `json:"string_limit"`
	VotesLimit          uint32 `json:"votes_limit"`
	WatchListLimit      uint32 `json:"watch_list_limit"`
	PubkeyLimitPerAsset uint32 `json:"pubkey_limit_per_asset"`
	SwapLifetime        uint64 `json:"swap_lifetime"`
	MaxConfirmations    uint32 `json:"max_confirmations"`
	MaxVestingSchedules uint32 `json:"max_vesting_schedules"`
	MinVestedTransfer   string `json:"min_vested_transfer"`
}

// NewGenesisParams renders params for an AppState
func NewGenesisParams(p Params) GenesisParams {
	return GenesisParams{
		ProposalsCap:        p.ProposalsCap,
		BurnedCap:           p.BurnedCap,
		ProposalLifetime:    p.ProposalLifetime,
		StringLimit:         p.StringLimit,
		VotesLimit:          p.VotesLimit,
		WatchListLimit:      p.WatchListLimit,
		PubkeyLimitPerAsset: p.PubkeyLimitPerAsset,
		SwapLifetime:        p.SwapLifetime,
		MaxConfirmations:    p.MaxConfirmations,
		MaxVestingSchedules: p.MaxVestingSchedules,
		MinVestedTransfer:   helpers.AmountToString(p.MinVestedTransfer),
	}
}

// ToParams converts the genesis form into Params, the caller should Verify first
func (g GenesisParams) ToParams() Params {
	return Params{
		ProposalsCap:        g.ProposalsCap,
		BurnedCap:           g.BurnedCap,
		ProposalLifetime:    g.ProposalLifetime,
		StringLimit:         g.StringLimit,
		VotesLimit:          g.VotesLimit,
		WatchListLimit:      g.WatchListLimit,
		PubkeyLimitPerAsset: g.PubkeyLimitPerAsset,
		SwapLifetime:        g.SwapLifetime,
		MaxConfirmations:    g.MaxConfirmations,
		MaxVestingSchedules: g.MaxVestingSchedules,
		MinVestedTransfer:   helpers.StringToAmount(g.MinVestedTransfer),
	}
}

type Security struct {
	Height          uint64 `json:"height"`
	Nonce           uint64 `json:"nonce"`
	LastSweptHeight uint64 `json:"last_swept_height"`
}

type Account struct {
	Address Address   `json:"address"`
	Balance []Balance `json:"balance,omitempty"`
	Held    []Balance `json:"held,omitempty"`
	Locks   []Lock    `json:"locks,omitempty"`
	Frozen  bool      `json:"frozen,omitempty"`
}

type Balance struct {
	Currency CurrencyID `json:"currency"`
	Value    string     `json:"value"`
}

type Lock struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

type Asset struct {
	Currency CurrencyID `json:"currency"`
	Name     string     `json:"name"`
	Symbol   string     `json:"symbol"`
	Decimals uint8      `json:"decimals"`
	Enabled  bool       `json:"enabled"`
	Issuance string     `json:"issuance"`
}

type Quorum struct {
	Enabled     bool           `json:"enabled"`
	Members     []Address      `json:"members,omitempty"`
	Threshold   uint16         `json:"threshold"`
	Proposals   []Proposal     `json:"proposals,omitempty"`
	PublicKeys  []PublicKey    `json:"public_keys,omitempty"`
	BurnedQueue []BurnedItem   `json:"burned_queue,omitempty"`
	WatchLists  []WatchListRow `json:"watch_lists,omitempty"`
	ProcessedTx []Hash         `json:"processed_tx,omitempty"`
}

type Proposal struct {
	ID             Hash       `json:"id"`
	Kind           string     `json:"kind"`
	Account        Address    `json:"account"`
	To             *Address   `json:"to,omitempty"`
	Currency       CurrencyID `json:"currency"`
	Amount         string     `json:"amount,omitempty"`
	ExternalTxHash string     `json:"external_tx_hash,omitempty"`
	Members        []Address  `json:"members,omitempty"`
	Threshold      uint16     `json:"threshold,omitempty"`
	Proposer       Address    `json:"proposer"`
	CreatedAt      uint64     `json:"created_at"`
	Status         string     `json:"status"`
	Votes          []Vote     `json:"votes,omitempty"`
	// ExecutionFailed marks an accepted tally whose execution failed
	ExecutionFailed bool `json:"execution_failed,omitempty"`
}

type Vote struct {
	Member  Address `json:"member"`
	Approve bool    `json:"approve"`
}

type PublicKey struct {
	Currency  CurrencyID `json:"currency"`
	Member    Address    `json:"member"`
	PublicKey string     `json:"public_key"`
}

type BurnedItem struct {
	ID              Hash       `json:"id"`
	Account         Address    `json:"account"`
	Currency        CurrencyID `json:"currency"`
	Amount          string     `json:"amount"`
	ExternalAddress string     `json:"external_address"`
	CreatedAt       uint64     `json:"created_at"`
	Attestations    []Address  `json:"attestations,omitempty"`
}

type WatchListRow struct {
	Account    Address    `json:"account"`
	ProposalID Hash       `json:"proposal_id"`
	Currency   CurrencyID `json:"currency"`
	Amount     string     `json:"amount"`
	CreatedAt  uint64     `json:"created_at"`
	Confirmed  bool       `json:"confirmed"`
}

type Oracle struct {
	Enabled      bool      `json:"enabled"`
	Account      *Address  `json:"account,omitempty"`
	MarketMakers []Address `json:"market_makers,omitempty"`
	Swaps        []Swap    `json:"swaps,omitempty"`
}

type Swap struct {
	ID               Hash       `json:"id"`
	Account          Address    `json:"account"`
	AssetFrom        CurrencyID `json:"asset_from"`
	AmountFrom       string     `json:"amount_from"`
	AmountFromFilled string     `json:"amount_from_filled"`
	AssetTo          CurrencyID `json:"asset_to"`
	AmountTo         string     `json:"amount_to"`
	AmountToFilled   string     `json:"amount_to_filled"`
	CreatedAt        uint64     `json:"created_at"`
	ExtrinsicHash    Hash       `json:"extrinsic_hash"`
	IsMarketMaker    bool       `json:"is_market_maker"`
	SwapType         string     `json:"swap_type"`
	Slippage         Permill    `json:"slippage"`
	Status           string     `json:"status"`
}

type Vesting struct {
	Treasury  Address           `json:"treasury"`
	Schedules []VestingSchedule `json:"schedules,omitempty"`
}

type VestingSchedule struct {
	Address     Address `json:"address"`
	Start       uint64  `json:"start"`
	Period      uint64  `json:"period"`
	PeriodCount uint32  `json:"period_count"`
	PerPeriod   string  `json:"per_period"`
}

func (s *AppState) Verify() error {
	if !helpers.IsValidAmount(s.Params.MinVestedTransfer) {
		return fmt.Errorf("min vested transfer is not valid amount")
	}
	params := s.Params.ToParams()
	if err := params.Verify(); err != nil {
		return err
	}

	assets := map[CurrencyID]struct{}{NativeCurrency(): {}}
	for _, asset := range s.Assets {
		if !asset.Currency.Valid() {
			return fmt.Errorf("invalid currency %s", asset.Currency)
		}
		if asset.Currency.IsNative() {
			continue
		}
		if _, exists := assets[asset.Currency]; exists {
			return fmt.Errorf("duplicated asset %s", asset.Currency)
		}
		assets[asset.Currency] = struct{}{}

		if asset.Name == "" || uint32(len(asset.Name)) > params.StringLimit {
			return fmt.Errorf("invalid name of asset %s", asset.Currency)
		}
		if asset.Symbol == "" || uint32(len(asset.Symbol)) > params.StringLimit {
			return fmt.Errorf("invalid symbol of asset %s", asset.Currency)
		}
		if asset.Issuance != "" && !helpers.IsValidAmount(asset.Issuance) {
			return fmt.Errorf("issuance of asset %s is not valid", asset.Currency)
		}
	}

	accounts := map[Address]struct{}{}
	for _, acc := range s.Accounts {
		if _, exists := accounts[acc.Address]; exists {
			return fmt.Errorf("duplicated account %s", acc.Address)
		}
		accounts[acc.Address] = struct{}{}

		for _, list := range [][]Balance{acc.Balance, acc.Held} {
			for _, bal := range list {
				if !helpers.IsValidAmount(bal.Value) {
					return fmt.Errorf("not valid balance for account %s", acc.Address)
				}
				if _, exists := assets[bal.Currency]; !exists {
					return fmt.Errorf("asset %s of account %s not found", bal.Currency, acc.Address)
				}
			}
		}

		for _, lock := range acc.Locks {
			if len(lock.ID) == 0 || len(lock.ID) > 8 {
				return fmt.Errorf("lock id %q of account %s should be 1..8 bytes", lock.ID, acc.Address)
			}
			if !helpers.IsValidAmount(lock.Amount) {
				return fmt.Errorf("not valid lock amount for account %s", acc.Address)
			}
		}
	}

	if err := s.verifyQuorum(params); err != nil {
		return err
	}

	if s.Oracle.Enabled && s.Oracle.Account == nil {
		return fmt.Errorf("oracle is enabled without an account")
	}
	for _, swap := range s.Oracle.Swaps {
		if !helpers.IsValidAmount(swap.AmountFrom) || !helpers.IsValidAmount(swap.AmountTo) ||
			!helpers.IsValidAmount(swap.AmountFromFilled) || !helpers.IsValidAmount(swap.AmountToFilled) {
			return fmt.Errorf("not valid amounts of swap %s", swap.ID)
		}
	}

	schedules := map[Address]uint32{}
	for _, schedule := range s.Vesting.Schedules {
		if schedule.Period == 0 || schedule.PeriodCount == 0 {
			return fmt.Errorf("vesting schedule of %s has zero period", schedule.Address)
		}
		if !helpers.IsValidAmount(schedule.PerPeriod) {
			return fmt.Errorf("not valid per period of %s vesting schedule", schedule.Address)
		}
		schedules[schedule.Address]++
		if schedules[schedule.Address] > params.MaxVestingSchedules {
			return fmt.Errorf("too many vesting schedules for %s", schedule.Address)
		}
	}

	return nil
}

func (s *AppState) verifyQuorum(params Params) error {
	members := map[Address]struct{}{}
	for _, member := range s.Quorum.Members {
		if _, exists := members[member]; exists {
			return fmt.Errorf("duplicated quorum member %s", member)
		}
		members[member] = struct{}{}
	}

	if uint32(len(members)) > params.VotesLimit {
		return fmt.Errorf("quorum has %d members, limit is %d", len(members), params.VotesLimit)
	}

	if s.Quorum.Enabled && (s.Quorum.Threshold == 0 || int(s.Quorum.Threshold) > len(members)) {
		return fmt.Errorf("quorum threshold %d is out of range 1..%d", s.Quorum.Threshold, len(members))
	}

	for _, item := range s.Quorum.BurnedQueue {
		if !helpers.IsValidAmount(item.Amount) {
			return fmt.Errorf("not valid amount of burned item %s", item.ID)
		}
	}

	return nil
}
