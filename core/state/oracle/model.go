package oracle

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/types"
	"github.com/tidelabs/tidecore/helpers"
)

type SwapType byte

const (
	SwapMarket SwapType = iota
	SwapLimit
)

func (t SwapType) String() string {
	if t == SwapLimit {
		return "Limit"
	}
	return "Market"
}

// ParseSwapType is the inverse of SwapType.String
func ParseSwapType(s string) (SwapType, bool) {
	switch s {
	case "Market":
		return SwapMarket, true
	case "Limit":
		return SwapLimit, true
	}
	return 0, false
}

type SwapStatus byte

const (
	StatusPending SwapStatus = iota
	StatusPartiallyFilled
	StatusCompleted
	StatusCancelled
	StatusExpired
)

func (s SwapStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPartiallyFilled:
		return "PartiallyFilled"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusExpired:
		return "Expired"
	}
	return "Unknown"
}

// ParseSwapStatus is the inverse of SwapStatus.String
func ParseSwapStatus(s string) (SwapStatus, bool) {
	for st := StatusPending; st <= StatusExpired; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// IsActive reports whether the request can still be filled
func (s SwapStatus) IsActive() bool {
	return s == StatusPending || s == StatusPartiallyFilled
}

type Config struct {
	Enabled bool
	Account types.Address
}

// Swap is a request to exchange AmountFrom of AssetFrom for AmountTo of AssetTo
type Swap struct {
	Account          types.Address
	AssetFrom        types.CurrencyID
	AmountFrom       *uint256.Int
	AmountFromFilled *uint256.Int
	AssetTo          types.CurrencyID
	AmountTo         *uint256.Int
	AmountToFilled   *uint256.Int
	CreatedAt        uint64
	ExtrinsicHash    types.Hash
	IsMarketMaker    bool
	SwapType         SwapType
	Slippage         types.Permill
	Status           SwapStatus

	id        types.Hash
	deleted   bool
	markDirty func(types.Hash)
	lock      sync.RWMutex
}

func (s *Swap) ID() types.Hash {
	return s.id
}

func (s *Swap) GetStatus() SwapStatus {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.Status
}

// RemainingFrom is the part of AmountFrom not filled yet
func (s *Swap) RemainingFrom() *uint256.Int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	remaining, ok := helpers.CheckedSub(s.AmountFrom, s.AmountFromFilled)
	if !ok {
		return new(uint256.Int)
	}
	return remaining
}

// Filled returns copies of both filled amounts
func (s *Swap) Filled() (from, to *uint256.Int) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return helpers.Copy(s.AmountFromFilled), helpers.Copy(s.AmountToFilled)
}

// fill adds a settled confirmation, the request completes once AmountFrom is filled
func (s *Swap) fill(sent, received *uint256.Int) SwapStatus {
	s.lock.Lock()
	s.AmountFromFilled = new(uint256.Int).Add(s.AmountFromFilled, sent)
	s.AmountToFilled = new(uint256.Int).Add(s.AmountToFilled, received)
	if s.AmountFromFilled.Cmp(s.AmountFrom) >= 0 {
		s.Status = StatusCompleted
	} else {
		s.Status = StatusPartiallyFilled
	}
	status := s.Status
	s.lock.Unlock()

	s.markDirty(s.id)
	return status
}

func (s *Swap) close(status SwapStatus) {
	s.lock.Lock()
	s.Status = status
	s.deleted = true
	s.lock.Unlock()

	s.markDirty(s.id)
}
