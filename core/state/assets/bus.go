package assets

import (
	"github.com/holiman/uint256"
	"github.com/tidelabs/tidecore/core/state/bus"
	"github.com/tidelabs/tidecore/core/types"
)

type Bus struct {
	assets *Assets
}

func NewBus(assets *Assets) *Bus {
	return &Bus{assets: assets}
}

func (b *Bus) GetAsset(currency types.CurrencyID) *bus.Asset {
	asset := b.assets.get(currency)
	if asset == nil {
		return nil
	}

	asset.lock.RLock()
	defer asset.lock.RUnlock()

	return &bus.Asset{
		Currency: currency,
		Symbol:   asset.Symbol,
		Enabled:  asset.Enabled,
		Issuance: new(uint256.Int).Set(asset.Issuance),
	}
}

func (b *Bus) AddIssuance(currency types.CurrencyID, amount *uint256.Int) {
	b.assets.AddIssuance(currency, amount)
}

func (b *Bus) SubIssuance(currency types.CurrencyID, amount *uint256.Int) {
	b.assets.SubIssuance(currency, amount)
}
