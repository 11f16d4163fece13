package bus

import "github.com/tidelabs/tidecore/core/types"

type App interface {
	Height() uint64
	Params() types.Params
}
