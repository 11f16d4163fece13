package app

import (
	"sync"

	"github.com/tidelabs/tidecore/core/types"
)

type Model struct {
	Height          uint64
	Nonce           uint64
	LastSweptHeight uint64
	Params          types.Params

	markDirty func()
	mx        sync.RWMutex
}

func (model *Model) getHeight() uint64 {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return model.Height
}

func (model *Model) setHeight(height uint64) {
	model.mx.Lock()
	defer model.mx.Unlock()

	if model.Height != height {
		model.markDirty()
	}
	model.Height = height
}

func (model *Model) getNonce() uint64 {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return model.Nonce
}

func (model *Model) setNonce(nonce uint64) {
	model.mx.Lock()
	defer model.mx.Unlock()

	if model.Nonce != nonce {
		model.markDirty()
	}
	model.Nonce = nonce
}

func (model *Model) nextNonce() uint64 {
	model.mx.Lock()
	defer model.mx.Unlock()

	model.Nonce++
	model.markDirty()

	return model.Nonce
}

func (model *Model) getLastSweptHeight() uint64 {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return model.LastSweptHeight
}

func (model *Model) setLastSweptHeight(height uint64) {
	model.mx.Lock()
	defer model.mx.Unlock()

	if model.LastSweptHeight != height {
		model.markDirty()
	}
	model.LastSweptHeight = height
}

func (model *Model) getParams() types.Params {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return model.Params
}

func (model *Model) setParams(params types.Params) {
	model.mx.Lock()
	defer model.mx.Unlock()

	model.Params = params
	model.markDirty()
}
