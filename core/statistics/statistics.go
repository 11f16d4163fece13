package statistics

import (
	"sync"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const subsystem = "tidechain"

// Metrics contains the gauges and counters exported by the node
type Metrics struct {
	Height            metrics.Gauge
	LastBlockDuration metrics.Gauge
	LastBlockTime     metrics.Gauge
	Txs               metrics.Counter
	FailedTxs         metrics.Counter
	ActiveProposals   metrics.Gauge
	ExpiredProposals  metrics.Counter
	ExpiredSwaps      metrics.Counter
	ApiResponseTime   metrics.Gauge
}

// PrometheusMetrics registers the metrics in the default prometheus registry,
// it must be called once per process
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		Height: kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "height",
			Help:      "Current height",
		}, nil),
		LastBlockDuration: kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_block_duration",
			Help:      "Time between BeginBlock and Commit of the last block in seconds",
		}, nil),
		LastBlockTime: kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_block_timestamp",
			Help:      "Unix time of the last committed block",
		}, nil),
		Txs: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "txs",
			Help:      "Number of delivered transactions",
		}, []string{"type"}),
		FailedTxs: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failed_txs",
			Help:      "Number of delivered transactions with a non zero code",
		}, []string{"code"}),
		ActiveProposals: kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_proposals",
			Help:      "Number of active quorum proposals",
		}, nil),
		ExpiredProposals: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "expired_proposals",
			Help:      "Number of proposals removed by the expiry sweep",
		}, nil),
		ExpiredSwaps: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "expired_swaps",
			Help:      "Number of swap requests closed by the expiry sweep",
		}, nil),
		ApiResponseTime: kitprometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "response_time",
			Help:      "Response time of the last request per path in seconds",
		}, []string{"path"}),
	}
}

// NopMetrics returns no-op Metrics
func NopMetrics() *Metrics {
	return &Metrics{
		Height:            discard.NewGauge(),
		LastBlockDuration: discard.NewGauge(),
		LastBlockTime:     discard.NewGauge(),
		Txs:               discard.NewCounter(),
		FailedTxs:         discard.NewCounter(),
		ActiveProposals:   discard.NewGauge(),
		ExpiredProposals:  discard.NewCounter(),
		ExpiredSwaps:      discard.NewCounter(),
		ApiResponseTime:   discard.NewGauge(),
	}
}

type LastBlockInfo struct {
	Height    uint64
	Duration  float64
	Timestamp float64
}

// Data tracks block timing on top of Metrics. A nil *Data is valid and does nothing.
type Data struct {
	metrics *Metrics

	blockStart struct {
		sync.RWMutex
		height    uint64
		time      time.Time
		timestamp float64
	}
	blockEnd struct {
		sync.RWMutex
		info LastBlockInfo
	}
}

func New(m *Metrics) *Data {
	if m == nil {
		m = NopMetrics()
	}
	return &Data{metrics: m}
}

func (d *Data) Metrics() *Metrics {
	if d == nil {
		return NopMetrics()
	}
	return d.metrics
}

func (d *Data) SetStartBlock(height uint64, now time.Time, headerTime time.Time) {
	if d == nil {
		return
	}

	d.blockStart.Lock()
	defer d.blockStart.Unlock()

	d.blockStart.height = height
	d.blockStart.time = now
	d.blockStart.timestamp = float64(headerTime.Unix())
}

func (d *Data) SetEndBlockDuration(timeEnd time.Time, height uint64) {
	if d == nil {
		return
	}

	d.blockStart.RLock()
	defer d.blockStart.RUnlock()

	if height != d.blockStart.height {
		return
	}

	d.blockEnd.Lock()
	defer d.blockEnd.Unlock()

	durationSeconds := timeEnd.Sub(d.blockStart.time).Seconds()

	d.metrics.Height.Set(float64(height))
	d.metrics.LastBlockDuration.Set(durationSeconds)
	d.metrics.LastBlockTime.Set(d.blockStart.timestamp)

	d.blockEnd.info = LastBlockInfo{
		Height:    height,
		Duration:  durationSeconds,
		Timestamp: d.blockStart.timestamp,
	}
}

func (d *Data) SetApiTime(duration time.Duration, path string) {
	if d == nil {
		return
	}

	d.metrics.ApiResponseTime.With("path", path).Set(duration.Seconds())
}

func (d *Data) GetLastBlockInfo() LastBlockInfo {
	if d == nil {
		return LastBlockInfo{}
	}

	d.blockEnd.RLock()
	defer d.blockEnd.RUnlock()

	return d.blockEnd.info
}
