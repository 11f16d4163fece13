package statistics

import (
	"testing"
	"time"
)

func TestData_LastBlockInfo(t *testing.T) {
	t.Parallel()

	d := New(NopMetrics())
	start := time.Unix(1000, 0)
	d.SetStartBlock(5, start, start)
	d.SetEndBlockDuration(start.Add(2*time.Second), 5)

	info := d.GetLastBlockInfo()
	if info.Height != 5 {
		t.Fatalf("height, want %d, got %d", 5, info.Height)
	}
	if info.Duration != 2 {
		t.Fatalf("duration, want %v, got %v", 2, info.Duration)
	}
	if info.Timestamp != 1000 {
		t.Fatalf("timestamp, want %v, got %v", 1000, info.Timestamp)
	}

	d.SetEndBlockDuration(start.Add(time.Minute), 6)
	if got := d.GetLastBlockInfo(); got != info {
		t.Fatalf("end of an unknown block changed the info: %+v", got)
	}
}

func TestData_NilIsNoop(t *testing.T) {
	t.Parallel()

	var d *Data
	d.SetStartBlock(1, time.Now(), time.Now())
	d.SetEndBlockDuration(time.Now(), 1)
	d.SetApiTime(time.Second, "/status")
	if info := d.GetLastBlockInfo(); info.Height != 0 {
		t.Fatalf("nil data returned %+v", info)
	}
	d.Metrics().Txs.With("type", "transfer").Add(1)
}
