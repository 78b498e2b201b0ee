package batch

import (
	"sync"
	"time"
)

// Snapshot is the progress after a batch completes.
type Snapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	Elapsed          time.Duration
}

// Percent returns completion in [0, 100].
func (s Snapshot) Percent() float64 {
	if s.TotalItems == 0 {
		return 100
	}
	return float64(s.ProcessedItems) / float64(s.TotalItems) * 100
}

// Done reports whether every item has been processed.
func (s Snapshot) Done() bool {
	return s.ProcessedItems >= s.TotalItems
}

// Remaining estimates the time left from the average pace so far.
func (s Snapshot) Remaining() time.Duration {
	if s.ProcessedItems == 0 {
		return 0
	}
	perItem := s.Elapsed / time.Duration(s.ProcessedItems)
	return perItem * time.Duration(s.TotalItems-s.ProcessedItems)
}

type progress struct {
	mu    sync.Mutex
	snap  Snapshot
	start time.Time
}

func newProgress(items, batches int) *progress {
	return &progress{
		snap:  Snapshot{TotalItems: items, TotalBatches: batches},
		start: time.Now(),
	}
}

func (p *progress) add(items int) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.ProcessedItems += items
	p.snap.ProcessedBatches++
	p.snap.Elapsed = time.Since(p.start)
	return p.snap
}
