package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessor(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{size: 1},
		{size: DefaultBatchSize},
		{size: MaxBatchSize},
		{size: 0, wantErr: true},
		{size: MaxBatchSize + 1, wantErr: true},
	}
	for _, tt := range tests {
		p, err := NewProcessor[int](tt.size)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidBatchSize)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.size, p.Size())
	}
}

func TestProcessor_Bounds(t *testing.T) {
	p, err := NewProcessor[int](3)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 7}}, p.Bounds(7))
	assert.Equal(t, [][2]int{{0, 3}}, p.Bounds(3))
	assert.Empty(t, p.Bounds(0))
}

func TestProcessor_Process(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	p, err := NewProcessor[string](2)
	require.NoError(t, err)

	var snaps []Snapshot
	p.WithProgress(func(s Snapshot) { snaps = append(snaps, s) })

	var got [][]string
	err = p.Process(context.Background(), items, func(_ context.Context, batch []string, index int) error {
		assert.Equal(t, len(got), index)
		got = append(got, append([]string(nil), batch...))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, got)

	require.Len(t, snaps, 3)
	last := snaps[2]
	assert.True(t, last.Done())
	assert.Equal(t, 3, last.ProcessedBatches)
	assert.InDelta(t, 100.0, last.Percent(), 0.001)
	assert.InDelta(t, 40.0, snaps[0].Percent(), 0.001)
}

func TestProcessor_ProcessStopsOnError(t *testing.T) {
	p, err := NewProcessor[int](1)
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	err = p.Process(context.Background(), []int{1, 2, 3}, func(_ context.Context, _ []int, index int) error {
		calls++
		if index == 1 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "batch 1")
	assert.Equal(t, 2, calls)
}

func TestProcessor_ProcessCanceled(t *testing.T) {
	p, err := NewProcessor[int](1)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Process(ctx, []int{1}, func(context.Context, []int, int) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, p.Process(ctx, nil, nil), ErrNilCallback)
}

func TestProcessor_ProcessEmpty(t *testing.T) {
	p, err := NewProcessor[int](4)
	require.NoError(t, err)
	require.NoError(t, p.Process(context.Background(), nil, func(context.Context, []int, int) error {
		t.Fatal("callback must not run")
		return nil
	}))
}

func TestProcessor_ProcessConcurrent(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}
	p, err := NewProcessor[int](3)
	require.NoError(t, err)

	var (
		running, peak atomic.Int32
		mu            sync.Mutex
		seen          = make(map[int]bool)
	)
	err = p.ProcessConcurrent(context.Background(), items, func(_ context.Context, batch []int, index int) error {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)

		mu.Lock()
		defer mu.Unlock()
		for _, v := range batch {
			seen[v] = true
		}
		if index == 2 || index == 5 {
			return errors.New("rejected")
		}
		return nil
	}, 2)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2")
	assert.Contains(t, err.Error(), "batch 5")
	assert.Len(t, seen, 20, "every batch runs even when some fail")
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestSnapshot_Remaining(t *testing.T) {
	s := Snapshot{TotalItems: 10, ProcessedItems: 5, Elapsed: 10 * time.Second}
	assert.Equal(t, 10*time.Second, s.Remaining())
	assert.Equal(t, time.Duration(0), Snapshot{TotalItems: 3}.Remaining())
	assert.InDelta(t, 100.0, Snapshot{}.Percent(), 0.001)
}
