package tui

import (
	"context"
	"sync"

	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/fetch"
	"github.com/sgmi/proddash/internal/production"
)

// loader holds the filter the dashboard fetch reads on every cycle.
type loader struct {
	dash *engine.Dashboard

	mu     sync.Mutex
	filter production.Filter
}

func (l *loader) Filter() production.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

func (l *loader) SetFilter(f production.Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = f
}

func (l *loader) Load(ctx context.Context) (engine.Snapshot, error) {
	return l.dash.Load(ctx, l.Filter())
}

// stateBridge hands controller states to the Bubble Tea loop. It keeps only
// the newest undelivered state.
type stateBridge[T any] struct {
	ch chan fetch.State[T]
}

func newStateBridge[T any]() *stateBridge[T] {
	return &stateBridge[T]{ch: make(chan fetch.State[T], 1)}
}

// push is the controller listener. Listener calls are serialized, so
// draining and sending cannot race with another push.
func (b *stateBridge[T]) push(s fetch.State[T]) {
	for {
		select {
		case b.ch <- s:
			return
		default:
			select {
			case <-b.ch:
			default:
			}
		}
	}
}
