package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeliversInDispatchOrder(t *testing.T) {
	bus := eventbus.NewMemory()
	defer bus.Close()

	var mu sync.Mutex
	var received []string
	done := make(chan struct{})

	bus.Subscribe(func(evt eventbus.Event) {
		mu.Lock()
		received = append(received, evt.Name)
		if len(received) == 3 {
			close(done)
		}
		mu.Unlock()
	})

	bus.Dispatch(context.Background(), eventbus.Event{Name: "a", Key: "k"})
	bus.Dispatch(context.Background(), eventbus.Event{Name: "b", Key: "k"})
	bus.Dispatch(context.Background(), eventbus.Event{Name: "c", Key: "k"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("events never delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, received)
}

func TestMemoryDispatchNeverBlocksOnSlowListener(t *testing.T) {
	bus := eventbus.NewMemory()
	defer bus.Close()

	release := make(chan struct{})
	bus.Subscribe(func(evt eventbus.Event) {
		<-release
	})

	start := time.Now()
	bus.Dispatch(context.Background(), eventbus.Event{Name: "slow"})
	require.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
}

func TestMemoryUnsubscribeStopsDelivery(t *testing.T) {
	bus := eventbus.NewMemory()
	defer bus.Close()

	var calls int
	var mu sync.Mutex
	unsubscribe := bus.Subscribe(func(evt eventbus.Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	bus.Dispatch(context.Background(), eventbus.Event{Name: "first"})
	time.Sleep(20 * time.Millisecond)
	unsubscribe()
	bus.Dispatch(context.Background(), eventbus.Event{Name: "second"})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestMemoryListenerPanicIsSwallowed(t *testing.T) {
	bus := eventbus.NewMemory()
	defer bus.Close()

	done := make(chan struct{})
	bus.Subscribe(func(evt eventbus.Event) {
		panic("boom")
	})
	bus.Subscribe(func(evt eventbus.Event) {
		close(done)
	})

	bus.Dispatch(context.Background(), eventbus.Event{Name: "x"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second listener never ran after first panicked")
	}
}
