package events

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(bus *Bus, eventType EventType, module string, data map[string]interface{}) {
	bus.Publish(&Event{Type: eventType, Timestamp: time.Now(), Module: module, Data: data})
}

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	bus.Subscribe(CatalogRefreshed, func(e *Event) {
		received = append(received, e)
	})
	bus.Subscribe(StrategyPublished, func(e *Event) {
		t.Fatal("unexpected delivery")
	})

	publish(bus, CatalogRefreshed, "vaults", map[string]interface{}{"count": 12})

	require.Len(t, received, 1)
	assert.Equal(t, CatalogRefreshed, received[0].Type)
	assert.Equal(t, "vaults", received[0].Module)
	assert.Equal(t, 12, received[0].Data["count"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	calls := 0
	id := bus.Subscribe(AllocationComputed, func(e *Event) { calls++ })
	bus.Subscribe(AllocationComputed, func(e *Event) { calls += 10 })
	assert.Equal(t, 2, bus.SubscriberCount(AllocationComputed))

	bus.Unsubscribe(id)
	assert.Equal(t, 1, bus.SubscriberCount(AllocationComputed))

	publish(bus, AllocationComputed, "allocation", nil)
	assert.Equal(t, 10, calls)
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	delivered := false
	bus.Subscribe(ErrorOccurred, func(e *Event) { panic("boom") })
	bus.Subscribe(ErrorOccurred, func(e *Event) { delivered = true })

	assert.NotPanics(t, func() {
		publish(bus, ErrorOccurred, "test", nil)
	})
	assert.True(t, delivered)
}

func TestBus_ConcurrentUse(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(JobStarted, func(e *Event) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			publish(bus, JobStarted, "scheduler", nil)
			bus.Unsubscribe(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.SubscriberCount(JobStarted))
	assert.Greater(t, count, 0)
}

func TestManager_EmitLogsAndPublishes(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	bus := NewBus(log)
	manager := NewManager(bus, log)

	var got *Event
	bus.Subscribe(StrategyPublished, func(e *Event) { got = e })

	manager.EmitTyped("copytrading", &StrategyPublishedData{StrategyID: "s-1", Creator: "alice", Name: "Stable"})

	require.NotNil(t, got)
	assert.Equal(t, "s-1", got.Data["strategy_id"])
	assert.Equal(t, "copytrading", got.Module)
	assert.Contains(t, buf.String(), "Event emitted")
	assert.Contains(t, buf.String(), "STRATEGY_PUBLISHED")
}

func TestManager_NilBus(t *testing.T) {
	manager := NewManager(nil, zerolog.Nop())
	assert.NotPanics(t, func() {
		manager.Emit(CatalogRefreshed, "vaults", nil)
	})
}
