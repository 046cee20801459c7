// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testEvtType event.EventType = "test.event"

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "event channel closed unexpectedly")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return event.Event{}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	_, otherCh := eb.Subscribe("other.event")

	eb.Publish(event.NewEvent(testEvtType, 999))

	assert.Equal(t, 999, receive(t, sub1Ch).Data)
	assert.Equal(t, 999, receive(t, sub2Ch).Data)
	select {
	case <-otherCh:
		t.Fatal("received event of another type")
	default:
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	// Unsubscribing twice is harmless
	eb.Unsubscribe(testEvtType, subId)

	eb.Publish(event.NewEvent(testEvtType, 1))
	_, ok := <-subCh
	assert.False(t, ok)
}

func TestEventBusAsyncPreservesOrder(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, evt.Data.(int))
		if len(got) == 10 {
			close(done)
		}
	})
	for i := range 10 {
		require.True(t, eb.PublishAsync(event.NewEvent(testEvtType, i)))
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for events")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestEventBusStop(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	require.True(t, eb.PublishAsync(event.NewEvent(testEvtType, 1)))
	eb.Stop()
	eb.Stop()

	// Queued events are delivered before the channel closes
	evt, ok := <-subCh
	require.True(t, ok)
	assert.Equal(t, 1, evt.Data)
	_, ok = <-subCh
	assert.False(t, ok)
	assert.False(t, eb.PublishAsync(event.NewEvent(testEvtType, 2)))
}

func TestEventBusFullSubscriberDropsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	for i := range event.EventQueueSize + 5 {
		eb.Publish(event.NewEvent(testEvtType, i))
	}
	assert.Len(t, subCh, event.EventQueueSize)
	dropped, err := testutil.GatherAndCount(reg, "agora_event_dropped_total")
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.InDelta(
		t,
		float64(event.EventQueueSize+5),
		counterValue(t, reg, "agora_event_published_total"),
		0,
	)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
