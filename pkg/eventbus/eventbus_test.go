package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := New(4)
	defer bus.Close()

	attached := bus.Subscribe(TopicAttached)
	all := bus.Subscribe()

	bus.Publish(Event{Topic: TopicAttached, Device: "0000:03:00.0"})
	bus.Publish(Event{Topic: TopicLink, Interface: "wlan0", Up: true})

	ev := receive(t, attached)
	assert.Equal(t, TopicAttached, ev.Topic)
	assert.Equal(t, "0000:03:00.0", ev.Device)
	assert.False(t, ev.Time.IsZero())

	assert.Equal(t, TopicAttached, receive(t, all).Topic)
	link := receive(t, all)
	assert.Equal(t, TopicLink, link.Topic)
	assert.True(t, link.Up)

	select {
	case ev := <-attached.C:
		t.Fatalf("unexpected event %v", ev.Topic)
	default:
	}
}

func TestBusPublishDoesNotBlock(t *testing.T) {
	bus := New(1)
	defer bus.Close()

	sub := bus.Subscribe(TopicCarrier)
	for i := 0; i < 10; i++ {
		bus.Publish(Event{Topic: TopicCarrier})
	}
	assert.Equal(t, TopicCarrier, receive(t, sub).Topic)
}

func TestBusClose(t *testing.T) {
	bus := New(1)
	sub := bus.Subscribe(TopicDetached)
	bus.Close()
	bus.Close()

	_, ok := <-sub.C
	assert.False(t, ok)

	bus.Publish(Event{Topic: TopicDetached})
	_, ok = <-bus.Subscribe().C
	assert.False(t, ok)
}

func TestSubscriptionClose(t *testing.T) {
	bus := New(1)
	defer bus.Close()

	sub := bus.Subscribe(TopicScanDone)
	sub.Close()
	sub.Close()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.C:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestNilBus(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(Event{Topic: TopicAttached})
		bus.Close()
		sub := bus.Subscribe()
		sub.Close()
		_, ok := <-sub.C
		assert.False(t, ok)
	})
}

func TestTopicString(t *testing.T) {
	for _, topic := range AllTopics() {
		assert.NotEqual(t, "unknown", topic.String())
	}
	assert.Equal(t, "unknown", Topic(0).String())
}
