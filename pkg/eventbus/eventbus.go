// Package eventbus fans out device lifecycle notifications to subscribers.
//
// Publishing never blocks: a subscriber whose buffer is full misses the
// event. A nil *Bus is valid and drops everything.
package eventbus

import (
	"sync"
	"time"

	"github.com/cskr/pubsub/v2"
)

// Topic identifies a kind of lifecycle event.
type Topic uint

const (
	TopicAttached Topic = iota + 1
	TopicAttachFailed
	TopicDetached
	TopicCarrier
	TopicLink
	TopicScanDone
)

// AllTopics lists every topic.
func AllTopics() []Topic {
	return []Topic{TopicAttached, TopicAttachFailed, TopicDetached, TopicCarrier, TopicLink, TopicScanDone}
}

// String returns the topic name.
func (t Topic) String() string {
	switch t {
	case TopicAttached:
		return "attached"
	case TopicAttachFailed:
		return "attach-failed"
	case TopicDetached:
		return "detached"
	case TopicCarrier:
		return "carrier"
	case TopicLink:
		return "link"
	case TopicScanDone:
		return "scan-done"
	default:
		return "unknown"
	}
}

// Event is one lifecycle notification.
type Event struct {
	Topic     Topic
	Time      time.Time
	SessionID string
	Device    string
	Interface string

	// Up carries the new state for TopicCarrier and TopicLink.
	Up bool

	// Aborted is set for TopicScanDone.
	Aborted bool

	// Err is the failure text for TopicAttachFailed.
	Err string
}

// DefaultCapacity is the per-subscriber buffer size.
const DefaultCapacity = 16

// Bus is a topic based event fan-out.
type Bus struct {
	ps *pubsub.PubSub[Topic, Event]

	mu     sync.Mutex
	closed bool
}

// New creates a bus with the given per-subscriber buffer size.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{ps: pubsub.New[Topic, Event](capacity)}
}

// Publish sends ev to subscribers of ev.Topic. Time is set if zero.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.ps.TryPub(ev, ev.Topic)
}

// Subscription is a live subscription. Read events from C until it is
// closed.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	topics []Topic
	bus    *Bus
	once   sync.Once
}

// Subscribe subscribes to topics, or to all topics when none are given.
func (b *Bus) Subscribe(topics ...Topic) *Subscription {
	if len(topics) == 0 {
		topics = AllTopics()
	}
	if b == nil {
		ch := make(chan Event)
		close(ch)
		return &Subscription{C: ch}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan Event)
		close(ch)
		return &Subscription{C: ch}
	}

	ch := b.ps.Sub(topics...)
	return &Subscription{C: ch, ch: ch, topics: topics, bus: b}
}

// Close unsubscribes. C is closed once the bus has processed the request;
// callers should keep draining C until then.
func (s *Subscription) Close() {
	if s.bus == nil {
		return
	}
	s.once.Do(func() {
		go s.bus.ps.Unsub(s.ch, s.topics...)
	})
}

// Close shuts the bus down and closes every subscription channel.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.ps.Shutdown()
}
