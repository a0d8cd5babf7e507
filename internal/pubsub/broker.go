package pubsub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Broker is a simple in-memory pub/sub system keyed by contest ID. It feeds
// the live-leaderboard websocket: every committed rank recalculation
// publishes the new standings to the contest's topic.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan []byte // contestID -> subscriber channels
	latest      map[string][]byte        // contestID -> last published standings
}

type WsMessage struct {
	Stream string      `json:"stream"`
	Data   interface{} `json:"data"`
}

var (
	once   sync.Once
	broker *Broker
)

// GetBroker returns the singleton instance of the Broker.
func GetBroker() *Broker {
	once.Do(func() {
		broker = &Broker{
			subscribers: make(map[string][]chan []byte),
			latest:      make(map[string][]byte),
		}
	})
	return broker
}

// Subscribe registers for a contest's standings. The current snapshot, if
// any, is delivered first; standings supersede each other so there is no
// history replay.
func (b *Broker) Subscribe(contestID string) (<-chan []byte, func()) {
	b.mu.Lock()

	ch := make(chan []byte, 16)
	if snapshot, ok := b.latest[contestID]; ok {
		ch <- snapshot
	}
	b.subscribers[contestID] = append(b.subscribers[contestID], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subscribers := b.subscribers[contestID]
		for i, sub := range subscribers {
			if sub == ch {
				b.subscribers[contestID] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
		zap.S().Debugf("unsubscribed from contest %s standings", contestID)
	}

	zap.S().Debugf("new subscription to contest %s standings", contestID)
	return ch, unsubscribe
}

// Publish replaces the contest's snapshot and broadcasts it. Slow
// subscribers have stale messages dropped rather than blocking the
// publisher.
func (b *Broker) Publish(contestID string, msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest[contestID] = msg

	for _, ch := range b.subscribers[contestID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// CloseTopic closes all subscriber channels and drops the snapshot, used
// when a contest is deleted.
func (b *Broker) CloseTopic(contestID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[contestID]; ok {
		for _, ch := range subscribers {
			close(ch)
		}
		delete(b.subscribers, contestID)
		delete(b.latest, contestID)
		zap.S().Infof("closed standings topic for contest %s", contestID)
	}
}

// FormatMessage wraps a payload in the websocket envelope.
func FormatMessage(streamType string, data interface{}) []byte {
	msg := WsMessage{Stream: streamType, Data: data}
	bytes, err := json.Marshal(msg)
	if err != nil {
		return []byte(`{"stream": "error", "data": "json format error"}`)
	}
	return bytes
}
