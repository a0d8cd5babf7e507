package pubsub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := GetBroker()
	contestID := uuid.NewString()

	ch, unsubscribe := b.Subscribe(contestID)
	defer unsubscribe()

	b.Publish(contestID, []byte("standings-1"))
	require.Equal(t, []byte("standings-1"), recv(t, ch))
}

func TestSubscribeDeliversSnapshotFirst(t *testing.T) {
	b := GetBroker()
	contestID := uuid.NewString()

	b.Publish(contestID, []byte("standings-1"))
	b.Publish(contestID, []byte("standings-2"))

	// A late subscriber sees only the latest standings, not history.
	ch, unsubscribe := b.Subscribe(contestID)
	defer unsubscribe()
	require.Equal(t, []byte("standings-2"), recv(t, ch))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := GetBroker()
	contestID := uuid.NewString()

	ch, unsubscribe := b.Subscribe(contestID)
	unsubscribe()

	b.Publish(contestID, []byte("standings-1"))

	// The channel is closed; a closed channel yields immediately with ok=false.
	_, ok := <-ch
	require.False(t, ok)
}

func TestPublishIsolatedPerContest(t *testing.T) {
	b := GetBroker()
	contestA := uuid.NewString()
	contestB := uuid.NewString()

	chA, unsubA := b.Subscribe(contestA)
	defer unsubA()
	chB, unsubB := b.Subscribe(contestB)
	defer unsubB()

	b.Publish(contestA, []byte("only-a"))
	require.Equal(t, []byte("only-a"), recv(t, chA))

	select {
	case msg := <-chB:
		t.Fatalf("contest B received unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFormatMessage(t *testing.T) {
	raw := FormatMessage("standings", map[string]int{"rank": 1})

	var msg WsMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.Equal(t, "standings", msg.Stream)
}
