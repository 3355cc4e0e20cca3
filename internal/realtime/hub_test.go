package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/velora-app/velora-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventLikeReceived, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventMatchNew, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventLikeReceived {
		t.Fatalf("first event: want=%s got=%s", SSEEventLikeReceived, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventMatchNew {
		t.Fatalf("second event: want=%s got=%s", SSEEventMatchNew, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	reconnect := SSEMessage{Channel: channel, Event: SSEEventMessageNew, Data: map[string]any{"seq": 3}}
	hub.Broadcast(reconnect)
	gotReconnect := recvMessage(t, clientB.Outbound, time.Second)
	if gotReconnect.Event != SSEEventMessageNew {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventMessageNew, gotReconnect.Event)
	}
}

func TestSSEHubUnsubscribedChannelGetsNothing(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, uuid.New().String())

	hub.Broadcast(SSEMessage{Channel: uuid.New().String(), Event: SSEEventCallRing})

	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected message on unrelated channel: %v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}
