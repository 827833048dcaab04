package pubsub

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func publishN(t *testing.T, pub *SSEPublisher, topic string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		if err := pub.Publish(topic, EventDiff, map[string]int{"pass": i}); err != nil {
			t.Fatalf("Publish(%d) error = %v", i, err)
		}
	}
}

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
		return Event{}
	}
}

func expectNothing(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReplayAll(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic(TopicRendering, TopicConfig{BufferSize: 3, ReplayAll: true})

	publishN(t, pub, TopicRendering, 5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicRendering)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	// The last three of five events
	for want := 3; want <= 5; want++ {
		if got := receive(t, sub).Version; got != want {
			t.Errorf("Expected version %d, got %d", want, got)
		}
	}
	expectNothing(t, sub)
}

func TestReplayLatestOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic(TopicCaption, TopicConfig{BufferSize: 1})

	publishN(t, pub, TopicCaption, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicCaption)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	if got := receive(t, sub).Version; got != 3 {
		t.Errorf("Expected version 3, got %d", got)
	}
	expectNothing(t, sub)
}

func TestNoReplayWithoutBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	publishN(t, pub, TopicStatus, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicStatus)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	expectNothing(t, sub)

	if err := pub.Publish(TopicStatus, EventStatus, EngineStatus{State: "ready"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	event := receive(t, sub)
	if event.Version != 4 || event.Type != EventStatus {
		t.Errorf("Expected status event version 4, got %s version %d", event.Type, event.Version)
	}
}

func TestCancelledContextClosesSubscription(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := pub.Subscribe(ctx, TopicRendering)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if got := pub.Subscribers(TopicRendering); got != 1 {
		t.Fatalf("Subscribers() = %d, want 1", got)
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for pub.Subscribers(TopicRendering) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Subscription was not removed after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, open := <-sub.Events(); open {
		t.Error("Subscription channel should be closed after cancel")
	}
	if err := sub.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestClosedPublisher(t *testing.T) {
	pub := NewSSEPublisher()
	sub, err := pub.Subscribe(context.Background(), TopicRendering)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	pub.Close()

	if _, open := <-sub.Events(); open {
		t.Error("Subscription channel should be closed")
	}
	if err := pub.Publish(TopicRendering, EventDiff, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() error = %v, want ErrClosed", err)
	}
	if _, err := pub.Subscribe(context.Background(), TopicRendering); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() error = %v, want ErrClosed", err)
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicCaption, Type: EventCaption, Data: []byte(`{"a":1}`), Version: 7}

	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "event: caption\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Errorf("Unexpected SSE framing: %q", out)
	}
	if !strings.Contains(out, `"version":7`) {
		t.Errorf("Payload should carry the version: %q", out)
	}
}
