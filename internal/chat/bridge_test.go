package chat

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestBridge_PublishToAll(t *testing.T) {
	b := NewBridge(nil)
	defer b.Close()

	ch1, _ := b.Subscribe(context.Background())
	ch2, _ := b.Subscribe(context.Background())

	b.Publish(Event{Kind: EventMessageSent, ConversationID: "sarah-chen"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Kind != EventMessageSent || ev.ConversationID != "sarah-chen" {
				t.Errorf("subscriber %d got %+v", i, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestBridge_NoSubscribers(t *testing.T) {
	b := NewBridge(nil)
	b.Publish(Event{Kind: EventChanged})
	b.Close()
	b.Publish(Event{Kind: EventChanged})
}

func TestBridge_SlowSubscriberDrops(t *testing.T) {
	b := NewBridge(nil)
	defer b.Close()

	ch, _ := b.Subscribe(context.Background())
	for i := 0; i < subscriberBufferSize+10; i++ {
		b.Publish(Event{Kind: EventChanged})
	}
	if len(ch) != subscriberBufferSize {
		t.Errorf("buffered %d events, want %d", len(ch), subscriberBufferSize)
	}
}

func TestBridge_ContextUnsubscribes(t *testing.T) {
	b := NewBridge(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after cancel")
	}
	if b.Count() != 0 {
		t.Errorf("Count() = %d, want 0", b.Count())
	}
}

func TestBridge_CloseReleasesAll(t *testing.T) {
	b := NewBridge(nil)
	ch1, id1 := b.Subscribe(context.Background())
	ch2, _ := b.Subscribe(context.Background())

	b.Close()
	b.Close()
	b.Unsubscribe(id1)

	for _, ch := range []<-chan Event{ch1, ch2} {
		if _, ok := <-ch; ok {
			t.Error("channel should be closed")
		}
	}

	late, _ := b.Subscribe(context.Background())
	if _, ok := <-late; ok {
		t.Error("subscribing after close should yield a closed channel")
	}
}

func TestBridge_CloseStopsWatchersOfUncancellableContexts(t *testing.T) {
	before := runtime.NumGoroutine()

	b := NewBridge(nil)
	for i := 0; i < 20; i++ {
		b.Subscribe(context.WithoutCancel(context.Background()))
	}
	if runtime.NumGoroutine() < before+20 {
		t.Fatalf("expected one watcher per subscription")
	}
	b.Close()

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines = %d after Close, want <= %d", runtime.NumGoroutine(), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventKind_HostName(t *testing.T) {
	if EventMessageReceived.HostName() != "chat:message-received" {
		t.Errorf("HostName() = %q", EventMessageReceived.HostName())
	}
	if !(Event{Kind: EventMessageSent}).IsHostEvent() || (Event{Kind: EventTyping}).IsHostEvent() {
		t.Error("IsHostEvent mismatch")
	}
}
