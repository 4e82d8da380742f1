package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(10, "message.")
	defer unsub()

	b.Publish(NewEvent(KindMessageSent, "m1"))

	select {
	case evt := <-ch:
		if evt.Kind != KindMessageSent {
			t.Errorf("got kind %q, want %s", evt.Kind, KindMessageSent)
		}
		if evt.Payload != "m1" {
			t.Errorf("payload = %v, want m1", evt.Payload)
		}
		if evt.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(10, "chats.")
	defer unsub()

	b.Publish(Event{Kind: KindMessageRead})
	b.Publish(Event{Kind: KindChatsLoaded})

	select {
	case evt := <-ch:
		if evt.Kind != KindChatsLoaded {
			t.Errorf("got kind %q, want %s", evt.Kind, KindChatsLoaded)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeMultipleNamespaces(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(10, "chat.", "message.")
	defer unsub()

	b.Publish(Event{Kind: KindChatCreated})
	b.Publish(Event{Kind: KindStatusChanged})
	b.Publish(Event{Kind: KindMessageSent})

	got := []string{(<-ch).Kind, (<-ch).Kind}
	if got[0] != KindChatCreated || got[1] != KindMessageSent {
		t.Errorf("got %v, want [chat.created message.sent]", got)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(10, "message.")
	unsub()
	unsub()

	b.Publish(Event{Kind: KindMessageSent})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(1, "test.")
	defer unsub()

	b.Publish(Event{Kind: "test.one"})
	// Dropped: buffer is full.
	b.Publish(Event{Kind: "test.two"})

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
}

func TestNilBusPublish(t *testing.T) {
	var b *Bus
	b.Publish(Event{Kind: KindMessageSent})
}
