package provider

import "testing"

func TestEventHubSequenceAndReplay(t *testing.T) {
	hub := NewEventHub(16)
	hub.Publish(EventAccountsChanged, nil)
	second := hub.Publish(EventChainChanged, 4)

	replay, _, cancel := hub.Subscribe(0)
	defer cancel()
	if len(replay) != 2 {
		t.Fatalf("expected full replay, got %d events", len(replay))
	}
	if replay[1].Seq != second.Seq {
		t.Fatalf("sequence mismatch: got=%d want=%d", replay[1].Seq, second.Seq)
	}

	partial, _, cancel2 := hub.Subscribe(replay[0].Seq)
	defer cancel2()
	if len(partial) != 1 || partial[0].Name != EventChainChanged {
		t.Fatalf("unexpected partial replay: %+v", partial)
	}
}

func TestEventHubBoundedHistory(t *testing.T) {
	hub := NewEventHub(2)
	hub.Publish("a", nil)
	hub.Publish("b", nil)
	hub.Publish("c", nil)

	if got := hub.BacklogSize(); got != 2 {
		t.Fatalf("unexpected backlog size: got=%d want=2", got)
	}
	replay, _, cancel := hub.Subscribe(0)
	defer cancel()
	if len(replay) != 2 || replay[0].Name != "b" {
		t.Fatalf("unexpected replay window: %+v", replay)
	}
}

func TestEventHubLiveDelivery(t *testing.T) {
	hub := NewEventHub(16)
	_, ch, cancel := hub.Subscribe(0)
	defer cancel()

	hub.Publish(EventDisconnect, nil)

	select {
	case event := <-ch:
		if event.Name != EventDisconnect {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
		t.Fatal("no live event delivered")
	}
}
