package channel

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type scriptedResponder struct {
	mu       sync.Mutex
	session  Session
	requests []RequestEnvelope
	scopes   []string
	result   json.RawMessage
	err      error
}

func (r *scriptedResponder) CurrentSession(topic string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *scriptedResponder) HandleRequest(ctx context.Context, env RequestEnvelope, chainScope string) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, env)
	r.scopes = append(r.scopes, chainScope)
	return r.result, r.err
}

func TestRelayConnectDeliversSignal(t *testing.T) {
	relay := NewRelay()
	ep := relay.Endpoint("t1")

	connected := false
	ep.SetHandlers(Handlers{OnConnect: func() { connected = true }})

	if err := ep.Connect(t.Context()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !connected {
		t.Fatal("connect signal not delivered")
	}
	if ep.State() != StateConnected {
		t.Fatalf("unexpected state %q", ep.State())
	}
}

func TestRelaySnapshotRequiresResponder(t *testing.T) {
	relay := NewRelay()
	ep := relay.Endpoint("t1")
	if err := ep.Connect(t.Context()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	_, err := ep.Snapshot(t.Context())
	if !errors.Is(err, ErrNoResponder) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRelayRequestRoundTrip(t *testing.T) {
	relay := NewRelay()
	responder := &scriptedResponder{result: json.RawMessage(`{"signature":"ab"}`)}
	relay.Bind("t1", responder)

	ep := relay.Endpoint("t1")
	if err := ep.Connect(t.Context()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	got, err := ep.Request(t.Context(), RequestEnvelope{ID: "r1", Method: "alph_signMessage"}, "alephium:4:2")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if string(got) != `{"signature":"ab"}` {
		t.Fatalf("unexpected result: %s", got)
	}
	if len(responder.requests) != 1 || responder.scopes[0] != "alephium:4:2" {
		t.Fatalf("responder saw %+v scopes=%v", responder.requests, responder.scopes)
	}
}

func TestRelayRequestWhileDisconnected(t *testing.T) {
	relay := NewRelay()
	relay.Bind("t1", &scriptedResponder{})
	ep := relay.Endpoint("t1")

	_, err := ep.Request(t.Context(), RequestEnvelope{ID: "r1"}, "alephium:4:2")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRelaySignalsReachOnlyConnectedEndpoints(t *testing.T) {
	relay := NewRelay()
	ep := relay.Endpoint("t1")

	var got []string
	ep.SetHandlers(Handlers{
		OnSessionCreated: func(Session) { got = append(got, "created") },
		OnNotification:   func(Notification) { got = append(got, "notification") },
		OnDisconnect:     func() { got = append(got, "disconnect") },
	})

	// Not connected yet: nothing is delivered.
	relay.SessionCreated("t1", Session{})
	if len(got) != 0 {
		t.Fatalf("signal delivered before connect: %v", got)
	}

	if err := ep.Connect(t.Context()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	relay.SessionCreated("t1", Session{Topic: "t1"})
	relay.Notify("t1", Notification{Kind: "blockHeight"})
	relay.Drop("t1")

	want := []string{"created", "notification", "disconnect"}
	if len(got) != len(want) {
		t.Fatalf("unexpected signals: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("signal order mismatch: got=%v want=%v", got, want)
		}
	}

	// Dropped endpoints receive nothing further.
	relay.Notify("t1", Notification{Kind: "blockHeight"})
	if len(got) != len(want) {
		t.Fatalf("signal delivered after drop: %v", got)
	}
}
