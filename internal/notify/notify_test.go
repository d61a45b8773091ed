package notify

import (
	"slices"
	"testing"
)

func TestNotifyFanOutInOrder(t *testing.T) {
	n := New()
	var calls []string
	n.Subscribe(func() { calls = append(calls, "a") })
	n.Subscribe(func() { calls = append(calls, "b") })
	n.Subscribe(func() { calls = append(calls, "c") })

	n.Notify()

	if !slices.Equal(calls, []string{"a", "b", "c"}) {
		t.Fatalf("expected each listener exactly once in order, got %v", calls)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	n := New()
	var a, b int
	unsubA := n.Subscribe(func() { a++ })
	n.Subscribe(func() { b++ })

	unsubA()
	unsubA()
	n.Notify()

	if a != 0 || b != 1 {
		t.Fatalf("a=%d b=%d, want 0 and 1", a, b)
	}
	if n.Len() != 1 {
		t.Fatalf("expected 1 listener, got %d", n.Len())
	}
}

func TestNotifyWithoutListeners(t *testing.T) {
	New().Notify()
}

func TestSubscribeDuringNotifyTakesEffectNextTime(t *testing.T) {
	n := New()
	var late int
	n.Subscribe(func() {
		n.Subscribe(func() { late++ })
	})

	n.Notify()
	if late != 0 {
		t.Fatalf("listener added during Notify must not run in the same pass, ran %d", late)
	}
	n.Notify()
	if late != 1 {
		t.Fatalf("expected late listener to run once on the next pass, ran %d", late)
	}
}

func TestUnsubscribeDuringNotify(t *testing.T) {
	n := New()
	var second int
	var unsubSecond func()
	n.Subscribe(func() { unsubSecond() })
	unsubSecond = n.Subscribe(func() { second++ })

	// The pass already in flight still reaches the second listener.
	n.Notify()
	n.Notify()
	if second != 1 {
		t.Fatalf("expected 1 call, got %d", second)
	}
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	n := New()
	var after int
	n.Subscribe(func() { panic("boom") })
	n.Subscribe(func() { after++ })

	n.Notify()

	if after != 1 {
		t.Fatalf("expected listener after the panicking one to run, got %d", after)
	}
}
