// Package notify is a minimal publish/subscribe signal. Listeners get no
// payload; they re-read whatever they depend on.
package notify

import (
	"sync"

	"prestes/internal/log"
)

// Notifier fans a change signal out to its listeners.
type Notifier struct {
	mu        sync.Mutex
	next      uint64
	listeners []entry
	logger    *log.Logger
}

type entry struct {
	id uint64
	fn func()
}

func New() *Notifier {
	return &Notifier{logger: log.ForComponent(log.ComponentNotify)}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (n *Notifier) Subscribe(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	n.next++
	id := n.next
	n.listeners = append(n.listeners, entry{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, e := range n.listeners {
		if e.id == id {
			// Copy so a Notify iterating the old slice is not disturbed.
			next := make([]entry, 0, len(n.listeners)-1)
			next = append(next, n.listeners[:i]...)
			n.listeners = append(next, n.listeners[i+1:]...)
			return
		}
	}
}

// Notify calls every listener subscribed at the time of the call, in
// subscription order, on the caller's goroutine. A listener that panics is
// logged and skipped.
func (n *Notifier) Notify() {
	n.mu.Lock()
	current := n.listeners
	n.mu.Unlock()

	for _, e := range current {
		n.call(e)
	}
}

func (n *Notifier) call(e entry) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("listener panicked", "listener", e.id, "panic", r)
		}
	}()
	e.fn()
}

// Len reports the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
