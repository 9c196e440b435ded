// Package notifier fans catalog changes out to every open page.
package notifier

import "sync"

// Reason says why the set of uploaded databases changed.
type Reason string

// Change reasons.
const (
	Uploaded Reason = "uploaded"
	Removed  Reason = "removed"
	Rescan   Reason = "rescan"
)

// Change is delivered to subscribers when the catalog changes. Pages
// re-read the catalog on receipt; the change itself carries no data.
type Change struct {
	Reason Reason
}

// Notifier broadcasts catalog changes to all subscribed pages.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Change]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Change]struct{}),
	}
}

// Subscribe returns a channel that receives catalog changes.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Change {
	ch := make(chan Change, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Change) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Listeners returns the number of subscribed pages.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast delivers a change to every listener without blocking. A
// listener that has not consumed its previous change keeps that one;
// one pending change is enough to trigger a re-render.
func (n *Notifier) Broadcast(reason Reason) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- Change{Reason: reason}:
		default:
		}
	}
}

// Rescanned is a Broadcast(Rescan) shorthand for the directory watcher.
func (n *Notifier) Rescanned() {
	n.Broadcast(Rescan)
}
