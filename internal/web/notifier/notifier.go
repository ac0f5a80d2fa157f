// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// Notifier pings listeners when something they display has changed.
// Listeners are grouped by session token so one browser's generation only
// refreshes that browser's open pages. Listeners receive an empty struct and
// should re-read their state.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[string]map[chan struct{}]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives pings for token.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(token string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	group, ok := n.listeners[token]
	if !ok {
		group = make(map[chan struct{}]struct{})
		n.listeners[token] = group
	}
	group[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(token string, ch chan struct{}) {
	n.mu.Lock()
	if group, ok := n.listeners[token]; ok {
		delete(group, ch)
		if len(group) == 0 {
			delete(n.listeners, token)
		}
	}
	n.mu.Unlock()
	close(ch)
}

// Broadcast pings every listener of token.
// Non-blocking: if a listener's channel is full, the ping is skipped.
func (n *Notifier) Broadcast(token string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners[token] {
		ping(ch)
	}
}

// BroadcastAll pings every listener regardless of token.
func (n *Notifier) BroadcastAll() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, group := range n.listeners {
		for ch := range group {
			ping(ch)
		}
	}
}

// Listeners returns the number of listeners subscribed for token.
func (n *Notifier) Listeners(token string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners[token])
}

func ping(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
		// Channel full, skip (listener will catch up on next broadcast)
	}
}
