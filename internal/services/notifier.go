package services

import "sync"

// ChangeNotifier fans out per-invoice change signals to chart stream
// subscribers in the same process. Signals are level-triggered: a slow
// subscriber coalesces bursts into one pending signal instead of queueing
// a backlog.
type ChangeNotifier struct {
	mu   sync.Mutex
	subs map[string]map[int]chan struct{}
	next int
}

func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers for change signals on one invoice. The returned
// cancel must be called to release the subscription.
func (n *ChangeNotifier) Subscribe(invoiceID string) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan struct{}, 1)
	if n.subs[invoiceID] == nil {
		n.subs[invoiceID] = make(map[int]chan struct{})
	}
	id := n.next
	n.next++
	n.subs[invoiceID][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[invoiceID], id)
		if len(n.subs[invoiceID]) == 0 {
			delete(n.subs, invoiceID)
		}
	}
	return ch, cancel
}

// Notify signals every subscriber of the invoice without blocking.
func (n *ChangeNotifier) Notify(invoiceID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[invoiceID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
