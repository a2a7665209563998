package embedcheck

import "sync"

// Ticket identifies one embed check started through a Tracker.
type Ticket struct {
	ID  uint64
	URL string
}

// Tracker discards results of checks that were superseded while in flight:
// only the most recently begun ticket is current.
type Tracker struct {
	mu     sync.Mutex
	latest Ticket
}

func (t *Tracker) Begin(url string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest = Ticket{ID: t.latest.ID + 1, URL: url}
	return t.latest
}

func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return ticket.ID != 0 && ticket == t.latest
}
