package switchcore

import (
	"context"
	"sync"
	"time"
)

// PendingEntry is the correlation table's value: the acquirer socket
// a matching issuer response must be written to.
type PendingEntry struct {
	AcquirerConn *Connection
	ConnectionID string
	CreatedAt    time.Time
}

// CorrelationTable maps STAN to the acquirer awaiting a response. An
// insert on an already-occupied STAN overwrites the prior entry; this
// is an accepted trade-off, not defended against here.
type CorrelationTable struct {
	mu      sync.Mutex
	entries map[string]PendingEntry
}

// NewCorrelationTable returns an empty table.
func NewCorrelationTable() *CorrelationTable {
	return &CorrelationTable{entries: make(map[string]PendingEntry)}
}

// Put inserts or overwrites the pending entry for a STAN.
func (t *CorrelationTable) Put(stan string, entry PendingEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[stan] = entry
}

// Take removes and returns the pending entry for a STAN, if any. The
// entry is gone before the caller attempts the response write, so a
// late or duplicate issuer reply for the same STAN cannot match twice.
func (t *CorrelationTable) Take(stan string) (PendingEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[stan]
	if ok {
		delete(t.entries, stan)
	}
	return e, ok
}

// PurgeBySocket removes every entry whose acquirer connection matches
// the given connection, e.g. on socket close. It returns the number of
// entries removed.
func (t *CorrelationTable) PurgeBySocket(c *Connection) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for stan, e := range t.entries {
		if e.AcquirerConn == c {
			delete(t.entries, stan)
			removed++
		}
	}
	return removed
}

// Len reports the number of pending entries, for admin/metrics.
func (t *CorrelationTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// StartSweep runs an optional, opt-in TTL sweep that expires entries
// older than ttl every interval. The dispatcher's own matching logic
// never depends on this running, so CreatedAt is otherwise recorded
// but never consulted, and the switch's default (no sweep) behavior
// is unchanged when the caller never starts it.
func (t *CorrelationTable) StartSweep(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.sweep(ttl)
			}
		}
	}()
}

func (t *CorrelationTable) sweep(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	t.mu.Lock()
	defer t.mu.Unlock()
	for stan, e := range t.entries {
		if e.CreatedAt.Before(cutoff) {
			delete(t.entries, stan)
		}
	}
}
