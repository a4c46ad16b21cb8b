package logging

import (
	"net/http"
	"sync"
	"time"
)

// Correlation carries the identifiers shared by an HTTP request log and
// its paired response log, plus the ingress time used to derive the
// response duration.
type Correlation struct {
	TraceID   string
	RequestID string
	Start     time.Time
}

const (
	// pairTTL bounds how long an unconsumed request entry survives.
	pairTTL = 5 * time.Minute
	// pairSweepLen is the table size at which stale entries are evicted.
	pairSweepLen = 128
)

// pairTable associates an in-flight request with its correlation data.
// The *http.Request pointer is the stable per-request handle: it is unique
// for the lifetime of the exchange and needs no instrumentation of the
// request itself. Entries are removed when the response is logged; entries
// whose response never arrives are lazily evicted so abandoned exchanges
// cannot grow the table without bound.
type pairTable struct {
	mu      sync.Mutex
	entries map[*http.Request]Correlation
}

func (t *pairTable) put(req *http.Request, c Correlation) {
	if req == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[*http.Request]Correlation)
	}
	if len(t.entries) >= pairSweepLen {
		t.sweepLocked(time.Now())
	}
	t.entries[req] = c
}

// take returns and removes the entry for req, if present.
func (t *pairTable) take(req *http.Request) (Correlation, bool) {
	if req == nil {
		return Correlation{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.entries[req]
	if ok {
		delete(t.entries, req)
	}
	return c, ok
}

func (t *pairTable) sweepLocked(now time.Time) {
	for req, c := range t.entries {
		if now.Sub(c.Start) > pairTTL {
			delete(t.entries, req)
		}
	}
}

func (t *pairTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
