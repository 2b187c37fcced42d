package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// exportQuota bounds how often a caller may trigger a snapshot export.
// Each export walks and compresses every plan store, so the endpoint
// gets a small fixed number of grants per sliding window. Grants are
// kept as timestamps and pruned on access; no background sweeper.
type exportQuota struct {
	mu     sync.Mutex
	grants map[string][]time.Time
	limit  int
	window time.Duration
}

func newExportQuota(limit int, window time.Duration) *exportQuota {
	return &exportQuota{
		grants: make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

// take consumes one grant for the caller. When the window is full it
// returns false and the wait until the oldest grant expires.
func (q *exportQuota) take(caller string, now time.Time) (bool, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	live := q.grants[caller][:0]
	for _, at := range q.grants[caller] {
		if now.Sub(at) < q.window {
			live = append(live, at)
		}
	}

	if len(live) >= q.limit {
		q.grants[caller] = live
		return false, live[0].Add(q.window).Sub(now)
	}

	q.grants[caller] = append(live, now)
	if len(q.grants[caller]) == 1 && len(q.grants) > 1 {
		q.dropIdle(now)
	}
	return true, 0
}

// dropIdle forgets callers whose grants have all expired.
func (q *exportQuota) dropIdle(now time.Time) {
	for caller, grants := range q.grants {
		idle := true
		for _, at := range grants {
			if now.Sub(at) < q.window {
				idle = false
				break
			}
		}
		if idle {
			delete(q.grants, caller)
		}
	}
}

// callerAddr identifies the requester for quota accounting: the first
// X-Forwarded-For hop when proxied, the remote host otherwise.
func callerAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
