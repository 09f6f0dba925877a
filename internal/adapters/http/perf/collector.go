package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 5000

// EntryKind distinguishes what was timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota // inbound HTTP request
	KindQuery                    // local SQLite statement
	KindBackend                  // outbound call to the REST backend
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Label      string // "GET /admin", "ExecContext", "GET /api/anuncios/"
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps the most recent entries in a fixed-size ring.
// Record never blocks on aggregation; Snapshot does the work on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	total   int64
}

// NewCollector creates a collector holding up to size entries.
// PRE: size > 0 (DefaultRingSize is used otherwise)
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry once the ring is full.
// Safe on a nil collector.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.next] = e
	c.next = (c.next + 1) % len(c.entries)
	c.mu.Unlock()
	atomic.AddInt64(&c.total, 1)
}

// TotalRecorded returns how many entries were ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return atomic.LoadInt64(&c.total)
}

// Stat aggregates the timings of one label.
type Stat struct {
	Label   string
	Count   int
	AvgMs   float64
	MaxMs   float64
	Errors  int // entries with StatusCode >= 500
	totalMs float64
}

// Snapshot is the aggregated view rendered on the performance page.
type Snapshot struct {
	Since        time.Time
	Total        int64
	RequestP50Ms float64
	RequestP95Ms float64
	RequestP99Ms float64
	Requests     []Stat
	Queries      []Stat
	Backend      []Stat
}

// Snapshot aggregates entries newer than since, keeping the topN slowest labels per kind.
// PRE: topN > 0
// POST: each Stat list is sorted by AvgMs descending
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	byKind := map[EntryKind]map[string]*Stat{
		KindRequest: {},
		KindQuery:   {},
		KindBackend: {},
	}
	var requestMs []float64

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		stats, ok := byKind[e.Kind]
		if !ok {
			continue
		}
		s := stats[e.Label]
		if s == nil {
			s = &Stat{Label: e.Label}
			stats[e.Label] = s
		}
		s.Count++
		s.totalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
		if e.StatusCode >= 500 {
			s.Errors++
		}
		if e.Kind == KindRequest {
			requestMs = append(requestMs, e.DurationMs)
		}
	}

	snap := Snapshot{
		Since:    since,
		Total:    c.TotalRecorded(),
		Requests: slowest(byKind[KindRequest], topN),
		Queries:  slowest(byKind[KindQuery], topN),
		Backend:  slowest(byKind[KindBackend], topN),
	}
	if len(requestMs) > 0 {
		sort.Float64s(requestMs)
		snap.RequestP50Ms = percentile(requestMs, 50)
		snap.RequestP95Ms = percentile(requestMs, 95)
		snap.RequestP99Ms = percentile(requestMs, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func slowest(stats map[string]*Stat, n int) []Stat {
	out := make([]Stat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.totalMs / float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs != out[j].AvgMs {
			return out[i].AvgMs > out[j].AvgMs
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
