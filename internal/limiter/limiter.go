package limiter

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Quota describes an endpoint's budget of "N requests per window".
type Quota struct {
	Limit  int64
	Window time.Duration
}

func (q Quota) String() string {
	return fmt.Sprintf("%d per %s", q.Limit, unitName(q.Window))
}

// ParseQuota parses quota strings like "25 per day" or "25/day".
// Supported units: second, minute, hour, day (optionally pluralized).
func ParseQuota(s string) (Quota, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))

	var countStr, unit string
	switch {
	case len(fields) == 3 && fields[1] == "per":
		countStr, unit = fields[0], fields[2]
	case len(fields) == 1 && strings.Contains(fields[0], "/"):
		parts := strings.SplitN(fields[0], "/", 2)
		countStr, unit = parts[0], parts[1]
	default:
		return Quota{}, fmt.Errorf("invalid quota %q: expected \"N per <unit>\"", s)
	}

	limit, err := strconv.ParseInt(countStr, 10, 64)
	if err != nil || limit <= 0 {
		return Quota{}, fmt.Errorf("invalid quota %q: bad request count %q", s, countStr)
	}

	window, err := parseUnit(unit)
	if err != nil {
		return Quota{}, fmt.Errorf("invalid quota %q: %w", s, err)
	}

	return Quota{Limit: limit, Window: window}, nil
}

func parseUnit(unit string) (time.Duration, error) {
	switch strings.TrimSuffix(unit, "s") {
	case "second":
		return time.Second, nil
	case "minute":
		return time.Minute, nil
	case "hour":
		return time.Hour, nil
	case "day":
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown time unit %q", unit)
}

func unitName(d time.Duration) string {
	switch d {
	case time.Second:
		return "second"
	case time.Minute:
		return "minute"
	case time.Hour:
		return "hour"
	case 24 * time.Hour:
		return "day"
	}
	return d.String()
}

// Decision is the outcome of a single Allow check.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows. Counters live only
// in process memory; they reset when the window passes or on restart.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count     int64
	windowEnd time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{buckets: make(map[string]*bucket)}
}

// Allow consumes one request from key's quota and reports whether the
// request fits in the current window.
func (l *Limiter) Allow(key string, q Quota) Decision {
	return l.allowAt(key, q, time.Now())
}

func (l *Limiter) allowAt(key string, q Quota, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.After(b.windowEnd) {
		b = &bucket{windowEnd: now.Add(q.Window)}
		l.buckets[key] = b
	}

	if b.count >= q.Limit {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: b.windowEnd.Sub(now)}
	}

	b.count++
	return Decision{Allowed: true, Remaining: q.Limit - b.count}
}
