package transport

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	HeaderFreshUntil = "X-Fresh-Until"

	DefaultFreshnessFallback = 2 * time.Second
)

type FreshnessOutcome string

const (
	FreshnessUpdated FreshnessOutcome = "updated"
	FreshnessStale   FreshnessOutcome = "stale"
	FreshnessEmpty   FreshnessOutcome = "empty"
)

// FreshnessWindow remembers the newest marker the backend returned on a write
// and how long reads should carry it. Markers only move forward, so a slow
// write response cannot replace a newer marker.
type FreshnessWindow struct {
	fallback time.Duration
	now      func() time.Time

	mu         sync.Mutex
	marker     string
	freshUntil time.Time
}

func NewFreshnessWindow(fallback time.Duration, now func() time.Time) *FreshnessWindow {
	if fallback <= 0 {
		fallback = DefaultFreshnessFallback
	}
	if now == nil {
		now = time.Now
	}
	return &FreshnessWindow{fallback: fallback, now: now}
}

// Observe records marker if it is newer than the current one. The window
// closes at the time the marker names, or fallback from now when the marker
// is not a date.
func (w *FreshnessWindow) Observe(marker string) FreshnessOutcome {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return FreshnessEmpty
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !markerNewer(marker, w.marker) {
		return FreshnessStale
	}

	w.marker = marker
	if until, ok := parseMarker(marker); ok {
		w.freshUntil = until
	} else {
		w.freshUntil = w.now().Add(w.fallback)
	}
	return FreshnessUpdated
}

// Current returns the marker while the window is open.
func (w *FreshnessWindow) Current() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.marker == "" || !w.now().Before(w.freshUntil) {
		return "", false
	}
	return w.marker, true
}

func (w *FreshnessWindow) Snapshot() (marker string, freshUntil time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.marker, w.freshUntil
}

// markerNewer compares as instants when both markers parse as dates and
// lexicographically otherwise.
func markerNewer(candidate string, current string) bool {
	if current == "" {
		return true
	}

	candidateAt, candidateOK := parseMarker(candidate)
	currentAt, currentOK := parseMarker(current)
	if candidateOK && currentOK {
		return candidateAt.After(currentAt)
	}
	return candidate > current
}

var markerLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	http.TimeFormat,
	time.RFC1123Z,
	time.RFC1123,
}

func parseMarker(marker string) (time.Time, bool) {
	for _, layout := range markerLayouts {
		if t, err := time.Parse(layout, marker); err == nil {
			return t, true
		}
	}

	// Bare integers are epoch milliseconds, or seconds when short.
	if n, err := strconv.ParseInt(marker, 10, 64); err == nil && n > 0 {
		if n < 1e11 {
			return time.Unix(n, 0), true
		}
		return time.UnixMilli(n), true
	}

	return time.Time{}, false
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func isIdempotentRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// Namespaces matches request paths against the API areas that honour
// freshness markers. Paths are compared after the backend base path is
// stripped.
type Namespaces struct {
	basePath string
	prefixes []string
}

func NewNamespaces(basePath string, prefixes []string) Namespaces {
	n := Namespaces{basePath: "/" + strings.Trim(basePath, "/")}
	if n.basePath == "/" {
		n.basePath = ""
	}
	for _, prefix := range prefixes {
		prefix = strings.Trim(strings.TrimSpace(prefix), "/")
		if prefix == "" {
			continue
		}
		n.prefixes = append(n.prefixes, "/"+prefix)
	}
	return n
}

func (n Namespaces) Match(path string) bool {
	if n.basePath != "" {
		if path != n.basePath && !strings.HasPrefix(path, n.basePath+"/") {
			return false
		}
		path = strings.TrimPrefix(path, n.basePath)
	}

	for _, prefix := range n.prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Freshness feeds write responses into the window and tags eligible reads
// with the current marker. Other requests pass untouched.
func Freshness(window *FreshnessWindow, namespaces Namespaces, observed func(FreshnessOutcome)) Interceptor {
	return func(req *http.Request, next Next) (*http.Response, error) {
		switch {
		case isWrite(req.Method):
			resp, err := next(req)
			if err != nil {
				return resp, err
			}
			if marker := resp.Header.Get(HeaderFreshUntil); marker != "" {
				outcome := window.Observe(marker)
				if observed != nil {
					observed(outcome)
				}
			}
			return resp, nil

		case isIdempotentRead(req.Method) && namespaces.Match(req.URL.Path):
			marker, ok := window.Current()
			if !ok {
				return next(req)
			}
			out := cloneRequest(req)
			out.Header.Set(HeaderFreshUntil, marker)
			return next(out)
		}

		return next(req)
	}
}
