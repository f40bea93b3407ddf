package auth

import (
	"log/slog"
	"sync"

	"rescue-console/internal/event"
)

// ViewTracker is the gateway's Navigator. The UI reports the view it shows;
// a redirect is published on the bus and reaches the UI over the event
// stream.
type ViewTracker struct {
	bus event.Bus

	mu   sync.RWMutex
	view string
}

func NewViewTracker(bus event.Bus) *ViewTracker {
	return &ViewTracker{bus: bus, view: ViewHome}
}

func (t *ViewTracker) CurrentView() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.view
}

// SetView records the view the UI navigated to.
func (t *ViewTracker) SetView(view string) string {
	view = NormalizeView(view)

	t.mu.Lock()
	t.view = view
	t.mu.Unlock()

	return view
}

func (t *ViewTracker) Redirect(view string) {
	view = t.SetView(view)
	slog.Debug("redirecting console", "view", view)
	t.bus.Publish(event.New(event.TypeSessionRedirect, "", event.RedirectPayload{View: view}))
}
