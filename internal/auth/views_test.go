package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rescue-console/internal/event"
)

func TestViewTracker(t *testing.T) {
	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	tracker := NewViewTracker(bus)
	assert.Equal(t, ViewHome, tracker.CurrentView())

	assert.Equal(t, "urgencies", tracker.SetView(" /Urgencies/ "))
	assert.Equal(t, "urgencies", tracker.CurrentView())
	assert.True(t, RequiresAuth(tracker.CurrentView()))

	tracker.Redirect(ViewLogin)
	assert.Equal(t, ViewLogin, tracker.CurrentView())

	e := nextEvent(t, events)
	assert.Equal(t, event.TypeSessionRedirect, e.Type)
	assert.Equal(t, event.RedirectPayload{View: ViewLogin}, e.Payload)
}
