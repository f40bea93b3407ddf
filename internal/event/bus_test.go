package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	first, unsubscribeFirst := bus.Subscribe()
	second, unsubscribeSecond := bus.Subscribe()
	defer unsubscribeSecond()

	bus.Publish(New(TypeSessionLogin, "42", nil))

	require.Equal(t, TypeSessionLogin, (<-first).Type)
	got := <-second
	require.Equal(t, TypeSessionLogin, got.Type)
	require.Equal(t, "42", got.UserID)
	require.NotEmpty(t, got.ID)

	unsubscribeFirst()
	unsubscribeFirst()
	_, open := <-first
	require.False(t, open)

	bus.Publish(New(TypeSessionLogout, "42", nil))
	require.Equal(t, TypeSessionLogout, (<-second).Type)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		bus.Publish(New(TypeSessionRedirect, "", RedirectPayload{View: "login"}))
	}

	require.Len(t, ch, subscriberBuffer)
}
