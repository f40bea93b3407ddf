package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSessionLogin    Type = "session.login"
	TypeSessionLogout   Type = "session.logout"
	TypeSessionRedirect Type = "session.redirect"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
}

// RedirectPayload tells the UI which view to show next.
type RedirectPayload struct {
	View   string `json:"view"`
	Reason string `json:"reason,omitempty"`
}

func New(typ Type, userID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		UserID:    userID,
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
