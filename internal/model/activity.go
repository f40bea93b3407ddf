package model

import "time"

type Activity struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Action     string    `json:"action"`
	Target     string    `json:"target,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ActivityPage is one cursor page; an empty NextCursor ends the listing.
type ActivityPage struct {
	Items      []Activity `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
