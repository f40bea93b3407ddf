package model

import "time"

type UrgencyStatus string

const (
	UrgencyOpen       UrgencyStatus = "open"
	UrgencyInProgress UrgencyStatus = "in_progress"
	UrgencyResolved   UrgencyStatus = "resolved"
)

func (s UrgencyStatus) Valid() bool {
	switch s {
	case UrgencyOpen, UrgencyInProgress, UrgencyResolved:
		return true
	}
	return false
}

type Urgency struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Severity    int           `json:"severity"`
	Status      UrgencyStatus `json:"status"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	ReportedBy  string        `json:"reported_by"`
	ReportedAt  time.Time     `json:"reported_at"`
}

type UrgencyReport struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Severity    int     `json:"severity"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type UrgencyFilter struct {
	Status UrgencyStatus
}

type UrgencyStatusUpdate struct {
	Status UrgencyStatus `json:"status"`
}
