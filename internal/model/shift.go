package model

import "time"

type Shift struct {
	ID          string    `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Station     string    `json:"station"`
	EmployeeIDs []string  `json:"employee_ids"`
}

type ShiftInput struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Station string    `json:"station"`
}

type ShiftFilter struct {
	From time.Time
	To   time.Time
}

type ShiftAssignment struct {
	EmployeeID string `json:"employee_id"`
}
