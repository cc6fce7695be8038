package domain

import "strings"

// Priority is the urgency assigned to an incident.
type Priority string

// Known priorities.
const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Incident is a reported field incident tied to a location.
type Incident struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	IncidentType string   `json:"incidentType"`
	Priority     Priority `json:"priority"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	ReportedBy   int64    `json:"reportedBy"`
	OccurredAt   string   `json:"occurredAt,omitempty"`
	Status       *string  `json:"status,omitempty"`
}

// RecordID implements Record.
func (i Incident) RecordID() int64 { return i.ID }

// IncidentInput is the create/update payload for an incident.
type IncidentInput struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	IncidentType string   `json:"incidentType"`
	Priority     Priority `json:"priority"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Status       *string  `json:"status,omitempty"`
}

// Validate implements Input.
func (in IncidentInput) Validate() error {
	const op = "incident"
	if strings.TrimSpace(in.Title) == "" {
		return Invalid(op, "title is required")
	}
	if strings.TrimSpace(in.IncidentType) == "" {
		return Invalid(op, "incident type is required")
	}
	if !in.Priority.Valid() {
		return Invalid(op, "priority must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return Invalid(op, "latitude must be within [-90, 90]")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return Invalid(op, "longitude must be within [-180, 180]")
	}
	return nil
}
