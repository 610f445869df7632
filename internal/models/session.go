package models

import "time"

// IntakeSession tracks one qualification interview. The free-text answers are
// filled in incrementally and completed_at is terminal: once set it is never
// cleared.
type IntakeSession struct {
	ID           string     `json:"id"`
	LeadID       string     `json:"lead_id"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Bottleneck   string     `json:"bottleneck,omitempty"`
	Channel      string     `json:"channel,omitempty"`
	Integrations string     `json:"integrations,omitempty"`
	Volume       string     `json:"volume,omitempty"`
	Timeline     string     `json:"timeline,omitempty"`
	Summary      string     `json:"summary,omitempty"`
}

type SessionRepository interface {
	Create(session *IntakeSession) error
	GetByID(id string) (*IntakeSession, error)
	Complete(session *IntakeSession) error
	CountCompleted() (int, error)
}
