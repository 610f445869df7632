package models

import "time"

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadWithSession is the admin listing row: the lead plus its intake
// session, when one exists.
type LeadWithSession struct {
	Lead
	Session *IntakeSession `json:"session"`
}

type LeadRepository interface {
	Create(lead *Lead) error
	GetByID(id string) (*Lead, error)
	GetWithSessions(page, limit int) ([]*LeadWithSession, int, error)
	CountAll() (int, error)
}
