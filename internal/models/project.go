package models

import "time"

// Estágios do pipeline. Persisted literal strings, do not reorder.
const (
	StatusLeadIn         = "lead-in"
	StatusPreparingQuote = "preparing-quote"
	StatusQuoteSent      = "quote-sent"
	StatusFollowUp       = "follow-up"
	StatusClosedWon      = "closed-won"
	StatusClosedLost     = "closed-lost"
	StatusAbandonedCart  = "abandoned-cart"
)

// StageOrder is the kanban column order. abandoned-cart sits outside the board
// and is only ever set by the external watcher.
var StageOrder = []string{
	StatusLeadIn,
	StatusPreparingQuote,
	StatusQuoteSent,
	StatusFollowUp,
	StatusClosedWon,
	StatusClosedLost,
}

func IsValidStage(status string) bool {
	if status == StatusAbandonedCart {
		return true
	}
	for _, s := range StageOrder {
		if s == status {
			return true
		}
	}
	return false
}

type Project struct {
	ID                string    `json:"id"`
	LeadID            string    `json:"lead_id"`
	Status            string    `json:"status"`
	EstimatedValue    float64   `json:"estimated_value,omitempty"`
	Probability       int       `json:"probability,omitempty"`
	ExpectedCloseDate string    `json:"expected_close_date,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Lead              *Lead     `json:"lead,omitempty"`
}

type DashboardStats struct {
	TotalLeads       int `json:"totalLeads"`
	ActiveProjects   int `json:"activeProjects"`
	CompletedIntakes int `json:"completedIntakes"`
}

type ProjectRepository interface {
	Create(project *Project) error
	GetByID(id string) (*Project, error)
	GetWithLeads() ([]*Project, error)
	GetByStatus(status string, page, limit int) ([]*Project, int, error)
	UpdateStatus(projectID string, status string) error
	UpdateDetails(project *Project) error
	Delete(projectID string) error
	CountActive() (int, error)
}
