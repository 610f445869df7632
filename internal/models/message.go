package models

import "time"

const (
	SenderUser  = "user"
	SenderAgent = "agent"
)

// IntakeMessage is an append-only transcript entry.
type IntakeMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageRepository interface {
	Save(message *IntakeMessage) error
	SaveBatch(sessionID string, messages []*IntakeMessage) error
	GetBySession(sessionID string) ([]*IntakeMessage, error)
}
