package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"intake-crm/internal/models"

	"github.com/google/uuid"
)

type MySQLMessageRepository struct {
	db *sql.DB
}

func NewMySQLMessageRepository(db *sql.DB) *MySQLMessageRepository {
	return &MySQLMessageRepository{db: db}
}

func (r *MySQLMessageRepository) Save(message *models.IntakeMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	query := `
		INSERT INTO intake_messages (id, session_id, sender, message)
		VALUES (?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		message.ID,
		message.SessionID,
		message.Sender,
		message.Message,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %v", err)
	}

	message.CreatedAt = time.Now().UTC()
	return nil
}

// SaveBatch backfills a transcript into a session in one multi-row insert, so
// the greeting messages recorded before the session existed land atomically.
func (r *MySQLMessageRepository) SaveBatch(sessionID string, messages []*models.IntakeMessage) error {
	if len(messages) == 0 {
		return nil
	}

	query := "INSERT INTO intake_messages (id, session_id, sender, message, created_at) VALUES "
	args := make([]interface{}, 0, len(messages)*5)
	for i, m := range messages {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?, ?, ?)"
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.SessionID = sessionID
		args = append(args, m.ID, sessionID, m.Sender, m.Message, m.CreatedAt)
	}

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("error saving message batch: %v", err)
	}
	return nil
}

func (r *MySQLMessageRepository) GetBySession(sessionID string) ([]*models.IntakeMessage, error) {
	query := `
		SELECT id, session_id, sender, message, created_at
		FROM intake_messages
		WHERE session_id = ?
		ORDER BY created_at ASC`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.IntakeMessage

	for rows.Next() {
		message := &models.IntakeMessage{}
		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Sender,
			&message.Message,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, message)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %v", err)
	}

	return messages, nil
}
