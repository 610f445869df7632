package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"intake-crm/internal/models"
	"intake-crm/internal/utils"

	"github.com/google/uuid"
)

type MySQLSessionRepository struct {
	db *sql.DB
}

func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}

func (r *MySQLSessionRepository) Create(session *models.IntakeSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	query := `INSERT INTO intake_sessions (id, lead_id) VALUES (?, ?)`

	_, err := r.db.Exec(query, session.ID, session.LeadID)
	if err != nil {
		return fmt.Errorf("error saving intake session: %v", err)
	}

	session.StartedAt = time.Now().UTC()
	return nil
}

func (r *MySQLSessionRepository) GetByID(id string) (*models.IntakeSession, error) {
	query := `
		SELECT id, lead_id, started_at, completed_at,
			bottleneck, channel, integrations, volume, timeline, summary
		FROM intake_sessions
		WHERE id = ?`

	session := &models.IntakeSession{}
	var completedAt sql.NullTime
	var bottleneck, channel, integrations, volume, timeline, summary sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.LeadID,
		&session.StartedAt,
		&completedAt,
		&bottleneck,
		&channel,
		&integrations,
		&volume,
		&timeline,
		&summary,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting intake session: %v", err)
	}

	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	session.Bottleneck = bottleneck.String
	session.Channel = channel.String
	session.Integrations = integrations.String
	session.Volume = volume.String
	session.Timeline = timeline.String
	session.Summary = summary.String

	return session, nil
}

// Complete stores the interview answers and stamps completed_at. The stamp is
// terminal: a session already completed keeps its original timestamp.
func (r *MySQLSessionRepository) Complete(session *models.IntakeSession) error {
	completedAt := time.Now().UTC()

	query := `
		UPDATE intake_sessions
		SET bottleneck = ?, channel = ?, integrations = ?, volume = ?,
			timeline = ?, summary = ?,
			completed_at = COALESCE(completed_at, ?)
		WHERE id = ?`

	_, err := r.db.Exec(query,
		utils.NullString(session.Bottleneck),
		utils.NullString(session.Channel),
		utils.NullString(session.Integrations),
		utils.NullString(session.Volume),
		utils.NullString(session.Timeline),
		utils.NullString(session.Summary),
		completedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("error completing intake session: %v", err)
	}

	if session.CompletedAt == nil {
		session.CompletedAt = &completedAt
	}
	return nil
}

func (r *MySQLSessionRepository) CountCompleted() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM intake_sessions WHERE completed_at IS NOT NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting completed sessions: %v", err)
	}
	return count, nil
}
