package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"intake-crm/internal/models"
	"intake-crm/internal/utils"

	"github.com/google/uuid"
)

type MySQLLeadRepository struct {
	db *sql.DB
}

func NewMySQLLeadRepository(db *sql.DB) *MySQLLeadRepository {
	return &MySQLLeadRepository{db: db}
}

func (r *MySQLLeadRepository) Create(lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Name == "" {
		lead.Name = "Desconhecido"
	}
	if lead.Source == "" {
		lead.Source = "Agent Widget"
	}
	if lead.Status == "" {
		lead.Status = "Novo"
	}

	query := `
		INSERT INTO leads (
			id, name, company, role, email, phone, source, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		lead.ID,
		lead.Name,
		utils.NullString(lead.Company),
		utils.NullString(lead.Role),
		utils.NullString(lead.Email),
		utils.NullString(lead.Phone),
		lead.Source,
		lead.Status,
	)
	if err != nil {
		return fmt.Errorf("error saving lead: %v", err)
	}

	lead.CreatedAt = time.Now().UTC()
	return nil
}

func (r *MySQLLeadRepository) GetByID(id string) (*models.Lead, error) {
	query := `
		SELECT id, name, company, role, email, phone, source, status, created_at
		FROM leads
		WHERE id = ?`

	lead := &models.Lead{}
	var company, role, email, phone sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&lead.ID,
		&lead.Name,
		&company,
		&role,
		&email,
		&phone,
		&lead.Source,
		&lead.Status,
		&lead.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting lead: %v", err)
	}

	lead.Company = company.String
	lead.Role = role.String
	lead.Email = email.String
	lead.Phone = phone.String

	return lead, nil
}

// GetWithSessions returns one page of leads, each joined to its intake
// session when one exists, newest lead first.
func (r *MySQLLeadRepository) GetWithSessions(page, limit int) ([]*models.LeadWithSession, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := `
		SELECT
			l.id, l.name, l.company, l.role, l.email, l.phone, l.source, l.status, l.created_at,
			s.id, s.lead_id, s.started_at, s.completed_at,
			s.bottleneck, s.channel, s.integrations, s.volume, s.timeline, s.summary
		FROM leads l
		LEFT JOIN intake_sessions s ON s.lead_id = l.id
		ORDER BY l.created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying leads: %v", err)
	}
	defer rows.Close()

	var result []*models.LeadWithSession

	for rows.Next() {
		row := &models.LeadWithSession{}
		var company, role, email, phone sql.NullString
		var sessID, sessLeadID sql.NullString
		var sessStarted, sessCompleted sql.NullTime
		var bottleneck, channel, integrations, volume, timeline, summary sql.NullString

		err := rows.Scan(
			&row.ID, &row.Name, &company, &role, &email, &phone,
			&row.Source, &row.Status, &row.CreatedAt,
			&sessID, &sessLeadID, &sessStarted, &sessCompleted,
			&bottleneck, &channel, &integrations, &volume, &timeline, &summary,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning lead: %v", err)
		}

		row.Company = company.String
		row.Role = role.String
		row.Email = email.String
		row.Phone = phone.String

		if sessID.Valid {
			session := &models.IntakeSession{
				ID:           sessID.String,
				LeadID:       sessLeadID.String,
				StartedAt:    sessStarted.Time,
				Bottleneck:   bottleneck.String,
				Channel:      channel.String,
				Integrations: integrations.String,
				Volume:       volume.String,
				Timeline:     timeline.String,
				Summary:      summary.String,
			}
			if sessCompleted.Valid {
				t := sessCompleted.Time
				session.CompletedAt = &t
			}
			row.Session = session
		}

		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating leads: %v", err)
	}

	total, err := r.CountAll()
	if err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *MySQLLeadRepository) CountAll() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM leads").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting leads: %v", err)
	}
	return count, nil
}
