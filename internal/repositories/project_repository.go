package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"intake-crm/internal/models"
	"intake-crm/internal/utils"

	"github.com/google/uuid"
)

type MySQLProjectRepository struct {
	db *sql.DB
}

func NewMySQLProjectRepository(db *sql.DB) *MySQLProjectRepository {
	return &MySQLProjectRepository{db: db}
}

func (r *MySQLProjectRepository) Create(project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.Status == "" {
		project.Status = models.StatusLeadIn
	}

	query := `
		INSERT INTO projects (id, lead_id, status, estimated_value, probability, expected_close_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		project.ID,
		project.LeadID,
		project.Status,
		utils.NullFloat(project.EstimatedValue),
		utils.NullInt(project.Probability),
		utils.NullString(project.ExpectedCloseDate),
		utils.NullString(project.Notes),
	)
	if err != nil {
		return fmt.Errorf("error saving project: %v", err)
	}

	project.CreatedAt = time.Now().UTC()
	project.UpdatedAt = project.CreatedAt
	return nil
}

const projectWithLeadColumns = `
	p.id, p.lead_id, p.status, p.estimated_value, p.probability,
	p.expected_close_date, p.notes, p.created_at, p.updated_at,
	l.id, l.name, l.company, l.role, l.email, l.phone, l.source, l.status, l.created_at`

func (r *MySQLProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `
		SELECT ` + projectWithLeadColumns + `
		FROM projects p
		JOIN leads l ON l.id = p.lead_id
		WHERE p.id = ?`

	projects, err := r.fetchProjects(query, id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return projects[0], nil
}

// GetWithLeads returns every kanban card with its lead joined in, newest
// first. The board is small enough that it is not paginated.
func (r *MySQLProjectRepository) GetWithLeads() ([]*models.Project, error) {
	query := `
		SELECT ` + projectWithLeadColumns + `
		FROM projects p
		JOIN leads l ON l.id = p.lead_id
		ORDER BY p.created_at DESC`

	return r.fetchProjects(query)
}

func (r *MySQLProjectRepository) GetByStatus(status string, page, limit int) ([]*models.Project, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := `
		SELECT ` + projectWithLeadColumns + `
		FROM projects p
		JOIN leads l ON l.id = p.lead_id
		WHERE p.status = ?
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`

	projects, err := r.fetchProjects(query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow("SELECT COUNT(*) FROM projects WHERE status = ?", status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting projects: %v", err)
	}

	return projects, total, nil
}

func (r *MySQLProjectRepository) fetchProjects(query string, args ...interface{}) ([]*models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying projects: %v", err)
	}
	defer rows.Close()

	var projects []*models.Project

	for rows.Next() {
		project := &models.Project{Lead: &models.Lead{}}
		var estimatedValue sql.NullFloat64
		var probability sql.NullInt64
		var closeDate, notes sql.NullString
		var company, role, email, phone sql.NullString

		err := rows.Scan(
			&project.ID,
			&project.LeadID,
			&project.Status,
			&estimatedValue,
			&probability,
			&closeDate,
			&notes,
			&project.CreatedAt,
			&project.UpdatedAt,
			&project.Lead.ID,
			&project.Lead.Name,
			&company,
			&role,
			&email,
			&phone,
			&project.Lead.Source,
			&project.Lead.Status,
			&project.Lead.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning project: %v", err)
		}

		project.EstimatedValue = estimatedValue.Float64
		project.Probability = int(probability.Int64)
		project.ExpectedCloseDate = closeDate.String
		project.Notes = notes.String
		project.Lead.Company = company.String
		project.Lead.Role = role.String
		project.Lead.Email = email.String
		project.Lead.Phone = phone.String

		projects = append(projects, project)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %v", err)
	}

	return projects, nil
}

func (r *MySQLProjectRepository) UpdateStatus(projectID string, status string) error {
	result, err := r.db.Exec(
		"UPDATE projects SET status = ?, updated_at = NOW() WHERE id = ?",
		status, projectID,
	)
	if err != nil {
		return fmt.Errorf("error updating project status: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("project not found")
	}
	return nil
}

func (r *MySQLProjectRepository) UpdateDetails(project *models.Project) error {
	query := `
		UPDATE projects
		SET estimated_value = ?, probability = ?, expected_close_date = ?, notes = ?,
			updated_at = NOW()
		WHERE id = ?`

	result, err := r.db.Exec(query,
		utils.NullFloat(project.EstimatedValue),
		utils.NullInt(project.Probability),
		utils.NullString(project.ExpectedCloseDate),
		utils.NullString(project.Notes),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating project: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("project not found")
	}
	return nil
}

func (r *MySQLProjectRepository) Delete(projectID string) error {
	result, err := r.db.Exec("DELETE FROM projects WHERE id = ?", projectID)
	if err != nil {
		return fmt.Errorf("error deleting project: %v", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("project not found")
	}
	return nil
}

// CountActive counts every pipeline record that is still in play, which
// excludes both closed stages but includes abandoned-cart.
func (r *MySQLProjectRepository) CountActive() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM projects WHERE status NOT IN (?, ?)",
		models.StatusClosedWon, models.StatusClosedLost,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting active projects: %v", err)
	}
	return count, nil
}
