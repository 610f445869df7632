package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"intake-crm/internal/models"

	"github.com/google/uuid"
)

type MySQLAdminRepository struct {
	db *sql.DB
}

func NewMySQLAdminRepository(db *sql.DB) *MySQLAdminRepository {
	return &MySQLAdminRepository{db: db}
}

func (r *MySQLAdminRepository) Create(admin *models.AdminUser) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}

	query := `
		INSERT INTO admin_users (id, email, name, role, password_hash)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query, admin.ID, admin.Email, admin.Name, admin.Role, admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("error saving admin user: %v", err)
	}

	admin.CreatedAt = time.Now().UTC()
	return nil
}

func (r *MySQLAdminRepository) GetByID(id string) (*models.AdminUser, error) {
	return r.getOne("SELECT id, email, name, role, password_hash, created_at FROM admin_users WHERE id = ?", id)
}

func (r *MySQLAdminRepository) GetByEmail(email string) (*models.AdminUser, error) {
	return r.getOne("SELECT id, email, name, role, password_hash, created_at FROM admin_users WHERE email = ?", email)
}

func (r *MySQLAdminRepository) getOne(query string, arg interface{}) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	err := r.db.QueryRow(query, arg).Scan(
		&admin.ID,
		&admin.Email,
		&admin.Name,
		&admin.Role,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting admin user: %v", err)
	}
	return admin, nil
}

func (r *MySQLAdminRepository) GetAll() ([]*models.AdminUser, error) {
	rows, err := r.db.Query("SELECT id, email, name, role, password_hash, created_at FROM admin_users ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying admin users: %v", err)
	}
	defer rows.Close()

	var admins []*models.AdminUser

	for rows.Next() {
		admin := &models.AdminUser{}
		err := rows.Scan(
			&admin.ID,
			&admin.Email,
			&admin.Name,
			&admin.Role,
			&admin.PasswordHash,
			&admin.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning admin user: %v", err)
		}
		admins = append(admins, admin)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin users: %v", err)
	}

	return admins, nil
}
