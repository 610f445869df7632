package models

import "time"

const (
	RoleMaster = "master"
	RoleAdmin  = "admin"
)

type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminRepository interface {
	Create(admin *AdminUser) error
	GetByID(id string) (*AdminUser, error)
	GetByEmail(email string) (*AdminUser, error)
	GetAll() ([]*AdminUser, error)
}
