package services

import (
	"fmt"
	"time"

	"intake-crm/internal/models"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AuthService issues and checks the JWTs used by the admin panel.
type AuthService struct {
	admins models.AdminRepository
	secret []byte
}

func NewAuthService(admins models.AdminRepository, secret string) *AuthService {
	return &AuthService{admins: admins, secret: []byte(secret)}
}

func (s *AuthService) Login(email, password string) (*models.AdminUser, string, error) {
	admin, err := s.admins.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if admin == nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   admin.ID,
		"email": admin.Email,
		"role":  admin.Role,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("error signing token: %v", err)
	}

	return admin, signed, nil
}

// CurrentUser resolves the admin behind a bearer token.
func (s *AuthService) CurrentUser(tokenString string) (*models.AdminUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, _ := claims["sub"].(string)
	admin, err := s.admins.GetByID(sub)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, fmt.Errorf("admin not found")
	}
	return admin, nil
}

// CreateAdmin registers a new back-office user. The role is never taken from
// the request; everyone signs up as a plain admin.
func (s *AuthService) CreateAdmin(email, name, password string) (*models.AdminUser, error) {
	existing, err := s.admins.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	admin := &models.AdminUser{
		Email:        email,
		Name:         name,
		Role:         models.RoleAdmin,
		PasswordHash: string(hash),
	}
	if err := s.admins.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) ListAdmins() ([]*models.AdminUser, error) {
	return s.admins.GetAll()
}
