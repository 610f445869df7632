package services

import (
	"fmt"
	"testing"

	"intake-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminRepo struct {
	admins []*models.AdminUser
}

func (r *fakeAdminRepo) Create(admin *models.AdminUser) error {
	admin.ID = fmt.Sprintf("admin-%d", len(r.admins)+1)
	r.admins = append(r.admins, admin)
	return nil
}

func (r *fakeAdminRepo) GetByID(id string) (*models.AdminUser, error) {
	for _, a := range r.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAdminRepo) GetByEmail(email string) (*models.AdminUser, error) {
	for _, a := range r.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAdminRepo) GetAll() ([]*models.AdminUser, error) { return r.admins, nil }

func TestCreateAdminForcesRole(t *testing.T) {
	svc := NewAuthService(&fakeAdminRepo{}, "test-secret")

	admin, err := svc.CreateAdmin("ana@aiforpurpose.com", "Ana", "s3nh4segura")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEqual(t, "s3nh4segura", admin.PasswordHash)
}

func TestCreateAdminRejectsDuplicateEmail(t *testing.T) {
	svc := NewAuthService(&fakeAdminRepo{}, "test-secret")
	_, err := svc.CreateAdmin("ana@aiforpurpose.com", "Ana", "s3nh4segura")
	require.NoError(t, err)

	_, err = svc.CreateAdmin("ana@aiforpurpose.com", "Outra Ana", "outrasenha")
	assert.Error(t, err)
}

func TestLoginRoundTrip(t *testing.T) {
	repo := &fakeAdminRepo{}
	svc := NewAuthService(repo, "test-secret")
	created, err := svc.CreateAdmin("ana@aiforpurpose.com", "Ana", "s3nh4segura")
	require.NoError(t, err)

	admin, token, err := svc.Login("ana@aiforpurpose.com", "s3nh4segura")
	require.NoError(t, err)
	assert.Equal(t, created.ID, admin.ID)
	require.NotEmpty(t, token)

	current, err := svc.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, current.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(&fakeAdminRepo{}, "test-secret")
	svc.CreateAdmin("ana@aiforpurpose.com", "Ana", "s3nh4segura")

	_, _, err := svc.Login("ana@aiforpurpose.com", "errada")
	assert.Error(t, err)

	_, _, err = svc.Login("ninguem@aiforpurpose.com", "s3nh4segura")
	assert.Error(t, err)
}

func TestCurrentUserRejectsGarbageToken(t *testing.T) {
	svc := NewAuthService(&fakeAdminRepo{}, "test-secret")
	_, err := svc.CurrentUser("not-a-jwt")
	assert.Error(t, err)
}

func TestCurrentUserRejectsForeignSecret(t *testing.T) {
	repo := &fakeAdminRepo{}
	issuer := NewAuthService(repo, "secret-a")
	issuer.CreateAdmin("ana@aiforpurpose.com", "Ana", "s3nh4segura")
	_, token, err := issuer.Login("ana@aiforpurpose.com", "s3nh4segura")
	require.NoError(t, err)

	verifier := NewAuthService(repo, "secret-b")
	_, err = verifier.CurrentUser(token)
	assert.Error(t, err)
}
