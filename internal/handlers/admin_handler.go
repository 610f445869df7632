package handlers

import (
	"encoding/json"
	"net/http"

	"intake-crm/internal/models"
	"intake-crm/internal/services"
	"intake-crm/internal/utils"

	"github.com/go-playground/validator/v10"
)

type AdminHandler struct {
	auth     *services.AuthService
	validate *validator.Validate
}

func NewAdminHandler(auth *services.AuthService) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		validate: validator.New(),
	}
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *models.AdminUser `json:"user"`
}

// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/login [post]
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Erro ao decodificar requisição: "+err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Dados inválidos: "+err.Error()))
		return
	}

	admin, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		utils.LogWarning("Falha de login para %s: %v", req.Email, err)
		models.RespondWithJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Credenciais inválidas"))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Login efetuado", loginResponse{
		Token: token,
		User:  admin,
	}))
}

// @Summary Admin logout
// @Description Tokens are stateless; logout just acknowledges so the client discards its token.
// @Tags auth
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /auth/logout [post]
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Logout efetuado", nil))
}

// @Summary Current admin session
// @Tags auth
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/me [get]
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin := AdminFromContext(r.Context())
	if admin == nil {
		models.RespondWithJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Não autenticado"))
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Sessão ativa", admin))
}

// @Summary List admin users
// @Tags admins
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /admins [get]
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.auth.ListAdmins()
	if err != nil {
		utils.LogError("Erro ao listar admins: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Admins listados", admins))
}

// @Summary Create an admin user
// @Description The role is applied server-side; it cannot be chosen at signup.
// @Tags admins
// @Accept json
// @Produce json
// @Param request body models.CreateAdminRequest true "New admin"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /admins [post]
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Erro ao decodificar requisição: "+err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Dados inválidos: "+err.Error()))
		return
	}

	admin, err := h.auth.CreateAdmin(req.Email, req.Name, req.Password)
	if err != nil {
		utils.LogError("Erro ao criar admin %s: %v", req.Email, err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Admin criado", admin))
}
