package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"intake-crm/internal/models"
	"intake-crm/internal/services"
	"intake-crm/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type PipelineHandler struct {
	pipeline *services.PipelineService
	leads    models.LeadRepository
	validate *validator.Validate
}

func NewPipelineHandler(pipeline *services.PipelineService, leads models.LeadRepository) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		leads:    leads,
		validate: validator.New(),
	}
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// @Summary Kanban board
// @Tags pipeline
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /projects [get]
func (h *PipelineHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.pipeline.GetBoard()
	if err != nil {
		utils.LogError("Erro ao buscar projetos: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Projetos listados", projects))
}

// @Summary Reassign a project stage
// @Description Target may be a stage id or the id of the card the drop landed on.
// @Tags pipeline
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param request body models.UpdateStatusRequest true "Drop target"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /projects/{id}/status [put]
func (h *PipelineHandler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Erro ao decodificar requisição: "+err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Dados inválidos: "+err.Error()))
		return
	}

	stage, err := h.pipeline.Reassign(projectID, req.Target)
	if err != nil {
		utils.LogError("Erro ao mover projeto %s: %v", projectID, err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Estágio atualizado", map[string]string{
		"projectId": projectID,
		"status":    stage,
	}))
}

// @Summary Advance a project to the next stage
// @Tags pipeline
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /projects/{id}/advance [post]
func (h *PipelineHandler) AdvanceProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	stage, err := h.pipeline.Advance(projectID)
	if err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Estágio atualizado", map[string]string{
		"projectId": projectID,
		"status":    stage,
	}))
}

// @Summary Edit deal fields
// @Tags pipeline
// @Accept json
// @Produce json
// @Param id path string true "Project id"
// @Param request body models.UpdateProjectRequest true "Deal fields"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /projects/{id} [put]
func (h *PipelineHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	var req models.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Erro ao decodificar requisição: "+err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Dados inválidos: "+err.Error()))
		return
	}

	if err := h.pipeline.UpdateDetails(projectID, &req); err != nil {
		utils.LogError("Erro ao atualizar projeto %s: %v", projectID, err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Projeto atualizado", nil))
}

// @Summary Delete a project
// @Description Destructive. The client must send confirm=true, mirroring the two-step confirm in the UI.
// @Tags pipeline
// @Produce json
// @Param id path string true "Project id"
// @Param confirm query bool true "Must be true"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /projects/{id} [delete]
func (h *PipelineHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	if r.URL.Query().Get("confirm") != "true" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Exclusão requer confirmação explícita (confirm=true)"))
		return
	}

	if err := h.pipeline.Delete(projectID); err != nil {
		utils.LogError("Erro ao excluir projeto %s: %v", projectID, err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Projeto excluído", nil))
}

// @Summary Intake session transcript
// @Description Session answers, lead and full transcript behind a lead row.
// @Tags leads
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /sessions/{id}/transcript [get]
func (h *PipelineHandler) GetSessionTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	detail, err := h.pipeline.SessionTranscript(sessionID)
	if err != nil {
		utils.LogError("Erro ao buscar transcrição da sessão %s: %v", sessionID, err)
		models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Transcrição da sessão", detail))
}

// @Summary Leads with their intake sessions
// @Tags leads
// @Produce json
// @Param page query int false "1-based page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /leads [get]
func (h *PipelineHandler) GetLeads(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	leads, total, err := h.leads.GetWithSessions(page, limit)
	if err != nil {
		utils.LogError("Erro ao buscar leads: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithPage(w, &models.PagedResponse{
		Data:       leads,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

// @Summary Export leads as CSV
// @Tags leads
// @Produce text/csv
// @Success 200 {string} string
// @Router /leads/export [get]
func (h *PipelineHandler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	// one big page; the lead base is small
	leads, _, err := h.leads.GetWithSessions(1, 10000)
	if err != nil {
		utils.LogError("Erro ao exportar leads: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)

	writer := csv.NewWriter(w)
	writer.Write([]string{"id", "name", "company", "role", "email", "phone", "source", "status", "created_at"})
	for _, lead := range leads {
		writer.Write([]string{
			lead.ID, lead.Name, lead.Company, lead.Role, lead.Email,
			lead.Phone, lead.Source, lead.Status, lead.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writer.Flush()
}

// @Summary Abandoned carts
// @Description Pipeline records parked in the abandoned-cart stage by the external watcher.
// @Tags pipeline
// @Produce json
// @Param page query int false "1-based page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PagedResponse
// @Router /abandoned-carts [get]
func (h *PipelineHandler) GetAbandonedCarts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	projects, total, err := h.pipeline.GetAbandonedCarts(page, limit)
	if err != nil {
		utils.LogError("Erro ao buscar carrinhos abandonados: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithPage(w, &models.PagedResponse{
		Data:       projects,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

// @Summary Dashboard counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /dashboard/stats [get]
func (h *PipelineHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.pipeline.DashboardStats()
	if err != nil {
		utils.LogError("Erro ao buscar estatísticas: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Estatísticas", stats))
}
