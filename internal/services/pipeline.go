package services

import (
	"fmt"

	"intake-crm/internal/models"
	"intake-crm/internal/utils"
	"intake-crm/internal/wsnotify"
)

// PipelineService moves pipeline records through the fixed kanban stages.
type PipelineService struct {
	projects models.ProjectRepository
	leads    models.LeadRepository
	sessions models.SessionRepository
	messages models.MessageRepository
}

func NewPipelineService(
	projects models.ProjectRepository,
	leads models.LeadRepository,
	sessions models.SessionRepository,
	messages models.MessageRepository,
) *PipelineService {
	return &PipelineService{
		projects: projects,
		leads:    leads,
		sessions: sessions,
		messages: messages,
	}
}

func (s *PipelineService) GetBoard() ([]*models.Project, error) {
	return s.projects.GetWithLeads()
}

// Reassign moves a record to a new stage. The drop target may be a column id
// or the id of the card the drop landed on; both resolve to the same stage
// reassignment.
func (s *PipelineService) Reassign(projectID, target string) (string, error) {
	stage, err := s.resolveTarget(target)
	if err != nil {
		return "", err
	}

	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "", fmt.Errorf("project not found")
	}

	if err := s.projects.UpdateStatus(projectID, stage); err != nil {
		return "", err
	}

	utils.LogInfo("Projeto %s movido de %s para %s", projectID, project.Status, stage)
	wsnotify.SendPipelineEvent(projectID, project.Status, stage)
	return stage, nil
}

func (s *PipelineService) resolveTarget(target string) (string, error) {
	if models.IsValidStage(target) {
		return target, nil
	}

	// Not a stage id: the drop landed on another card, use its stage.
	other, err := s.projects.GetByID(target)
	if err != nil {
		return "", err
	}
	if other == nil {
		return "", fmt.Errorf("invalid stage target: %s", target)
	}
	utils.LogDebug("Alvo %s resolvido para o estágio %s", target, other.Status)
	return other.Status, nil
}

// Advance moves a record to the next stage in board order. Records in either
// closed stage or parked as abandoned-cart cannot advance.
func (s *PipelineService) Advance(projectID string) (string, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "", fmt.Errorf("project not found")
	}

	switch project.Status {
	case models.StatusClosedWon, models.StatusClosedLost, models.StatusAbandonedCart:
		return "", fmt.Errorf("project in stage %s cannot advance", project.Status)
	}

	next := ""
	for i, stage := range models.StageOrder {
		if stage == project.Status && i+1 < len(models.StageOrder) {
			next = models.StageOrder[i+1]
			break
		}
	}
	if next == "" {
		return "", fmt.Errorf("project in stage %s cannot advance", project.Status)
	}

	if err := s.projects.UpdateStatus(projectID, next); err != nil {
		return "", err
	}

	wsnotify.SendPipelineEvent(projectID, project.Status, next)
	return next, nil
}

func (s *PipelineService) UpdateDetails(projectID string, req *models.UpdateProjectRequest) error {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project not found")
	}

	project.EstimatedValue = req.EstimatedValue
	project.Probability = req.Probability
	project.ExpectedCloseDate = req.ExpectedCloseDate
	project.Notes = req.Notes

	return s.projects.UpdateDetails(project)
}

func (s *PipelineService) Delete(projectID string) error {
	return s.projects.Delete(projectID)
}

// SessionDetail is the drill-down view behind a lead row: the interview
// answers, the lead and the full transcript.
type SessionDetail struct {
	Session  *models.IntakeSession   `json:"session"`
	Lead     *models.Lead            `json:"lead"`
	Messages []*models.IntakeMessage `json:"messages"`
}

func (s *PipelineService) SessionTranscript(sessionID string) (*SessionDetail, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found")
	}

	lead, err := s.leads.GetByID(session.LeadID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.GetBySession(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionDetail{
		Session:  session,
		Lead:     lead,
		Messages: messages,
	}, nil
}

func (s *PipelineService) GetAbandonedCarts(page, limit int) ([]*models.Project, int, error) {
	return s.projects.GetByStatus(models.StatusAbandonedCart, page, limit)
}

// DashboardStats: total leads, records still in play (both closed stages
// excluded), completed interviews.
func (s *PipelineService) DashboardStats() (*models.DashboardStats, error) {
	totalLeads, err := s.leads.CountAll()
	if err != nil {
		return nil, err
	}
	activeProjects, err := s.projects.CountActive()
	if err != nil {
		return nil, err
	}
	completedIntakes, err := s.sessions.CountCompleted()
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalLeads:       totalLeads,
		ActiveProjects:   activeProjects,
		CompletedIntakes: completedIntakes,
	}, nil
}
