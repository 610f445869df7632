package services

import (
	"testing"

	"intake-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineEnv struct {
	svc      *PipelineService
	projects *fakeProjectRepo
	leads    *fakeLeadRepo
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
}

func newPipelineEnv() *pipelineEnv {
	env := &pipelineEnv{
		projects: &fakeProjectRepo{},
		leads:    &fakeLeadRepo{},
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{},
	}
	env.svc = NewPipelineService(env.projects, env.leads, env.sessions, env.messages)
	return env
}

func seedProject(repo *fakeProjectRepo, status string) *models.Project {
	p := &models.Project{LeadID: "lead-1", Status: status}
	repo.Create(p)
	return p
}

func TestReassignToColumnID(t *testing.T) {
	env := newPipelineEnv()
	p := seedProject(env.projects, models.StatusLeadIn)

	stage, err := env.svc.Reassign(p.ID, models.StatusQuoteSent)
	require.NoError(t, err)

	assert.Equal(t, models.StatusQuoteSent, stage)
	assert.Equal(t, models.StatusQuoteSent, p.Status)
}

func TestReassignDroppedOnAnotherCard(t *testing.T) {
	env := newPipelineEnv()
	moving := seedProject(env.projects, models.StatusLeadIn)
	target := seedProject(env.projects, models.StatusFollowUp)

	stage, err := env.svc.Reassign(moving.ID, target.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFollowUp, stage)
	assert.Equal(t, models.StatusFollowUp, moving.Status)
	assert.Equal(t, models.StatusFollowUp, target.Status, "target card untouched")
}

func TestReassignInvalidTarget(t *testing.T) {
	env := newPipelineEnv()
	p := seedProject(env.projects, models.StatusLeadIn)

	_, err := env.svc.Reassign(p.ID, "no-such-stage-or-card")
	assert.Error(t, err)
	assert.Equal(t, models.StatusLeadIn, p.Status)
}

func TestReassignUnknownProject(t *testing.T) {
	env := newPipelineEnv()
	_, err := env.svc.Reassign("ghost", models.StatusQuoteSent)
	assert.Error(t, err)
}

func TestAdvanceMovesOneStage(t *testing.T) {
	env := newPipelineEnv()
	p := seedProject(env.projects, models.StatusLeadIn)

	stage, err := env.svc.Advance(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparingQuote, stage)

	stage, err = env.svc.Advance(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteSent, stage)
}

func TestAdvanceRefusedForClosedStages(t *testing.T) {
	env := newPipelineEnv()

	for _, status := range []string{models.StatusClosedWon, models.StatusClosedLost, models.StatusAbandonedCart} {
		p := seedProject(env.projects, status)
		_, err := env.svc.Advance(p.ID)
		assert.Error(t, err, "stage %s must not advance", status)
		assert.Equal(t, status, p.Status)
	}
}

func TestDashboardStatsExcludesClosedStages(t *testing.T) {
	env := newPipelineEnv()

	env.leads.Create(&models.Lead{Name: "Maria"})
	env.leads.Create(&models.Lead{Name: "João"})

	seedProject(env.projects, models.StatusLeadIn)
	seedProject(env.projects, models.StatusFollowUp)
	seedProject(env.projects, models.StatusAbandonedCart)
	seedProject(env.projects, models.StatusClosedWon)
	seedProject(env.projects, models.StatusClosedLost)

	s := &models.IntakeSession{LeadID: "lead-1"}
	env.sessions.Create(s)
	env.sessions.Complete(s)

	stats, err := env.svc.DashboardStats()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalLeads)
	assert.Equal(t, 3, stats.ActiveProjects, "abandoned-cart counts, closed stages do not")
	assert.Equal(t, 1, stats.CompletedIntakes)
}

func TestGetAbandonedCarts(t *testing.T) {
	env := newPipelineEnv()
	seedProject(env.projects, models.StatusLeadIn)
	abandoned := seedProject(env.projects, models.StatusAbandonedCart)

	carts, total, err := env.svc.GetAbandonedCarts(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, carts, 1)
	assert.Equal(t, abandoned.ID, carts[0].ID)
}

// ==========================
// Session Transcript
// ==========================

func TestSessionTranscript(t *testing.T) {
	env := newPipelineEnv()

	lead := &models.Lead{Name: "Maria Silva"}
	require.NoError(t, env.leads.Create(lead))

	session := &models.IntakeSession{LeadID: lead.ID}
	require.NoError(t, env.sessions.Create(session))

	transcript := []*models.IntakeMessage{
		{Sender: models.SenderAgent, Message: "Olá!"},
		{Sender: models.SenderUser, Message: "Maria Silva"},
	}
	require.NoError(t, env.messages.SaveBatch(session.ID, transcript))

	detail, err := env.svc.SessionTranscript(session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, detail.Session.ID)
	require.NotNil(t, detail.Lead)
	assert.Equal(t, "Maria Silva", detail.Lead.Name)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "Maria Silva", detail.Messages[1].Message)
}

func TestSessionTranscriptUnknownSession(t *testing.T) {
	env := newPipelineEnv()
	_, err := env.svc.SessionTranscript("ghost")
	assert.Error(t, err)
}
