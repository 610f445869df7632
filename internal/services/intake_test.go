package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"intake-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeLeadRepo struct {
	leads      []*models.Lead
	failCreate bool
}

func (r *fakeLeadRepo) Create(lead *models.Lead) error {
	if r.failCreate {
		return fmt.Errorf("lead store unavailable")
	}
	lead.ID = fmt.Sprintf("lead-%d", len(r.leads)+1)
	lead.CreatedAt = time.Now().UTC()
	r.leads = append(r.leads, lead)
	return nil
}

func (r *fakeLeadRepo) GetByID(id string) (*models.Lead, error) {
	for _, l := range r.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) GetWithSessions(page, limit int) ([]*models.LeadWithSession, int, error) {
	return nil, len(r.leads), nil
}

func (r *fakeLeadRepo) CountAll() (int, error) { return len(r.leads), nil }

type fakeSessionRepo struct {
	sessions  []*models.IntakeSession
	completed map[string]*models.IntakeSession
}

func (r *fakeSessionRepo) Create(session *models.IntakeSession) error {
	session.ID = fmt.Sprintf("session-%d", len(r.sessions)+1)
	session.StartedAt = time.Now().UTC()
	r.sessions = append(r.sessions, session)
	return nil
}

func (r *fakeSessionRepo) GetByID(id string) (*models.IntakeSession, error) {
	for _, s := range r.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) Complete(session *models.IntakeSession) error {
	if r.completed == nil {
		r.completed = make(map[string]*models.IntakeSession)
	}
	now := time.Now().UTC()
	session.CompletedAt = &now
	r.completed[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) CountCompleted() (int, error) { return len(r.completed), nil }

type fakeMessageRepo struct {
	saved   []*models.IntakeMessage
	batches map[string][]*models.IntakeMessage
}

func (r *fakeMessageRepo) Save(message *models.IntakeMessage) error {
	r.saved = append(r.saved, message)
	return nil
}

func (r *fakeMessageRepo) SaveBatch(sessionID string, messages []*models.IntakeMessage) error {
	if r.batches == nil {
		r.batches = make(map[string][]*models.IntakeMessage)
	}
	r.batches[sessionID] = append([]*models.IntakeMessage{}, messages...)
	return nil
}

func (r *fakeMessageRepo) GetBySession(sessionID string) ([]*models.IntakeMessage, error) {
	return r.batches[sessionID], nil
}

type fakeProjectRepo struct {
	projects   []*models.Project
	failCreate bool
}

func (r *fakeProjectRepo) Create(project *models.Project) error {
	if r.failCreate {
		return fmt.Errorf("project store unavailable")
	}
	project.ID = fmt.Sprintf("project-%d", len(r.projects)+1)
	r.projects = append(r.projects, project)
	return nil
}

func (r *fakeProjectRepo) GetByID(id string) (*models.Project, error) {
	for _, p := range r.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepo) GetWithLeads() ([]*models.Project, error) { return r.projects, nil }

func (r *fakeProjectRepo) GetByStatus(status string, page, limit int) ([]*models.Project, int, error) {
	var out []*models.Project
	for _, p := range r.projects {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *fakeProjectRepo) UpdateStatus(projectID, status string) error {
	p, _ := r.GetByID(projectID)
	if p == nil {
		return fmt.Errorf("project not found")
	}
	p.Status = status
	return nil
}

func (r *fakeProjectRepo) UpdateDetails(project *models.Project) error { return nil }

func (r *fakeProjectRepo) Delete(projectID string) error {
	for i, p := range r.projects {
		if p.ID == projectID {
			r.projects = append(r.projects[:i], r.projects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("project not found")
}

func (r *fakeProjectRepo) CountActive() (int, error) {
	count := 0
	for _, p := range r.projects {
		if p.Status != models.StatusClosedWon && p.Status != models.StatusClosedLost {
			count++
		}
	}
	return count, nil
}

type testEnv struct {
	svc      *IntakeService
	clock    *fakeClock
	leads    *fakeLeadRepo
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
	projects *fakeProjectRepo
}

func newTestEnv(bridge *AutomationBridge) *testEnv {
	env := &testEnv{
		clock:    newFakeClock(),
		leads:    &fakeLeadRepo{},
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{},
		projects: &fakeProjectRepo{},
	}

	env.svc = NewIntakeService(
		NewConversationManager(),
		env.leads, env.sessions, env.messages, env.projects,
		bridge,
	)

	// deterministic time and no thinking delay
	env.svc.submitGate = NewCooldownGate(env.clock, submitCooldown)
	env.svc.leadGate = NewCooldownGate(env.clock, leadCooldown)
	env.svc.typingDelay = func() time.Duration { return 0 }
	env.svc.sleep = func(time.Duration) {}

	return env
}

// submit advances the fake clock past the 2s cooldown first, so consecutive
// calls are not rate limited unless a test wants them to be.
func (env *testEnv) submit(t *testing.T, conv *Conversation, input string) ([]*models.IntakeMessage, bool) {
	t.Helper()
	env.clock.Advance(3 * time.Second)
	msgs, done, err := env.svc.Submit(conv.ID, input)
	require.NoError(t, err)
	return msgs, done
}

// runUntilPhone walks the happy path up to (and including) the phone answer.
func (env *testEnv) runUntilPhone(t *testing.T, conv *Conversation) {
	t.Helper()
	env.submit(t, conv, "Maria Silva")
	env.submit(t, conv, "Acme Ltda")
	env.submit(t, conv, "Diretora de Operações")
	env.submit(t, conv, "maria@x")
	env.submit(t, conv, "11999998888")
}

// ==========================
// Scripted Flow Tests
// ==========================

func TestStartEmitsTwoGreetings(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	assert.Equal(t, StepName, conv.Step)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, models.SenderAgent, conv.Messages[0].Sender)
	assert.Equal(t, models.SenderAgent, conv.Messages[1].Sender)
}

func TestRestartReplaysGreetingsInNewLanguage(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	env.svc.Restart(conv, "en")

	assert.Equal(t, "en", conv.Language)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, catalogs["en"].Init1, conv.Messages[0].Message)
}

func TestRestartIgnoredOnceInterviewStarted(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")
	env.submit(t, conv, "Maria Silva")

	before := len(conv.Messages)
	env.svc.Restart(conv, "en")

	assert.Equal(t, "pt", conv.Language)
	assert.Len(t, conv.Messages, before)
	assert.Equal(t, StepCompany, conv.Step)
}

func TestRestartRacingSubmitNeverCorruptsState(t *testing.T) {
	env := newTestEnv(nil)

	for i := 0; i < 100; i++ {
		conv := env.svc.Start("pt")
		env.clock.Advance(3 * time.Second)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			env.svc.Submit(conv.ID, "Maria Silva")
		}()
		go func() {
			defer wg.Done()
			env.svc.Restart(conv, "en")
		}()
		wg.Wait()

		// whichever side lost the busy flag was dropped whole; the
		// conversation is never left half-reset
		switch conv.Step {
		case StepName:
			// the restart won the flag and the submit was dropped
			require.Len(t, conv.Messages, 2)
		case StepCompany:
			assert.Equal(t, "Maria Silva", conv.Lead.Name)
			require.Len(t, conv.Messages, 4)
		default:
			t.Fatalf("unexpected step %v", conv.Step)
		}
	}
}

func TestEachStepAdvancesExactlyOne(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	inputs := []struct {
		input string
		next  Step
	}{
		{"Maria Silva", StepCompany},
		{"Acme Ltda", StepRole},
		{"Diretora", StepEmail},
		{"maria@x", StepPhone},
		{"11999998888", StepBottleneck},
		{"Atendimento manual demais", StepChannel},
		{"WhatsApp", StepIntegrations},
		{"CRM e planilhas", StepVolume},
		{"2000 por mês", StepTimeline},
	}

	for _, tc := range inputs {
		msgs, done := env.submit(t, conv, tc.input)
		assert.False(t, done)
		assert.Equal(t, tc.next, conv.Step, "input %q", tc.input)
		// exactly one user message plus one agent message per turn
		require.Len(t, msgs, 2, "input %q", tc.input)
		assert.Equal(t, models.SenderUser, msgs[0].Sender)
		assert.Equal(t, models.SenderAgent, msgs[1].Sender)
	}
}

func TestCompanyPromptReferencesFirstName(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	msgs, _ := env.submit(t, conv, "Maria Silva")
	assert.Contains(t, msgs[1].Message, "Maria")
	assert.NotContains(t, msgs[1].Message, "Silva")
}

func TestEmailWithoutAtNeverAdvances(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")
	env.submit(t, conv, "Maria Silva")
	env.submit(t, conv, "Acme")
	env.submit(t, conv, "Diretora")

	msgs, _ := env.submit(t, conv, "maria.example.com")
	assert.Equal(t, StepEmail, conv.Step)
	assert.Equal(t, catalogs["pt"].InvalidEmail, msgs[1].Message)
	assert.Empty(t, conv.Lead.Email)

	env.submit(t, conv, "sem arroba de novo")
	assert.Equal(t, StepEmail, conv.Step)

	env.submit(t, conv, "maria@x")
	assert.Equal(t, StepPhone, conv.Step)
	assert.Equal(t, "maria@x", conv.Lead.Email)
}

func TestSubmitCooldownSilentlyDrops(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	env.submit(t, conv, "Maria Silva")
	transcript := len(conv.Messages)

	// one second later: inside the 2s window
	env.clock.Advance(time.Second)
	msgs, done, err := env.svc.Submit(conv.ID, "Acme Ltda")
	require.NoError(t, err)

	assert.Nil(t, msgs)
	assert.False(t, done)
	assert.Equal(t, StepCompany, conv.Step)
	assert.Len(t, conv.Messages, transcript)
}

func TestEmptyInputIsNoOp(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	env.clock.Advance(3 * time.Second)
	msgs, _, err := env.svc.Submit(conv.ID, "   ")
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.Equal(t, StepName, conv.Step)
}

func TestBusyConversationDropsSubmit(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	require.True(t, conv.tryAcquire())
	env.clock.Advance(3 * time.Second)
	msgs, _, err := env.svc.Submit(conv.ID, "Maria Silva")
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.Equal(t, StepName, conv.Step)
	conv.release()
}

func TestUnknownConversation(t *testing.T) {
	env := newTestEnv(nil)
	_, _, err := env.svc.Submit("nope", "hello")
	assert.Error(t, err)
}

// ==========================
// Lead / Session Creation
// ==========================

func TestPhoneCreatesLeadSessionAndBackfills(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")
	env.runUntilPhone(t, conv)

	require.Len(t, env.leads.leads, 1)
	lead := env.leads.leads[0]
	assert.Equal(t, "Maria Silva", lead.Name)
	assert.Equal(t, "Acme Ltda", lead.Company)
	assert.Equal(t, "maria@x", lead.Email)
	assert.Equal(t, "11999998888", lead.Phone)

	require.Len(t, env.sessions.sessions, 1)
	session := env.sessions.sessions[0]
	assert.Equal(t, lead.ID, session.LeadID)
	assert.Equal(t, session.ID, conv.SessionID)
	assert.Equal(t, StepBottleneck, conv.Step)

	// every prior message, greetings included, plus the phone input itself
	batch := env.messages.batches[session.ID]
	require.NotEmpty(t, batch)
	assert.Equal(t, catalogs["pt"].Init1, batch[0].Message)
	assert.Equal(t, "11999998888", batch[len(batch)-1].Message)
}

func TestLeadCooldownPreventsDuplicate(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")
	env.runUntilPhone(t, conv)
	require.Len(t, env.leads.leads, 1)

	// force the phone step again within the 60s lead window
	conv.Step = StepPhone
	msgs, _ := env.submit(t, conv, "11888887777")

	assert.Len(t, env.leads.leads, 1, "no second lead inside the cooldown")
	assert.Equal(t, StepBottleneck, conv.Step, "flow still advances")
	assert.Equal(t, catalogs["pt"].AskBottleneck, msgs[1].Message)
}

func TestLeadCreationFailureDegradesSilently(t *testing.T) {
	env := newTestEnv(nil)
	env.leads.failCreate = true
	conv := env.svc.Start("pt")
	env.runUntilPhone(t, conv)

	assert.Empty(t, conv.SessionID)
	assert.Equal(t, StepBottleneck, conv.Step, "conversation continues unpersisted")
	assert.Empty(t, env.messages.saved)
}

// ==========================
// Completion
// ==========================

func runFullInterview(t *testing.T, env *testEnv, conv *Conversation) []*models.IntakeMessage {
	t.Helper()
	env.runUntilPhone(t, conv)
	env.submit(t, conv, "Atendimento manual")
	env.submit(t, conv, "WhatsApp")
	env.submit(t, conv, "CRM e ERP")
	env.submit(t, conv, "2000 por mês")
	msgs, done := env.submit(t, conv, "3 meses")
	require.True(t, done)
	return msgs
}

func TestTimelineCompletesWithTwoClosingMessages(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")
	msgs := runFullInterview(t, env, conv)

	assert.Equal(t, StepDone, conv.Step)
	require.Len(t, msgs, 3) // user input + completion + goodbye
	assert.Equal(t, models.SenderAgent, msgs[1].Sender)
	assert.Equal(t, models.SenderAgent, msgs[2].Sender)
	assert.Equal(t, catalogs["pt"].Goodbye, msgs[2].Message)

	session := env.sessions.completed[conv.SessionID]
	require.NotNil(t, session)
	assert.NotNil(t, session.CompletedAt)
	assert.Equal(t, "WhatsApp", session.Channel)
	assert.Contains(t, session.Summary, "Atendimento manual")
	assert.Contains(t, session.Summary, "3 meses")

	require.Len(t, env.projects.projects, 1)
	project := env.projects.projects[0]
	assert.Equal(t, models.StatusLeadIn, project.Status)
	assert.Equal(t, conv.Lead.ID, project.LeadID)
}

func TestSubmitAfterDoneIsNoOp(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")
	runFullInterview(t, env, conv)
	transcript := len(conv.Messages)

	env.clock.Advance(time.Minute)
	msgs, done, err := env.svc.Submit(conv.ID, "mais uma coisa")
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.True(t, done)
	assert.Len(t, conv.Messages, transcript)
}

func TestProjectFailureDoesNotUndoCompletion(t *testing.T) {
	env := newTestEnv(nil)
	env.projects.failCreate = true
	conv := env.svc.Start("pt")
	runFullInterview(t, env, conv)

	assert.Equal(t, StepDone, conv.Step)
	assert.NotNil(t, env.sessions.completed[conv.SessionID])
	assert.Empty(t, env.projects.projects)
}

// ==========================
// Watcher
// ==========================

func TestWatcherArmsOnceOnContactInfo(t *testing.T) {
	env := newTestEnv(nil)
	conv := env.svc.Start("pt")

	env.submit(t, conv, "Maria Silva")
	assert.False(t, conv.WatcherArmed)

	env.submit(t, conv, "Acme, me chama no (11) 99999-8888")
	assert.True(t, conv.WatcherArmed)

	env.submit(t, conv, "Diretora")
	assert.True(t, conv.WatcherArmed)
}
