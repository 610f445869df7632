package services

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"intake-crm/internal/models"
	"intake-crm/internal/utils"
	"intake-crm/internal/wsnotify"
)

const (
	submitCooldown = 2 * time.Second
	leadCooldown   = 60 * time.Second
)

// TurnHandler runs one accepted user turn: it mutates the conversation and
// returns the agent messages produced. The scripted flow and the automation
// flow are the two implementations; one is picked at service construction and
// drives every conversation of this instance.
type TurnHandler interface {
	HandleTurn(conv *Conversation, input string) []*models.IntakeMessage
}

// IntakeService drives the qualification interview end to end.
type IntakeService struct {
	conversations *ConversationManager
	leads         models.LeadRepository
	sessions      models.SessionRepository
	messages      models.MessageRepository
	projects      models.ProjectRepository

	handler    TurnHandler
	submitGate *CooldownGate
	leadGate   *CooldownGate

	// thinking delay before each agent message, injectable for tests
	typingDelay func() time.Duration
	sleep       func(time.Duration)
}

// NewIntakeService wires the scripted flow, or the automation flow when a
// bridge is configured. The choice is final for the lifetime of the service.
func NewIntakeService(
	conversations *ConversationManager,
	leads models.LeadRepository,
	sessions models.SessionRepository,
	messages models.MessageRepository,
	projects models.ProjectRepository,
	bridge *AutomationBridge,
) *IntakeService {
	s := &IntakeService{
		conversations: conversations,
		leads:         leads,
		sessions:      sessions,
		messages:      messages,
		projects:      projects,
		submitGate:    NewCooldownGate(SystemClock(), submitCooldown),
		leadGate:      NewCooldownGate(SystemClock(), leadCooldown),
		typingDelay: func() time.Duration {
			return time.Second + time.Duration(rand.Int63n(int64(time.Second)))
		},
		sleep: time.Sleep,
	}

	if bridge != nil {
		s.handler = &automationFlow{svc: s, bridge: bridge}
	} else {
		s.handler = &scriptedFlow{svc: s}
	}

	return s
}

// Start opens a new conversation and emits the two greeting messages. The
// greetings exist before any session does; they are backfilled once the
// session is created at the phone step.
func (s *IntakeService) Start(language string) *Conversation {
	conv := s.conversations.Create(language)
	s.replayGreetings(conv)
	return conv
}

// Restart replays the greetings in a new language. Only allowed while the
// conversation is still waiting for the name; past that point the transcript
// is already material. Serialized with Submit through the busy flag: a
// restart racing a turn in flight is silently dropped.
func (s *IntakeService) Restart(conv *Conversation, language string) {
	if !conv.tryAcquire() {
		return
	}
	defer conv.release()

	if conv.Step != StepInit && conv.Step != StepName {
		return
	}
	conv.Language = language
	conv.Messages = nil
	s.replayGreetings(conv)
}

func (s *IntakeService) replayGreetings(conv *Conversation) {
	p := promptsFor(conv.Language)
	conv.append(models.SenderAgent, p.Init1)
	conv.append(models.SenderAgent, p.Init2)
	conv.Step = StepName
}

// Submit processes one user input. Empty input, a busy conversation, a
// finished conversation and a submission inside the cooldown window are all
// silent no-ops: no transcript entry, no state change.
func (s *IntakeService) Submit(conversationID, input string) ([]*models.IntakeMessage, bool, error) {
	conv, ok := s.conversations.Get(conversationID)
	if !ok {
		return nil, false, fmt.Errorf("conversation not found")
	}

	if !conv.tryAcquire() {
		return nil, false, nil
	}
	defer conv.release()

	// Every conversation field is read under the busy flag, Restart included.
	input = strings.TrimSpace(input)
	if input == "" || conv.Step == StepDone {
		return nil, conv.Step == StepDone, nil
	}

	if !s.submitGate.Allow(conv.ID) {
		utils.LogWarning("Rate limit atingido na conversa %s", conv.ID)
		return nil, false, nil
	}

	userMsg := conv.append(models.SenderUser, input)
	s.persistMessage(conv, userMsg)

	// One-shot abandoned-cart watcher: arms the first time contact info shows
	// up anywhere in the input, so an external process can follow up on
	// intakes that never finish.
	if !conv.WatcherArmed && utils.HasContactInfo(input) {
		conv.WatcherArmed = true
		utils.LogInfo("Watcher de carrinho abandonado armado para conversa %s", conv.ID)
	}

	agentMsgs := s.handler.HandleTurn(conv, input)

	turn := append([]*models.IntakeMessage{userMsg}, agentMsgs...)
	return turn, conv.Step == StepDone, nil
}

// reply simulates the agent thinking, appends the message and persists it
// best-effort.
func (s *IntakeService) reply(conv *Conversation, text string) *models.IntakeMessage {
	s.sleep(s.typingDelay())
	msg := conv.append(models.SenderAgent, text)
	s.persistMessage(conv, msg)
	return msg
}

// persistMessage is best-effort: before the session exists there is nowhere
// to write, and a failed write must never block the conversation.
func (s *IntakeService) persistMessage(conv *Conversation, msg *models.IntakeMessage) {
	if conv.SessionID == "" {
		return
	}
	if err := s.messages.Save(msg); err != nil {
		utils.LogError("Erro ao salvar mensagem da conversa %s: %v", conv.ID, err)
	}
}

// createLeadAndSession runs when the phone arrives: lead first, then session,
// then the whole transcript so far is backfilled in one batch. Failures are
// logged and swallowed; the conversation continues unpersisted.
func (s *IntakeService) createLeadAndSession(conv *Conversation) {
	lead := &models.Lead{
		Name:    conv.Lead.Name,
		Company: conv.Lead.Company,
		Role:    conv.Lead.Role,
		Email:   conv.Lead.Email,
		Phone:   conv.Lead.Phone,
	}
	if err := s.leads.Create(lead); err != nil {
		utils.LogError("Erro ao criar lead na conversa %s: %v", conv.ID, err)
		return
	}
	conv.Lead.ID = lead.ID

	session := &models.IntakeSession{LeadID: lead.ID}
	if err := s.sessions.Create(session); err != nil {
		utils.LogError("Erro ao criar sessão de intake na conversa %s: %v", conv.ID, err)
		return
	}
	conv.SessionID = session.ID

	if err := s.messages.SaveBatch(session.ID, conv.Messages); err != nil {
		utils.LogError("Erro ao salvar histórico da sessão %s: %v", session.ID, err)
	}
}

// completeIntake finalizes the session and auto-creates the pipeline record.
// The two writes are sequential, not transactional: a project failure is
// logged only and the session stays completed.
func (s *IntakeService) completeIntake(conv *Conversation) {
	if conv.SessionID == "" {
		return
	}

	session := &models.IntakeSession{
		ID:           conv.SessionID,
		LeadID:       conv.Lead.ID,
		Bottleneck:   conv.Lead.Bottleneck,
		Channel:      conv.Lead.Channel,
		Integrations: conv.Lead.Integrations,
		Volume:       conv.Lead.Volume,
		Timeline:     conv.Lead.Timeline,
		Summary: fmt.Sprintf(
			"Lead busca automação via %s para resolver: %s. Integrações: %s. Volume: %s. Prazo: %s.",
			conv.Lead.Channel, conv.Lead.Bottleneck, conv.Lead.Integrations,
			conv.Lead.Volume, conv.Lead.Timeline,
		),
	}
	if err := s.sessions.Complete(session); err != nil {
		utils.LogError("Erro ao finalizar sessão %s: %v", conv.SessionID, err)
		return
	}

	if conv.Lead.ID == "" {
		return
	}
	project := &models.Project{
		LeadID: conv.Lead.ID,
		Status: models.StatusLeadIn,
		Notes: fmt.Sprintf("Briefing recebido via Agente Inteligente. Gargalo: %s. Prazo: %s",
			conv.Lead.Bottleneck, conv.Lead.Timeline),
	}
	if err := s.projects.Create(project); err != nil {
		utils.LogError("Erro ao criar projeto no CRM para lead %s: %v", conv.Lead.ID, err)
		return
	}

	wsnotify.SendIntakeCompletedEvent(conv.SessionID, conv.Lead.ID, project.ID)
}

// scriptedFlow is the fixed linear interview.
type scriptedFlow struct {
	svc *IntakeService
}

func (f *scriptedFlow) HandleTurn(conv *Conversation, input string) []*models.IntakeMessage {
	s := f.svc
	p := promptsFor(conv.Language)

	switch conv.Step {
	case StepName:
		conv.Lead.Name = input
		conv.Step = StepCompany
		return []*models.IntakeMessage{
			s.reply(conv, fmt.Sprintf(p.AskCompany, utils.FirstName(input))),
		}

	case StepCompany:
		conv.Lead.Company = input
		conv.Step = StepRole
		return []*models.IntakeMessage{
			s.reply(conv, fmt.Sprintf(p.AskRole, input)),
		}

	case StepRole:
		conv.Lead.Role = input
		conv.Step = StepEmail
		return []*models.IntakeMessage{s.reply(conv, p.AskEmail)}

	case StepEmail:
		if !strings.Contains(input, "@") {
			// retry in place, the state does not advance
			return []*models.IntakeMessage{s.reply(conv, p.InvalidEmail)}
		}
		conv.Lead.Email = input
		conv.Step = StepPhone
		return []*models.IntakeMessage{s.reply(conv, p.AskPhone)}

	case StepPhone:
		conv.Lead.Phone = input
		conv.Step = StepBottleneck

		// Independent 60s cooldown guards duplicate lead creation when the
		// phone step is resubmitted; the interview continues either way.
		if s.leadGate.Allow(conv.ID) {
			s.createLeadAndSession(conv)
		} else {
			utils.LogWarning("Rate limit de criação de lead atingido na conversa %s", conv.ID)
		}
		return []*models.IntakeMessage{s.reply(conv, p.AskBottleneck)}

	case StepBottleneck:
		conv.Lead.Bottleneck = input
		conv.Step = StepChannel
		return []*models.IntakeMessage{s.reply(conv, p.AskChannel)}

	case StepChannel:
		conv.Lead.Channel = input
		conv.Step = StepIntegrations
		return []*models.IntakeMessage{s.reply(conv, p.AskIntegrations)}

	case StepIntegrations:
		conv.Lead.Integrations = input
		conv.Step = StepVolume
		return []*models.IntakeMessage{s.reply(conv, p.AskVolume)}

	case StepVolume:
		conv.Lead.Volume = input
		conv.Step = StepTimeline
		return []*models.IntakeMessage{s.reply(conv, p.AskTimeline)}

	case StepTimeline:
		conv.Lead.Timeline = input
		conv.Step = StepDone
		s.completeIntake(conv)
		return []*models.IntakeMessage{
			s.reply(conv, fmt.Sprintf(p.Done, utils.FirstName(conv.Lead.Name))),
			s.reply(conv, p.Goodbye),
		}
	}

	return nil
}

// automationFlow hands every turn to the external webhook. It fully replaces
// the scripted interview; an isComplete reply forces the conversation to DONE
// no matter which step it logically occupies.
type automationFlow struct {
	svc    *IntakeService
	bridge *AutomationBridge
}

func (f *automationFlow) HandleTurn(conv *Conversation, input string) []*models.IntakeMessage {
	s := f.svc

	reply, err := f.bridge.Ask(conv.SessionID, input, conv.Lead)
	if err != nil {
		utils.LogError("Erro ao conectar com o webhook de automação: %v", err)
		return []*models.IntakeMessage{s.reply(conv, promptsFor(conv.Language).Fallback)}
	}

	msg := s.reply(conv, reply.Reply)
	if reply.IsComplete {
		conv.Step = StepDone
	}
	return []*models.IntakeMessage{msg}
}

// StartOrRestart either opens a fresh conversation or, given a live id still
// at the name step, replays the greetings in the requested language.
func (s *IntakeService) StartOrRestart(conversationID, language string) *Conversation {
	if conversationID != "" {
		if conv, ok := s.conversations.Get(conversationID); ok {
			s.Restart(conv, language)
			return conv
		}
	}
	return s.Start(language)
}
