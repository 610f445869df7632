package services

import (
	"sync"
	"time"

	"intake-crm/internal/models"

	"github.com/google/uuid"
)

// Step is the position of a conversation inside the qualification interview.
// The order is strict: a turn never moves more than one step forward, except
// when the automation flow reports completion.
type Step int

const (
	StepInit Step = iota
	StepName
	StepCompany
	StepRole
	StepEmail
	StepPhone
	StepBottleneck
	StepChannel
	StepIntegrations
	StepVolume
	StepTimeline
	StepDone
)

// LeadData accumulates the answers collected so far. It doubles as the
// leadData object forwarded to the automation webhook.
type LeadData struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Company      string `json:"company,omitempty"`
	Role         string `json:"role,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Bottleneck   string `json:"bottleneck,omitempty"`
	Channel      string `json:"channel,omitempty"`
	Integrations string `json:"integrations,omitempty"`
	Volume       string `json:"volume,omitempty"`
	Timeline     string `json:"timeline,omitempty"`
}

// Conversation is the server-held state of one widget instance.
type Conversation struct {
	ID           string
	Language     string
	Step         Step
	Lead         LeadData
	SessionID    string
	Messages     []*models.IntakeMessage
	WatcherArmed bool

	mu   sync.Mutex
	busy bool
}

// tryAcquire flips the busy flag. While held, no other submission is
// processed for this conversation.
func (c *Conversation) tryAcquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Conversation) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Conversation) append(sender, text string) *models.IntakeMessage {
	msg := &models.IntakeMessage{
		ID:        uuid.NewString(),
		SessionID: c.SessionID,
		Sender:    sender,
		Message:   text,
		CreatedAt: time.Now().UTC(),
	}
	c.Messages = append(c.Messages, msg)
	return msg
}

// ConversationManager keeps every live conversation in memory, keyed by id.
type ConversationManager struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

func NewConversationManager() *ConversationManager {
	return &ConversationManager{
		conversations: make(map[string]*Conversation),
	}
}

func (m *ConversationManager) Create(language string) *Conversation {
	conv := &Conversation{
		ID:       uuid.NewString(),
		Language: language,
		Step:     StepInit,
	}

	m.mu.Lock()
	m.conversations[conv.ID] = conv
	m.mu.Unlock()

	return conv
}

func (m *ConversationManager) Get(id string) (*Conversation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.conversations[id]
	return conv, ok
}
