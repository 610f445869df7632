package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// AutomationBridge forwards a conversation turn to the external automation
// webhook and relays its reply. The contract is strict: anything other than
// {reply, isComplete} is an error and the caller degrades to the scripted
// fallback message.
type AutomationBridge struct {
	url    string
	client *http.Client
}

type automationRequest struct {
	SessionID string   `json:"sessionId"`
	Message   string   `json:"message"`
	LeadData  LeadData `json:"leadData"`
}

type AutomationReply struct {
	Reply      string `json:"reply"`
	IsComplete bool   `json:"isComplete"`
}

// NewAutomationBridge returns nil when no webhook is configured, which keeps
// the scripted flow in charge.
func NewAutomationBridge(webhookURL string) *AutomationBridge {
	if webhookURL == "" {
		return nil
	}
	// No client timeout: a hung endpoint keeps the typing indicator up until
	// the transport itself gives up.
	return &AutomationBridge{
		url:    webhookURL,
		client: &http.Client{},
	}
}

func (b *AutomationBridge) Ask(sessionID, message string, lead LeadData) (*AutomationReply, error) {
	if sessionID == "" {
		sessionID = "temp-session"
	}

	body, err := json.Marshal(automationRequest{
		SessionID: sessionID,
		Message:   message,
		LeadData:  lead,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding automation request: %v", err)
	}

	resp, err := b.client.Post(b.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error calling automation webhook: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("automation webhook returned status %d", resp.StatusCode)
	}

	var reply AutomationReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("error decoding automation reply: %v", err)
	}
	if reply.Reply == "" {
		return nil, fmt.Errorf("automation reply is empty")
	}

	return &reply, nil
}
