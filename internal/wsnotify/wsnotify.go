package wsnotify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// The admin panel keeps a socket open; the hub pushes pipeline and intake
// events so open boards can refetch instead of polling.

type WebSocketManager struct {
	clients map[*websocket.Conn]bool
	lock    sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func Upgrader() *websocket.Upgrader {
	return &upgrader
}

var Manager = &WebSocketManager{
	clients: make(map[*websocket.Conn]bool),
}

func (m *WebSocketManager) AddClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients[conn] = true
}

func (m *WebSocketManager) RemoveClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.clients, conn)
}

func (m *WebSocketManager) Broadcast(event interface{}) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			go m.RemoveClient(client)
		}
	}
}

type PipelinePayload struct {
	ProjectID  string `json:"projectId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	MovedAt    string `json:"movedAt"`
}

type IntakePayload struct {
	SessionID string `json:"sessionId"`
	LeadID    string `json:"leadId"`
	ProjectID string `json:"projectId"`
}

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func SendPipelineEvent(projectID, fromStatus, toStatus string) {
	Manager.Broadcast(Event{
		Type: "pipeline_status",
		Payload: PipelinePayload{
			ProjectID:  projectID,
			FromStatus: fromStatus,
			ToStatus:   toStatus,
			MovedAt:    time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
}

func SendIntakeCompletedEvent(sessionID, leadID, projectID string) {
	Manager.Broadcast(Event{
		Type: "intake_completed",
		Payload: IntakePayload{
			SessionID: sessionID,
			LeadID:    leadID,
			ProjectID: projectID,
		},
	})
}
