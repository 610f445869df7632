package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"intake-crm/config"
	"intake-crm/internal/models"
	"intake-crm/internal/services"
	"intake-crm/internal/utils"
)

type ChatHandler struct {
	intake *services.IntakeService
	cfg    *config.Config
	client *http.Client
}

func NewChatHandler(intake *services.IntakeService, cfg *config.Config) *ChatHandler {
	return &ChatHandler{
		intake: intake,
		cfg:    cfg,
		client: &http.Client{},
	}
}

type chatStartResponse struct {
	ConversationID string                  `json:"conversationId"`
	Messages       []*models.IntakeMessage `json:"messages"`
}

type chatTurnResponse struct {
	Messages []*models.IntakeMessage `json:"messages"`
	Done     bool                    `json:"done"`
}

// @Summary Start a widget conversation
// @Description Opens a conversation and returns the greeting messages. Passing an existing conversationId replays the greetings in the new language while the interview has not started.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.StartChatRequest true "Start details"
// @Success 200 {object} models.APIResponse
// @Router /chat/start [post]
func (h *ChatHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.StartChatRequest
		ConversationID string `json:"conversationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		utils.LogError("Erro ao decodificar requisição /chat/start: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Erro ao decodificar requisição: "+err.Error()))
		return
	}

	conv := h.intake.StartOrRestart(req.ConversationID, req.Language)

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Conversa iniciada", chatStartResponse{
		ConversationID: conv.ID,
		Messages:       conv.Messages,
	}))
}

// @Summary Submit a chat message
// @Description Runs one turn of the intake interview. Rate-limited and silently dropped turns return an empty message list.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatMessageRequest true "Message details"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /chat/message [post]
func (h *ChatHandler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Erro ao decodificar requisição /chat/message: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Erro ao decodificar requisição: "+err.Error()))
		return
	}

	messages, done, err := h.intake.Submit(req.ConversationID, req.Message)
	if err != nil {
		utils.LogError("Erro no /chat/message: %v", err)
		models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse(err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Turno processado", chatTurnResponse{
		Messages: messages,
		Done:     done,
	}))
}

// @Summary Proxy a turn to the automation upstream
// @Description Forwards the body verbatim to the automation upstream with an added Origin header and relays the JSON answer.
// @Tags chat
// @Accept json
// @Produce json
// @Success 200 {object} services.AutomationReply
// @Failure 500 {object} services.AutomationReply
// @Router /chat/proxy [post]
func (h *ChatHandler) ChatProxy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.proxyFallback(w)
		return
	}

	upstream, err := http.NewRequest(http.MethodPost, h.cfg.ProxyUpstreamURL, bytes.NewReader(body))
	if err != nil {
		h.proxyFallback(w)
		return
	}
	upstream.Header.Set("Content-Type", "application/json")
	upstream.Header.Set("Origin", h.cfg.ProxyOrigin)

	resp, err := h.client.Do(upstream)
	if err != nil {
		utils.LogError("Erro no proxy de automação: %v", err)
		h.proxyFallback(w)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil || !json.Valid(data) {
		utils.LogError("Resposta inválida do upstream de automação: %v", err)
		h.proxyFallback(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ChatHandler) proxyFallback(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(services.AutomationReply{
		Reply:      "Erro interno. Tente novamente.",
		IsComplete: false,
	})
}
