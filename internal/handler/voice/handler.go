package voice

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/heva-hub/assistant/backend/internal/service/chat"
	voiceService "github.com/heva-hub/assistant/backend/internal/service/voice"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

// Handler 语音输入的HTTP处理器
type Handler struct {
	voiceSvc *voiceService.Service
	ws       *WebSocketHandler
}

// New 创建语音处理器
func New(chatSvc *chatService.Service, voiceSvc *voiceService.Service) *Handler {
	return &Handler{
		voiceSvc: voiceSvc,
		ws:       NewWebSocketHandler(chatSvc, voiceSvc),
	}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/voice", h.handleStatus)
	r.Post("/sessions/{sessionID}/voice/toggle", h.handleToggle)
	h.ws.RegisterWebSocketRoutes(r)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.voiceSvc.Status(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	status, err := h.voiceSvc.Toggle(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, chatService.ErrClosed):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	log.Printf("[voice] request failed: %v", err)
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
