package chat

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heva-hub/assistant/backend/internal/model/chat"
	chatService "github.com/heva-hub/assistant/backend/internal/service/chat"
	"github.com/heva-hub/assistant/backend/internal/service/export"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

// SessionCleaner releases per-session state held outside the chat service.
type SessionCleaner interface {
	Forget(sessionID string)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  *chatService.Service
	exporter *export.Exporter
	cleaners []SessionCleaner
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, exporter *export.Exporter, cleaners ...SessionCleaner) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		exporter: exporter,
		cleaners: cleaners,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Delete("/sessions/{sessionID}", h.handleDeleteSession)
	r.Get("/sessions/{sessionID}/messages", h.handleListMessages)
	r.Post("/sessions/{sessionID}/messages", h.handleSubmit)
	r.Get("/sessions/{sessionID}/state", h.handleState)
	r.Get("/sessions/{sessionID}/transcript", h.handleTranscript)
}

type sessionView struct {
	Session   chat.Session      `json:"session"`
	State     chat.ComposeState `json:"state"`
	Composing bool              `json:"composing"`
	Messages  []chat.Message    `json:"messages"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.respondSession(w, r, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.respondSession(w, r, http.StatusOK, session)
}

func (h *Handler) respondSession(w http.ResponseWriter, r *http.Request, status int, session chat.Session) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	state, err := h.chatSvc.State(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, status, sessionView{
		Session:   session,
		State:     state,
		Composing: state.Composing(),
		Messages:  messages,
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chatSvc.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	for _, c := range h.cleaners {
		c.Forget(sessionID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleSubmit 提交用户消息，回复将在延迟后通过事件流送达
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, accepted, err := h.chatSvc.Submit(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !accepted {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]any{
		"status":  "queued",
		"message": msg,
	})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.chatSvc.State(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"state":     state,
		"composing": state.Composing(),
	})
}

// handleTranscript 导出对话记录，format=txt|html
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"), export.FormatText, export.FormatText, export.FormatHTML)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	switch format {
	case export.FormatHTML:
		var buf bytes.Buffer
		if err := h.exporter.WriteTranscriptHTML(&buf, messages); err != nil {
			log.Printf("[chat] transcript html export failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "export failed")
			return
		}
		utils.RespondAttachment(w, "text/html; charset=utf-8", export.TranscriptHTMLFile, buf.Bytes())
	default:
		text := h.exporter.TranscriptText(messages)
		utils.RespondAttachment(w, "text/plain; charset=utf-8", export.TranscriptTextFile, []byte(text))
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrClosed):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("[chat] request failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
