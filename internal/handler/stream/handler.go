package stream

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heva-hub/assistant/backend/internal/model/chat"
	chatService "github.com/heva-hub/assistant/backend/internal/service/chat"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

const DefaultHeartbeat = 15 * time.Second

// Handler manages session event streams via Server-Sent Events
type Handler struct {
	chatSvc   *chatService.Service
	heartbeat time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handler{chatSvc: chatSvc, heartbeat: heartbeat}
}

// RegisterRoutes 注册事件流路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/events", h.handleEvents)
}

// handleEvents streams message, state and voice events until the client
// disconnects or the session is deleted. The first event is a state snapshot.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	events, cancel, err := h.chatSvc.Subscribe(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, chatService.ErrSessionNotFound):
			utils.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, chatService.ErrClosed):
			utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer cancel()

	state, err := h.chatSvc.State(ctx, sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	log.Printf("[sse] opening event stream for session=%s", sessionID)
	defer log.Printf("[sse] closing event stream for session=%s", sessionID)

	snapshot := chat.Event{
		Type:      chat.EventState,
		SessionID: sessionID,
		State:     state,
		Composing: state.Composing(),
		Timestamp: time.Now().UTC(),
	}
	if err := utils.SendSSEEvent(w, flusher, string(snapshot.Type), snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = utils.SendSSEEvent(w, flusher, "closed", map[string]string{"sessionId": sessionID})
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(ev.Type), ev); err != nil {
				log.Printf("[sse] write failed for session=%s: %v", sessionID, err)
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
