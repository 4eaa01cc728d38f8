package assistant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heva-hub/assistant/backend/internal/analysis/response"
	"github.com/heva-hub/assistant/backend/internal/model/assistant"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

// RuleSource exposes the active response rule table.
type RuleSource interface {
	Rules() []response.Rule
}

// Handler 助手资料的HTTP处理器
type Handler struct {
	profile assistant.Profile
	rules   RuleSource
}

// New 创建助手处理器
func New(profile assistant.Profile, rules RuleSource) *Handler {
	return &Handler{
		profile: profile,
		rules:   rules,
	}
}

// RegisterRoutes 注册助手相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assistant", h.handleProfile)
	r.Get("/assistant/rules", h.handleRules)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profile)
}

func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.rules.Rules())
}
