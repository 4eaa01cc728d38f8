package settings

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	model "github.com/heva-hub/assistant/backend/internal/model/settings"
	"github.com/heva-hub/assistant/backend/internal/service/export"
	settingsService "github.com/heva-hub/assistant/backend/internal/service/settings"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

// Handler 设置页面的HTTP处理器
type Handler struct {
	svc *settingsService.Service
}

// New 创建设置处理器
func New(svc *settingsService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册设置相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.handleGet)
	r.Put("/settings", h.handleUpdate)
	r.Post("/settings/reset", h.handleReset)
	r.Get("/settings/export", h.handleExport)
	r.Get("/settings/options", h.handleOptions)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.Get(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload model.Settings
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.svc.Update(r.Context(), payload)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSettings) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.Reset(r.Context()))
}

// handleExport 导出当前设置，format=json|toml
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"), export.FormatJSON, export.FormatJSON, export.FormatTOML)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	current := h.svc.Get(r.Context())
	switch format {
	case export.FormatTOML:
		body, err := export.SettingsTOML(current)
		if err != nil {
			log.Printf("[settings] toml export failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "export failed")
			return
		}
		utils.RespondAttachment(w, "application/toml", export.SettingsTOMLFile, body)
	default:
		body, err := export.SettingsJSON(current)
		if err != nil {
			log.Printf("[settings] json export failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "export failed")
			return
		}
		utils.RespondAttachment(w, "application/json", export.SettingsJSONFile, body)
	}
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string][]string{
		"theme":    model.Themes,
		"language": model.Languages,
		"timezone": model.Timezones,
		"currency": model.Currencies,
	})
}
