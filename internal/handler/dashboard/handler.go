package dashboard

import (
	"bytes"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	dashboardService "github.com/heva-hub/assistant/backend/internal/service/dashboard"
	"github.com/heva-hub/assistant/backend/internal/service/export"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler 数据看板的HTTP处理器
type Handler struct {
	svc *dashboardService.Service
}

// New 创建数据看板处理器
func New(svc *dashboardService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册数据看板相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleSnapshot)
	r.Get("/dashboard/export", h.handleExport)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.Snapshot(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.WriteXLSX(r.Context(), &buf); err != nil {
		log.Printf("[dashboard] export failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	utils.RespondAttachment(w, xlsxContentType, export.DashboardXLSXFile, buf.Bytes())
}
