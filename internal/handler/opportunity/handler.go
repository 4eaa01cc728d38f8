package opportunity

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heva-hub/assistant/backend/internal/model/opportunity"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

// Handler 机会列表的HTTP处理器
type Handler struct {
	store opportunity.Store
	now   func() time.Time
}

// New 创建机会列表处理器
func New(store opportunity.Store, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{store: store, now: now}
}

// RegisterRoutes 注册机会列表相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/opportunities", h.handleSearch)
	r.Get("/opportunities/filters", h.handleFilters)
	r.Get("/opportunities/{id}", h.handleGet)
}

type listingView struct {
	opportunity.Opportunity
	DaysLeft *int `json:"daysLeft,omitempty"`
}

func (h *Handler) view(item opportunity.Opportunity) listingView {
	v := listingView{Opportunity: item}
	days, err := item.DaysUntilDeadline(h.now())
	if err != nil {
		log.Printf("[opportunity] %s has unparseable deadline %q: %v", item.ID, item.Deadline, err)
		return v
	}
	v.DaysLeft = &days
	return v
}

// handleSearch 支持 q 关键字与 type 过滤
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items := h.store.Search(query.Get("q"), query.Get("type"))

	out := make([]listingView, 0, len(items))
	for _, item := range items {
		out = append(out, h.view(item))
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, opportunity.Filters())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.FindByID(chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "opportunity not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.view(item))
}
