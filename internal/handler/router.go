package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	assistantHandler "github.com/heva-hub/assistant/backend/internal/handler/assistant"
	"github.com/heva-hub/assistant/backend/internal/handler/chat"
	dashboardHandler "github.com/heva-hub/assistant/backend/internal/handler/dashboard"
	opportunityHandler "github.com/heva-hub/assistant/backend/internal/handler/opportunity"
	settingsHandler "github.com/heva-hub/assistant/backend/internal/handler/settings"
	"github.com/heva-hub/assistant/backend/internal/handler/stream"
	"github.com/heva-hub/assistant/backend/internal/handler/voice"
	middlewarePkg "github.com/heva-hub/assistant/backend/internal/middleware"
	"github.com/heva-hub/assistant/backend/internal/model/assistant"
	"github.com/heva-hub/assistant/backend/internal/model/opportunity"
	chatService "github.com/heva-hub/assistant/backend/internal/service/chat"
	dashboardService "github.com/heva-hub/assistant/backend/internal/service/dashboard"
	"github.com/heva-hub/assistant/backend/internal/service/export"
	"github.com/heva-hub/assistant/backend/internal/service/reply"
	settingsService "github.com/heva-hub/assistant/backend/internal/service/settings"
	voiceService "github.com/heva-hub/assistant/backend/internal/service/voice"
	"github.com/heva-hub/assistant/backend/pkg/utils"
)

// Dependencies groups the services exposed over HTTP.
type Dependencies struct {
	Profile       assistant.Profile
	Replies       *reply.Service
	Chat          *chatService.Service
	Voice         *voiceService.Service
	Exporter      *export.Exporter
	Opportunities opportunity.Store
	Settings      *settingsService.Service
	Dashboard     *dashboardService.Service
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		assistantHandler.New(deps.Profile, deps.Replies).RegisterRoutes(api)

		// Voice state must be released together with the session.
		chat.New(deps.Chat, deps.Exporter, deps.Voice).RegisterRoutes(api)
		stream.New(deps.Chat, stream.DefaultHeartbeat).RegisterRoutes(api)
		voice.New(deps.Chat, deps.Voice).RegisterRoutes(api)

		opportunityHandler.New(deps.Opportunities, nil).RegisterRoutes(api)
		settingsHandler.New(deps.Settings).RegisterRoutes(api)
		dashboardHandler.New(deps.Dashboard).RegisterRoutes(api)
	})

	return r
}
