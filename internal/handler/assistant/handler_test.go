package assistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/heva-hub/assistant/backend/internal/analysis/response"
	"github.com/heva-hub/assistant/backend/internal/model/assistant"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(assistant.Default().WithName("Helper"), response.Default()).RegisterRoutes(r)
	return r
}

func TestProfile(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/assistant", nil)
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var profile assistant.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Name != "Helper" || len(profile.Suggestions) != 3 {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestRules(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/assistant/rules", nil)
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)

	var rules []response.Rule
	if err := json.NewDecoder(resp.Body).Decode(&rules); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rules) == 0 || rules[0].Category != "funding" || !rules[len(rules)-1].CatchAll() {
		t.Fatalf("unexpected rule table %+v", rules)
	}
}
