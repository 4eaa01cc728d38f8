package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/heva-hub/assistant/backend/internal/model/chat"
	chatservice "github.com/heva-hub/assistant/backend/internal/service/chat"
	"github.com/heva-hub/assistant/backend/internal/service/schedule"
	voiceservice "github.com/heva-hub/assistant/backend/internal/service/voice"
)

type canned struct{}

func (canned) Respond(_ context.Context, _ string) (string, error) {
	return "noted", nil
}

type fixture struct {
	router  *chi.Mux
	chat    *chatservice.Service
	voice   *voiceservice.Service
	clock   *schedule.Manual
	session chat.Session
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := schedule.NewManual()
	chatSvc := chatservice.NewService(canned{}, chatservice.Options{Scheduler: clock})
	voiceSvc := voiceservice.NewService(chatSvc, voiceservice.Options{Scheduler: clock})
	t.Cleanup(func() {
		voiceSvc.Close()
		chatSvc.Close()
	})

	r := chi.NewRouter()
	New(chatSvc, voiceSvc).RegisterRoutes(r)

	session, err := chatSvc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	return fixture{router: r, chat: chatSvc, voice: voiceSvc, clock: clock, session: session}
}

func decodeStatus(t *testing.T, resp *httptest.ResponseRecorder) voiceservice.Status {
	t.Helper()
	var status voiceservice.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return status
}

func TestToggleAndStatus(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+f.session.ID+"/voice/toggle", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if status := decodeStatus(t, resp); !status.Listening {
		t.Fatal("expected listening after toggle")
	}

	f.clock.Advance(voiceservice.DefaultCaptureDelay)

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+f.session.ID+"/voice", nil)
	resp = httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	status := decodeStatus(t, resp)
	if status.Listening || status.Draft != voiceservice.DefaultUtterance {
		t.Fatalf("unexpected status after capture: %+v", status)
	}
}

func TestToggleUnknownSession(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/sessions/missing/voice/toggle", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + sessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

// readUntil skips acks and events of other types until one matching want
// arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want func(frame, chat.Event) bool) chat.Event {
	t.Helper()
	for i := 0; i < 10; i++ {
		f := readFrame(t, conn)
		if f.Type != "event" {
			continue
		}
		var ev chat.Event
		if err := json.Unmarshal(f.Data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if want(f, ev) {
			return ev
		}
	}
	t.Fatal("expected event never arrived")
	return chat.Event{}
}

func TestWebSocketSubmitAndReply(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn := dial(t, srv, f.session.ID)
	if hello := readFrame(t, conn); hello.Type != "connected" {
		t.Fatalf("expected connected frame, got %s", hello.Type)
	}

	if err := conn.WriteJSON(map[string]any{"type": "submit", "data": map[string]string{"text": "hello"}}); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	userEvent := readUntil(t, conn, func(_ frame, ev chat.Event) bool {
		return ev.Type == chat.EventMessage
	})
	if userEvent.Message.Sender != chat.SenderUser || userEvent.Message.Text != "hello" {
		t.Fatalf("unexpected first message %+v", userEvent.Message)
	}
	readUntil(t, conn, func(_ frame, ev chat.Event) bool {
		return ev.Type == chat.EventState && ev.Composing
	})

	f.clock.Advance(chatservice.DefaultReplyDelay)

	reply := readUntil(t, conn, func(_ frame, ev chat.Event) bool {
		return ev.Type == chat.EventMessage && ev.Message != nil && ev.Message.Sender == chat.SenderAssistant
	})
	if reply.Message.Text != "noted" {
		t.Fatalf("unexpected reply %q", reply.Message.Text)
	}
}

func TestWebSocketVoiceToggle(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn := dial(t, srv, f.session.ID)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "voice_toggle"}); err != nil {
		t.Fatalf("write toggle: %v", err)
	}
	readUntil(t, conn, func(_ frame, ev chat.Event) bool {
		return ev.Type == chat.EventVoice && ev.Listening
	})

	f.clock.Advance(voiceservice.DefaultCaptureDelay)
	draft := readUntil(t, conn, func(_ frame, ev chat.Event) bool {
		return ev.Type == chat.EventVoice && !ev.Listening
	})
	if draft.Draft != voiceservice.DefaultUtterance {
		t.Fatalf("unexpected draft %q", draft.Draft)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %v", resp)
	}
}

func TestWebSocketAfterClose(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()
	f.chat.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + f.session.ID + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 handshake response, got %v", resp)
	}
}
