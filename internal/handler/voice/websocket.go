package voice

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/heva-hub/assistant/backend/internal/model/chat"
	chatService "github.com/heva-hub/assistant/backend/internal/service/chat"
	voiceService "github.com/heva-hub/assistant/backend/internal/service/voice"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// WebSocketHandler 会话实时通道：推送事件，接收文本提交与语音开关
type WebSocketHandler struct {
	chatSvc  *chatService.Service
	voiceSvc *voiceService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatService.Service, voiceSvc *voiceService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc:  chatSvc,
		voiceSvc: voiceSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

// TextMessage 文本提交
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// wsConn serializes writes from the event pump, the reader and the pinger.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	events, unsubscribe, err := h.chatSvc.Subscribe(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, chatService.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, chatService.ErrClosed):
			http.Error(w, "service closed", http.StatusServiceUnavailable)
		default:
			log.Printf("[websocket] subscribe failed: %v", err)
			http.Error(w, "subscribe failed", http.StatusInternalServerError)
		}
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &wsConn{conn: conn}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	state, _ := h.chatSvc.State(ctx, sessionID)
	voiceStatus, _ := h.voiceSvc.Status(ctx, sessionID)
	h.send(c, "connected", sessionID, map[string]any{
		"state":     state,
		"composing": state.Composing(),
		"listening": voiceStatus.Listening,
	})

	go h.pingLoop(ctx, c)
	go h.pumpEvents(ctx, cancel, c, events)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(c, "session mismatch")
			continue
		}

		h.handleMessage(ctx, c, sessionID, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, c *wsConn, sessionID string, msg *inboundMessage) {
	switch msg.Type {
	case "submit":
		var text TextMessage
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			h.sendError(c, "invalid submit payload")
			return
		}
		message, accepted, err := h.chatSvc.Submit(ctx, sessionID, text.Text)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		if !accepted {
			h.send(c, "ack", sessionID, map[string]any{"status": "ignored"})
			return
		}
		h.send(c, "ack", sessionID, map[string]any{"status": "queued", "message": message})
	case "voice_toggle":
		status, err := h.voiceSvc.Toggle(ctx, sessionID)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		h.send(c, "ack", sessionID, status)
	case "ping":
		h.send(c, "pong", sessionID, nil)
	default:
		h.sendError(c, "unsupported message type: "+msg.Type)
	}
}

// pumpEvents forwards session events until the subscription closes.
func (h *WebSocketHandler) pumpEvents(ctx context.Context, cancel context.CancelFunc, c *wsConn, events <-chan chat.Event) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				h.send(c, "closed", "", nil)
				c.mu.Lock()
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeTimeout))
				c.mu.Unlock()
				return
			}
			if err := c.writeJSON(outgoingMessage{
				Type:      "event",
				SessionID: ev.SessionID,
				Data:      ev,
				Timestamp: time.Now().Unix(),
			}); err != nil {
				log.Printf("[websocket] write event failed: %v", err)
				return
			}
		}
	}
}

func (h *WebSocketHandler) send(c *wsConn, typ, sessionID string, data interface{}) {
	msg := outgoingMessage{
		Type:      typ,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", typ, err)
	}
}

func (h *WebSocketHandler) sendError(c *wsConn, message string) {
	h.send(c, "error", "", map[string]string{"message": message})
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
