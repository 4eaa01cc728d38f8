package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heva-hub/assistant/backend/internal/model/chat"
	"github.com/heva-hub/assistant/backend/internal/service/schedule"
)

const (
	DefaultReplyDelay  = 1500 * time.Millisecond
	DefaultEventBuffer = 32
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrReplyFailed     = errors.New("reply generation failed")
	ErrClosed          = errors.New("chat service closed")
)

// Responder produces the assistant reply for a user utterance.
type Responder interface {
	Respond(ctx context.Context, utterance string) (string, error)
}

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	ReplyDelay  time.Duration
	Scheduler   schedule.Scheduler
	Greeting    string
	EventBuffer int
	Now         func() time.Time
}

type sessionState struct {
	session  chat.Session
	messages []chat.Message
	pending  map[uint64]schedule.Task
	nextTask uint64
}

func (st *sessionState) state() chat.ComposeState {
	if len(st.pending) > 0 {
		return chat.StateAwaitingReply
	}
	return chat.StateIdle
}

// Service encapsulates conversation state management and reply scheduling.
type Service struct {
	mu        sync.RWMutex
	responder Responder
	scheduler schedule.Scheduler
	delay     time.Duration
	greeting  string
	now       func() time.Time
	hub       *Hub
	sessions  map[string]*sessionState
	closed    bool
}

// NewService bootstraps the in-memory chat service.
func NewService(responder Responder, opts Options) *Service {
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.Timer{}
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		responder: responder,
		scheduler: opts.Scheduler,
		delay:     opts.ReplyDelay,
		greeting:  opts.Greeting,
		now:       opts.Now,
		hub:       NewHub(opts.EventBuffer),
		sessions:  make(map[string]*sessionState),
	}
}

// CreateSession provisions an anonymous session. When a greeting is
// configured it becomes the first assistant message.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return chat.Session{}, ErrClosed
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
	}
	st := &sessionState{
		session:  session,
		messages: make([]chat.Message, 0, 16),
		pending:  make(map[uint64]schedule.Task),
	}
	if s.greeting != "" {
		s.appendLocked(st, s.greeting, chat.SenderAssistant)
	}
	s.sessions[session.ID] = st

	log.Printf("[chat] session %s created", session.ID)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return st.session, nil
}

// DeleteSession cancels pending replies, drops the history and closes the
// session's subscribers.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	stopped := stopPending(st)
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.hub.CloseSession(sessionID)
	log.Printf("[chat] session %s deleted, %d pending replies canceled", sessionID, stopped)
	return nil
}

// LoadTranscript returns stored messages for the provided session in
// append order.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(st.messages))
	copy(copied, st.messages)
	return copied, nil
}

// State reports whether a reply is pending for the session.
func (s *Service) State(_ context.Context, sessionID string) (chat.ComposeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	return st.state(), nil
}

// Submit appends the user's utterance and schedules the assistant reply.
// A blank utterance is ignored: accepted is false and nothing changes.
func (s *Service) Submit(ctx context.Context, sessionID, utterance string) (msg chat.Message, accepted bool, err error) {
	if strings.TrimSpace(utterance) == "" {
		return chat.Message{}, false, nil
	}

	s.mu.RLock()
	_, ok := s.sessions[sessionID]
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return chat.Message{}, false, ErrClosed
	}
	if !ok {
		return chat.Message{}, false, ErrSessionNotFound
	}

	reply, respondErr := s.responder.Respond(ctx, utterance)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return chat.Message{}, false, ErrClosed
	}
	st, ok := s.sessions[sessionID]
	if !ok {
		return chat.Message{}, false, ErrSessionNotFound
	}

	msg = s.appendLocked(st, utterance, chat.SenderUser)
	if respondErr != nil {
		log.Printf("[chat] session %s: responder error: %v", sessionID, respondErr)
		return msg, true, fmt.Errorf("%w: %v", ErrReplyFailed, respondErr)
	}

	before := st.state()
	st.nextTask++
	taskID := st.nextTask
	st.pending[taskID] = s.scheduler.AfterFunc(s.delay, func() {
		s.deliver(sessionID, taskID, reply)
	})
	if before != chat.StateAwaitingReply {
		s.publishStateLocked(st)
	}

	return msg, true, nil
}

// Subscribe streams events for an existing session until cancel is called
// or the session is deleted.
func (s *Service) Subscribe(_ context.Context, sessionID string) (<-chan chat.Event, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, nil, ErrClosed
	}
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, nil, ErrSessionNotFound
	}
	ch, cancel := s.hub.Subscribe(sessionID)
	return ch, cancel, nil
}

// Publish forwards an externally produced event, such as a voice status
// change, to the session's subscribers.
func (s *Service) Publish(_ context.Context, event chat.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	st, ok := s.sessions[event.SessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	event.State = st.state()
	event.Composing = event.State.Composing()
	s.hub.Publish(event)
	return nil
}

// Close cancels every pending reply and disconnects all subscribers.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stopped := 0
	for _, st := range s.sessions {
		stopped += stopPending(st)
	}
	s.mu.Unlock()

	s.hub.Close()
	log.Printf("[chat] service closed, %d pending replies canceled", stopped)
}

func (s *Service) deliver(sessionID string, taskID uint64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if _, ok := st.pending[taskID]; !ok {
		return
	}
	delete(st.pending, taskID)

	s.appendLocked(st, text, chat.SenderAssistant)
	if len(st.pending) == 0 {
		s.publishStateLocked(st)
	}
}

func (s *Service) appendLocked(st *sessionState, text string, sender chat.Sender) chat.Message {
	msg := chat.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: st.session.ID,
		Text:      text,
		Sender:    sender,
		Timestamp: s.now().UTC(),
	}
	st.messages = append(st.messages, msg)

	published := msg
	s.hub.Publish(chat.Event{
		Type:      chat.EventMessage,
		SessionID: st.session.ID,
		Message:   &published,
		State:     st.state(),
		Composing: st.state().Composing(),
		Timestamp: msg.Timestamp,
	})
	return msg
}

func (s *Service) publishStateLocked(st *sessionState) {
	state := st.state()
	s.hub.Publish(chat.Event{
		Type:      chat.EventState,
		SessionID: st.session.ID,
		State:     state,
		Composing: state.Composing(),
		Timestamp: s.now().UTC(),
	})
}

func stopPending(st *sessionState) int {
	stopped := 0
	for id, task := range st.pending {
		if task.Stop() {
			stopped++
		}
		delete(st.pending, id)
	}
	return stopped
}
