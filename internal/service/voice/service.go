package voice

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/heva-hub/assistant/backend/internal/model/chat"
	"github.com/heva-hub/assistant/backend/internal/service/schedule"
)

const (
	DefaultCaptureDelay = 2 * time.Second
	DefaultUtterance    = "How can I apply for funding?"
)

// Sessions is the subset of the chat service the simulator needs.
type Sessions interface {
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	Publish(ctx context.Context, event chat.Event) error
}

// Options tunes the simulated capture.
type Options struct {
	CaptureDelay time.Duration
	Utterance    string
	Scheduler    schedule.Scheduler
}

// Status is the voice state of one session.
type Status struct {
	SessionID string `json:"sessionId"`
	Listening bool   `json:"listening"`
	Draft     string `json:"draft,omitempty"`
}

type captureState struct {
	listening bool
	draft     string
	task      schedule.Task
	gen       uint64
}

// Service simulates voice input: toggling on starts a capture that yields a
// fixed draft utterance after a delay. The draft is never submitted.
type Service struct {
	sessions  Sessions
	scheduler schedule.Scheduler
	delay     time.Duration
	utterance string

	mu     sync.Mutex
	states map[string]*captureState
}

// NewService creates the simulator.
func NewService(sessions Sessions, opts Options) *Service {
	if opts.CaptureDelay <= 0 {
		opts.CaptureDelay = DefaultCaptureDelay
	}
	if opts.Utterance == "" {
		opts.Utterance = DefaultUtterance
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.Timer{}
	}

	return &Service{
		sessions:  sessions,
		scheduler: opts.Scheduler,
		delay:     opts.CaptureDelay,
		utterance: opts.Utterance,
		states:    make(map[string]*captureState),
	}
}

// Toggle starts listening when idle, or stops listening and cancels the
// pending capture when already listening. Voice events for a session are
// published under the simulator lock so subscribers see them in toggle order.
func (s *Service) Toggle(ctx context.Context, sessionID string) (Status, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return Status{}, fmt.Errorf("toggle voice: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stateLocked(sessionID)
	st.gen++
	if st.listening {
		st.listening = false
		s.stopLocked(st)
	} else {
		st.listening = true
		gen := st.gen
		st.task = s.scheduler.AfterFunc(s.delay, func() {
			s.capture(sessionID, gen)
		})
	}

	if err := s.sessions.Publish(ctx, chat.Event{
		Type:      chat.EventVoice,
		SessionID: sessionID,
		Listening: st.listening,
	}); err != nil {
		s.forgetLocked(sessionID)
		return Status{}, fmt.Errorf("toggle voice: %w", err)
	}

	log.Printf("[voice] session %s listening=%v", sessionID, st.listening)
	return Status{SessionID: sessionID, Listening: st.listening, Draft: st.draft}, nil
}

// Status returns the listening flag and the last captured draft.
func (s *Service) Status(ctx context.Context, sessionID string) (Status, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return Status{}, fmt.Errorf("voice status: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sessionID]
	if !ok {
		return Status{SessionID: sessionID}, nil
	}
	return Status{SessionID: sessionID, Listening: st.listening, Draft: st.draft}, nil
}

// Forget cancels any pending capture and drops the session's voice state.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgetLocked(sessionID)
}

// Close cancels every pending capture.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.states {
		s.forgetLocked(id)
	}
}

func (s *Service) capture(sessionID string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sessionID]
	if !ok || st.gen != gen || !st.listening {
		return
	}
	st.listening = false
	st.task = nil
	st.draft = s.utterance

	err := s.sessions.Publish(context.Background(), chat.Event{
		Type:      chat.EventVoice,
		SessionID: sessionID,
		Listening: false,
		Draft:     st.draft,
	})
	if err != nil {
		log.Printf("[voice] session %s: drop captured draft: %v", sessionID, err)
		s.forgetLocked(sessionID)
		return
	}
	log.Printf("[voice] session %s captured draft", sessionID)
}

func (s *Service) stateLocked(sessionID string) *captureState {
	st, ok := s.states[sessionID]
	if !ok {
		st = &captureState{}
		s.states[sessionID] = st
	}
	return st
}

func (s *Service) stopLocked(st *captureState) {
	if st.task != nil {
		st.task.Stop()
		st.task = nil
	}
}

func (s *Service) forgetLocked(sessionID string) {
	if st, ok := s.states[sessionID]; ok {
		s.stopLocked(st)
	}
	delete(s.states, sessionID)
}
