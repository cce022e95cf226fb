// Package conversation keeps chat history for hosts. History lives in memory only.
package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/models"
	"voice-assistant/internal/speech"
)

// Responder produces a reply for one line of user text.
type Responder interface {
	Respond(ctx context.Context, text string) assistant.Result
}

// Exchange is the outcome of one user input.
type Exchange struct {
	// Input is what the user said, or the failure message when transcription failed.
	Input  string           `json:"input"`
	Result assistant.Result `json:"result"`
	// Failed means Input is a transcription failure; nothing was recorded or answered.
	// Only SendAudio sets it.
	Failed bool `json:"failed"`
}

// Session is an ordered, in-memory conversation. Safe for concurrent use.
type Session struct {
	// turn serializes Send so each user turn is followed by its own reply.
	turn      sync.Mutex
	mu        sync.Mutex
	state     models.Session
	responder Responder
	clock     func() time.Time
	logger    logger.Logger
}

func NewSession(responder Responder, log logger.Logger) *Session {
	return newSession(responder, log, time.Now)
}

func newSession(responder Responder, log logger.Logger, clock func() time.Time) *Session {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	now := clock()
	id := uuid.NewString()
	return &Session{
		state: models.Session{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
		},
		responder: responder,
		clock:     clock,
		logger:    log.With(map[string]interface{}{"sessionId": id}),
	}
}

func (s *Session) ID() string {
	return s.state.ID
}

// Send records the user turn, asks the responder, then records the assistant turn.
// Typed input is always answered, whatever it starts with.
func (s *Session) Send(ctx context.Context, input string) Exchange {
	s.turn.Lock()
	defer s.turn.Unlock()

	s.append(models.RoleUser, input)
	res := s.responder.Respond(ctx, input)
	s.append(models.RoleAssistant, res.Reply)

	s.logger.Debug("turn completed", map[string]interface{}{
		"route":  string(res.Route),
		"intent": res.Intent,
	})
	return Exchange{Input: input, Result: res}
}

// SendAudio transcribes audio and sends the transcript. A transcription failure message
// is returned as-is and never recorded or answered.
func (s *Session) SendAudio(ctx context.Context, t speech.Transcriber, audio []byte) Exchange {
	text := speech.Capture(ctx, t, audio)
	if speech.IsFailure(text) {
		s.logger.Info("skipping transcription failure", map[string]interface{}{"message": text})
		return Exchange{Input: text, Failed: true}
	}
	return s.Send(ctx, text)
}

func (s *Session) append(role models.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.state.Turns = append(s.state.Turns, models.Turn{Role: role, Content: content, CreatedAt: now})
	s.state.UpdateActivity(now)
}

// History returns a copy of the turns in order.
func (s *Session) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Turn(nil), s.state.Turns...)
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	snap.Turns = append([]models.Turn(nil), s.state.Turns...)
	return snap
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Turns = nil
	s.state.UpdateActivity(s.clock())
}
