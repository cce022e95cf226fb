package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/conversation"
	"voice-assistant/internal/speech"
)

func newTestServer(t *testing.T, deps Deps) (*Server, *conversation.Store) {
	t.Helper()
	log := logger.NewTestLogger(t)

	scorer := assistant.PolarityScorerFunc(func(context.Context, string) (float64, error) {
		return -0.8, nil
	})
	g, err := assistant.NewGenerator(assistant.DefaultOptions(), scorer, log)
	require.NoError(t, err)

	if deps.Sessions == nil {
		deps.Sessions = conversation.NewStore(g, time.Hour, log)
	}
	return New(deps, log), deps.Sessions
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChat_ReturnsReplyAndIDs(t *testing.T) {
	s, store := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/v1/chat", `{"message":"Météo à Paris?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Météo à Paris : 22°C, ensoleillé.", resp.Reply)
	assert.Equal(t, assistant.RouteWeather, resp.Route)
	assert.Equal(t, "Paris", resp.City)

	_, err := uuid.Parse(resp.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, resp.RequestID, rec.Header().Get("X-Request-Id"))

	sess, ok := store.Lookup(resp.SessionID)
	require.True(t, ok)
	assert.Len(t, sess.History(), 2)
}

func TestChat_ContinuesExistingSession(t *testing.T) {
	s, store := newTestServer(t, Deps{})
	sess := store.Get("")

	rec := do(t, s, http.MethodPost, "/api/v1/chat", `{"message":"bonjour","sessionId":"`+sess.ID()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/v1/chat", `{"message":"je déteste vraiment tout cela","sessionId":"`+sess.ID()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sess.ID(), resp.SessionID)
	assert.Equal(t, assistant.RouteFallback, resp.Route)
	assert.Equal(t, assistant.ReplyNegative, resp.Reply)
	assert.Len(t, sess.History(), 4)
}

func TestChat_RejectsInvalidBodies(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{}`},
		{"wrong type", `{"message": 42}`},
		{"not json", `bonjour`},
		{"too long", `{"message":"` + strings.Repeat("a", MaxMessageLength+1) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChat_EmptyMessageGetsFallback(t *testing.T) {
	s, _ := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/v1/chat", `{"message":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, assistant.RouteFallback, resp.Route)
}

func TestVoice_TranscribesAndAnswers(t *testing.T) {
	tr := speech.TranscriberFunc(func(_ context.Context, audio []byte) (string, error) {
		assert.Equal(t, []byte("pcm"), audio)
		return "bonjour", nil
	})
	s, _ := newTestServer(t, Deps{Transcriber: tr})

	rec := do(t, s, http.MethodPost, "/api/v1/voice", "pcm")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bonjour", resp.Transcript)
	require.NotNil(t, resp.Result)
	assert.Equal(t, assistant.IntentGreeting, resp.Result.Intent)
}

func TestChat_TypedFailurePrefixIsAnswered(t *testing.T) {
	s, store := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/v1/chat", `{"message":"⚠ bonjour"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Reply)
	assert.Equal(t, assistant.RouteIntent, resp.Route)
	assert.Equal(t, assistant.IntentGreeting, resp.Intent)

	sess, ok := store.Lookup(resp.SessionID)
	require.True(t, ok)
	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, "⚠ bonjour", history[0].Content)
}

func TestVoice_FailureIsNotRecorded(t *testing.T) {
	tr := speech.TranscriberFunc(func(context.Context, []byte) (string, error) {
		return "", speech.ErrServiceUnavailable
	})
	s, store := newTestServer(t, Deps{Transcriber: tr})

	rec := do(t, s, http.MethodPost, "/api/v1/voice", "pcm")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp VoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, speech.IsFailure(resp.Failure))
	assert.Equal(t, "TRANSCRIPTION_FAILED", resp.Code)
	assert.Nil(t, resp.Result)

	sess, ok := store.Lookup(resp.SessionID)
	require.True(t, ok)
	assert.Empty(t, sess.History())
}

func TestVoice_DisabledWithoutTranscriber(t *testing.T) {
	s, _ := newTestServer(t, Deps{})
	rec := do(t, s, http.MethodPost, "/api/v1/voice", "pcm")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSessions_HistoryAndDelete(t *testing.T) {
	s, store := newTestServer(t, Deps{})
	sess := store.Get("")
	sess.Send(context.Background(), "bonjour")

	rec := do(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.Turns, 2)
	assert.Equal(t, "bonjour", hist.Turns[0].Content)

	rec = do(t, s, http.MethodDelete, "/api/v1/sessions/"+sess.ID(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t, Deps{Checks: map[string]Checker{
		"redis": CheckerFunc(func(context.Context) error { return nil }),
	}})

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)
}

func TestReady_FailingCheck(t *testing.T) {
	s, _ := newTestServer(t, Deps{Checks: map[string]Checker{
		"zeebe": CheckerFunc(func(context.Context) error { return errors.New("unreachable") }),
	}})

	rec := do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, Deps{})
	do(t, s, http.MethodPost, "/api/v1/chat", `{"message":"bonjour"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "assistant_replies_total")
}
