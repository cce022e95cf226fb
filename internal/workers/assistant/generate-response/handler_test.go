// internal/workers/assistant/generate-response/handler_test.go
package generateresponse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/config"
	"voice-assistant/internal/common/errors"
	"voice-assistant/internal/common/logger"
)

func newHandler(t *testing.T, responder Responder) *Handler {
	t.Helper()
	if responder == nil {
		g, err := assistant.NewGenerator(assistant.DefaultOptions(), nil, logger.NewTestLogger(t))
		require.NoError(t, err)
		responder = g
	}
	return NewHandler(LoadConfig(), responder, nil, logger.NewTestLogger(t))
}

func TestExecute_Success(t *testing.T) {
	h := newHandler(t, nil)

	tests := []struct {
		name   string
		input  Input
		route  string
		intent string
		reply  string
	}{
		{"weather", Input{Message: "météo à Bordeaux", SessionID: "s1"}, "weather", "", "Météo à Bordeaux : 19°C, pluvieux."},
		{"intent", Input{Message: "tes capacités"}, "intent", assistant.IntentCapabilities, ""},
		{"fallback without scorer", Input{Message: "xyz"}, "fallback", "", assistant.ReplyRephrase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.route, out.Route)
			assert.Equal(t, tt.intent, out.Intent)
			assert.Equal(t, tt.input.SessionID, out.SessionID)
			if tt.reply != "" {
				assert.Equal(t, tt.reply, out.Reply)
			} else {
				assert.NotEmpty(t, out.Reply)
			}
		})
	}
}

type slowResponder struct{}

func (slowResponder) Respond(ctx context.Context, _ string) assistant.Result {
	<-ctx.Done()
	return assistant.Result{Reply: assistant.ReplyRephrase, Route: assistant.RouteFallback}
}

func TestExecute_DeadlineIsRetryable(t *testing.T) {
	h := newHandler(t, slowResponder{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Execute(ctx, &Input{Message: "bonjour"})
	require.Error(t, err)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResponseGenerationFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestParseInput(t *testing.T) {
	in, err := ParseInput(`{"message":"bonjour","sessionId":"abc"}`)
	require.NoError(t, err)
	assert.Equal(t, "bonjour", in.Message)
	assert.Equal(t, "abc", in.SessionID)

	invalid := []string{
		`{}`,
		`{"message": 12}`,
		`{"message": "a", "sessionId": false}`,
		`not json`,
	}
	for _, vars := range invalid {
		_, err := ParseInput(vars)
		stdErr, ok := errors.AsStandardError(err)
		require.True(t, ok, vars)
		assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code, vars)
	}
}

func TestFromWorkerConfig(t *testing.T) {
	cfg := FromWorkerConfig(config.WorkerConfig{Enabled: true, Timeout: 1500, MaxRetries: 1})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)

	cfg = FromWorkerConfig(config.WorkerConfig{})
	assert.Equal(t, LoadConfig().Timeout, cfg.Timeout)
}
