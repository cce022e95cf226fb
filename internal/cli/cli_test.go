package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/app"
	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/speech"
)

func testBuilder(t *testing.T, transcriber speech.Transcriber) Builder {
	return func(context.Context, string, string) (*app.App, error) {
		log := logger.NewTestLogger(t)
		g, err := assistant.NewGenerator(assistant.DefaultOptions(), nil, log)
		require.NoError(t, err)
		return &app.App{Logger: log, Generator: g, Transcriber: transcriber}, nil
	}
}

func run(t *testing.T, build Builder, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAsk(t *testing.T) {
	out, err := run(t, testBuilder(t, nil), "", "ask", "météo", "à", "Lyon")
	require.NoError(t, err)
	assert.Equal(t, "Météo à Lyon : 18°C, nuageux.\n", out)
}

func TestAsk_Verbose(t *testing.T) {
	out, err := run(t, testBuilder(t, nil), "", "ask", "-v", "bonjour")
	require.NoError(t, err)
	assert.Contains(t, out, "route=intent intent=salutations score=1.000")
}

func TestAsk_RequiresQuestion(t *testing.T) {
	_, err := run(t, testBuilder(t, nil), "", "ask")
	assert.Error(t, err)
}

func TestChat_Session(t *testing.T) {
	stdin := "météo à Nice\n/history\n/reset\n/history\n/quit\nbonjour\n"
	out, err := run(t, testBuilder(t, nil), stdin, "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "Assistant: Météo à Nice : 24°C, ensoleillé.")
	assert.Contains(t, out, "Vous: météo à Nice")
	assert.Contains(t, out, "Conversation effacée.")
	assert.Equal(t, 1, strings.Count(out, userPrompt+assistantPrefix), "nothing is read after /quit")
}

func TestChat_TypedFailurePrefixIsAnswered(t *testing.T) {
	out, err := run(t, testBuilder(t, nil), speech.FailurePrefix+" bonjour\n", "chat")
	require.NoError(t, err)

	assert.Contains(t, out, assistantPrefix)
	assert.NotContains(t, out, assistantPrefix+"\n")
}

func TestChat_EndOfInputExits(t *testing.T) {
	out, err := run(t, testBuilder(t, nil), "", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, userPrompt)
}

func TestListen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.raw")
	require.NoError(t, os.WriteFile(path, []byte{0, 1, 0, 1}, 0o600))

	ok := speech.TranscriberFunc(func(context.Context, []byte) (string, error) { return "au revoir", nil })
	out, err := run(t, testBuilder(t, ok), "", "listen", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Vous: au revoir")
	assert.Contains(t, out, "Assistant: ")

	failing := speech.TranscriberFunc(func(context.Context, []byte) (string, error) { return "", speech.ErrUnrecognized })
	out, err = run(t, testBuilder(t, failing), "", "listen", "-f", path)
	require.NoError(t, err)
	assert.True(t, speech.IsFailure(out))
	assert.NotContains(t, out, "Assistant: ")
}

func TestListen_SpeechDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.raw")
	require.NoError(t, os.WriteFile(path, []byte{0}, 0o600))

	_, err := run(t, testBuilder(t, nil), "", "listen", "-f", path)
	assert.ErrorContains(t, err, "speech recognition is disabled")
}

func TestVersion(t *testing.T) {
	out, err := run(t, testBuilder(t, nil), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "assistant version dev")
}
