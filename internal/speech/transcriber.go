// Package speech turns recorded audio into text for the responder. Failures never reach
// the responder: they are rendered as messages carrying FailurePrefix.
package speech

import (
	"context"
	"errors"
	"strings"
)

// FailurePrefix marks a capture result that is a failure message, not a transcript.
const FailurePrefix = "⚠"

var (
	ErrNoSpeech           = errors.New("no speech detected")
	ErrUnrecognized       = errors.New("speech not recognized")
	ErrServiceUnavailable = errors.New("speech recognition service unavailable")
)

// Transcriber converts LINEAR16 audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// TranscriberFunc adapts a function to Transcriber.
type TranscriberFunc func(ctx context.Context, audio []byte) (string, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f(ctx, audio)
}

// FailureMessage renders err as the user-facing French message.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeech):
		return FailurePrefix + " Aucune parole détectée. Veuillez réessayer."
	case errors.Is(err, ErrUnrecognized):
		return FailurePrefix + " Désolé, je n'ai pas compris. Pourriez-vous répéter?"
	case errors.Is(err, ErrServiceUnavailable):
		return FailurePrefix + " Service de reconnaissance vocale temporairement indisponible."
	default:
		return FailurePrefix + " Une erreur est survenue: " + err.Error()
	}
}

// IsFailure reports whether text is a failure message rather than a transcript.
func IsFailure(text string) bool {
	return strings.HasPrefix(text, FailurePrefix)
}

// Capture returns the transcript, or a failure message when transcription fails or yields
// nothing.
func Capture(ctx context.Context, t Transcriber, audio []byte) string {
	text, err := t.Transcribe(ctx, audio)
	if err != nil {
		return FailureMessage(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FailureMessage(ErrUnrecognized)
	}
	return text
}
