// internal/speech/google.go
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"voice-assistant/internal/common/logger"
)

type GoogleConfig struct {
	PrimaryLanguage  string
	FallbackLanguage string
	SampleRate       int
	Timeout          time.Duration
	CredentialsFile  string
}

type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
}

// GoogleTranscriber recognizes in the primary language and retries once in the fallback
// language when the first attempt fails or returns nothing.
type GoogleTranscriber struct {
	client recognizer
	close  func() error
	config GoogleConfig
	logger logger.Logger
}

func NewGoogleTranscriber(ctx context.Context, cfg GoogleConfig, log logger.Logger) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gspeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Google speech client: %w", err)
	}

	t := newGoogleTranscriber(client, cfg, log)
	t.close = client.Close
	return t, nil
}

func newGoogleTranscriber(client recognizer, cfg GoogleConfig, log logger.Logger) *GoogleTranscriber {
	if cfg.PrimaryLanguage == "" {
		cfg.PrimaryLanguage = "fr-FR"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &GoogleTranscriber{
		client: client,
		config: cfg,
		logger: log.With(map[string]interface{}{"transcriber": "google"}),
	}
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeech
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	text, err := g.recognize(ctx, audio, g.config.PrimaryLanguage)
	if (err == nil && text != "") || g.config.FallbackLanguage == "" {
		return text, classify(err, text)
	}

	g.logger.Debug("primary language recognition failed, trying fallback", map[string]interface{}{
		"primary":  g.config.PrimaryLanguage,
		"fallback": g.config.FallbackLanguage,
	})

	text, err = g.recognize(ctx, audio, g.config.FallbackLanguage)
	return text, classify(err, text)
}

func (g *GoogleTranscriber) recognize(ctx context.Context, audio []byte, language string) (string, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(g.config.SampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(resp.GetResults()))
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

func classify(err error, text string) error {
	if err == nil {
		if text == "" {
			return ErrUnrecognized
		}
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrNoSpeech
	}
	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return ErrNoSpeech
	case codes.Unavailable, codes.ResourceExhausted, codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %v", ErrUnrecognized, err)
	default:
		return fmt.Errorf("recognize: %w", err)
	}
}

func (g *GoogleTranscriber) Close() error {
	if g.close != nil {
		return g.close()
	}
	return nil
}
