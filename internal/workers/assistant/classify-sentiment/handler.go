// internal/workers/assistant/classify-sentiment/handler.go
package classifysentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/errors"
	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/common/metrics"
	"voice-assistant/internal/common/validation"
)

const TaskType = "classify-sentiment"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string", "maxLength": 2000}
	}
}`)

// Handler labels text as positive, negative or neutral. Unlike the responder's fallback
// path, scorer failures are reported to the engine so the job can be retried.
type Handler struct {
	config       *Config
	scorer       assistant.PolarityScorer
	classifier   *assistant.SentimentClassifier
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, scorer assistant.PolarityScorer, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		scorer:       scorer,
		classifier:   assistant.NewSentimentClassifier(scorer, config.PositiveCutoff, config.NegativeCutoff, log),
		errorHandler: errors.NewErrorHandler(log).WithMaxRetries(config.MaxRetries),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.process(ctx, job.Variables)
	if err == nil {
		err = h.completeJob(ctx, client, job, output)
	}
	if err != nil {
		stdErr := errors.NormalizeError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	return nil
}

func (h *Handler) process(ctx context.Context, variables string) (*Output, error) {
	if res := inputSchema.ValidateJSON(variables); !res.Valid {
		return nil, errors.NewInvalidInputError(res.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if h.scorer == nil {
		return nil, errors.NewSentimentScoringFailedError(fmt.Errorf("no polarity scorer configured"))
	}

	polarity, err := h.scorer.ScorePolarity(ctx, input.Text)
	if err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, errors.NewSentimentAPITimeoutError(err)
		}
		return nil, errors.NewSentimentScoringFailedError(err)
	}
	if math.IsNaN(polarity) || math.IsInf(polarity, 0) {
		return nil, errors.NewSentimentScoringFailedError(fmt.Errorf("polarity %v is not finite", polarity))
	}

	polarity = assistant.ClampPolarity(polarity)
	label := h.classifier.Label(polarity)

	h.logger.Info("sentiment classified", map[string]interface{}{
		"sentiment": string(label),
		"polarity":  polarity,
	})

	return &Output{Sentiment: string(label), Polarity: polarity}, nil
}

// Execute runs the job logic without a Zeebe client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return errors.NewExternalServiceError("zeebe", err)
	}
	return nil
}
