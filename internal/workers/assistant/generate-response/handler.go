// internal/workers/assistant/generate-response/handler.go
package generateresponse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"voice-assistant/internal/assistant"
	"voice-assistant/internal/common/errors"
	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/common/metrics"
	"voice-assistant/internal/common/observability"
)

const TaskType = "generate-response"

// Responder produces the reply for one message.
type Responder interface {
	Respond(ctx context.Context, text string) assistant.Result
}

type Handler struct {
	config       *Config
	responder    Responder
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

// NewHandler builds the handler. obs may be nil.
func NewHandler(config *Config, responder Responder, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		responder:    responder,
		errorHandler: errors.NewErrorHandler(log).WithMaxRetries(config.MaxRetries),
		obs:          obs,
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
	if err != nil {
		h.fail(ctx, client, job, err, startTime)
		return err
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		h.fail(ctx, client, job, errors.NewExternalServiceError("zeebe", err), startTime)
		return err
	}

	elapsed := time.Since(startTime)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	if h.obs != nil {
		h.obs.RecordJobProcessed(ctx, "completed")
		h.obs.RecordJobDuration(ctx, elapsed, "completed")
	}
	return nil
}

func (h *Handler) process(ctx context.Context, variables string) (*Output, error) {
	input, err := ParseInput(variables)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, input)
}

// ParseInput validates job variables against the input schema.
func ParseInput(variables string) (*Input, error) {
	if res := inputSchema.ValidateJSON(variables); !res.Valid {
		return nil, errors.NewInvalidInputError(res.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	res := h.responder.Respond(ctx, input.Message)

	// The responder never fails; a blown deadline is reported as retryable.
	if err := ctx.Err(); err != nil {
		return nil, errors.NewResponseGenerationFailedError(err)
	}

	metrics.ObserveReply(string(res.Route), res.Intent, string(res.Sentiment), res.City)
	if h.obs != nil {
		h.obs.RecordReply(ctx, string(res.Route), time.Since(start))
	}

	h.logger.Info("reply generated", map[string]interface{}{
		"route":  string(res.Route),
		"intent": res.Intent,
		"score":  res.Score,
	})

	return &Output{
		Reply:     res.Reply,
		Route:     string(res.Route),
		Intent:    res.Intent,
		Score:     res.Score,
		Sentiment: string(res.Sentiment),
		City:      res.City,
		SessionID: input.SessionID,
	}, nil
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
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	stdErr := errors.NormalizeError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	if h.obs != nil {
		h.obs.RecordJobProcessed(ctx, "failed")
		h.obs.RecordJobDuration(ctx, time.Since(startTime), "failed")
	}
	// ctx may already be done.
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}
