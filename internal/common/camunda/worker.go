// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"voice-assistant/internal/common/logger"
)

// JobHandler must return an error (required by Zeebe client)
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// JobHandlerFunc adapts a function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job) error

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) error {
	return f(client, job)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Closing it does not close the shared client.
func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	handler JobHandler,
	log logger.Logger,
) *CamundaWorker {
	log = log.With(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			if err := handler.Handle(client, job); err != nil {
				log.Error("Handler returned error", map[string]interface{}{
					"error":  err.Error(),
					"jobKey": job.Key,
				})
			}
		}).
		MaxJobsActive(maxJobsActive).
		Open()

	log.Info("worker started", map[string]interface{}{"maxJobsActive": maxJobsActive})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// Manager owns the shared client and every worker opened on it.
type Manager struct {
	mu      sync.Mutex
	client  *Client
	workers []*CamundaWorker
	logger  logger.Logger
}

func NewManager(client *Client, log logger.Logger) *Manager {
	return &Manager{client: client, logger: log}
}

// Register opens a worker for taskType on the shared client.
func (m *Manager) Register(taskType string, maxJobsActive int, handler JobHandler) {
	w := NewWorker(m.client.GetClient(), taskType, maxJobsActive, handler, m.logger)

	m.mu.Lock()
	m.workers = append(m.workers, w)
	m.mu.Unlock()
}

func (m *Manager) TaskTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.workers))
	for _, w := range m.workers {
		types = append(types, w.TaskType())
	}
	return types
}

func (m *Manager) HealthCheck(ctx context.Context) error {
	return m.client.HealthCheck(ctx)
}

// Stop closes every worker, then the client.
func (m *Manager) Stop() {
	m.mu.Lock()
	workers := m.workers
	m.workers = nil
	m.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}
	if err := m.client.Close(); err != nil {
		m.logger.Warn("closing zeebe client", map[string]interface{}{"error": err.Error()})
	}
}
