package camunda

import (
	"sync"
	"time"

	"site-traffic-workers/internal/common/config"
	"site-traffic-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// HandlerFunc is the Zeebe job handler signature.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Workers opens job workers and closes them together on shutdown.
type Workers struct {
	client zbc.Client
	logger logger.Logger

	mu   sync.Mutex
	open map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{
		client: client,
		logger: log,
		open:   make(map[string]worker.JobWorker),
	}
}

// Register opens a worker for taskType unless it is disabled in wcfg.
// It reports whether a worker was opened.
func (w *Workers) Register(taskType string, wcfg config.WorkerConfig, handler HandlerFunc) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jobWorker := w.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	w.mu.Lock()
	w.open[taskType] = jobWorker
	w.mu.Unlock()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Active lists the task types with an open worker.
func (w *Workers) Active() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := make([]string, 0, len(w.open))
	for t := range w.open {
		types = append(types, t)
	}
	return types
}

// Close stops polling and waits up to grace for in-flight jobs.
func (w *Workers) Close(grace time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for taskType, jw := range w.open {
		w.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		done := make(chan struct{})
		go func(jw worker.JobWorker) {
			jw.AwaitClose()
			close(done)
		}(jw)
		select {
		case <-done:
		case <-time.After(grace):
			w.logger.Warn("worker did not stop in time", map[string]interface{}{"taskType": taskType})
		}
	}
	w.open = make(map[string]worker.JobWorker)
}
