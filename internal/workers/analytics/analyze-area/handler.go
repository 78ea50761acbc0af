package analyzearea

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/common/logger"
	"site-traffic-workers/internal/common/metrics"
	"site-traffic-workers/internal/common/observability"
	"site-traffic-workers/internal/common/validation"
	"site-traffic-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-area"

	alertSubject   = "High-opportunity area found"
	commandTimeout = 10 * time.Second
)

// Analyzer is satisfied by *traffic.Engine.
type Analyzer interface {
	AnalyzeArea(ctx context.Context, q models.AreaQuery) (*models.AreaAnalysis, error)
}

// AlertPublisher is satisfied by *aws.SNSClient.
type AlertPublisher interface {
	PublishJSON(ctx context.Context, topicARN, subject string, payload interface{}, attributes map[string]string) (string, error)
}

type Handler struct {
	config       *Config
	analyzer     Analyzer
	publisher    AlertPublisher
	obs          *observability.Observability
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the worker. publisher and obs may be nil.
func NewHandler(config *Config, analyzer Analyzer, publisher AlertPublisher, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		analyzer:     analyzer,
		publisher:    publisher,
		obs:          obs,
		schema:       validation.MustCompile(inputSchema),
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.process(ctx, job.Variables)

	// Commands get their own deadline so a timed-out analysis can still be reported.
	sendCtx, cancelSend := context.WithTimeout(context.Background(), commandTimeout)
	defer cancelSend()

	if err != nil {
		code := string(errors.CodeOf(err))
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.record(ctx, start, "failed")
		h.errorHandler.HandleJobError(sendCtx, client, job, err)
		return
	}

	if err := h.completeJob(sendCtx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		h.record(ctx, start, "failed")
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.record(ctx, start, "completed")
	if output.AreaAnalysis != nil {
		h.obs.RecordAreaVenues(ctx, output.AreaAnalysis.TotalVenues, output.AreaAnalysis.Cached)
	}
}

func (h *Handler) process(ctx context.Context, variables string) (*Output, error) {
	input, err := h.ParseInput(variables)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

// ParseInput validates job variables against the input schema and decodes them.
func (h *Handler) ParseInput(variables string) (*Input, error) {
	result, err := h.schema.ValidateBytes([]byte(variables))
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidAreaQueryError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

// Execute runs the analysis and publishes an alert when the area qualifies.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	analysis, err := h.analyzer.AnalyzeArea(ctx, models.AreaQuery{
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		RadiusMeters: input.RadiusMeters,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		AreaAnalysis:   analysis,
		AlertPublished: h.publishAlert(ctx, analysis),
	}, nil
}

// ShouldAlert reports whether an analysis qualifies for an opportunity alert.
// The empty-area sentinel never does.
func (h *Handler) ShouldAlert(a *models.AreaAnalysis) bool {
	if !h.config.AlertsEnabled || h.publisher == nil || h.config.AlertTopicARN == "" {
		return false
	}
	return !a.Sentinel && a.OpportunityScore >= h.config.AlertThreshold
}

// publishAlert never fails the job; delivery problems are logged.
func (h *Handler) publishAlert(ctx context.Context, a *models.AreaAnalysis) bool {
	if !h.ShouldAlert(a) {
		return false
	}

	alert := OpportunityAlert{
		AnalysisID:       a.ID,
		Location:         a.Location,
		RadiusMeters:     a.RadiusMeters,
		OpportunityScore: a.OpportunityScore,
		ConfidenceLevel:  a.ConfidenceLevel,
		EstimatedData:    a.EstimatedData,
		TotalVenues:      a.TotalVenues,
		PeakHours:        a.PeakHours,
		Insights:         a.Insights,
		AnalysisDate:     a.AnalysisDate,
	}
	attributes := map[string]string{
		"opportunityScore": fmt.Sprintf("%d", a.OpportunityScore),
		"estimatedData":    fmt.Sprintf("%t", a.EstimatedData),
	}

	messageID, err := h.publisher.PublishJSON(ctx, h.config.AlertTopicARN, alertSubject, alert, attributes)
	if err != nil {
		stdErr := errors.NewNotificationSendFailedError("sns", err)
		metrics.OpportunityAlerts.WithLabelValues("failed").Inc()
		h.logger.Warn("Opportunity alert not delivered", map[string]interface{}{
			"analysisId": a.ID,
			"code":       string(stdErr.Code),
			"error":      err.Error(),
		})
		return false
	}

	metrics.OpportunityAlerts.WithLabelValues("published").Inc()
	h.logger.Info("Opportunity alert published", map[string]interface{}{
		"analysisId":       a.ID,
		"messageId":        messageID,
		"opportunityScore": a.OpportunityScore,
	})
	return true
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return err
	}
	_, err = cmd.Send(ctx)
	return err
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, status)
	h.obs.RecordJobDuration(ctx, elapsed, status)
}
