// internal/workflow/evaluator.go

// Package workflow orchestrates status transitions. It computes the
// candidate next status from live readiness signals, asks the
// transition validator to approve it, and commits approved moves with
// an identity-checked write. It is the only component that mutates
// application state.
package workflow

import (
	"context"
	"sync"
	"time"

	"admission-engine/internal/common/config"
	"admission-engine/internal/common/errors"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/common/metrics"
	"admission-engine/internal/common/observability"
	"admission-engine/internal/models"
	"admission-engine/internal/transition"

	"github.com/google/uuid"
)

// Outcome classifies the result of one evaluation pass. Stay and
// Blocked are deliberately distinct: Stay means no condition called for
// a move, Blocked means a proposed move was vetoed by the validator.
type Outcome string

const (
	OutcomeAdvanced Outcome = "advanced"
	OutcomeStay     Outcome = "stay"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeStale    Outcome = "stale"
)

// Decision is the pure output of DetermineNextStatus.
type Decision struct {
	Next         models.Status
	Stay         bool
	Reason       string
	MissingKinds []models.DocumentKind
}

// ApplicationStore is the persistence surface the evaluator mutates
// through. UpdateStatus must be an identity-checked write: it fails
// with a stale-state error when the persisted status no longer equals
// `from`.
type ApplicationStore interface {
	Load(ctx context.Context, applicationID string) (*models.Application, error)
	ListActive(ctx context.Context) ([]models.Application, error)
	UpdateStatus(ctx context.Context, applicationID string, from, to models.Status, updatedAt time.Time) error
}

// ReadinessOracle is the subset of oracle queries the evaluator derives
// candidate transitions from.
type ReadinessOracle interface {
	DocumentsComplete(ctx context.Context, applicationID string) (bool, error)
	HasMissingDocuments(ctx context.Context, applicationID string) (bool, error)
	MissingDocumentKinds(ctx context.Context, applicationID string) ([]models.DocumentKind, error)
	EvaluationsAssigned(ctx context.Context, applicationID string) (bool, error)
	InterviewCompleted(ctx context.Context, applicationID string) (bool, error)
	AllEvaluationsComplete(ctx context.Context, applicationID string) (bool, error)
	AdmissionScore(ctx context.Context, applicationID string) (*float64, error)
}

// TransitionValidator approves or vetoes a proposed transition.
type TransitionValidator interface {
	ValidateTransition(ctx context.Context, applicationID string, from, to models.Status) (transition.Result, error)
}

// Notifier delivers best-effort notifications. Failures are logged and
// never roll back a committed transition.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, applicationID string, from, to models.Status) error
	NotifyMissingDocuments(ctx context.Context, applicationID string, kinds []models.DocumentKind) error
}

// AuditRecorder appends transition records for observability.
type AuditRecorder interface {
	Record(ctx context.Context, record models.TransitionRecord)
}

// BatchError pairs a failed application with its error.
type BatchError struct {
	ApplicationID string
	Err           error
}

// Summary reports the result of one batch run.
type Summary struct {
	Attempted int
	Advanced  int
	Errors    []BatchError
}

type Evaluator struct {
	apps      ApplicationStore
	oracle    ReadinessOracle
	validator TransitionValidator
	notifier  Notifier
	audit     AuditRecorder
	obs       *observability.Observability
	logger    logger.Logger

	cfg             config.AdmissionConfig
	workers         int
	dispatchTimeout time.Duration
	now             func() time.Time
}

func NewEvaluator(
	apps ApplicationStore,
	oracle ReadinessOracle,
	validator TransitionValidator,
	notifier Notifier,
	audit AuditRecorder,
	cfg config.AdmissionConfig,
	workers int,
	dispatchTimeout time.Duration,
	obs *observability.Observability,
	log logger.Logger,
) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Evaluator{
		apps:            apps,
		oracle:          oracle,
		validator:       validator,
		notifier:        notifier,
		audit:           audit,
		obs:             obs,
		cfg:             cfg,
		workers:         workers,
		dispatchTimeout: dispatchTimeout,
		logger:          log.WithFields(map[string]interface{}{"component": "workflow-evaluator"}),
		now:             time.Now,
	}
}

// DetermineNextStatus computes the candidate next status for the
// application from its current status and live readiness signals. It
// performs no mutation; a Stay decision is a normal outcome.
func (e *Evaluator) DetermineNextStatus(ctx context.Context, app *models.Application) (Decision, error) {
	stay := Decision{Next: app.Status, Stay: true}

	switch app.Status {
	case models.StatusPending:
		complete, err := e.oracle.DocumentsComplete(ctx, app.ID)
		if err != nil {
			return Decision{}, err
		}
		if complete {
			return Decision{Next: models.StatusUnderReview, Reason: "critical documents present"}, nil
		}
		return stay, nil

	case models.StatusUnderReview:
		assigned, err := e.oracle.EvaluationsAssigned(ctx, app.ID)
		if err != nil {
			return Decision{}, err
		}
		if assigned {
			return Decision{Next: models.StatusInterviewScheduled, Reason: "mandatory evaluations assigned"}, nil
		}

		missing, err := e.oracle.HasMissingDocuments(ctx, app.ID)
		if err != nil {
			return Decision{}, err
		}
		if missing {
			kinds, err := e.oracle.MissingDocumentKinds(ctx, app.ID)
			if err != nil {
				return Decision{}, err
			}
			return Decision{
				Next:         models.StatusDocumentsRequested,
				Reason:       "required documents missing",
				MissingKinds: kinds,
			}, nil
		}
		return stay, nil

	case models.StatusDocumentsRequested:
		complete, err := e.oracle.DocumentsComplete(ctx, app.ID)
		if err != nil {
			return Decision{}, err
		}
		if complete {
			return Decision{Next: models.StatusUnderReview, Reason: "requested documents received"}, nil
		}
		return stay, nil

	case models.StatusInterviewScheduled:
		done, err := e.oracle.InterviewCompleted(ctx, app.ID)
		if err != nil {
			return Decision{}, err
		}
		if done {
			return Decision{Next: models.StatusExamScheduled, Reason: "interview completed"}, nil
		}
		return stay, nil

	case models.StatusExamScheduled:
		complete, err := e.oracle.AllEvaluationsComplete(ctx, app.ID)
		if err != nil {
			return Decision{}, err
		}
		if !complete {
			return stay, nil
		}
		return e.resolveAdmission(ctx, app)

	case models.StatusApproved, models.StatusRejected, models.StatusWaitlist:
		return stay, nil
	}

	return Decision{}, errors.NewInvalidStatusError(string(app.Status))
}

// resolveAdmission maps the aggregated admission score onto the final
// decision. Boundary values resolve to the higher band.
func (e *Evaluator) resolveAdmission(ctx context.Context, app *models.Application) (Decision, error) {
	score, err := e.oracle.AdmissionScore(ctx, app.ID)
	if err != nil {
		return Decision{}, err
	}
	if score == nil {
		e.logger.Warn("all evaluations complete but no valid score", map[string]interface{}{
			"applicationId": app.ID,
		})
		return Decision{Next: app.Status, Stay: true}, nil
	}

	switch {
	case *score >= e.cfg.ApproveThreshold:
		return Decision{Next: models.StatusApproved, Reason: "admission score meets approval threshold"}, nil
	case *score >= e.cfg.WaitlistThreshold:
		return Decision{Next: models.StatusWaitlist, Reason: "admission score in waitlist band"}, nil
	default:
		return Decision{Next: models.StatusRejected, Reason: "admission score below waitlist threshold"}, nil
	}
}

// EvaluateAndAdvance runs one evaluation pass for a single application.
// It returns true only when a transition was committed. Blocked and
// stale outcomes return false without error; collaborator failures
// surface as errors so the batch retries next cycle.
func (e *Evaluator) EvaluateAndAdvance(ctx context.Context, applicationID string) (bool, error) {
	app, err := e.apps.Load(ctx, applicationID)
	if err != nil {
		return false, err
	}

	decision, err := e.DetermineNextStatus(ctx, app)
	if err != nil {
		return false, err
	}
	if decision.Stay {
		e.recordOutcome(ctx, OutcomeStay)
		e.logger.Debug("no transition due", map[string]interface{}{
			"applicationId": app.ID,
			"status":        app.Status,
		})
		return false, nil
	}

	res, err := e.validator.ValidateTransition(ctx, app.ID, app.Status, decision.Next)
	if err != nil {
		return false, err
	}
	if !res.Valid {
		e.recordOutcome(ctx, OutcomeBlocked)
		metrics.TransitionsRejected.WithLabelValues(res.Check).Inc()
		e.logger.Warn("transition blocked", map[string]interface{}{
			"applicationId": app.ID,
			"from":          app.Status,
			"to":            decision.Next,
			"check":         res.Check,
			"message":       res.Message,
		})
		return false, nil
	}

	committedAt := e.now()
	if err := e.apps.UpdateStatus(ctx, app.ID, app.Status, decision.Next, committedAt); err != nil {
		if errors.IsStaleState(err) {
			// Lost the race to another evaluator; the next cycle will
			// recompute from the fresh status.
			e.recordOutcome(ctx, OutcomeStale)
			e.logger.Info("stale status, transition dropped", map[string]interface{}{
				"applicationId": app.ID,
				"from":          app.Status,
				"to":            decision.Next,
			})
			return false, nil
		}
		return false, err
	}

	record := models.TransitionRecord{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		From:          app.Status,
		To:            decision.Next,
		Reason:        decision.Reason,
		Timestamp:     committedAt,
	}
	e.audit.Record(ctx, record)

	e.recordOutcome(ctx, OutcomeAdvanced)
	metrics.TransitionsCommitted.WithLabelValues(string(app.Status), string(decision.Next)).Inc()
	e.logger.Info("transition committed", map[string]interface{}{
		"applicationId": app.ID,
		"from":          app.Status,
		"to":            decision.Next,
		"reason":        decision.Reason,
	})

	e.dispatchNotifications(app.ID, app.Status, decision)

	return true, nil
}

// recordOutcome counts one evaluation result on both the prometheus
// counter and the OTel pipeline.
func (e *Evaluator) recordOutcome(ctx context.Context, outcome Outcome) {
	metrics.EvaluationsTotal.WithLabelValues(string(outcome)).Inc()
	e.obs.RecordEvaluation(ctx, string(outcome))
}

// dispatchNotifications fires best-effort notifications outside the
// commit path. It must never be awaited inside the critical section.
func (e *Evaluator) dispatchNotifications(applicationID string, from models.Status, decision Decision) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.dispatchTimeout)
		defer cancel()

		if err := e.notifier.NotifyStatusChange(ctx, applicationID, from, decision.Next); err != nil {
			e.logger.Warn("status change notification failed", map[string]interface{}{
				"applicationId": applicationID,
				"error":         err.Error(),
			})
		}

		if decision.Next == models.StatusDocumentsRequested && len(decision.MissingKinds) > 0 {
			if err := e.notifier.NotifyMissingDocuments(ctx, applicationID, decision.MissingKinds); err != nil {
				e.logger.Warn("missing documents notification failed", map[string]interface{}{
					"applicationId": applicationID,
					"error":         err.Error(),
				})
			}
		}
	}()
}

// EvaluateAllPending re-evaluates every non-terminal application.
// Applications are independent, so they fan out over a bounded worker
// pool; per-application failures are collected and never abort the
// batch. The loop is interruptible between applications, not
// mid-application.
func (e *Evaluator) EvaluateAllPending(ctx context.Context) (Summary, error) {
	apps, err := e.apps.ListActive(ctx)
	if err != nil {
		return Summary{}, err
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary Summary
		sem     = make(chan struct{}, e.workers)
	)

	// launched is owned by this goroutine; summary fields belong to the
	// workers under mu until wg.Wait returns.
	launched := 0
	for _, app := range apps {
		if ctx.Err() != nil {
			e.logger.Warn("batch interrupted", map[string]interface{}{
				"remaining": len(apps) - launched,
			})
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		launched++

		go func(app models.Application) {
			defer wg.Done()
			defer func() { <-sem }()

			advanced, err := e.EvaluateAndAdvance(ctx, app.ID)

			mu.Lock()
			defer mu.Unlock()
			summary.Attempted++
			if advanced {
				summary.Advanced++
			}
			if err != nil {
				summary.Errors = append(summary.Errors, BatchError{ApplicationID: app.ID, Err: err})
			}
		}(app)
	}

	wg.Wait()

	e.logger.Info("batch evaluation finished", map[string]interface{}{
		"attempted": summary.Attempted,
		"advanced":  summary.Advanced,
		"errors":    len(summary.Errors),
	})

	return summary, nil
}
