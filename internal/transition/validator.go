// internal/transition/validator.go

// Package transition decides whether an application may move from one
// status to another. Validation is layered: identity, static graph,
// status-specific readiness, then cross-cutting business rules, short
// circuiting on the first failure. The validator never mutates state.
package transition

import (
	"context"
	"fmt"
	"time"

	"admission-engine/internal/common/config"
	"admission-engine/internal/common/errors"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/models"
)

// Check names identify which validation layer rejected a transition.
const (
	CheckIdentity     = "identity"
	CheckGraph        = "graph"
	CheckReadiness    = "readiness"
	CheckBusinessRule = "business_rule"
)

// Result is the verdict for a proposed transition. A rejected transition
// is a normal outcome, not an error.
type Result struct {
	Valid   bool   `json:"valid"`
	Check   string `json:"check,omitempty"`
	Message string `json:"message,omitempty"`
}

func rejected(check, format string, args ...interface{}) Result {
	return Result{Valid: false, Check: check, Message: fmt.Sprintf(format, args...)}
}

// ApplicationGetter loads the persisted application record.
type ApplicationGetter interface {
	Load(ctx context.Context, applicationID string) (*models.Application, error)
}

// ReadinessOracle is the subset of oracle queries the validator gates
// transitions on.
type ReadinessOracle interface {
	AllEvaluationsComplete(ctx context.Context, applicationID string) (bool, error)
	HasFinalRecommendation(ctx context.Context, applicationID string) (bool, error)
	HasCompletedEvaluation(ctx context.Context, applicationID string) (bool, error)
	CompletedPositiveInterview(ctx context.Context, applicationID string) (bool, error)
}

type Validator struct {
	apps   ApplicationGetter
	oracle ReadinessOracle
	cfg    config.AdmissionConfig
	logger logger.Logger
	now    func() time.Time
}

func NewValidator(apps ApplicationGetter, oracle ReadinessOracle, cfg config.AdmissionConfig, log logger.Logger) *Validator {
	return &Validator{
		apps:   apps,
		oracle: oracle,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "transition-validator"}),
		now:    time.Now,
	}
}

// ValidateTransition decides whether the application may move from
// `from` to `to`. It returns an error only for lookup failures and
// unreachable collaborators; every rule verdict arrives as a Result.
func (v *Validator) ValidateTransition(ctx context.Context, applicationID string, from, to models.Status) (Result, error) {
	if !from.IsValid() {
		return Result{}, errors.NewInvalidStatusError(string(from))
	}
	if !to.IsValid() {
		return Result{}, errors.NewInvalidStatusError(string(to))
	}

	app, err := v.apps.Load(ctx, applicationID)
	if err != nil {
		return Result{}, err
	}

	// 1. Identity: the caller's view of the current status must match
	// the persisted one. A mismatch means another evaluator got there
	// first; the transition must be recomputed, not forced.
	if from == to {
		return rejected(CheckIdentity, "proposed status equals current status %s", from), nil
	}
	if app.Status != from {
		return rejected(CheckIdentity, "persisted status is %s, expected %s", app.Status, from), nil
	}

	// 2. Static graph.
	if !graphAllows(from, to) {
		return rejected(CheckGraph, "no transition edge from %s to %s", from, to), nil
	}

	// 3. Status-specific readiness.
	if res, err := v.checkReadiness(ctx, app, to); err != nil || !res.Valid {
		return res, err
	}

	// 4. Cross-cutting business rules.
	if res := v.checkBusinessRules(app, from, to); !res.Valid {
		return res, nil
	}

	return Result{Valid: true}, nil
}

func (v *Validator) checkReadiness(ctx context.Context, app *models.Application, to models.Status) (Result, error) {
	switch to {
	case models.StatusUnderReview:
		if app.StudentID == "" {
			return rejected(CheckReadiness, "application has no linked student"), nil
		}
		if app.AccountID == "" {
			return rejected(CheckReadiness, "application has no linked applicant account"), nil
		}

	case models.StatusInterviewScheduled:
		hold := time.Duration(v.cfg.ReviewHoldHours) * time.Hour
		if inReview := v.now().Sub(app.UpdatedAt); inReview < hold {
			return rejected(CheckReadiness, "application must stay in %s for at least %s, only %s elapsed",
				models.StatusUnderReview, hold, inReview.Truncate(time.Minute)), nil
		}

	case models.StatusExamScheduled:
		ok, err := v.oracle.CompletedPositiveInterview(ctx, app.ID)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return rejected(CheckReadiness, "no completed interview with a positive result"), nil
		}

	case models.StatusApproved:
		complete, err := v.oracle.AllEvaluationsComplete(ctx, app.ID)
		if err != nil {
			return Result{}, err
		}
		if !complete {
			return rejected(CheckReadiness, "not all evaluations are complete"), nil
		}
		recommended, err := v.oracle.HasFinalRecommendation(ctx, app.ID)
		if err != nil {
			return Result{}, err
		}
		if !recommended {
			return rejected(CheckReadiness, "no evaluation carries a final recommendation"), nil
		}

	case models.StatusWaitlist:
		ok, err := v.oracle.HasCompletedEvaluation(ctx, app.ID)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return rejected(CheckReadiness, "no completed evaluation on record"), nil
		}

	case models.StatusRejected, models.StatusDocumentsRequested, models.StatusPending:
		// Always permitted once the graph edge exists.
	}

	return Result{Valid: true}, nil
}

func (v *Validator) checkBusinessRules(app *models.Application, from, to models.Status) Result {
	if from.IsTerminal() {
		return rejected(CheckBusinessRule, "status %s is terminal", from)
	}

	maxAge := time.Duration(v.cfg.MaxApplicationAgeDays) * 24 * time.Hour
	if age := v.now().Sub(app.CreatedAt); age > maxAge {
		return rejected(CheckBusinessRule, "application is %s old, past the %d-day processing window",
			age.Truncate(time.Hour), v.cfg.MaxApplicationAgeDays)
	}

	if isBackward(from, to) && to != models.StatusDocumentsRequested {
		return rejected(CheckBusinessRule, "backward transition from %s to %s is not allowed", from, to)
	}

	return Result{Valid: true}
}
