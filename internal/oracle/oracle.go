// internal/oracle/oracle.go

// Package oracle answers readiness questions about an application by
// querying the external collaborators that own documents, evaluations
// and interviews. It is stateless and read-only: every query reflects
// the latest collaborator state, nothing is cached.
package oracle

import (
	"context"

	"admission-engine/internal/common/errors"
	"admission-engine/internal/models"
)

// minEvaluations is the smallest evaluation set considered a complete
// assessment for the final decision.
const minEvaluations = 3

// DocumentService is the read surface of the document subsystem.
type DocumentService interface {
	// MissingKinds returns the required document kinds not yet uploaded
	// for the application.
	MissingKinds(ctx context.Context, applicationID string) ([]models.DocumentKind, error)
}

// EvaluationService is the read surface of the evaluation subsystem.
type EvaluationService interface {
	EvaluationsFor(ctx context.Context, applicationID string) ([]models.Evaluation, error)
}

// InterviewService is the read surface of the interview subsystem.
type InterviewService interface {
	InterviewsFor(ctx context.Context, applicationID string) ([]models.Interview, error)
}

// Oracle evaluates readiness predicates. A collaborator failure surfaces
// as a COLLABORATOR_UNAVAILABLE error; callers must treat it as "not
// ready" and retry on the next cycle, never crash the batch.
type Oracle struct {
	documents   DocumentService
	evaluations EvaluationService
	interviews  InterviewService
}

func New(documents DocumentService, evaluations EvaluationService, interviews InterviewService) *Oracle {
	return &Oracle{
		documents:   documents,
		evaluations: evaluations,
		interviews:  interviews,
	}
}

// DocumentsComplete reports whether every critical document kind is
// present. A missing non-critical document does not block.
func (o *Oracle) DocumentsComplete(ctx context.Context, applicationID string) (bool, error) {
	missing, err := o.documents.MissingKinds(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("documents", err)
	}

	for _, kind := range missing {
		for _, critical := range models.CriticalDocumentKinds {
			if kind == critical {
				return false, nil
			}
		}
	}
	return true, nil
}

// HasMissingDocuments reports whether any required document, critical or
// not, is absent.
func (o *Oracle) HasMissingDocuments(ctx context.Context, applicationID string) (bool, error) {
	missing, err := o.documents.MissingKinds(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("documents", err)
	}
	return len(missing) > 0, nil
}

// MissingDocumentKinds returns the absent required kinds, for inclusion
// in follow-up notifications.
func (o *Oracle) MissingDocumentKinds(ctx context.Context, applicationID string) ([]models.DocumentKind, error) {
	missing, err := o.documents.MissingKinds(ctx, applicationID)
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("documents", err)
	}
	return missing, nil
}

// EvaluationsAssigned reports whether evaluations of all mandatory types
// exist and each has an evaluator assigned.
func (o *Oracle) EvaluationsAssigned(ctx context.Context, applicationID string) (bool, error) {
	evals, err := o.evaluations.EvaluationsFor(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("evaluations", err)
	}

	for _, required := range models.MandatoryEvaluationTypes {
		assigned := false
		for _, ev := range evals {
			if ev.Type == required && ev.EvaluatorID != "" {
				assigned = true
				break
			}
		}
		if !assigned {
			return false, nil
		}
	}
	return true, nil
}

// InterviewCompleted reports whether the earliest-scheduled interview
// for the application has run to completion.
func (o *Oracle) InterviewCompleted(ctx context.Context, applicationID string) (bool, error) {
	interviews, err := o.interviews.InterviewsFor(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("interviews", err)
	}
	if len(interviews) == 0 {
		return false, nil
	}

	earliest := interviews[0]
	for _, iv := range interviews[1:] {
		if iv.ScheduledAt.Before(earliest.ScheduledAt) {
			earliest = iv
		}
	}
	return earliest.Status == models.InterviewCompleted, nil
}

// AllEvaluationsComplete reports whether at least three evaluations
// exist and every one of them has been completed.
func (o *Oracle) AllEvaluationsComplete(ctx context.Context, applicationID string) (bool, error) {
	evals, err := o.evaluations.EvaluationsFor(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("evaluations", err)
	}
	if len(evals) < minEvaluations {
		return false, nil
	}

	for _, ev := range evals {
		if ev.Status != models.EvaluationCompleted {
			return false, nil
		}
	}
	return true, nil
}

// HasCompletedEvaluation reports whether at least one evaluation has
// been completed.
func (o *Oracle) HasCompletedEvaluation(ctx context.Context, applicationID string) (bool, error) {
	evals, err := o.evaluations.EvaluationsFor(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("evaluations", err)
	}

	for _, ev := range evals {
		if ev.Status == models.EvaluationCompleted {
			return true, nil
		}
	}
	return false, nil
}

// HasFinalRecommendation reports whether any evaluation carries a
// positive final recommendation.
func (o *Oracle) HasFinalRecommendation(ctx context.Context, applicationID string) (bool, error) {
	evals, err := o.evaluations.EvaluationsFor(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("evaluations", err)
	}

	for _, ev := range evals {
		if ev.FinalRecommendation {
			return true, nil
		}
	}
	return false, nil
}

// CompletedPositiveInterview reports whether at least one interview has
// been completed with a positive result.
func (o *Oracle) CompletedPositiveInterview(ctx context.Context, applicationID string) (bool, error) {
	interviews, err := o.interviews.InterviewsFor(ctx, applicationID)
	if err != nil {
		return false, errors.NewCollaboratorUnavailableError("interviews", err)
	}

	for _, iv := range interviews {
		if iv.Status == models.InterviewCompleted && iv.Result == models.ResultPositive {
			return true, nil
		}
	}
	return false, nil
}

// AdmissionScore returns the arithmetic mean of all evaluation scores
// greater than zero, or nil when no valid score exists.
func (o *Oracle) AdmissionScore(ctx context.Context, applicationID string) (*float64, error) {
	evals, err := o.evaluations.EvaluationsFor(ctx, applicationID)
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("evaluations", err)
	}

	var sum float64
	var count int
	for _, ev := range evals {
		if ev.Score > 0 {
			sum += ev.Score
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}

	mean := sum / float64(count)
	return &mean, nil
}
