// internal/oracle/oracle_test.go
package oracle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"admission-engine/internal/common/errors"
	"admission-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeDocuments struct {
	missing []models.DocumentKind
	err     error
}

func (f *fakeDocuments) MissingKinds(_ context.Context, _ string) ([]models.DocumentKind, error) {
	return f.missing, f.err
}

type fakeEvaluations struct {
	evals []models.Evaluation
	err   error
}

func (f *fakeEvaluations) EvaluationsFor(_ context.Context, _ string) ([]models.Evaluation, error) {
	return f.evals, f.err
}

type fakeInterviews struct {
	interviews []models.Interview
	err        error
}

func (f *fakeInterviews) InterviewsFor(_ context.Context, _ string) ([]models.Interview, error) {
	return f.interviews, f.err
}

func newTestOracle(docs *fakeDocuments, evals *fakeEvaluations, ivs *fakeInterviews) *Oracle {
	if docs == nil {
		docs = &fakeDocuments{}
	}
	if evals == nil {
		evals = &fakeEvaluations{}
	}
	if ivs == nil {
		ivs = &fakeInterviews{}
	}
	return New(docs, evals, ivs)
}

func completedEvaluation(evalType models.EvaluationType, score float64) models.Evaluation {
	now := time.Now().UTC()
	return models.Evaluation{
		ID:            "eval-" + string(evalType),
		ApplicationID: "app-001",
		Type:          evalType,
		Status:        models.EvaluationCompleted,
		EvaluatorID:   "evaluator-1",
		Score:         score,
		CompletedAt:   &now,
	}
}

func pendingEvaluation(evalType models.EvaluationType, evaluatorID string) models.Evaluation {
	return models.Evaluation{
		ID:            "eval-" + string(evalType),
		ApplicationID: "app-001",
		Type:          evalType,
		Status:        models.EvaluationPending,
		EvaluatorID:   evaluatorID,
	}
}

func assignedMandatoryEvaluations() []models.Evaluation {
	return []models.Evaluation{
		pendingEvaluation(models.EvaluationLanguage, "evaluator-1"),
		pendingEvaluation(models.EvaluationMathematics, "evaluator-2"),
		pendingEvaluation(models.EvaluationPsychologicalInterview, "evaluator-3"),
	}
}

// ==========================
// Document Queries
// ==========================

func TestOracle_DocumentsComplete(t *testing.T) {
	tests := []struct {
		name     string
		missing  []models.DocumentKind
		expected bool
	}{
		{
			name:     "no missing documents",
			missing:  nil,
			expected: true,
		},
		{
			name:     "only non-critical document missing",
			missing:  []models.DocumentKind{models.DocVaccinationRecord},
			expected: true,
		},
		{
			name:     "critical document missing",
			missing:  []models.DocumentKind{models.DocBirthCertificate},
			expected: false,
		},
		{
			name: "critical missing among non-critical",
			missing: []models.DocumentKind{
				models.DocGuardianID,
				models.DocStudentPhoto,
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOracle(&fakeDocuments{missing: tt.missing}, nil, nil)

			got, err := o.DocumentsComplete(context.Background(), "app-001")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOracle_HasMissingDocuments(t *testing.T) {
	o := newTestOracle(&fakeDocuments{missing: []models.DocumentKind{models.DocGuardianID}}, nil, nil)

	got, err := o.HasMissingDocuments(context.Background(), "app-001")
	require.NoError(t, err)
	assert.True(t, got)

	o = newTestOracle(&fakeDocuments{}, nil, nil)
	got, err = o.HasMissingDocuments(context.Background(), "app-001")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestOracle_DocumentServiceUnavailable(t *testing.T) {
	o := newTestOracle(&fakeDocuments{err: fmt.Errorf("connection refused")}, nil, nil)

	got, err := o.DocumentsComplete(context.Background(), "app-001")
	assert.False(t, got)
	require.Error(t, err)
	assert.True(t, errors.IsCollaborator(err))
}

// ==========================
// Evaluation Queries
// ==========================

func TestOracle_EvaluationsAssigned(t *testing.T) {
	tests := []struct {
		name     string
		evals    []models.Evaluation
		expected bool
	}{
		{
			name:     "all mandatory types assigned",
			evals:    assignedMandatoryEvaluations(),
			expected: true,
		},
		{
			name: "mandatory type missing",
			evals: []models.Evaluation{
				pendingEvaluation(models.EvaluationLanguage, "evaluator-1"),
				pendingEvaluation(models.EvaluationMathematics, "evaluator-2"),
			},
			expected: false,
		},
		{
			name: "mandatory type without evaluator",
			evals: []models.Evaluation{
				pendingEvaluation(models.EvaluationLanguage, "evaluator-1"),
				pendingEvaluation(models.EvaluationMathematics, "evaluator-2"),
				pendingEvaluation(models.EvaluationPsychologicalInterview, ""),
			},
			expected: false,
		},
		{
			name: "optional types do not substitute",
			evals: []models.Evaluation{
				pendingEvaluation(models.EvaluationEnglish, "evaluator-1"),
				pendingEvaluation(models.EvaluationCycleDirectorReport, "evaluator-2"),
				pendingEvaluation(models.EvaluationCycleDirectorInterview, "evaluator-3"),
			},
			expected: false,
		},
		{
			name:     "no evaluations",
			evals:    nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOracle(nil, &fakeEvaluations{evals: tt.evals}, nil)

			got, err := o.EvaluationsAssigned(context.Background(), "app-001")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOracle_AllEvaluationsComplete(t *testing.T) {
	tests := []struct {
		name     string
		evals    []models.Evaluation
		expected bool
	}{
		{
			name: "three completed",
			evals: []models.Evaluation{
				completedEvaluation(models.EvaluationLanguage, 8),
				completedEvaluation(models.EvaluationMathematics, 7),
				completedEvaluation(models.EvaluationPsychologicalInterview, 9),
			},
			expected: true,
		},
		{
			name: "fewer than three",
			evals: []models.Evaluation{
				completedEvaluation(models.EvaluationLanguage, 8),
				completedEvaluation(models.EvaluationMathematics, 7),
			},
			expected: false,
		},
		{
			name: "one still pending",
			evals: []models.Evaluation{
				completedEvaluation(models.EvaluationLanguage, 8),
				completedEvaluation(models.EvaluationMathematics, 7),
				pendingEvaluation(models.EvaluationPsychologicalInterview, "evaluator-3"),
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOracle(nil, &fakeEvaluations{evals: tt.evals}, nil)

			got, err := o.AllEvaluationsComplete(context.Background(), "app-001")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOracle_AdmissionScore(t *testing.T) {
	t.Run("mean of positive scores", func(t *testing.T) {
		o := newTestOracle(nil, &fakeEvaluations{evals: []models.Evaluation{
			completedEvaluation(models.EvaluationLanguage, 8.0),
			completedEvaluation(models.EvaluationMathematics, 6.0),
			completedEvaluation(models.EvaluationPsychologicalInterview, 7.0),
		}}, nil)

		score, err := o.AdmissionScore(context.Background(), "app-001")
		require.NoError(t, err)
		require.NotNil(t, score)
		assert.InDelta(t, 7.0, *score, 0.0001)
	})

	t.Run("zero scores excluded from mean", func(t *testing.T) {
		o := newTestOracle(nil, &fakeEvaluations{evals: []models.Evaluation{
			completedEvaluation(models.EvaluationLanguage, 8.0),
			completedEvaluation(models.EvaluationMathematics, 0),
			completedEvaluation(models.EvaluationPsychologicalInterview, 6.0),
		}}, nil)

		score, err := o.AdmissionScore(context.Background(), "app-001")
		require.NoError(t, err)
		require.NotNil(t, score)
		assert.InDelta(t, 7.0, *score, 0.0001)
	})

	t.Run("no valid scores yields nil", func(t *testing.T) {
		o := newTestOracle(nil, &fakeEvaluations{evals: []models.Evaluation{
			pendingEvaluation(models.EvaluationLanguage, "evaluator-1"),
			pendingEvaluation(models.EvaluationMathematics, "evaluator-2"),
		}}, nil)

		score, err := o.AdmissionScore(context.Background(), "app-001")
		require.NoError(t, err)
		assert.Nil(t, score)
	})

	t.Run("collaborator failure propagates", func(t *testing.T) {
		o := newTestOracle(nil, &fakeEvaluations{err: fmt.Errorf("timeout")}, nil)

		score, err := o.AdmissionScore(context.Background(), "app-001")
		assert.Nil(t, score)
		require.Error(t, err)
		assert.True(t, errors.IsCollaborator(err))
	})
}

func TestOracle_HasCompletedEvaluation(t *testing.T) {
	o := newTestOracle(nil, &fakeEvaluations{evals: []models.Evaluation{
		pendingEvaluation(models.EvaluationLanguage, "evaluator-1"),
		completedEvaluation(models.EvaluationMathematics, 6.5),
	}}, nil)

	got, err := o.HasCompletedEvaluation(context.Background(), "app-001")
	require.NoError(t, err)
	assert.True(t, got)

	o = newTestOracle(nil, &fakeEvaluations{evals: assignedMandatoryEvaluations()}, nil)
	got, err = o.HasCompletedEvaluation(context.Background(), "app-001")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestOracle_HasFinalRecommendation(t *testing.T) {
	recommended := completedEvaluation(models.EvaluationCycleDirectorReport, 9)
	recommended.FinalRecommendation = true

	o := newTestOracle(nil, &fakeEvaluations{evals: []models.Evaluation{
		completedEvaluation(models.EvaluationLanguage, 8),
		recommended,
	}}, nil)

	got, err := o.HasFinalRecommendation(context.Background(), "app-001")
	require.NoError(t, err)
	assert.True(t, got)

	o = newTestOracle(nil, &fakeEvaluations{evals: []models.Evaluation{
		completedEvaluation(models.EvaluationLanguage, 8),
	}}, nil)
	got, err = o.HasFinalRecommendation(context.Background(), "app-001")
	require.NoError(t, err)
	assert.False(t, got)
}

// ==========================
// Interview Queries
// ==========================

func TestOracle_InterviewCompleted(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		interviews []models.Interview
		expected   bool
	}{
		{
			name:       "no interviews",
			interviews: nil,
			expected:   false,
		},
		{
			name: "earliest completed",
			interviews: []models.Interview{
				{ID: "iv-1", Type: models.InterviewFamily, Status: models.InterviewCompleted, ScheduledAt: base},
				{ID: "iv-2", Type: models.InterviewAcademic, Status: models.InterviewScheduled, ScheduledAt: base.Add(48 * time.Hour)},
			},
			expected: true,
		},
		{
			name: "earliest still scheduled even though a later one completed",
			interviews: []models.Interview{
				{ID: "iv-1", Type: models.InterviewFamily, Status: models.InterviewScheduled, ScheduledAt: base},
				{ID: "iv-2", Type: models.InterviewAcademic, Status: models.InterviewCompleted, ScheduledAt: base.Add(48 * time.Hour)},
			},
			expected: false,
		},
		{
			name: "earliest cancelled",
			interviews: []models.Interview{
				{ID: "iv-1", Type: models.InterviewFamily, Status: models.InterviewCancelled, ScheduledAt: base},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOracle(nil, nil, &fakeInterviews{interviews: tt.interviews})

			got, err := o.InterviewCompleted(context.Background(), "app-001")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOracle_CompletedPositiveInterview(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		interviews []models.Interview
		expected   bool
	}{
		{
			name: "completed with positive result",
			interviews: []models.Interview{
				{ID: "iv-1", Status: models.InterviewCompleted, Result: models.ResultPositive, ScheduledAt: base},
			},
			expected: true,
		},
		{
			name: "completed but negative",
			interviews: []models.Interview{
				{ID: "iv-1", Status: models.InterviewCompleted, Result: models.ResultNegative, ScheduledAt: base},
			},
			expected: false,
		},
		{
			name: "positive result pending completion",
			interviews: []models.Interview{
				{ID: "iv-1", Status: models.InterviewInProgress, Result: models.ResultPositive, ScheduledAt: base},
			},
			expected: false,
		},
		{
			name: "pending review does not count",
			interviews: []models.Interview{
				{ID: "iv-1", Status: models.InterviewCompleted, Result: models.ResultPendingReview, ScheduledAt: base},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOracle(nil, nil, &fakeInterviews{interviews: tt.interviews})

			got, err := o.CompletedPositiveInterview(context.Background(), "app-001")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
