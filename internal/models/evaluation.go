// internal/models/evaluation.go
package models

import "time"

// EvaluationType identifies one of the fixed evaluation kinds. One
// evaluation exists per (application, type).
type EvaluationType string

const (
	EvaluationLanguage               EvaluationType = "LANGUAGE"
	EvaluationMathematics            EvaluationType = "MATHEMATICS"
	EvaluationEnglish                EvaluationType = "ENGLISH"
	EvaluationPsychologicalInterview EvaluationType = "PSYCHOLOGICAL_INTERVIEW"
	EvaluationCycleDirectorReport    EvaluationType = "CYCLE_DIRECTOR_REPORT"
	EvaluationCycleDirectorInterview EvaluationType = "CYCLE_DIRECTOR_INTERVIEW"
)

// MandatoryEvaluationTypes must all exist, with an evaluator assigned,
// before an application may be scheduled for interviews.
var MandatoryEvaluationTypes = []EvaluationType{
	EvaluationLanguage,
	EvaluationMathematics,
	EvaluationPsychologicalInterview,
}

type EvaluationStatus string

const (
	EvaluationPending   EvaluationStatus = "PENDING"
	EvaluationCompleted EvaluationStatus = "COMPLETED"
)

// Evaluation is an evaluator-submitted assessment. Score is on a 0-10
// scale; zero means not yet scored and is excluded from the admission
// score average.
type Evaluation struct {
	ID                  string           `json:"id"`
	ApplicationID       string           `json:"applicationId"`
	Type                EvaluationType   `json:"type"`
	Status              EvaluationStatus `json:"status"`
	EvaluatorID         string           `json:"evaluatorId,omitempty"`
	Score               float64          `json:"score,omitempty"`
	FinalRecommendation bool             `json:"finalRecommendation,omitempty"`
	CompletedAt         *time.Time       `json:"completedAt,omitempty"`
}
