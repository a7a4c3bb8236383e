// internal/models/interview.go
package models

import "time"

// InterviewType identifies one of the fixed interview kinds.
type InterviewType string

const (
	InterviewFamily        InterviewType = "FAMILY"
	InterviewPsychological InterviewType = "PSYCHOLOGICAL"
	InterviewAcademic      InterviewType = "ACADEMIC"
	InterviewIndividual    InterviewType = "INDIVIDUAL"
	InterviewBehavioral    InterviewType = "BEHAVIORAL"
)

// InterviewStatus follows the scheduling sub-state machine owned by the
// interview service. The engine only cares whether it reached COMPLETED.
type InterviewStatus string

const (
	InterviewScheduled  InterviewStatus = "SCHEDULED"
	InterviewConfirmed  InterviewStatus = "CONFIRMED"
	InterviewInProgress InterviewStatus = "IN_PROGRESS"
	InterviewCompleted  InterviewStatus = "COMPLETED"
	InterviewCancelled  InterviewStatus = "CANCELLED"
	InterviewNoShow     InterviewStatus = "NO_SHOW"
)

// InterviewResult is set by the interviewer on completion.
type InterviewResult string

const (
	ResultPositive         InterviewResult = "POSITIVE"
	ResultNeutral          InterviewResult = "NEUTRAL"
	ResultNegative         InterviewResult = "NEGATIVE"
	ResultPendingReview    InterviewResult = "PENDING_REVIEW"
	ResultRequiresFollowUp InterviewResult = "REQUIRES_FOLLOW_UP"
)

type Interview struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"applicationId"`
	Type          InterviewType   `json:"type"`
	Status        InterviewStatus `json:"status"`
	Result        InterviewResult `json:"result,omitempty"`
	ScheduledAt   time.Time       `json:"scheduledAt"`
}
