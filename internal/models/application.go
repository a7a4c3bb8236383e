// internal/models/application.go
package models

import "time"

// Status is the lifecycle state of an admission application.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusDocumentsRequested Status = "DOCUMENTS_REQUESTED"
	StatusUnderReview        Status = "UNDER_REVIEW"
	StatusInterviewScheduled Status = "INTERVIEW_SCHEDULED"
	StatusExamScheduled      Status = "EXAM_SCHEDULED"
	StatusApproved           Status = "APPROVED"
	StatusRejected           Status = "REJECTED"
	StatusWaitlist           Status = "WAITLIST"
)

// AllStatuses lists every valid application status.
var AllStatuses = []Status{
	StatusPending,
	StatusDocumentsRequested,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusExamScheduled,
	StatusApproved,
	StatusRejected,
	StatusWaitlist,
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s permits no further transition.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusWaitlist
}

// Application is the record tracking one student's admission request
// through the evaluation pipeline.
type Application struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	AccountID string    `json:"accountId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransitionRecord is an append-only audit entry emitted after every
// committed status change. Observability only; the engine never reads
// these back.
type TransitionRecord struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}
