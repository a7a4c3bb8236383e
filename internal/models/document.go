// internal/models/document.go
package models

import "time"

// DocumentKind identifies a required admission document.
type DocumentKind string

const (
	DocBirthCertificate   DocumentKind = "BIRTH_CERTIFICATE"
	DocStudentPhoto       DocumentKind = "STUDENT_PHOTO"
	DocAcademicTranscript DocumentKind = "ACADEMIC_TRANSCRIPT"
	DocVaccinationRecord  DocumentKind = "VACCINATION_RECORD"
	DocGuardianID         DocumentKind = "GUARDIAN_ID"
)

// RequiredDocumentKinds is the full set an application must eventually
// provide.
var RequiredDocumentKinds = []DocumentKind{
	DocBirthCertificate,
	DocStudentPhoto,
	DocAcademicTranscript,
	DocVaccinationRecord,
	DocGuardianID,
}

// CriticalDocumentKinds is the subset whose presence gates the move out
// of PENDING. A missing non-critical document requests follow-up but
// does not block review.
var CriticalDocumentKinds = []DocumentKind{
	DocBirthCertificate,
	DocStudentPhoto,
}

type Document struct {
	ID            string       `json:"id"`
	ApplicationID string       `json:"applicationId"`
	Kind          DocumentKind `json:"kind"`
	UploadedAt    time.Time    `json:"uploadedAt"`
}
