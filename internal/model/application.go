package model

import "time"

// Status is the classified state of a job application, derived from the
// most recent matching email. Values are the exact strings rendered in
// the table and CSV export.
type Status string

const (
	StatusApplicationSent    Status = "Application Sent"
	StatusInterviewRequested Status = "Interview Requested"
	StatusRejected           Status = "Rejected"
)

// AllStatuses lists the statuses in display order.
var AllStatuses = []Status{
	StatusApplicationSent,
	StatusInterviewRequested,
	StatusRejected,
}

// ApplicationKey identifies a single application for deduplication.
// Both fields are derived strings: the company comes from the sender's
// domain and the job title from the email subject, so two differently
// worded subjects about the same real job produce separate records.
type ApplicationKey struct {
	Company  string
	JobTitle string
}

// Application is one tracked job application, aggregated from every
// classified email sharing its key within a scan.
type Application struct {
	// Company is the title-cased sender domain, or "Unknown" when the
	// sender address carries no domain.
	Company string `json:"company" db:"company"`

	// JobTitle is the subject text after the last " at " separator,
	// or the whole subject when the separator is absent.
	JobTitle string `json:"job_title" db:"job_title"`

	// Status comes from the most recently dated classified email.
	Status Status `json:"status" db:"status"`

	// DateApplied is the date of the email that set the current status.
	// It follows the most recent contributing email, so a later status
	// change moves it forward along with LastUpdate.
	DateApplied time.Time `json:"date_applied" db:"date_applied"`

	// LastUpdate is the UTC timestamp of the most recent contributing
	// email. It never decreases within a scan.
	LastUpdate time.Time `json:"last_update" db:"last_update"`

	// Subject is the subject line of the most recent contributing email.
	Subject string `json:"subject" db:"subject"`
}

// Key returns the deduplication key for this application.
func (a Application) Key() ApplicationKey {
	return ApplicationKey{Company: a.Company, JobTitle: a.JobTitle}
}

// UnknownCompany is the sentinel used when no sender domain is found.
const UnknownCompany = "Unknown"
