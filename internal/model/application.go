package model

import "time"

// ApplicationStatus represents the aggregate review state of an application.
type ApplicationStatus string

// Application states. FundsReleased is terminal.
const (
	AppPending       ApplicationStatus = "pending"
	AppApproved      ApplicationStatus = "approved"
	AppRejected      ApplicationStatus = "rejected"
	AppFundsReleased ApplicationStatus = "Funds Released"
)

// Application is the aggregate root for one citizen benefit request.
// Status is derived from the approval flags and the rejection decision;
// it is never set independently of them.
type Application struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	ApplicantID     string
	ApplicantName   string
	SchemeID        string
	RejectionReason string
	Documents       []Document
	RequestedAmount float64
	AIApproved      bool
	HumanApproved   bool
	FundsReleased   bool
	Rejected        bool
}

// Status derives the aggregate status from the decision flags.
func (a *Application) Status() ApplicationStatus {
	switch {
	case a.FundsReleased:
		return AppFundsReleased
	case a.Rejected:
		return AppRejected
	case a.HumanApproved:
		return AppApproved
	default:
		return AppPending
	}
}

// UnverifiedDocuments returns the documents not yet in the verified state.
func (a *Application) UnverifiedDocuments() []Document {
	var out []Document
	for _, doc := range a.Documents {
		if doc.Status != DocVerified {
			out = append(out, doc)
		}
	}
	return out
}
