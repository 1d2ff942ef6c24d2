// Package model defines the core domain types for the benefit review portal.
package model

import "time"

// DocumentStatus represents the review state of an uploaded document.
type DocumentStatus string

// Document review states.
const (
	// DocAttention is the initial state: the document awaits reviewer action.
	DocAttention DocumentStatus = "attention"
	// DocVerified means a reviewer accepted the document.
	DocVerified DocumentStatus = "verified"
	// DocRejected means a reviewer rejected the document with a reason.
	DocRejected DocumentStatus = "rejected"
)

// Valid reports whether s is a known document status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocAttention, DocVerified, DocRejected:
		return true
	}
	return false
}

// Document is one uploaded file attached to an application under review.
type Document struct {
	LastModifiedAt  time.Time
	ID              string
	ApplicationID   string
	Type            string // declared document type, e.g. "aadhaar", "income_certificate"
	URL             string // storage locator for the uploaded file
	Status          DocumentStatus
	RejectionReason string // non-empty iff Status == DocRejected
	LastModifiedBy  string // reviewer identity of the last transition
}
