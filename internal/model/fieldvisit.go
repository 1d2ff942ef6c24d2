package model

import "time"

// FieldVisit is the payload of a deferred field action: a photo captured
// during a site visit, recorded offline and applied to the remote store on
// the next sync.
type FieldVisit struct {
	CapturedAt    time.Time `json:"captured_at"`
	ApplicationID string    `json:"application_id"`
	PhotoURL      string    `json:"photo_url"`
	Caption       string    `json:"caption,omitempty"`
	CapturedBy    string    `json:"captured_by"`
}
