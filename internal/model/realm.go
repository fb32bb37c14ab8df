package model

import "time"

type Realm struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	// ModerationRequestStream receives message reports. Nil disables reporting.
	ModerationRequestStream *Stream   `json:"moderation_request_stream,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
}

// ReportingEnabled reports whether message reports have somewhere to go.
func (r Realm) ReportingEnabled() bool {
	return r.ModerationRequestStream != nil
}
