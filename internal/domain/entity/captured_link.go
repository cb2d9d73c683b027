package entity

import "time"

// LinkStatus is the outcome of one link capture
type LinkStatus string

// Link statuses
const (
	LinkCaptured LinkStatus = "captured"
	LinkFailed   LinkStatus = "failed"
)

// Failure reasons recorded on failed links
const (
	ReasonCaptureFallback = "capture_fallback"
	ReasonUIDriver        = "ui_driver"
)

// CapturedLink is one append-only entry of the link log
type CapturedLink struct {
	ID        int64
	RunID     string
	SourceID  string
	Route     string
	URL       string
	OriginURL string
	Status    LinkStatus
	Reason    string
	CreatedAt time.Time
}

// Usable reports whether the link points at a search result page
func (l CapturedLink) Usable() bool {
	return l.Status == LinkCaptured && l.URL != ""
}
