package entity

import "errors"

// Failure kinds. Components wrap these so callers can classify with errors.Is.
var (
	ErrInputValidation = errors.New("input validation failure")
	ErrUIDriver        = errors.New("ui driver failure")
	ErrConnectivity    = errors.New("connectivity failure")
	ErrExtraction      = errors.New("extraction failure")
	ErrCalendarOrder   = errors.New("calendar target precedes current month")
	ErrCaptureFallback = errors.New("capture fell back to origin url")
)
