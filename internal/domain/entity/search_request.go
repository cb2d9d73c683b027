package entity

import (
	"strings"
	"time"
)

// DateLayout is the day-month-year layout used by batch input and the search form
const DateLayout = "02-01-2006"

// Traveler indexes inside TravelerCounts
const (
	Adults = iota
	Students
	Seniors
	Youths
	Children
	Toddlers
	Infants
)

// TravelerGroups is the fixed number of traveler categories
const TravelerGroups = 7

// TravelerCounts holds one count per traveler category, in the order
// adults, students, seniors, youths, children, toddlers, infants
type TravelerCounts [TravelerGroups]int

// Primary returns the number of travelers able to hold an infant
func (t TravelerCounts) Primary() int {
	return t[Adults] + t[Students] + t[Seniors]
}

// Dependents returns the number of children, toddlers and infants
func (t TravelerCounts) Dependents() int {
	return t[Children] + t[Toddlers] + t[Infants]
}

// Total returns the number of travelers across all categories
func (t TravelerCounts) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// CabinClass is the requested seating class
type CabinClass int

const (
	Economy CabinClass = iota
	PremiumEconomy
	Business
	First
)

// String returns the display name used in logs and stores
func (c CabinClass) String() string {
	switch c {
	case PremiumEconomy:
		return "premium_economy"
	case Business:
		return "business"
	case First:
		return "first"
	default:
		return "economy"
	}
}

// RawRequest is one batch row before normalization
type RawRequest struct {
	SourceID    string
	Origin      string
	Destination string
	DepartDate  string
	ReturnDate  string
	Travelers   string
	CabinClass  string
}

// SearchRequest is a normalized flight search, immutable once built
type SearchRequest struct {
	SourceID    string
	Origin      string
	Destination string
	DepartDate  time.Time
	ReturnDate  time.Time
	Travelers   TravelerCounts
	CabinClass  CabinClass
}

// Route returns "ORIGIN-DESTINATION" for log fields
func (r SearchRequest) Route() string {
	return r.Origin + "-" + r.Destination
}

// Correction describes a change the normalizer made to a raw field
type Correction struct {
	Field  string
	Raw    string
	Result string
	Reason string
}

// String renders a correction as a single log-friendly token
func (c Correction) String() string {
	var b strings.Builder
	b.WriteString(c.Field)
	b.WriteString(": ")
	b.WriteString(c.Raw)
	b.WriteString(" -> ")
	b.WriteString(c.Result)
	if c.Reason != "" {
		b.WriteString(" (")
		b.WriteString(c.Reason)
		b.WriteString(")")
	}
	return b.String()
}
