package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/pkg/logger"
)

const (
	maxPrimaryTravelers   = 9
	maxDependentTravelers = 7
	maxDaysAhead          = 364
	farDateFallbackDays   = 362
)

// InputNormalizer turns raw batch fields into values the search form accepts
type InputNormalizer struct {
	defaultOrigin      string
	defaultDestination string
	logger             logger.Logger
}

// NewInputNormalizer creates a new input normalizer
func NewInputNormalizer(defaultOrigin, defaultDestination string, logger logger.Logger) *InputNormalizer {
	return &InputNormalizer{
		defaultOrigin:      defaultOrigin,
		defaultDestination: defaultDestination,
		logger:             logger,
	}
}

// NormalizeAirportCode uppercases raw and strips all whitespace.
// An empty result becomes the default origin code.
func (n *InputNormalizer) NormalizeAirportCode(raw string) string {
	code := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if code == "" {
		return n.defaultOrigin
	}
	return code
}

// ValidateAirportCodePair replaces both codes with the default pair when
// either is missing from the reference set. An empty set skips the check.
func (n *InputNormalizer) ValidateAirportCodePair(origin, destination string, known entity.AirportSet) (string, string) {
	if len(known) == 0 {
		return origin, destination
	}
	if !known.Contains(origin) || !known.Contains(destination) {
		return n.defaultOrigin, n.defaultDestination
	}
	return origin, destination
}

// NormalizeDate parses a DD-MM-YYYY date and clamps it into the bookable
// window relative to today: past or same-day dates move to tomorrow and
// dates more than 364 days out move to today+362.
func (n *InputNormalizer) NormalizeDate(raw string, today time.Time) (time.Time, error) {
	day := dateOf(today)
	cleaned := strings.Join(strings.Fields(raw), "")

	parsed, err := time.ParseInLocation(entity.DateLayout, cleaned, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", entity.ErrInputValidation, raw, err)
	}

	ahead := daysBetween(day, parsed)
	switch {
	case ahead <= 0:
		return day.AddDate(0, 0, 1), nil
	case ahead > maxDaysAhead:
		return day.AddDate(0, 0, farDateFallbackDays), nil
	}
	return parsed, nil
}

// ReconcileDatePair moves the return date to the day after departure when
// it does not fall strictly after it
func (n *InputNormalizer) ReconcileDatePair(depart, ret time.Time) (time.Time, time.Time) {
	if !ret.After(depart) {
		ret = depart.AddDate(0, 0, 1)
	}
	return depart, ret
}

// NormalizeTravelerCounts parses a comma separated list into the seven
// traveler categories and enforces the site's group limits in order:
// at least one primary traveler, at most nine primary travelers, at most
// seven travelers in the last four categories, and no more infants than
// primary travelers. Overflow is trimmed from the leftmost category first.
func (n *InputNormalizer) NormalizeTravelerCounts(raw string) entity.TravelerCounts {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)

	var counts entity.TravelerCounts
	for i, part := range strings.Split(cleaned, ",") {
		if i >= entity.TravelerGroups {
			break
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			v = 0
		}
		counts[i] = v
	}

	if counts.Primary() == 0 {
		counts[entity.Adults] = 1
	}
	if excess := counts.Primary() - maxPrimaryTravelers; excess > 0 {
		trimLeftmost(counts[entity.Adults:entity.Youths], excess)
	}
	// dependents are indices 3..6 (youths through infants); the excess is
	// trimmed from youths first, not from children
	if excess := sum(counts[entity.Youths:]) - maxDependentTravelers; excess > 0 {
		trimLeftmost(counts[entity.Youths:], excess)
	}
	if primary := counts.Primary(); counts[entity.Infants] > primary {
		counts[entity.Infants] = primary
	}
	return counts
}

// ParseCabinClass maps the first digit of raw to a cabin class.
// 1, 2 and 3 select premium economy, business and first; anything else is economy.
func (n *InputNormalizer) ParseCabinClass(raw string) entity.CabinClass {
	for _, r := range raw {
		if !unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '1':
			return entity.PremiumEconomy
		case '2':
			return entity.Business
		case '3':
			return entity.First
		}
		return entity.Economy
	}
	return entity.Economy
}

// Normalize builds a SearchRequest from a raw row. It never fails: every
// malformed field falls back to a deterministic default, reported in the
// returned corrections.
func (n *InputNormalizer) Normalize(raw entity.RawRequest, known entity.AirportSet, today time.Time) (entity.SearchRequest, []entity.Correction) {
	var corrections []entity.Correction
	note := func(field, from, to, reason string) {
		if from != to {
			corrections = append(corrections, entity.Correction{Field: field, Raw: from, Result: to, Reason: reason})
		}
	}

	origin := n.NormalizeAirportCode(raw.Origin)
	destination := n.NormalizeAirportCode(raw.Destination)
	validOrigin, validDestination := n.ValidateAirportCodePair(origin, destination, known)
	note("origin", raw.Origin, validOrigin, "")
	note("destination", raw.Destination, validDestination, "")

	depart, err := n.NormalizeDate(raw.DepartDate, today)
	if err != nil {
		depart = dateOf(today).AddDate(0, 0, 1)
		note("depart_date", raw.DepartDate, depart.Format(entity.DateLayout), err.Error())
	} else {
		note("depart_date", raw.DepartDate, depart.Format(entity.DateLayout), "")
	}

	ret, err := n.NormalizeDate(raw.ReturnDate, today)
	if err != nil {
		// reconciled below to the day after departure
		ret = depart
	}
	depart, ret = n.ReconcileDatePair(depart, ret)
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	note("return_date", raw.ReturnDate, ret.Format(entity.DateLayout), reason)

	travelers := n.NormalizeTravelerCounts(raw.Travelers)
	note("travelers", raw.Travelers, joinCounts(travelers), "")

	req := entity.SearchRequest{
		SourceID:    raw.SourceID,
		Origin:      validOrigin,
		Destination: validDestination,
		DepartDate:  depart,
		ReturnDate:  ret,
		Travelers:   travelers,
		CabinClass:  n.ParseCabinClass(raw.CabinClass),
	}

	if len(corrections) > 0 {
		n.logger.Debug("Normalized request input",
			"source", raw.SourceID,
			"corrections", len(corrections))
	}
	return req, corrections
}

func trimLeftmost(group []int, excess int) {
	for i := range group {
		if excess <= 0 {
			return
		}
		if group[i] > excess {
			group[i] -= excess
			return
		}
		excess -= group[i]
		group[i] = 0
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func joinCounts(counts entity.TravelerCounts) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// dateOf drops the clock part of t, keeping its calendar day in UTC
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}
