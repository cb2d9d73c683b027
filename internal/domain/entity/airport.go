package entity

import "strings"

// AirportSet is a read-only lookup of valid IATA codes
type AirportSet map[string]struct{}

// NewAirportSet builds a set from codes, uppercased and trimmed
func NewAirportSet(codes []string) AirportSet {
	set := make(AirportSet, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

// Contains reports whether code is a known airport
func (s AirportSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}
