package utils

import (
	"regexp"
	"strings"
)

var (
	dashReplacer = strings.NewReplacer("–", "-", "—", "-")
	iataPattern  = regexp.MustCompile(`[A-Z]{3}`)
)

// CleanText collapses whitespace, including non-breaking spaces
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeDashes replaces en and em dashes with an ASCII hyphen
func NormalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}

// ListingText is CleanText followed by NormalizeDashes
func ListingText(s string) string {
	return NormalizeDashes(CleanText(s))
}

// ExtractIATACodes returns every run of three uppercase letters in text,
// in order of appearance and without duplicates
func ExtractIATACodes(text string) []string {
	matches := iataPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		codes = append(codes, m)
	}
	return codes
}

// SplitList splits a comma separated setting, dropping blank entries
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
