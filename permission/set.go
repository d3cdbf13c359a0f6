package permission

import (
	"sort"
	"strings"
)

// Separator joins alternative codes in a required-code expression.
const Separator = ","

// Split breaks a comma-joined code expression into its trimmed, non-empty
// codes. It is the one place the expression grammar is parsed.
func Split(expr string) []string {
	var codes []string
	for _, part := range strings.Split(expr, Separator) {
		if part = strings.TrimSpace(part); part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}

// Set is an unordered collection of permission codes.
type Set map[string]struct{}

// NewSet builds a [Set] from the given codes. Each element may itself be a
// comma-joined list; entries are split and trimmed.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	s.Add(codes...)
	return s
}

// Add inserts the given codes, splitting comma-joined entries.
func (s Set) Add(codes ...string) {
	for _, code := range codes {
		for _, part := range Split(code) {
			s[part] = struct{}{}
		}
	}
}

// Has reports whether the single code is present.
func (s Set) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// MatchAny evaluates a required-code expression: allow iff the set holds at
// least one of the comma-joined alternatives. On deny it returns every
// required code as missing, for diagnostic surfacing.
func (s Set) MatchAny(required string) (missing []string, ok bool) {
	for _, part := range Split(required) {
		if s.Has(part) {
			return nil, true
		}
		missing = append(missing, part)
	}
	// An empty expression requires nothing.
	return missing, len(missing) == 0
}

// Codes returns the members in sorted order.
func (s Set) Codes() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
