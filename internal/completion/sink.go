package completion

import (
	"strings"

	"github.com/matthias-oe/clink/internal/argmatch"
	"github.com/sahilm/fuzzy"
)

// MatchMode selects how a typed token is compared with candidates.
type MatchMode int

const (
	// PrefixMatch offers candidates that start with the token, ignoring case.
	PrefixMatch MatchMode = iota
	// FuzzyMatch offers candidates containing the token's characters in order.
	FuzzyMatch
)

// Sink collects the candidates of one completion request.
type Sink struct {
	mode    MatchMode
	matches []string
}

// Ensure Sink implements argmatch.Host.
var _ argmatch.Host = (*Sink)(nil)

// NewSink creates an empty Sink.
func NewSink(mode MatchMode) *Sink {
	return &Sink{mode: mode}
}

// Match implements argmatch.Host. An empty token matches everything.
func (s *Sink) Match(candidate, token string) bool {
	if token == "" {
		return true
	}
	if s.mode == FuzzyMatch {
		return len(fuzzy.Find(token, []string{candidate})) > 0
	}
	return hasPrefixFold(candidate, token)
}

// Emit implements argmatch.Host.
func (s *Sink) Emit(value string) {
	s.matches = append(s.matches, value)
}

// Count implements argmatch.Host.
func (s *Sink) Count() int {
	return len(s.matches)
}

// Matches returns the emitted candidates in emission order.
func (s *Sink) Matches() []string {
	return s.matches
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
