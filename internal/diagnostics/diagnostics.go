// Package diagnostics implements the uniform warning channel described in
// spec.md §4.9 / §5: a concurrent-safe sink that extractors, the matcher,
// and the assembler append to, and that the CLI driver drains to stderr.
package diagnostics

import (
	"fmt"
	"sync"
)

// Severity distinguishes a recoverable warning from a fatal condition
// surfaced through coreerr instead.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Kind tags a diagnostic with the §7 error-taxonomy name that produced it,
// even though most diagnostics are non-fatal by construction.
type Kind string

const (
	KindParseError     Kind = "ExtractorParseError"
	KindUnresolvedCall Kind = "UnresolvedCall"
	KindHelperFallback Kind = "HelperUnavailable"
	KindMatcherGlob    Kind = "MatcherGlobInvalid"
	KindCancelled      Kind = "Cancelled"
)

// Entry is a single diagnostic record.
type Entry struct {
	Kind     Kind
	Severity Severity
	Message  string
	FilePath string
	Line     int
}

// Sink accepts concurrent appends from parallel extraction workers (§5:
// "The diagnostics sink is the only writer-shared resource and must accept
// concurrent appends"). The zero value is ready to use.
type Sink struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty, ready-to-use Sink.
func New() *Sink {
	return &Sink{}
}

// Add appends a diagnostic entry. Safe for concurrent use.
func (s *Sink) Add(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// Warnf appends a warning-severity entry of the given kind.
func (s *Sink) Warnf(kind Kind, filePath string, line int, format string, args ...any) {
	s.Add(Entry{
		Kind:     kind,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		FilePath: filePath,
		Line:     line,
	})
}

// Entries returns a snapshot of all diagnostics recorded so far.
func (s *Sink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports how many diagnostics have been recorded.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
