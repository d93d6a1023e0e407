// Package match pairs target files with captured recordings from a pool
// by modification time and duration proximity.
package match

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
)

const (
	DefaultModTimeWindow  = time.Second
	DefaultDurationWindow = time.Second

	ReasonNoMatch = "no match"
)

// Recording is a file with the attributes the matcher compares.
type Recording struct {
	Path     string
	ModTime  time.Time
	Duration time.Duration
}

func (r Recording) String() string {
	return fmt.Sprintf("%s (mtime %s, %s)", r.Path, r.ModTime.Format(time.RFC3339Nano), r.Duration)
}

type Config struct {
	// ModTimeWindow is the exclusive bound of |mtime(candidate) - mtime(target)|.
	ModTimeWindow time.Duration

	// DurationWindow is the exclusive bound of |duration(candidate) - duration(target)|.
	DurationWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		ModTimeWindow:  DefaultModTimeWindow,
		DurationWindow: DefaultDurationWindow,
	}
}

type Match struct {
	Target Recording

	// Candidate is nil if no pool recording qualifies; Reason says why.
	Candidate *Recording
	Reason    string
}

// Err returns a MatchError for an unmatched target and nil otherwise.
func (m Match) Err() error {
	if m.Candidate != nil {
		return nil
	}
	return patcherr.Match("%s: %s", m.Target.Path, m.Reason)
}

type Matcher struct {
	Config
}

func NewMatcher(cfg Config) *Matcher {
	return &Matcher{Config: cfg}
}

// Qualifies reports whether candidate is within both windows of target.
func (m *Matcher) Qualifies(target, candidate Recording) bool {
	return absDuration(candidate.ModTime.Sub(target.ModTime)) < m.ModTimeWindow &&
		absDuration(candidate.Duration-target.Duration) < m.DurationWindow
}

// Best selects the qualifying candidate with the latest modification
// time (the most recent take). Equal modification times are resolved by
// the lexicographically smallest path, so the choice does not depend on
// the order the pool was listed in.
func (m *Matcher) Best(target Recording, pool []Recording) *Recording {
	var best *Recording
	for idx := range pool {
		candidate := &pool[idx]
		if !m.Qualifies(target, *candidate) {
			continue
		}
		if best == nil || isPreferred(candidate, best) {
			best = candidate
		}
	}
	if best == nil {
		return nil
	}
	result := *best
	return &result
}

func isPreferred(a, b *Recording) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Path < b.Path
}

// Match pairs every target with its best candidate, preserving the order
// of targets.
func (m *Matcher) Match(targets []Recording, pool []Recording) []Match {
	result := make([]Match, 0, len(targets))
	for _, target := range targets {
		match := Match{
			Target:    target,
			Candidate: m.Best(target, pool),
		}
		if match.Candidate == nil {
			match.Reason = ReasonNoMatch
		}
		result = append(result, match)
	}
	return result
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
