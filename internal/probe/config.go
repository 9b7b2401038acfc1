package probe

import "time"

// Config holds the probe settings.
type Config struct {
	BaseURL string        // Base URL of the arcade server
	Team    string        // Team used for positive checks
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every check, not only failures
}

// Check is one expectation against the server.
type Check struct {
	Name     string
	Method   string
	Path     string
	Want     int
	Got      int
	Err      error
	Duration time.Duration
}

// Passed reports whether the check got the expected status.
func (c Check) Passed() bool { return c.Err == nil && c.Got == c.Want }

// Report holds the outcome of a smoke run.
type Report struct {
	Checks             []Check
	LeaderboardEntries int
	ChallengeState     string
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed() {
			out = append(out, c)
		}
	}
	return out
}
