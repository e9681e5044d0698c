package check

import "time"

// Result is the outcome recorded for one identity in a run.
type Result struct {
	Phone string
	// Proxy is the host:port used for the attempt, empty for a direct connection
	// or when the credential never reached the validator.
	Proxy       string
	Outcome     Outcome
	Quarantined bool
}

// RunReport aggregates the results of one orchestrator run.
// Results are kept in discovery order.
type RunReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Success reports whether every result is exactly Authorized.
func (r *RunReport) Success() bool {
	for _, res := range r.Results {
		if res.Outcome.Kind != Authorized {
			return false
		}
	}
	return true
}

// Counts returns the number of results per outcome kind.
func (r *RunReport) Counts() map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int)
	for _, res := range r.Results {
		counts[res.Outcome.Kind]++
	}
	return counts
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
