package check

import (
	"fmt"
	"time"
)

// OutcomeKind classifies the result of validating one credential.
type OutcomeKind int

const (
	Authorized OutcomeKind = iota
	Unauthorized
	RateLimited
	Unregistered
	ConnectionFailed
	MalformedCredential
	UnexpectedFailure
)

var outcomeNames = map[OutcomeKind]string{
	Authorized:          "authorized",
	Unauthorized:        "unauthorized",
	RateLimited:         "rate_limited",
	Unregistered:        "unregistered",
	ConnectionFailed:    "connection_failed",
	MalformedCredential: "malformed",
	UnexpectedFailure:   "unexpected_failure",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// ParseOutcomeKind is the inverse of OutcomeKind.String.
func ParseOutcomeKind(s string) (OutcomeKind, error) {
	for k, name := range outcomeNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown outcome kind: %q", s)
}

// Quarantines reports whether an outcome of this kind relocates the credential.
func (k OutcomeKind) Quarantines() bool {
	return k == Unauthorized || k == Unregistered
}

// Outcome is the classified result of one validation attempt.
// RetryAfter is set only for RateLimited; Reason only for failure kinds.
type Outcome struct {
	Kind       OutcomeKind
	RetryAfter time.Duration
	Reason     string
}

func OutcomeAuthorized() Outcome   { return Outcome{Kind: Authorized} }
func OutcomeUnauthorized() Outcome { return Outcome{Kind: Unauthorized} }
func OutcomeUnregistered() Outcome { return Outcome{Kind: Unregistered} }

func OutcomeRateLimited(retryAfter time.Duration) Outcome {
	return Outcome{Kind: RateLimited, RetryAfter: retryAfter}
}

func OutcomeConnectionFailed(reason string) Outcome {
	return Outcome{Kind: ConnectionFailed, Reason: reason}
}

func OutcomeMalformed(reason string) Outcome {
	return Outcome{Kind: MalformedCredential, Reason: reason}
}

func OutcomeUnexpected(reason string) Outcome {
	return Outcome{Kind: UnexpectedFailure, Reason: reason}
}

func (o Outcome) String() string {
	switch {
	case o.Kind == RateLimited:
		return fmt.Sprintf("%s(%ds)", o.Kind, int64(o.RetryAfter/time.Second))
	case o.Reason != "":
		return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
	default:
		return o.Kind.String()
	}
}
