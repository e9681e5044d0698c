package check

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Validator checks a single credential against the remote endpoint and
// quarantines it when the endpoint rejects it.
type Validator struct {
	store      CredentialStore
	network    Network
	quarantine Quarantine
	logger     Logger
}

// NewValidator creates a Validator with the provided dependencies.
func NewValidator(store CredentialStore, network Network, quarantine Quarantine, logger Logger) *Validator {
	return &Validator{
		store:      store,
		network:    network,
		quarantine: quarantine,
		logger:     logger,
	}
}

// Validate connects with cred through proxy (nil for a direct connection)
// and classifies the result. Unauthorized and Unregistered credentials are
// moved to quarantine before Validate returns. Transient connection faults
// leave the credential untouched.
func (v *Validator) Validate(ctx context.Context, cred *Credential, proxy *Proxy) Outcome {
	outcome, _ := v.validate(ctx, cred, proxy)
	return outcome
}

// validate is Validate plus the list of files that were quarantined.
func (v *Validator) validate(ctx context.Context, cred *Credential, proxy *Proxy) (outcome Outcome, moved []string) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("validation panicked", "phone", cred.Phone, "panic", r)
			outcome = OutcomeConnectionFailed(fmt.Sprint(r))
		}
	}()

	if err := cred.Validate(); err != nil {
		v.logger.Error("credential incomplete", "identity", cred.Identity, "error", err)
		return OutcomeMalformed(err.Error()), nil
	}

	sessionPath := v.store.SessionPath(cred)
	if _, err := os.Stat(sessionPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			v.logger.Error("session file missing", "phone", cred.Phone, "path", sessionPath)
			return OutcomeMalformed("session file not found: " + sessionPath), nil
		}
		return OutcomeMalformed(fmt.Sprintf("stat session file: %v", err)), nil
	}

	if proxy != nil {
		v.logger.Info("using proxy", "phone", cred.Phone, "proxy", proxy.Addr())
	} else {
		v.logger.Info("no proxy, connecting directly", "phone", cred.Phone)
	}

	outcome = v.check(ctx, cred, sessionPath, proxy)
	v.logOutcome(cred, outcome)

	if outcome.Kind.Quarantines() {
		moved = v.quarantineCredential(ctx, cred)
	}
	return outcome, moved
}

// check opens the connection and asks for the authorization status.
// The connection is always closed before check returns.
func (v *Validator) check(ctx context.Context, cred *Credential, sessionPath string, proxy *Proxy) Outcome {
	conn, err := v.network.Connect(ctx, ConnectParams{
		Phone:       cred.Phone,
		SessionPath: sessionPath,
		Fingerprint: cred.Fingerprint,
		Proxy:       proxy,
	})
	if err != nil {
		return classifyError(err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			v.logger.Warn("closing connection", "phone", cred.Phone, "error", err)
		}
	}()

	status, err := conn.CheckAuthorized(ctx)
	if err != nil {
		return classifyError(err)
	}

	switch status.State {
	case StateAuthorized:
		return OutcomeAuthorized()
	case StateUnauthorized:
		return OutcomeUnauthorized()
	case StateRateLimited:
		return OutcomeRateLimited(status.RetryAfter)
	case StateUnregistered:
		return OutcomeUnregistered()
	default:
		return OutcomeConnectionFailed(fmt.Sprintf("unknown authorization state %d", status.State))
	}
}

// classifyError maps a network error to an outcome. Anything the remote side
// did not explicitly attribute to the credential is a connection failure.
func classifyError(err error) Outcome {
	var rl *RateLimitError
	switch {
	case errors.As(err, &rl):
		return OutcomeRateLimited(rl.RetryAfter)
	case errors.Is(err, ErrUnregistered):
		return OutcomeUnregistered()
	case errors.Is(err, ErrMalformedCredential):
		return OutcomeMalformed(err.Error())
	default:
		return OutcomeConnectionFailed(err.Error())
	}
}

func (v *Validator) logOutcome(cred *Credential, outcome Outcome) {
	switch outcome.Kind {
	case Authorized:
		v.logger.Info("session authorized", "phone", cred.Phone)
	case Unauthorized:
		v.logger.Warn("session not authorized", "phone", cred.Phone)
	case Unregistered:
		v.logger.Error("session unregistered", "phone", cred.Phone)
	case RateLimited:
		v.logger.Error("rate limited", "phone", cred.Phone, "seconds", int64(outcome.RetryAfter.Seconds()))
	default:
		v.logger.Error("session check failed", "phone", cred.Phone, "outcome", outcome.Kind.String(), "reason", outcome.Reason)
	}
}

// quarantineCredential moves the session file and the metadata record. Each
// file is checked for existence first, so re-running over a half-moved
// credential finishes the job. Failures are logged and do not change the
// outcome.
func (v *Validator) quarantineCredential(ctx context.Context, cred *Credential) []string {
	var moved []string
	for _, path := range []string{v.store.SessionPath(cred), v.store.MetadataPath(cred.Identity)} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				v.logger.Warn("quarantine: file already absent", "phone", cred.Phone, "path", path)
			} else {
				v.logger.Error("quarantine: stat failed", "phone", cred.Phone, "path", path, "error", err)
			}
			continue
		}

		dest, err := v.quarantine.Move(ctx, path)
		if err != nil {
			v.logger.Error("quarantine: move failed", "phone", cred.Phone, "path", path, "error", err)
			continue
		}
		v.logger.Info("file quarantined", "phone", cred.Phone, "from", path, "to", dest)
		moved = append(moved, dest)
	}
	return moved
}
