package check

import "context"

// CredentialStore persists credential metadata next to the secret files.
type CredentialStore interface {
	// Discover returns every identity that has a secret file, in directory order.
	Discover(ctx context.Context) ([]string, error)

	// LoadOrCreate returns the credential for identity, creating or completing
	// its metadata record as needed. Errors for unreadable records wrap
	// ErrMalformedCredential.
	LoadOrCreate(ctx context.Context, identity string) (*Credential, error)

	// SessionPath returns the path of the credential's secret file.
	SessionPath(cred *Credential) string

	// MetadataPath returns the path of the identity's metadata record.
	MetadataPath(identity string) string
}

// Quarantine relocates files belonging to invalid credentials out of the
// active store.
type Quarantine interface {
	// Move relocates the file at path and returns where it went.
	Move(ctx context.Context, path string) (string, error)
}

// FingerprintGenerator produces a plausible client fingerprint for a platform.
// The same seed yields the same fingerprint.
type FingerprintGenerator interface {
	Generate(platform, seed string) (Fingerprint, error)
}

// ProxyLoader reads the configured proxy list. Implementations return
// ErrNoProxies when the list has no usable entries.
type ProxyLoader interface {
	LoadProxies() ([]Proxy, error)
}

// RunHistory records finished runs.
type RunHistory interface {
	RecordRun(report *RunReport) error
	RecentRuns(limit int) ([]*RunReport, error)
}
