package check

import (
	"fmt"
	"strings"
)

// Fingerprint is the client identity presented to the remote endpoint:
// API credentials plus device, application and language descriptors.
// All fields are populated together by a FingerprintGenerator.
type Fingerprint struct {
	AppID          int
	AppHash        string
	Device         string
	SDK            string
	AppVersion     string
	LangPack       string
	LangCode       string
	SystemLangCode string
}

// Complete reports whether every fingerprint field is set.
func (f Fingerprint) Complete() bool {
	return len(f.missing()) == 0
}

func (f Fingerprint) missing() []string {
	var missing []string
	if f.AppID == 0 {
		missing = append(missing, "app_id")
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"app_hash", f.AppHash},
		{"device", f.Device},
		{"sdk", f.SDK},
		{"app_version", f.AppVersion},
		{"lang_pack", f.LangPack},
		{"lang_code", f.LangCode},
		{"system_lang_code", f.SystemLangCode},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// Credential is one stored session: the phone identity, the name of its
// secret (session) file, and the fingerprint it authenticates with.
type Credential struct {
	// Identity is the key the store holds the record under (the file stem).
	Identity    string
	Phone       string
	SessionFile string
	Fingerprint Fingerprint
}

// Validate checks that every field needed to open a connection is present.
// The returned error wraps ErrMalformedCredential.
func (c *Credential) Validate() error {
	var missing []string
	if c.Phone == "" {
		missing = append(missing, "phone")
	}
	if c.SessionFile == "" {
		missing = append(missing, "session_file")
	}
	missing = append(missing, c.Fingerprint.missing()...)
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedCredential, strings.Join(missing, ", "))
	}
	return nil
}
