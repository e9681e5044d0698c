package testutil

import (
	"sync/atomic"

	"tgcheck/internal/check"
)

// CompleteFingerprint returns a fingerprint with every field set.
func CompleteFingerprint() check.Fingerprint {
	return check.Fingerprint{
		AppID:          2040,
		AppHash:        "b18441a1ff607e10a989891a5462e627",
		Device:         "Desktop",
		SDK:            "Windows 10",
		AppVersion:     "5.5.5 x64",
		LangPack:       "tdesktop",
		LangCode:       "en",
		SystemLangCode: "en-US",
	}
}

// FixedFingerprintGenerator returns the same fingerprint for every seed and
// counts how often it was asked.
type FixedFingerprintGenerator struct {
	Fingerprint check.Fingerprint
	Err         error
	calls       atomic.Int32
}

var _ check.FingerprintGenerator = (*FixedFingerprintGenerator)(nil)

func NewFixedFingerprintGenerator() *FixedFingerprintGenerator {
	return &FixedFingerprintGenerator{Fingerprint: CompleteFingerprint()}
}

func (g *FixedFingerprintGenerator) Generate(platform, seed string) (check.Fingerprint, error) {
	g.calls.Add(1)
	if g.Err != nil {
		return check.Fingerprint{}, g.Err
	}
	return g.Fingerprint, nil
}

// Calls returns how many times Generate was called.
func (g *FixedFingerprintGenerator) Calls() int {
	return int(g.calls.Load())
}
