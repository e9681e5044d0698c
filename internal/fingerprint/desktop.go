// Package fingerprint generates Telegram Desktop client fingerprints.
package fingerprint

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"

	"tgcheck/internal/check"
)

// Official Telegram Desktop API credentials.
const (
	DesktopAppID    = 2040
	DesktopAppHash  = "b18441a1ff607e10a989891a5462e627"
	DesktopLangPack = "tdesktop"
)

// Platforms lists the platforms Generate accepts.
var Platforms = []string{"windows", "macos", "linux"}

type platformProfile struct {
	devices  []string
	systems  []string
	suffixes []string
}

var profiles = map[string]platformProfile{
	"windows": {
		devices:  []string{"Desktop", "HP Pavilion", "Lenovo ThinkPad", "ASUS VivoBook", "Dell XPS", "Acer Aspire", "MSI GF63"},
		systems:  []string{"Windows 10", "Windows 11"},
		suffixes: []string{" x64", ""},
	},
	"macos": {
		devices:  []string{"MacBook Pro", "MacBook Air", "iMac", "Mac mini", "Mac Studio"},
		systems:  []string{"macOS 12.7", "macOS 13.6", "macOS 14.4", "macOS 15.1"},
		suffixes: []string{" Mac App Store", ""},
	},
	"linux": {
		devices:  []string{"PC", "Desktop", "Laptop"},
		systems:  []string{"Ubuntu 22.04", "Ubuntu 24.04", "Fedora 40", "Arch Linux", "Debian 12"},
		suffixes: []string{" Snap", " Flatpak", ""},
	},
}

var appVersions = []string{"4.16.8", "5.0.1", "5.2.3", "5.5.5", "5.6.3", "5.8.3"}

// locales pairs an interface language with the matching system locale.
var locales = [][2]string{
	{"en", "en-US"},
	{"en", "en-GB"},
	{"ru", "ru-RU"},
	{"de", "de-DE"},
	{"es", "es-ES"},
}

// DesktopGenerator produces Telegram Desktop fingerprints. The same platform
// and seed always produce the same fingerprint; an empty seed draws a random one.
type DesktopGenerator struct{}

var _ check.FingerprintGenerator = DesktopGenerator{}

// NewDesktopGenerator creates a DesktopGenerator.
func NewDesktopGenerator() DesktopGenerator {
	return DesktopGenerator{}
}

func (DesktopGenerator) Generate(platform, seed string) (check.Fingerprint, error) {
	profile, ok := profiles[platform]
	if !ok {
		return check.Fingerprint{}, fmt.Errorf("unsupported platform %q (want one of %v)", platform, Platforms)
	}

	rng := newRand(seed)
	locale := pick(rng, locales)

	return check.Fingerprint{
		AppID:          DesktopAppID,
		AppHash:        DesktopAppHash,
		Device:         pick(rng, profile.devices),
		SDK:            pick(rng, profile.systems),
		AppVersion:     pick(rng, appVersions) + pick(rng, profile.suffixes),
		LangPack:       DesktopLangPack,
		LangCode:       locale[0],
		SystemLangCode: locale[1],
	}, nil
}

// SupportedPlatform reports whether Generate accepts platform.
func SupportedPlatform(platform string) bool {
	return slices.Contains(Platforms, platform)
}

func newRand(seed string) *rand.Rand {
	if seed == "" {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	h := fnv.New64a()
	h.Write([]byte(seed))
	sum := h.Sum64()
	return rand.New(rand.NewPCG(sum, sum^0x9e3779b97f4a7c15))
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
