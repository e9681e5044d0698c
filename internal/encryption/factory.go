package encryption

import (
	"fmt"

	"tgcheck/internal/config"
)

// PassphraseFunc asks the user for a passphrase.
type PassphraseFunc func() (string, error)

// NewDecryptorFromConfig creates the decryptor for an encrypted proxy list.
// An identity file takes precedence; otherwise prompt is asked for a passphrase.
func NewDecryptorFromConfig(cfg config.ProxiesConfig, prompt PassphraseFunc) (*AgeDecryptor, error) {
	if cfg.IdentityPath != "" {
		return NewIdentityFileDecryptor(cfg.IdentityPath)
	}
	if prompt == nil {
		return nil, fmt.Errorf("proxy list %s is encrypted: set identity_path or run interactively", cfg.File)
	}

	passphrase, err := prompt()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	return NewPassphraseDecryptor(passphrase)
}
