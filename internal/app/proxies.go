package app

import (
	"fmt"
	"os"
	"path/filepath"

	"tgcheck/internal/encryption"
)

// EncryptProxyFile encrypts the plaintext proxy list at src to src+".age",
// either to an X25519 recipient or with a passphrase. Exactly one must be set.
// The plaintext file is left in place.
func EncryptProxyFile(src, recipient, passphrase string) (string, error) {
	if (recipient == "") == (passphrase == "") {
		return "", fmt.Errorf("exactly one of recipient or passphrase is required")
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening proxy list: %w", err)
	}
	defer in.Close()

	dest := src + ".age"
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".proxy-*.age")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if recipient != "" {
		err = encryption.EncryptToRecipient(in, tmp, recipient)
	} else {
		err = encryption.EncryptWithPassphrase(in, tmp, passphrase)
	}
	if err != nil {
		tmp.Close()
		return "", err
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("renaming encrypted proxy list: %w", err)
	}
	return dest, nil
}
