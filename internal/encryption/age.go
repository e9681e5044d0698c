package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// AgeDecryptor decrypts age files with a fixed set of identities. It is
// used for proxy lists, which carry proxy credentials and are commonly kept
// encrypted at rest.
type AgeDecryptor struct {
	identities []age.Identity
}

// NewIdentityFileDecryptor loads X25519 identities from an age key file.
func NewIdentityFileDecryptor(path string) (*AgeDecryptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", path)
	}

	return &AgeDecryptor{identities: identities}, nil
}

// NewPassphraseDecryptor decrypts files encrypted with an age passphrase.
func NewPassphraseDecryptor(passphrase string) (*AgeDecryptor, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	return &AgeDecryptor{identities: []age.Identity{identity}}, nil
}

// Decrypt returns a reader over the plaintext of the age stream r.
func (d *AgeDecryptor) Decrypt(r io.Reader) (io.Reader, error) {
	plain, err := age.Decrypt(r, d.identities...)
	if err != nil {
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}
	return plain, nil
}

// GenerateIdentity creates a new X25519 key pair, writes the identity to
// path with owner-only permissions, and returns the public recipient string.
func GenerateIdentity(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("identity file already exists at %s", path)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating identity directory: %w", err)
	}

	content := fmt.Sprintf("# public key: %s\n%s\n", identity.Recipient(), identity)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("writing identity file: %w", err)
	}

	return identity.Recipient().String(), nil
}

// EncryptToRecipient encrypts r to an X25519 recipient ("age1...") and writes
// the ciphertext to w.
func EncryptToRecipient(r io.Reader, w io.Writer, recipient string) error {
	rcpt, err := age.ParseX25519Recipient(recipient)
	if err != nil {
		return fmt.Errorf("parsing recipient: %w", err)
	}
	return encrypt(r, w, rcpt)
}

// EncryptWithPassphrase encrypts r with an scrypt passphrase and writes the
// ciphertext to w.
func EncryptWithPassphrase(r io.Reader, w io.Writer, passphrase string) error {
	rcpt, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}
	return encrypt(r, w, rcpt)
}

func encrypt(r io.Reader, w io.Writer, recipient age.Recipient) error {
	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return nil
}
