package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tgcheck/internal/check"
)

const (
	// SessionExt is the extension of secret files.
	SessionExt = ".session"
	// MetadataExt is the extension of metadata records.
	MetadataExt = ".json"
)

// FileSystemStore keeps secret files and metadata records side by side in a
// single directory:
//
//	<dir>/
//	  <phone>.session   (secret, owned by the network client)
//	  <phone>.json      (metadata record)
type FileSystemStore struct {
	dir       string
	generator check.FingerprintGenerator
	platform  string
	logger    check.Logger
}

// NewFileSystemStore creates a store rooted at dir, creating it if needed.
// platform is passed to generator when fingerprints have to be produced.
func NewFileSystemStore(dir string, generator check.FingerprintGenerator, platform string, logger check.Logger) (*FileSystemStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FileSystemStore{
		dir:       dir,
		generator: generator,
		platform:  platform,
		logger:    logger,
	}, nil
}

// Discover returns the stem of every *.session file, sorted by name.
func (s *FileSystemStore) Discover(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	var identities []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, SessionExt) || name == SessionExt {
			continue
		}
		identities = append(identities, strings.TrimSuffix(name, SessionExt))
	}
	return identities, nil
}

// LoadOrCreate returns the credential for identity. A missing record is
// created; a record with any fingerprint field missing gets a complete new
// fingerprint. Both cases persist the record before returning.
func (s *FileSystemStore) LoadOrCreate(ctx context.Context, identity string) (*check.Credential, error) {
	path := s.MetadataPath(identity)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.create(identity, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", check.ErrMalformedCredential, path, err)
	}

	rec, err := parseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", check.ErrMalformedCredential, path, err)
	}
	cred, err := rec.credential(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", check.ErrMalformedCredential, path, err)
	}
	if cred.SessionFile == "" {
		cred.SessionFile = cred.Phone
	}

	if cred.Fingerprint.Complete() {
		return cred, nil
	}

	s.logger.Info("fingerprint incomplete, generating", "file", path)
	fp, err := s.generator.Generate(s.platform, identity)
	if err != nil {
		return nil, fmt.Errorf("generating fingerprint for %s: %w", identity, err)
	}
	rec.setFingerprint(fp)
	if err := s.write(path, rec); err != nil {
		return nil, err
	}
	cred.Fingerprint = fp
	s.logger.Info("fingerprint generated", "file", path)
	return cred, nil
}

func (s *FileSystemStore) create(identity, path string) (*check.Credential, error) {
	s.logger.Info("metadata missing, creating", "file", path)

	fp, err := s.generator.Generate(s.platform, identity)
	if err != nil {
		return nil, fmt.Errorf("generating fingerprint for %s: %w", identity, err)
	}

	rec := newRecord()
	rec.set(keyPhone, identity)
	rec.set(keySessionFile, identity)
	rec.setFingerprint(fp)
	if err := s.write(path, rec); err != nil {
		return nil, err
	}

	s.logger.Info("metadata created", "file", path)
	return &check.Credential{
		Identity:    identity,
		Phone:       identity,
		SessionFile: identity,
		Fingerprint: fp,
	}, nil
}

// SessionPath returns <dir>/<session_file>.session.
func (s *FileSystemStore) SessionPath(cred *check.Credential) string {
	name := cred.SessionFile
	if !strings.HasSuffix(name, SessionExt) {
		name += SessionExt
	}
	return filepath.Join(s.dir, filepath.Base(name))
}

// MetadataPath returns <dir>/<identity>.json.
func (s *FileSystemStore) MetadataPath(identity string) string {
	return filepath.Join(s.dir, identity+MetadataExt)
}

// write stores rec at destPath using atomic write (temp file + rename).
func (s *FileSystemStore) write(destPath string, rec *record) error {
	data, err := rec.marshal()
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements check.CredentialStore
var _ check.CredentialStore = (*FileSystemStore)(nil)
