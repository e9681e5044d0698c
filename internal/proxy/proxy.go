// Package proxy loads SOCKS5 proxy lists.
//
// A proxy list is line oriented:
//
//	# Format: host:port:username:password
//	10.0.0.1:1080:alice:secret
//
// Blank lines and lines starting with # are ignored.
package proxy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tgcheck/internal/check"
)

// Header is written at the top of a freshly created proxy list.
const Header = "# Format: host:port:username:password\n"

// Parse reads one proxy per line. Malformed lines are skipped with a warning.
func Parse(r io.Reader, logger check.Logger) ([]check.Proxy, error) {
	var proxies []check.Proxy

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p, err := parseLine(line)
		if err != nil {
			logger.Warn("invalid proxy line skipped", "line", lineNo, "error", err)
			continue
		}
		proxies = append(proxies, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading proxy list: %w", err)
	}

	return proxies, nil
}

func parseLine(line string) (check.Proxy, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 4 {
		return check.Proxy{}, fmt.Errorf("expected host:port:username:password, got %d fields", len(parts))
	}

	host := parts[0]
	if host == "" {
		return check.Proxy{}, fmt.Errorf("empty host")
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return check.Proxy{}, fmt.Errorf("invalid port %q", parts[1])
	}

	return check.Proxy{
		Protocol: check.ProtocolSOCKS5,
		Host:     host,
		Port:     port,
		Username: parts[2],
		Password: parts[3],
	}, nil
}

// Decryptor unwraps an encrypted proxy list.
type Decryptor interface {
	Decrypt(r io.Reader) (io.Reader, error)
}

// FileLoader reads a proxy list from disk. Files ending in ".age" are passed
// through the decryptor first.
type FileLoader struct {
	path      string
	decryptor Decryptor
	logger    check.Logger
}

// NewFileLoader creates a loader for path. decryptor may be nil when the
// list is stored in plaintext.
func NewFileLoader(path string, decryptor Decryptor, logger check.Logger) *FileLoader {
	return &FileLoader{path: path, decryptor: decryptor, logger: logger}
}

// Encrypted reports whether the list at path must be decrypted.
func Encrypted(path string) bool {
	return strings.HasSuffix(path, ".age")
}

// LoadProxies parses the file. An empty result is reported as check.ErrNoProxies.
func (l *FileLoader) LoadProxies() ([]check.Proxy, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening proxy list: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if Encrypted(l.path) {
		if l.decryptor == nil {
			return nil, fmt.Errorf("proxy list %s is encrypted but no decryptor is configured", l.path)
		}
		if r, err = l.decryptor.Decrypt(f); err != nil {
			return nil, fmt.Errorf("decrypting proxy list: %w", err)
		}
	}

	proxies, err := Parse(r, l.logger)
	if err != nil {
		return nil, err
	}
	if len(proxies) == 0 {
		l.logger.Error("proxy list is empty", "file", l.path)
		return nil, fmt.Errorf("%s: %w", l.path, check.ErrNoProxies)
	}
	return proxies, nil
}

// EnsureFile creates an empty proxy list containing only Header if path
// does not exist. It reports whether the file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat proxy list: %w", err)
	}
	if err := os.WriteFile(path, []byte(Header), 0600); err != nil {
		return false, fmt.Errorf("creating proxy list: %w", err)
	}
	return true, nil
}

// Compile-time check that FileLoader implements check.ProxyLoader
var _ check.ProxyLoader = (*FileLoader)(nil)
