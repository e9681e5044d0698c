package app

import (
	"fmt"
	"os"
	"path/filepath"

	"tgcheck/internal/config"
	"tgcheck/internal/proxy"
)

// Bootstrap creates the directories and the proxy list template the
// configuration points at. It reports whether the proxy list was created,
// in which case it still has to be filled in.
func Bootstrap(cfg *config.Config) (bool, error) {
	dirs := []string{cfg.Sessions.Dir, cfg.LogDir, filepath.Dir(cfg.Proxies.File)}
	if cfg.Quarantine.Type == "filesystem" && cfg.Quarantine.Dir != "" {
		dirs = append(dirs, cfg.Quarantine.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if proxy.Encrypted(cfg.Proxies.File) {
		return false, nil
	}
	return proxy.EnsureFile(cfg.Proxies.File)
}
