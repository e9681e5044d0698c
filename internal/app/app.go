package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"tgcheck/internal/check"
	"tgcheck/internal/config"
	"tgcheck/internal/database"
	"tgcheck/internal/encryption"
	"tgcheck/internal/fingerprint"
	"tgcheck/internal/network"
	"tgcheck/internal/proxy"
	"tgcheck/internal/quarantine"
	"tgcheck/internal/store"
)

// Options carries the CLI-side collaborators of an App.
type Options struct {
	// Operation names the CLI command being run (e.g. "run", "history").
	Operation string
	// Console receives log lines in addition to the log file. nil disables it.
	Console io.Writer
	// Passphrase is asked for the proxy list passphrase when the list is
	// age-encrypted and no identity file is configured. nil means non-interactive.
	Passphrase encryption.PassphraseFunc
	// Network replaces the network client built from config.
	Network check.Network
}

// App is the application layer between the CLI and the check package.
// It constructs all dependencies from config and manages the history
// database and log file lifecycle on Close.
type App struct {
	cfg          *config.Config
	op           *Operation
	logger       check.Logger
	logFile      *os.File
	history      *database.SQLiteHistory
	proxies      check.ProxyLoader
	orchestrator *check.Orchestrator

	// ProxyFileCreated is set when bootstrapping wrote an empty proxy list.
	ProxyFileCreated bool
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if !fingerprint.SupportedPlatform(cfg.Sessions.Platform) {
		return nil, fmt.Errorf("unsupported sessions.platform %q (want one of %v)", cfg.Sessions.Platform, fingerprint.Platforms)
	}

	created, err := Bootstrap(cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping directories: %w", err)
	}

	op := NewOperation(opts.Operation, time.Now())
	slogger, logFile, err := newLogger(cfg.LogDir, cfg.LogLevel, op.ID, opts.Console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}
	if created {
		logger.Warn("proxy list created, add proxies before running", "file", cfg.Proxies.File)
	}

	st, err := store.NewFileSystemStore(cfg.Sessions.Dir, fingerprint.NewDesktopGenerator(), cfg.Sessions.Platform, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating credential store: %w", err)
	}

	q, err := quarantine.NewQuarantineFromConfig(ctx, cfg.Quarantine)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating quarantine: %w", err)
	}

	nw := opts.Network
	if nw == nil {
		if nw, err = network.NewNetworkFromConfig(cfg.Network, logger); err != nil {
			logFile.Close()
			return nil, fmt.Errorf("creating network client: %w", err)
		}
	}

	var dec proxy.Decryptor
	if proxy.Encrypted(cfg.Proxies.File) {
		dec = &promptDecryptor{cfg: cfg.Proxies, prompt: opts.Passphrase}
	}
	loader := proxy.NewFileLoader(cfg.Proxies.File, dec, logger)

	hist, err := database.NewHistoryFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening run history: %w", err)
	}

	validator := check.NewValidator(st, nw, q, logger)
	orch := check.NewOrchestrator(st, loader, validator, hist, logger, check.RealClock{}, check.UUIDGenerator{}, cfg.MaxThreads)

	logger.Debug("operation started", "operation", op.Name, "config_max_threads", cfg.MaxThreads)

	return &App{
		cfg:              cfg,
		op:               op,
		logger:           logger,
		logFile:          logFile,
		history:          hist,
		proxies:          loader,
		orchestrator:     orch,
		ProxyFileCreated: created,
	}, nil
}

// Run validates every session once and returns the report.
func (a *App) Run(ctx context.Context) (*check.RunReport, error) {
	report, err := a.orchestrator.Run(ctx)
	if err != nil {
		a.op.Fail()
		a.logger.Error("run aborted", "error", err)
		return nil, err
	}
	if !report.Success() {
		a.op.Fail()
	}
	return report, nil
}

// History returns the most recent runs, newest first.
func (a *App) History(limit int) ([]*check.RunReport, error) {
	runs, err := a.history.RecentRuns(limit)
	if err != nil {
		a.op.Fail()
		return nil, fmt.Errorf("reading run history: %w", err)
	}
	return runs, nil
}

// Proxies loads and parses the configured proxy list.
func (a *App) Proxies() ([]check.Proxy, error) {
	proxies, err := a.proxies.LoadProxies()
	if err != nil {
		a.op.Fail()
		return nil, err
	}
	return proxies, nil
}

// Close records the end of the operation and closes all resources.
func (a *App) Close() error {
	var firstErr error

	if err := a.history.Close(); err != nil {
		firstErr = fmt.Errorf("closing history database: %w", err)
	}

	a.logger.Debug("operation finished", "operation", a.op.Name, "status", a.op.Status, "duration", time.Since(a.op.StartedAt))

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}

// promptDecryptor builds the age decryptor on first use, so commands that
// never read the proxy list never ask for a passphrase.
type promptDecryptor struct {
	cfg    config.ProxiesConfig
	prompt encryption.PassphraseFunc
	dec    *encryption.AgeDecryptor
}

func (d *promptDecryptor) Decrypt(r io.Reader) (io.Reader, error) {
	if d.dec == nil {
		dec, err := encryption.NewDecryptorFromConfig(d.cfg, d.prompt)
		if err != nil {
			return nil, err
		}
		d.dec = dec
	}
	return d.dec.Decrypt(r)
}
