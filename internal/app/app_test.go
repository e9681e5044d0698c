package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tgcheck/internal/check"
	"tgcheck/internal/config"
	"tgcheck/internal/encryption"
	"tgcheck/internal/testutil"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.NewConfig(t.TempDir())
	cfg.Database.Type = "memory"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, nw check.Network) *App {
	t.Helper()

	a, err := NewApp(context.Background(), cfg, Options{Operation: "test", Network: nw})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewApp_Bootstraps(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg, testutil.NewScriptedNetwork())

	if !a.ProxyFileCreated {
		t.Error("ProxyFileCreated = false on a fresh base dir")
	}
	for _, dir := range []string{cfg.Sessions.Dir, cfg.Quarantine.Dir, cfg.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", dir)
		}
	}
	if !testutil.FileExists(filepath.Join(cfg.LogDir, LogFileName)) {
		t.Error("log file not created")
	}

	if _, err := a.Run(context.Background()); !errors.Is(err, check.ErrNoProxies) {
		t.Errorf("Run() error = %v, want ErrNoProxies", err)
	}
}

func TestNewApp_UnsupportedPlatform(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Sessions.Platform = "beos"

	if _, err := NewApp(context.Background(), cfg, Options{Network: testutil.NewScriptedNetwork()}); err == nil {
		t.Error("NewApp() expected error for unsupported platform")
	}
}

func TestApp_RunEndToEnd(t *testing.T) {
	cfg := newTestConfig(t)
	if _, err := Bootstrap(cfg); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.Proxies.File, []byte("10.0.0.1:1080:u:p\n10.0.0.2:1080:u:p\n"), 0600); err != nil {
		t.Fatal(err)
	}
	testutil.WriteSessionFile(t, cfg.Sessions.Dir, "79990000001")
	testutil.WriteSessionFile(t, cfg.Sessions.Dir, "79990000002")

	nw := testutil.NewScriptedNetwork().SetState("79990000002", check.StateUnauthorized)
	a := newTestApp(t, cfg, nw)

	report, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Success() {
		t.Error("Success() = true with an unauthorized session")
	}
	if !a.op.Failed() {
		t.Error("operation not marked failed after unsuccessful run")
	}

	for _, name := range []string{"79990000002.session", "79990000002.json"} {
		if !testutil.FileExists(filepath.Join(cfg.Quarantine.Dir, name)) {
			t.Errorf("%s not quarantined", name)
		}
	}
	if !testutil.FileExists(filepath.Join(cfg.Sessions.Dir, "79990000001.json")) {
		t.Error("metadata record not created for authorized session")
	}

	runs, err := a.History(5)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != report.ID {
		t.Fatalf("History() = %d runs, want the run just made", len(runs))
	}
	if len(runs[0].Results) != 2 {
		t.Errorf("recorded %d results, want 2", len(runs[0].Results))
	}
}

func TestApp_EncryptedProxyList(t *testing.T) {
	cfg := newTestConfig(t)
	plain := filepath.Join(cfg.BaseDir, "proxy.txt")
	if err := os.WriteFile(plain, []byte("10.0.0.1:1080:u:p\n"), 0600); err != nil {
		t.Fatal(err)
	}

	keyPath := filepath.Join(cfg.BaseDir, "proxy.key")
	recipient, err := encryption.GenerateIdentity(keyPath)
	if err != nil {
		t.Fatal(err)
	}

	encrypted, err := EncryptProxyFile(plain, recipient, "")
	if err != nil {
		t.Fatalf("EncryptProxyFile() error = %v", err)
	}

	cfg.Proxies.File = encrypted
	cfg.Proxies.IdentityPath = keyPath
	a := newTestApp(t, cfg, testutil.NewScriptedNetwork())

	proxies, err := a.Proxies()
	if err != nil {
		t.Fatalf("Proxies() error = %v", err)
	}
	if len(proxies) != 1 || proxies[0].Addr() != "10.0.0.1:1080" {
		t.Errorf("Proxies() = %v, want [10.0.0.1:1080]", proxies)
	}
}

func TestApp_EncryptedProxyListPromptsLazily(t *testing.T) {
	cfg := newTestConfig(t)
	plain := filepath.Join(cfg.BaseDir, "proxy.txt")
	if err := os.WriteFile(plain, []byte("10.0.0.9:1080:u:p\n"), 0600); err != nil {
		t.Fatal(err)
	}
	encrypted, err := EncryptProxyFile(plain, "", "hunter2")
	if err != nil {
		t.Fatalf("EncryptProxyFile() error = %v", err)
	}
	cfg.Proxies.File = encrypted

	prompts := 0
	a, err := NewApp(context.Background(), cfg, Options{
		Network: testutil.NewScriptedNetwork(),
		Passphrase: func() (string, error) {
			prompts++
			return "hunter2", nil
		},
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	if prompts != 0 {
		t.Errorf("prompted %d times before the list was read", prompts)
	}
	if _, err := a.Proxies(); err != nil {
		t.Fatalf("Proxies() error = %v", err)
	}
	if _, err := a.Proxies(); err != nil {
		t.Fatalf("second Proxies() error = %v", err)
	}
	if prompts != 1 {
		t.Errorf("prompted %d times, want 1", prompts)
	}
}

func TestEncryptProxyFile_RequiresExactlyOneKey(t *testing.T) {
	src := filepath.Join(t.TempDir(), "proxy.txt")
	if err := os.WriteFile(src, []byte("1.2.3.4:1080:u:p\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := EncryptProxyFile(src, "", ""); err == nil {
		t.Error("expected error with neither recipient nor passphrase")
	}
	if _, err := EncryptProxyFile(src, "age1xyz", "pw"); err == nil {
		t.Error("expected error with both recipient and passphrase")
	}
}

func TestApp_ConsoleReceivesLogs(t *testing.T) {
	cfg := newTestConfig(t)
	var console bytes.Buffer

	a, err := NewApp(context.Background(), cfg, Options{Operation: "run", Console: &console, Network: testutil.NewScriptedNetwork()})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	a.Close()

	if !strings.Contains(console.String(), "proxy list created") {
		t.Errorf("console = %q, want proxy list warning", console.String())
	}
}
