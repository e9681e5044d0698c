package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		Language:   "en",
		MaxThreads: 12,
		BaseDir:    "/home/user/.local/share/tgcheck",
		LogDir:     "/var/log/tgcheck",
		LogLevel:   "debug",
		Sessions:   SessionsConfig{Dir: "/data/sessions", Platform: "linux"},
		Proxies:    ProxiesConfig{File: "/data/proxy.txt.age", IdentityPath: "/data/key.txt"},
		Quarantine: QuarantineConfig{Type: "s3", S3Bucket: "bad-sessions", S3Prefix: "q", S3Region: "eu-west-1"},
		Network:    NetworkConfig{Type: "mtproto", ConnectTimeoutSeconds: 10},
		Database:   DatabaseConfig{Type: "memory"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Language != "en" {
		t.Errorf("Language = %q, want %q", got.Language, "en")
	}
	if got.MaxThreads != 12 {
		t.Errorf("MaxThreads = %d, want 12", got.MaxThreads)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Sessions != original.Sessions {
		t.Errorf("Sessions = %+v, want %+v", got.Sessions, original.Sessions)
	}
	if got.Proxies != original.Proxies {
		t.Errorf("Proxies = %+v, want %+v", got.Proxies, original.Proxies)
	}
	if got.Quarantine != original.Quarantine {
		t.Errorf("Quarantine = %+v, want %+v", got.Quarantine, original.Quarantine)
	}
	if got.Network.ConnectTimeoutSeconds != 10 {
		t.Errorf("Network.ConnectTimeoutSeconds = %d, want 10", got.Network.ConnectTimeoutSeconds)
	}
	if got.Database.Type != "memory" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
	}
}

func TestManager_Read_MergesDefaults(t *testing.T) {
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader("base_dir = \"/srv/tg\"\nlanguage = \"en\"\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.Language != "en" {
		t.Errorf("Language = %q, want %q", cfg.Language, "en")
	}
	if cfg.MaxThreads != DefaultMaxThreads {
		t.Errorf("MaxThreads = %d, want %d", cfg.MaxThreads, DefaultMaxThreads)
	}
	if cfg.Sessions.Dir != "/srv/tg/sessions" {
		t.Errorf("Sessions.Dir = %q, want %q", cfg.Sessions.Dir, "/srv/tg/sessions")
	}
	if cfg.Quarantine.Dir != "/srv/tg/unauthorized_sessions" {
		t.Errorf("Quarantine.Dir = %q, want %q", cfg.Quarantine.Dir, "/srv/tg/unauthorized_sessions")
	}
	if cfg.Proxies.File != "/srv/tg/proxy.txt" {
		t.Errorf("Proxies.File = %q, want %q", cfg.Proxies.File, "/srv/tg/proxy.txt")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/tgcheck")

	if cfg.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", cfg.Language, DefaultLanguage)
	}
	if cfg.LogDir != "/data/tgcheck/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/tgcheck/log")
	}
	if cfg.Database.DataDir != "/data/tgcheck/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/tgcheck/db")
	}
	if cfg.Network.ConnectTimeoutSeconds != DefaultConnectTimeoutSeconds {
		t.Errorf("Network.ConnectTimeoutSeconds = %d, want %d", cfg.Network.ConnectTimeoutSeconds, DefaultConnectTimeoutSeconds)
	}
}

func TestConfig_Set(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		wantErr   bool
		wantLang  string
		wantLimit int
	}{
		{name: "language en", key: "language", value: "en", wantLang: "en", wantLimit: 5},
		{name: "unsupported language", key: "language", value: "fr", wantErr: true, wantLang: "ru", wantLimit: 5},
		{name: "max threads", key: "max_threads", value: "20", wantLang: "ru", wantLimit: 20},
		{name: "max threads clamped to one", key: "max_threads", value: "-3", wantLang: "ru", wantLimit: 1},
		{name: "max threads not a number", key: "max_threads", value: "many", wantErr: true, wantLang: "ru", wantLimit: 5},
		{name: "unknown key", key: "colour", value: "blue", wantErr: true, wantLang: "ru", wantLimit: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data")
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if cfg.Language != tt.wantLang {
				t.Errorf("Language = %q, want %q", cfg.Language, tt.wantLang)
			}
			if cfg.MaxThreads != tt.wantLimit {
				t.Errorf("MaxThreads = %d, want %d", cfg.MaxThreads, tt.wantLimit)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tgcheck.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tgcheck.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestLoadOrInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "tgcheck.toml")

	cfg, err := LoadOrInit(path, dir)
	if err != nil {
		t.Fatalf("LoadOrInit() error = %v", err)
	}
	if cfg.MaxThreads != DefaultMaxThreads {
		t.Errorf("MaxThreads = %d, want %d", cfg.MaxThreads, DefaultMaxThreads)
	}

	cfg.MaxThreads = 9
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	again, err := LoadOrInit(path, dir)
	if err != nil {
		t.Fatalf("second LoadOrInit() error = %v", err)
	}
	if again.MaxThreads != 9 {
		t.Errorf("MaxThreads = %d, want 9 (existing file must not be overwritten)", again.MaxThreads)
	}
}

func TestReadFromFile(t *testing.T) {
	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/tgcheck.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})

	t.Run("returns error for invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("max_threads = [oops"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFromFile(path); err == nil {
			t.Fatal("ReadFromFile() expected error for invalid toml")
		}
	})
}
