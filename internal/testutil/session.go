package testutil

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// telethonSchema is the subset of a Telethon session database that is read.
const telethonSchema = `CREATE TABLE sessions (
	dc_id integer primary key,
	server_address text,
	port integer,
	auth_key blob,
	takeout_id integer
)`

// WriteSessionFile creates an opaque placeholder session file for identity in
// dir and returns its path.
func WriteSessionFile(t *testing.T, dir, identity string) string {
	t.Helper()

	path := filepath.Join(dir, identity+".session")
	if err := os.WriteFile(path, []byte("session:"+identity), 0600); err != nil {
		t.Fatalf("writing session file: %v", err)
	}
	return path
}

// WriteMetadataFile writes raw JSON as the metadata record for identity.
func WriteMetadataFile(t *testing.T, dir, identity, content string) string {
	t.Helper()

	path := filepath.Join(dir, identity+".json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing metadata file: %v", err)
	}
	return path
}

// WriteTelethonSession creates a Telethon SQLite session at path holding one
// row. A nil authKey stores a 256 byte key filled with 0x2a.
func WriteTelethonSession(t *testing.T, path string, dc int, addr string, port int, authKey []byte) {
	t.Helper()

	if authKey == nil {
		authKey = bytes.Repeat([]byte{0x2a}, 256)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening session db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(telethonSchema); err != nil {
		t.Fatalf("creating sessions table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO sessions (dc_id, server_address, port, auth_key) VALUES (?, ?, ?, ?)`, dc, addr, port, authKey); err != nil {
		t.Fatalf("inserting session row: %v", err)
	}
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
