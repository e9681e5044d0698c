package network

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/gotd/td/session"
	_ "github.com/mattn/go-sqlite3"

	"tgcheck/internal/check"
)

// AuthKeySize is the length of an MTProto authorization key.
const AuthKeySize = 256

// ReadSessionFile loads the data center and authorization key from a
// Telethon SQLite session file. The file is opened read-only.
func ReadSessionFile(ctx context.Context, path string) (*session.Data, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer db.Close()

	var (
		dc      int
		address string
		port    int
		authKey []byte
	)
	row := db.QueryRowContext(ctx, `SELECT dc_id, server_address, port, auth_key FROM sessions LIMIT 1`)
	if err := row.Scan(&dc, &address, &port, &authKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: session table is empty: %w", path, check.ErrMalformedCredential)
		}
		return nil, fmt.Errorf("%s: reading session: %v: %w", path, err, check.ErrMalformedCredential)
	}

	if len(authKey) != AuthKeySize {
		return nil, fmt.Errorf("%s: auth key is %d bytes, want %d: %w", path, len(authKey), AuthKeySize, check.ErrMalformedCredential)
	}

	return &session.Data{
		DC:        dc,
		Addr:      net.JoinHostPort(address, strconv.Itoa(port)),
		AuthKey:   authKey,
		AuthKeyID: authKeyID(authKey),
	}, nil
}

// authKeyID is the low 64 bits of the key's SHA1 digest.
func authKeyID(key []byte) []byte {
	sum := sha1.Sum(key)
	id := make([]byte, 8)
	copy(id, sum[12:])
	return id
}
