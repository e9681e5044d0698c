package database

import (
	"fmt"
	"os"
	"path/filepath"

	"tgcheck/internal/config"
)

// HistoryFileName is the SQLite file created inside DataDir.
const HistoryFileName = "history.db"

// NewHistoryFromConfig creates the run history store based on the database config type.
func NewHistoryFromConfig(cfg config.DatabaseConfig) (*SQLiteHistory, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteHistory(filepath.Join(cfg.DataDir, HistoryFileName))
	case "memory":
		return NewSQLiteHistory(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
