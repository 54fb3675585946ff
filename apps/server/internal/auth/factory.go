package auth

import (
	"fmt"
	"strings"
	"time"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

// NewService builds the auth backend for the configured mode. The
// sqlite path and postgres DSN are only consulted by their respective
// modes.
func NewService(mode, sqlitePath, postgresDSN string, sessionTTL time.Duration) (Service, string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeMemory, "mem":
		manager := NewManager()
		if sessionTTL > 0 {
			manager.sessionTTL = sessionTTL
		}
		return manager, ModeMemory, nil
	case ModeSQLite, "local":
		manager, err := NewSQLiteManager(sqlitePath, sessionTTL)
		if err != nil {
			return nil, ModeSQLite, err
		}
		return manager, ModeSQLite, nil
	case ModePostgres, "postgresql", "db":
		manager, err := NewPostgresManager(postgresDSN, sessionTTL)
		if err != nil {
			return nil, ModePostgres, err
		}
		return manager, ModePostgres, nil
	default:
		return nil, mode, fmt.Errorf("invalid auth mode %q (supported: %s, %s, %s)", mode, ModeMemory, ModeSQLite, ModePostgres)
	}
}
