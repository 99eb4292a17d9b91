package storage

import (
	"context"
	"errors"
	"strings"

	logx "timezonebot/pkg/logx"
)

// Store is the persistence API used by the timezone plugin.
// All methods are safe for concurrent use.
type Store interface {
	GetHomeZone(ctx context.Context, chatID, userID int64) (HomeZone, bool, error)
	PutHomeZone(ctx context.Context, hz HomeZone) error
	DeleteHomeZone(ctx context.Context, chatID, userID int64) error
	ListHomeZones(ctx context.Context, chatID int64) ([]HomeZone, error)

	GetZoneHint(ctx context.Context, chatID, userID int64) (zone string, ok bool, err error)
	PutZoneHint(ctx context.Context, chatID, userID int64, zone string) error

	GetTimeMessage(ctx context.Context, chatID int64) (TimeMessageRef, bool, error)
	PutTimeMessage(ctx context.Context, ref TimeMessageRef) error
	DeleteTimeMessage(ctx context.Context, chatID int64) error
	ListTimeMessages(ctx context.Context) ([]TimeMessageRef, error)

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
