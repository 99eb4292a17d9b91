//go:build sqlite
// +build sqlite

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "timezonebot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) GetHomeZone(ctx context.Context, chatID, userID int64) (HomeZone, bool, error) {
	if s == nil || s.db == nil {
		return HomeZone{}, false, ErrDisabled
	}
	hz := HomeZone{ChatID: chatID, UserID: userID}
	var username sql.NullString
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT username, zone, updated_at FROM home_zones WHERE chat_id = ? AND user_id = ?`,
		chatID, userID,
	).Scan(&username, &hz.Zone, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return HomeZone{}, false, nil
	}
	if err != nil {
		return HomeZone{}, false, err
	}
	hz.Username = username.String
	hz.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return hz, true, nil
}

func (s *sqliteStore) PutHomeZone(ctx context.Context, hz HomeZone) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if hz.UpdatedAt.IsZero() {
		hz.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO home_zones(chat_id, user_id, username, zone, updated_at) VALUES(?,?,?,?,?)
		 ON CONFLICT(chat_id, user_id) DO UPDATE SET username=excluded.username, zone=excluded.zone, updated_at=excluded.updated_at`,
		hz.ChatID, hz.UserID, nullStr(hz.Username), hz.Zone, hz.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) DeleteHomeZone(ctx context.Context, chatID, userID int64) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM home_zones WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	return err
}

func (s *sqliteStore) ListHomeZones(ctx context.Context, chatID int64) ([]HomeZone, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, username, zone, updated_at FROM home_zones WHERE chat_id = ? ORDER BY user_id`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HomeZone
	for rows.Next() {
		hz := HomeZone{ChatID: chatID}
		var username sql.NullString
		var updated string
		if err := rows.Scan(&hz.UserID, &username, &hz.Zone, &updated); err != nil {
			return nil, err
		}
		hz.Username = username.String
		hz.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, hz)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetZoneHint(ctx context.Context, chatID, userID int64) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, ErrDisabled
	}
	var zone string
	err := s.db.QueryRowContext(ctx,
		`SELECT zone FROM zone_hints WHERE chat_id = ? AND user_id = ?`, chatID, userID,
	).Scan(&zone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return zone, true, nil
}

func (s *sqliteStore) PutZoneHint(ctx context.Context, chatID, userID int64, zone string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if strings.TrimSpace(zone) == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO zone_hints(chat_id, user_id, zone, updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(chat_id, user_id) DO UPDATE SET zone=excluded.zone, updated_at=excluded.updated_at`,
		chatID, userID, zone, time.Now().Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) GetTimeMessage(ctx context.Context, chatID int64) (TimeMessageRef, bool, error) {
	if s == nil || s.db == nil {
		return TimeMessageRef{}, false, ErrDisabled
	}
	ref := TimeMessageRef{ChatID: chatID}
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT thread_id, message_id, created_at FROM time_messages WHERE chat_id = ?`, chatID,
	).Scan(&ref.ThreadID, &ref.MessageID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return TimeMessageRef{}, false, nil
	}
	if err != nil {
		return TimeMessageRef{}, false, err
	}
	ref.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return ref, true, nil
}

func (s *sqliteStore) PutTimeMessage(ctx context.Context, ref TimeMessageRef) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_messages(chat_id, thread_id, message_id, created_at) VALUES(?,?,?,?)
		 ON CONFLICT(chat_id) DO UPDATE SET thread_id=excluded.thread_id, message_id=excluded.message_id, created_at=excluded.created_at`,
		ref.ChatID, ref.ThreadID, ref.MessageID, ref.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) DeleteTimeMessage(ctx context.Context, chatID int64) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM time_messages WHERE chat_id = ?`, chatID)
	return err
}

func (s *sqliteStore) ListTimeMessages(ctx context.Context) ([]TimeMessageRef, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id, thread_id, message_id, created_at FROM time_messages ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeMessageRef
	for rows.Next() {
		var ref TimeMessageRef
		var created string
		if err := rows.Scan(&ref.ChatID, &ref.ThreadID, &ref.MessageID, &created); err != nil {
			return nil, err
		}
		ref.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, ref)
	}
	return out, rows.Err()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
