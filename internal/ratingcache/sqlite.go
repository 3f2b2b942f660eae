package ratingcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"cinerate/internal/ratings"
	"cinerate/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in PRAGMA user_version. Bump it when schema.sql
// changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore keeps one row per cache key.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteStore opens or creates the cache database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ratingcache", "open sqlite store", "cache path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "open sqlite store", "create cache directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "open sqlite store", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStorage, "ratingcache", "open sqlite store", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "init schema", "read user_version", err)
	}
	switch version {
	case 0:
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return services.Wrap(services.ErrStorage, "ratingcache", "init schema", "create schema", err)
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return services.Wrap(services.ErrStorage, "ratingcache", "init schema", "record schema version", err)
		}
		return nil
	case schemaVersion:
		return nil
	default:
		return services.Wrap(services.ErrStorage, "ratingcache", "init schema",
			fmt.Sprintf("database has version %d, expected %d (run 'cinerate cache clear' or delete %s)", version, schemaVersion, s.path),
			ErrSchemaMismatch)
	}
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (Record, bool, error) {
	ctx = ensureContext(ctx)
	var (
		data      sql.NullString
		timestamp int64
	)
	err := withBusyRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT data, timestamp_ms FROM rating_cache WHERE cache_key = ?", key,
		).Scan(&data, &timestamp)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, services.Wrap(services.ErrStorage, "ratingcache", "load", key, err)
	}
	result, err := decodeResult(data)
	if err != nil {
		return Record{}, false, services.Wrap(services.ErrStorage, "ratingcache", "load", key, err)
	}
	return Record{Data: result, Timestamp: timestamp}, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, record Record) error {
	ctx = ensureContext(ctx)
	data, err := encodeResult(record.Data)
	if err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "save", key, err)
	}
	err = withBusyRetry(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO rating_cache (cache_key, data, timestamp_ms) VALUES (?, ?, ?)
			 ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data, timestamp_ms = excluded.timestamp_ms`,
			key, data, record.Timestamp)
		return execErr
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "save", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) (int, error) {
	ctx = ensureContext(ctx)
	removed := 0
	for _, key := range keys {
		var res sql.Result
		err := withBusyRetry(ctx, func() error {
			var execErr error
			res, execErr = s.db.ExecContext(ctx, "DELETE FROM rating_cache WHERE cache_key = ?", key)
			return execErr
		})
		if err != nil {
			return removed, services.Wrap(services.ErrStorage, "ratingcache", "delete", key, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}
	return removed, nil
}

func (s *SQLiteStore) All(ctx context.Context) (map[string]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT cache_key, data, timestamp_ms FROM rating_cache")
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "list", "", err)
	}
	defer rows.Close()

	records := make(map[string]Record)
	for rows.Next() {
		var (
			key       string
			data      sql.NullString
			timestamp int64
		)
		if err := rows.Scan(&key, &data, &timestamp); err != nil {
			return nil, services.Wrap(services.ErrStorage, "ratingcache", "list", "scan row", err)
		}
		result, err := decodeResult(data)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "ratingcache", "list", key, err)
		}
		records[key] = Record{Data: result, Timestamp: timestamp}
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "list", "iterate rows", err)
	}
	return records, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func encodeResult(result *ratings.Result) (sql.NullString, error) {
	if result == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode result: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeResult(data sql.NullString) (*ratings.Result, error) {
	if !data.Valid || data.String == "" || data.String == "null" {
		return nil, nil
	}
	var result ratings.Result
	if err := json.Unmarshal([]byte(data.String), &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// isSQLiteBusy reports whether err is a lock conflict another connection will
// release: SQLITE_BUSY or SQLITE_LOCKED, including their extended codes.
func isSQLiteBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}

// withBusyRetry runs op until it succeeds, fails with a non-lock error, or
// the attempts run out. Backoff doubles up to busyRetryMaxBackoff.
func withBusyRetry(ctx context.Context, op func() error) error {
	backoff := busyRetryInitialBackoff
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !isSQLiteBusy(err) || attempt >= busyRetryAttempts {
			return err
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		backoff = min(backoff*2, busyRetryMaxBackoff)
	}
}
