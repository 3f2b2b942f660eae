package ratingcache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openRawSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(0)")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWithBusyRetryWaitsForLockRelease(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "busy.db")

	holder := openRawSQLite(t, path)
	if _, err := holder.ExecContext(ctx, "CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	conn, err := holder.Conn(ctx)
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "BEGIN EXCLUSIVE"); err != nil {
		t.Fatalf("begin exclusive: %v", err)
	}

	writer := openRawSQLite(t, path)
	attempts := 0
	err = withBusyRetry(ctx, func() error {
		attempts++
		_, err := writer.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)")
		if attempts == 1 {
			if !isSQLiteBusy(err) {
				t.Errorf("expected busy error while lock held, got %v", err)
			}
			if _, cerr := conn.ExecContext(ctx, "COMMIT"); cerr != nil {
				t.Errorf("commit: %v", cerr)
			}
		}
		return err
	})
	if err != nil {
		t.Fatalf("expected write to succeed after lock release, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithBusyRetryStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("constraint failed")
	attempts := 0
	err := withBusyRetry(context.Background(), func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) || attempts != 1 {
		t.Fatalf("expected single attempt returning boom, got attempts=%d err=%v", attempts, err)
	}
	if isSQLiteBusy(nil) || isSQLiteBusy(boom) {
		t.Fatal("only sqlite lock errors count as busy")
	}
}
