// Package storage persists users and records in SQLite and is the source
// of truth the HTTP API serves from.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrUserExists   = errors.New("username or email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// User is a stored account. Hashes are bcrypt.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CodewordHash string
	CreatedAt    time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts an account. Duplicate username or email maps to
// ErrUserExists.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, email, passwordHash, codewordHash string) (User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, codeword_hash) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, codewordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "user created", "user_id", id, "username", username)
	return User{ID: id, Username: username, Email: email, PasswordHash: passwordHash, CodewordHash: codewordHash}, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return r.getUser(ctx, `SELECT id, username, email, password_hash, codeword_hash, created_at FROM users WHERE username = ?`, username)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (User, error) {
	return r.getUser(ctx, `SELECT id, username, email, password_hash, codeword_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) getUser(ctx context.Context, query string, arg any) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CodewordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// UpdateUserPassword replaces the stored password hash.
func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListRecords returns every record owned by the user, newest first.
func (r *SQLiteRepository) ListRecords(ctx context.Context, userID int64) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, name, category, amount, description, date_time
		 FROM records WHERE user_id = ? ORDER BY date_time DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var rec core.Record
		var amount string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Name, &rec.Category, &amount, &rec.Description, &rec.DateTime); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Amount = core.Amount(amount)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// CreateRecord inserts a record and returns its assigned id.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.Record) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (user_id, type, name, category, amount, description, date_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, string(rec.Type), rec.Name, rec.Category, string(rec.Amount), rec.Description, rec.DateTime)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record insert id: %w", err)
	}

	slog.InfoContext(ctx, "record created", "record_id", id, "user_id", rec.UserID, "record_type", rec.Type)
	return id, nil
}

// UpdateRecord replaces the editable fields of an existing record. The
// type is part of the key, never updated: a record keeps the type it was
// created with.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.Record) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records
		 SET name = ?, category = ?, amount = ?, description = ?, date_time = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND type = ?`,
		rec.Name, rec.Category, string(rec.Amount), rec.Description, rec.DateTime,
		rec.ID, rec.UserID, string(rec.Type))
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{ID: rec.ID, Type: rec.Type}
	}
	return nil
}

// DeleteRecord removes a record by id and type and returns the owning
// user id. Deleting an id that is already gone (or whose type does not
// match) is a NotFoundError, not a no-op.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id int64, t core.RecordType) (int64, error) {
	var userID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM records WHERE id = ? AND type = ?`, id, string(t)).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &core.NotFoundError{ID: id, Type: t}
	}
	if err != nil {
		return 0, fmt.Errorf("select record owner: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND type = ?`, id, string(t))
	if err != nil {
		return 0, fmt.Errorf("delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, &core.NotFoundError{ID: id, Type: t}
	}

	slog.InfoContext(ctx, "record deleted", "record_id", id, "user_id", userID, "record_type", t)
	return userID, nil
}

// AuditEvent is one consumed record mutation event.
type AuditEvent struct {
	RecordID   int64
	UserID     int64
	RecordType core.RecordType
	Operation  string
	OccurredAt time.Time
}

// InsertAuditEvent appends a consumed mutation event to the audit table.
func (r *SQLiteRepository) InsertAuditEvent(ctx context.Context, ev AuditEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO record_events (record_id, user_id, record_type, operation, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.RecordID, ev.UserID, string(ev.RecordType), ev.Operation, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// CountAuditEvents reports how many events were recorded for a record.
func (r *SQLiteRepository) CountAuditEvents(ctx context.Context, recordID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM record_events WHERE record_id = ?`, recordID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
