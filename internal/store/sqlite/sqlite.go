package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

const (
	// DriverCGO is the mattn/go-sqlite3 driver name.
	DriverCGO = "sqlite3"
	// DriverPure is the modernc.org/sqlite driver name.
	DriverPure = "sqlite"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens a SQLite store with the default cgo driver.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return Open(DriverCGO, dbPath)
}

// Open opens a SQLite store using the named driver.
func Open(driver, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open(driver, dsn(driver, dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite works best with a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema on an in-memory database.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open(DriverCGO, dsn(DriverCGO, dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits before setup so :memory: stays a single database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// dsn appends driver pragmas, keeping any query the path already carries.
func dsn(driver, dbPath string) string {
	params := "_journal_mode=WAL&_busy_timeout=5000"
	if driver == DriverPure {
		params = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + params
}

// Migrate applies the schema to the opened database.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser inserts a directory entry and returns it with its ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *store.User) (*store.User, error) {
	query := `
		INSERT INTO users (username, name, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.Name,
		string(user.Role),
		user.PasswordHash,
		time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, name, role, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, name, role, password_hash, created_at
		FROM users
		WHERE username = ?
	`
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

func scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	var role string
	var createdAt int64
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&role,
		&user.PasswordHash,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.Role = store.Role(role)
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return &user, nil
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and sets its ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, conversation_key, body, kind, created_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		store.DirectKey(msg.SenderID, msg.ReceiverID),
		msg.Body,
		string(msg.Kind),
		msg.CreatedAt.UTC().UnixNano(),
		msg.Read,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id

	return nil
}

// GetMessage retrieves a message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, kind, created_at, is_read
		FROM messages
		WHERE id = ?
	`
	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %d %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return msg, nil
}

// ListMessagesFor returns every message the user sent or received.
func (s *SQLiteStore) ListMessagesFor(ctx context.Context, userID int64) ([]*store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, kind, created_at, is_read
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY created_at ASC, id ASC
	`
	return s.queryMessages(ctx, query, userID, userID)
}

// ListConversation returns the messages stored under a direct key.
func (s *SQLiteStore) ListConversation(ctx context.Context, directKey string) ([]*store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, kind, created_at, is_read
		FROM messages
		WHERE conversation_key = ?
		ORDER BY created_at ASC, id ASC
	`
	return s.queryMessages(ctx, query, directKey)
}

// MarkRead flips is_read with a single conditional update.
func (s *SQLiteStore) MarkRead(ctx context.Context, id int64) (*store.Message, bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ? AND is_read = 0`, id)
	if err != nil {
		return nil, false, fmt.Errorf("update message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	msg, err := s.GetMessage(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return msg, affected == 1, nil
}

// CountUnread counts unread messages addressed to the user.
func (s *SQLiteStore) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = 0`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// LatestMessageTime returns the newest created_at, or the zero time on an empty table.
func (s *SQLiteStore) LatestMessageTime(ctx context.Context) (time.Time, error) {
	var nanos int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_at), 0) FROM messages`).Scan(&nanos)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest message time: %w", err)
	}
	if nanos == 0 {
		return time.Time{}, nil
	}
	return time.Unix(0, nanos).UTC(), nil
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*store.Message, error) {
	var msg store.Message
	var kind string
	var createdAt int64
	if err := row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Body,
		&kind,
		&createdAt,
		&msg.Read,
	); err != nil {
		return nil, err
	}
	msg.Kind = store.ParseMessageKind(kind)
	msg.CreatedAt = time.Unix(0, createdAt).UTC()
	return &msg, nil
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
