package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/beamlabs/beamchat-server/internal/store"
	"github.com/beamlabs/beamchat-server/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL UNIQUE,
	is_online   INTEGER NOT NULL DEFAULT 0,
	last_active TIMESTAMP,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	sender_id    TEXT NOT NULL,
	receiver_id  TEXT NOT NULL DEFAULT '',
	group_id     TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'sent',
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	delivered_at TIMESTAMP,
	read_at      TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
	id           TEXT PRIMARY KEY,
	recipient_id TEXT NOT NULL,
	kind         TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, username string) (*store.User, error) {
	id := utils.NewID()
	query := `
		INSERT INTO users (id, username, is_online, last_active)
		VALUES (?, ?, 0, NULL)
	`
	if _, err := s.db.ExecContext(ctx, query, id, username); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, username, is_online, COALESCE(last_active, created_at), created_at
		FROM users
		WHERE id = ?
	`
	var u store.User
	var online int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &online, &u.LastActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	u.IsOnline = online != 0
	return &u, nil
}

// SetUserPresence updates the online flag and last-active timestamp.
func (s *SQLiteStore) SetUserPresence(ctx context.Context, id string, online bool, lastActive time.Time) error {
	query := `
		UPDATE users
		SET is_online = ?, last_active = ?
		WHERE id = ?
	`
	flag := 0
	if online {
		flag = 1
	}
	if _, err := s.db.ExecContext(ctx, query, flag, lastActive, id); err != nil {
		return fmt.Errorf("update user presence: %w", err)
	}
	return nil
}

// ==== MessageStore implementation ====

// CreateMessage persists a message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) error {
	if msg.ID == "" {
		msg.ID = utils.NewID()
	}
	if msg.Status == "" {
		msg.Status = store.MessageStatusSent
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, group_id, body, status, created_at, delivered_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.GroupID, msg.Body,
		string(msg.Status), msg.CreatedAt, msg.DeliveredAt, msg.ReadAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// GetMessage retrieves a message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, group_id, body, status, created_at, delivered_at, read_at
		FROM messages
		WHERE id = ?
	`
	var m store.Message
	var status string
	var deliveredAt, readAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.GroupID, &m.Body,
		&status, &m.CreatedAt, &deliveredAt, &readAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select message: %w", err)
	}
	m.Status = store.MessageStatus(status)
	if deliveredAt.Valid {
		m.DeliveredAt = &deliveredAt.Time
	}
	if readAt.Valid {
		m.ReadAt = &readAt.Time
	}
	return &m, nil
}

// UpdateMessageStatus sets the status and optional delivered-at timestamp.
func (s *SQLiteStore) UpdateMessageStatus(ctx context.Context, id string, status store.MessageStatus, deliveredAt *time.Time) error {
	// The guard keeps a late delivered-persist from regressing a row that
	// was already marked read.
	query := `
		UPDATE messages
		SET status = ?, delivered_at = COALESCE(?, delivered_at)
		WHERE id = ? AND status != 'read'
	`
	if _, err := s.db.ExecContext(ctx, query, string(status), deliveredAt, id); err != nil {
		return fmt.Errorf("update message status: %w", err)
	}
	return nil
}

// MarkMessageRead flips a message to read. The status guard in the WHERE
// clause keeps the transition idempotent.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id string, readAt time.Time) (bool, error) {
	query := `
		UPDATE messages
		SET status = ?, read_at = ?
		WHERE id = ? AND status != ?
	`
	result, err := s.db.ExecContext(ctx, query,
		string(store.MessageStatusRead), readAt, id, string(store.MessageStatusRead))
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ==== NotificationStore implementation ====

// CreateNotification persists a notification.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *store.Notification) error {
	if n.ID == "" {
		n.ID = utils.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO notifications (id, recipient_id, kind, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, n.ID, n.RecipientID, n.Kind, n.Body, n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications lists notifications for a recipient, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, recipientID string) ([]*store.Notification, error) {
	query := `
		SELECT id, recipient_id, kind, body, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	defer rows.Close()

	var out []*store.Notification
	for rows.Next() {
		var n store.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// DeleteNotification removes a single notification.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// DeleteAllNotifications removes every notification for a recipient.
func (s *SQLiteStore) DeleteAllNotifications(ctx context.Context, recipientID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE recipient_id = ?`, recipientID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
