// Package audit provides access to the audit_logs table for
// recording and querying command and account activity.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common audit actions recorded by the liaison.
const (
	ActionCommand     = "command"
	ActionLogin       = "login"
	ActionRobotCreate = "robot_create"
	ActionRobotUpdate = "robot_update"
)

// Entry represents a single audit trail record.
type Entry struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	RobotSerial string         `json:"robot_serial,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Filter controls which audit entries to return.
type Filter struct {
	Action      string // optional: filter by action
	RobotSerial string // optional: filter by robot
	UserID      string // optional: filter by user
	Limit       int    // default 50, max 200
	Offset      int    // pagination offset
}

// ListResult contains the paginated audit results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for audit log operations.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// SQLiteRepository stores audit entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new audit entry. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "aud-" + uuid.NewString()[:8]
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var detailsJSON any
	if entry.Details != nil {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshalling audit details: %w", err)
		}
		detailsJSON = string(b)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, robot_serial, user_id, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action,
		nullableString(entry.RobotSerial), nullableString(entry.UserID),
		detailsJSON,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

// List returns audit entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.RobotSerial != "" {
		conditions = append(conditions, "robot_serial = ?")
		args = append(args, filter.RobotSerial)
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE is built from parameterised conditions only; no user input
	// reaches the SQL string.
	countQuery := "SELECT COUNT(*) FROM audit_logs " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query := "SELECT id, action, robot_serial, user_id, details, created_at FROM audit_logs " +
		where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		entry                       Entry
		serial, userID, detailsJSON sql.NullString
		createdAt                   string
	)

	if err := rows.Scan(&entry.ID, &entry.Action, &serial, &userID,
		&detailsJSON, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning audit entry: %w", err)
	}

	if serial.Valid {
		entry.RobotSerial = serial.String
	}
	if userID.Valid {
		entry.UserID = userID.String
	}
	if detailsJSON.Valid && detailsJSON.String != "" {
		var details map[string]any
		if json.Unmarshal([]byte(detailsJSON.String), &details) == nil {
			entry.Details = details
		}
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing audit timestamp %q: %w", createdAt, err)
	}
	entry.CreatedAt = t

	return &entry, nil
}

// nullableString returns nil for empty strings.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
