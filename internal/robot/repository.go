package robot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for robot persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetBySerial retrieves a robot by its serial number.
	// Returns ErrNotFound if the robot does not exist.
	GetBySerial(ctx context.Context, serial string) (*Robot, error)

	// List retrieves all robots.
	List(ctx context.Context) ([]Robot, error)

	// Create inserts a new robot.
	// Returns ErrExists if a robot with the same serial already exists.
	Create(ctx context.Context, r *Robot) error

	// Update modifies the administrative fields of an existing robot
	// (name, owner, public/active flags). State fields are untouched.
	// Returns ErrNotFound if the robot does not exist.
	Update(ctx context.Context, r *Robot) error

	// UpdateState updates only the state fields of a robot.
	// This is optimised for the frequent writes from status ingest.
	UpdateState(ctx context.Context, serial string, state State) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const robotColumns = `serial, name, owner_id, is_public, is_active,
	is_online, battery_level, last_seen, created_at, updated_at`

// GetBySerial retrieves a robot by its serial number.
func (r *SQLiteRepository) GetBySerial(ctx context.Context, serial string) (*Robot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+robotColumns+` FROM robots WHERE serial = ?`, serial)

	bot, err := scanRobot(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, serial)
		}
		return nil, fmt.Errorf("getting robot %s: %w", serial, err)
	}
	return bot, nil
}

// List retrieves all robots ordered by serial.
func (r *SQLiteRepository) List(ctx context.Context) ([]Robot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+robotColumns+` FROM robots ORDER BY serial`)
	if err != nil {
		return nil, fmt.Errorf("listing robots: %w", err)
	}
	defer rows.Close()

	var robots []Robot
	for rows.Next() {
		bot, err := scanRobot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning robot row: %w", err)
		}
		robots = append(robots, *bot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating robots: %w", err)
	}
	return robots, nil
}

// Create inserts a new robot.
func (r *SQLiteRepository) Create(ctx context.Context, bot *Robot) error {
	if err := bot.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if bot.CreatedAt.IsZero() {
		bot.CreatedAt = now
	}
	bot.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO robots (serial, name, owner_id, is_public, is_active,
			is_online, battery_level, last_seen, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bot.Serial, bot.Name, bot.OwnerID,
		boolToInt(bot.Public), boolToInt(bot.Active),
		boolToInt(bot.State.Online), bot.State.BatteryLevel,
		timePtrToString(bot.State.LastSeen),
		bot.CreatedAt.Format(time.RFC3339), bot.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrExists, bot.Serial)
		}
		return fmt.Errorf("creating robot %s: %w", bot.Serial, err)
	}
	return nil
}

// Update modifies the administrative fields of an existing robot.
func (r *SQLiteRepository) Update(ctx context.Context, bot *Robot) error {
	if err := bot.Validate(); err != nil {
		return err
	}

	bot.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE robots
		SET name = ?, owner_id = ?, is_public = ?, is_active = ?, updated_at = ?
		WHERE serial = ?`,
		bot.Name, bot.OwnerID, boolToInt(bot.Public), boolToInt(bot.Active),
		bot.UpdatedAt.Format(time.RFC3339), bot.Serial,
	)
	if err != nil {
		return fmt.Errorf("updating robot %s: %w", bot.Serial, err)
	}
	return requireRowAffected(result, bot.Serial)
}

// UpdateState updates only the state fields of a robot.
func (r *SQLiteRepository) UpdateState(ctx context.Context, serial string, state State) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE robots
		SET is_online = ?, battery_level = ?, last_seen = ?, updated_at = ?
		WHERE serial = ?`,
		boolToInt(state.Online), state.BatteryLevel,
		timePtrToString(state.LastSeen),
		time.Now().UTC().Format(time.RFC3339), serial,
	)
	if err != nil {
		return fmt.Errorf("updating state for robot %s: %w", serial, err)
	}
	return requireRowAffected(result, serial)
}

// scanRobot scans one robot row using the given scan function.
// The column order must match robotColumns.
func scanRobot(scan func(dest ...any) error) (*Robot, error) {
	var (
		bot                  Robot
		isPublic, isActive   int
		isOnline             int
		lastSeen             sql.NullString
		createdAt, updatedAt string
	)

	err := scan(
		&bot.Serial, &bot.Name, &bot.OwnerID, &isPublic, &isActive,
		&isOnline, &bot.State.BatteryLevel, &lastSeen,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	bot.Public = isPublic != 0
	bot.Active = isActive != 0
	bot.State.Online = isOnline != 0

	if lastSeen.Valid {
		if t, err := time.Parse(time.RFC3339, lastSeen.String); err == nil {
			bot.State.LastSeen = &t
		}
	}
	bot.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	bot.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &bot, nil
}

// requireRowAffected converts a zero-row update into ErrNotFound.
func requireRowAffected(result sql.Result, serial string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrToString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
