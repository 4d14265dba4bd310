package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/meshpix/internal/bitmap"
	"github.com/nao1215/meshpix/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "meshpix.db"

// timestampLayout is fixed width so that created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrFrameNotFound is returned when no frame matches an ID.
	ErrFrameNotFound = errors.New("frame not found")

	// ErrAmbiguousID is returned when an ID prefix matches several frames.
	ErrAmbiguousID = errors.New("frame ID prefix is ambiguous")

	// ErrNotEncoded is returned when saving a frame that has no packed data.
	ErrNotEncoded = errors.New("frame has no packed data")
)

// FrameDB provides SQLite-based storage for encoded frames.
type FrameDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures FrameDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging, so a history listing does not
	// block a running batch.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a FrameDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*FrameDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	fdb := &FrameDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := fdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return fdb, nil
}

// Path returns the database file path.
func (fdb *FrameDB) Path() string {
	return fdb.dbPath
}

// Close closes the database connection.
func (fdb *FrameDB) Close() error {
	return fdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (fdb *FrameDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS frames (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		threshold INTEGER NOT NULL,
		packed BLOB NOT NULL,
		payload TEXT NOT NULL,
		digest TEXT NOT NULL,
		artifacts TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_frames_source ON frames(source);
	CREATE INDEX IF NOT EXISTS idx_frames_created ON frames(created_at);
	CREATE INDEX IF NOT EXISTS idx_frames_digest ON frames(digest);
	`

	_, err := fdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveFrame stores an encoded frame. Saving a frame with the same ID again
// replaces the stored row.
func (fdb *FrameDB) SaveFrame(ctx context.Context, frame *model.Frame) error {
	if frame.Packed == nil || frame.Failed() {
		return fmt.Errorf("%w: %s", ErrNotEncoded, frame.Source)
	}

	artifacts, err := json.Marshal(frame.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to serialize artifacts: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO frames (id, source, width, height, threshold, packed, payload, digest, artifacts, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = fdb.db.ExecContext(ctx, query,
		frame.ID,
		frame.Source,
		frame.Width,
		frame.Height,
		frame.Threshold,
		frame.Packed,
		frame.Payload,
		frame.Digest,
		string(artifacts),
		frame.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}

	return nil
}

const frameColumns = `id, source, width, height, threshold, packed, payload, digest, artifacts, created_at`

// GetFrame retrieves a frame by ID. A unique prefix of an ID is accepted.
// The returned frame has Bits rebuilt from the packed data.
func (fdb *FrameDB) GetFrame(ctx context.Context, id string) (*model.Frame, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrFrameNotFound
	}

	frame, err := scanFrame(fdb.db.QueryRowContext(ctx,
		`SELECT `+frameColumns+` FROM frames WHERE id = ?`, id))
	if err == nil {
		return frame, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get frame: %w", err)
	}

	rows, err := fdb.db.QueryContext(ctx,
		`SELECT `+frameColumns+` FROM frames WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get frame: %w", err)
	}
	frames, err := scanFrames(rows)
	if err != nil {
		return nil, err
	}

	switch len(frames) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrFrameNotFound, id)
	case 1:
		return frames[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// ListFrames returns stored frames, newest first. A non-empty source
// restricts the list to that input file; limit <= 0 means no limit.
func (fdb *FrameDB) ListFrames(ctx context.Context, source string, limit int) ([]*model.Frame, error) {
	query := `SELECT ` + frameColumns + ` FROM frames WHERE 1=1`
	args := make([]any, 0, 2)

	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	query += " ORDER BY created_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := fdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	return scanFrames(rows)
}

// ListSources returns the distinct input files in the history, sorted.
func (fdb *FrameDB) ListSources(ctx context.Context) ([]string, error) {
	rows, err := fdb.db.QueryContext(ctx, `SELECT DISTINCT source FROM frames ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// DeleteFrame removes a frame by its full ID.
func (fdb *FrameDB) DeleteFrame(ctx context.Context, id string) error {
	result, err := fdb.db.ExecContext(ctx, `DELETE FROM frames WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete frame: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete frame: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrFrameNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFrames(rows *sql.Rows) ([]*model.Frame, error) {
	defer rows.Close()

	var frames []*model.Frame
	for rows.Next() {
		frame, err := scanFrame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

func scanFrame(row rowScanner) (*model.Frame, error) {
	var (
		frame     model.Frame
		artifacts sql.NullString
		createdAt string
	)

	err := row.Scan(
		&frame.ID,
		&frame.Source,
		&frame.Width,
		&frame.Height,
		&frame.Threshold,
		&frame.Packed,
		&frame.Payload,
		&frame.Digest,
		&artifacts,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	frame.CreatedAt = parseTimestamp(createdAt)

	if artifacts.Valid && artifacts.String != "" && artifacts.String != "null" {
		if err := json.Unmarshal([]byte(artifacts.String), &frame.Artifacts); err != nil {
			return nil, fmt.Errorf("failed to parse artifacts: %w", err)
		}
	}

	// Rows written by SaveFrame always match their dimensions.
	if bits, err := bitmap.Unpack(frame.Packed, frame.Width, frame.Height); err == nil {
		frame.Bits = bits
	}

	return &frame, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
