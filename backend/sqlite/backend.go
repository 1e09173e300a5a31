package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/xirelogy/magpie-s3-filesystem/backend"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// maxBlobSize mirrors the default SQLITE_MAX_LENGTH.
const maxBlobSize = 1_000_000_000

// SQLiteBackend stores every object as one row of the s3fs_objects table,
// keyed by bucket and object key. Prefix listings are ordered range queries.
type SQLiteBackend struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteBackend creates a new SQLite-backed object client.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" would otherwise see its own database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	backend := &SQLiteBackend{
		db: db,
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return backend, nil
}

// initSchema creates the database schema.
func (sb *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS s3fs_objects (
		bucket TEXT NOT NULL,
		key TEXT NOT NULL,
		content BLOB NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL CHECK(size >= 0),
		etag TEXT NOT NULL,
		modify_time INTEGER NOT NULL,
		PRIMARY KEY (bucket, key)
	);
	`

	_, err := sb.db.Exec(schema)
	return err
}

// Returns the identifier name defined for this backend
func (*SQLiteBackend) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behavious and gets called when opening this backend.
func (sb *SQLiteBackend) Open(ctx context.Context) error {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	return sb.db.PingContext(ctx)
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *SQLiteBackend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return sb.db.Close()
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *SQLiteBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityBulkDelete,
			backend.CapabilityPersistent,
		},
		MaxObjectSize: maxBlobSize,
	}
}

var _ backend.ObjectClient = (*SQLiteBackend)(nil)
