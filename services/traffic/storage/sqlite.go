package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const inMemoryPath = ":memory:"

var log = logger.GetOrCreate("storage")

// snapshotPayload is the JSON document stored for every snapshot
type snapshotPayload struct {
	Views     []traffic.DayMetric `json:"views"`
	Clones    []traffic.DayMetric `json:"clones"`
	Referrers []traffic.Referrer  `json:"referrers"`
	Paths     []traffic.Path      `json:"paths"`
}

// sqliteStorage is the sqlite implementation of the traffic history store
type sqliteStorage struct {
	db    *sql.DB
	locks *keyedMutex
}

// NewSQLiteStorage creates the database and its schema
func NewSQLiteStorage(dbPath string) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == inMemoryPath {
		// every connection to :memory: opens a distinct database
		db.SetMaxOpenConns(1)
	}

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqliteStorage{
		db:    db,
		locks: newKeyedMutex(),
	}, nil
}

func prepareDirectories(dbPath string) error {
	if dbPath == inMemoryPath {
		return nil
	}

	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		name           TEXT    NOT NULL PRIMARY KEY,
		schema_version INTEGER NOT NULL DEFAULT 1,
		last_updated   INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		repository TEXT    NOT NULL REFERENCES repositories(name) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		fetched_at INTEGER NOT NULL,
		date       TEXT    NOT NULL,
		payload    TEXT    NOT NULL,
		PRIMARY KEY (repository, seq)
	);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func persistenceError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrPersistenceFailure, msg, err)
}

// AppendSnapshot creates the repository history if missing and appends the snapshot after all
// previous ones. The history's last updated instant becomes the snapshot's fetch time.
func (s *sqliteStorage) AppendSnapshot(ctx context.Context, repository string, snapshot *traffic.Snapshot) error {
	if snapshot == nil {
		return errors.New("nil snapshot")
	}

	payload, err := json.Marshal(snapshotPayload{
		Views:     snapshot.Views,
		Clones:    snapshot.Clones,
		Referrers: snapshot.Referrers,
		Paths:     snapshot.Paths,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	unlock := s.locks.lock(repository)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	fetchedAt := snapshot.FetchedAt.UTC().UnixNano()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO repositories (name, schema_version, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			last_updated=excluded.last_updated
	`, repository, traffic.SchemaVersion, fetchedAt)
	if err != nil {
		return persistenceError("failed to upsert repository", err)
	}

	var lastSeq int64
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM snapshots WHERE repository = ?", repository).Scan(&lastSeq)
	if err != nil {
		return persistenceError("failed to read snapshot sequence", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (repository, seq, fetched_at, date, payload)
		VALUES (?, ?, ?, ?, ?)
	`, repository, lastSeq+1, fetchedAt, snapshot.Date, string(payload))
	if err != nil {
		return persistenceError("failed to insert snapshot", err)
	}

	err = tx.Commit()
	if err != nil {
		return persistenceError("failed to commit snapshot", err)
	}

	if lastSeq == 0 {
		log.Debug("created new repository history", "repository", repository)
	} else {
		log.Debug("added new traffic snapshot", "repository", repository, "seq", lastSeq+1)
	}

	return nil
}

// GetHistory returns the repository history with snapshots in append order. The repository row and
// its snapshots are read in one transaction, so LastUpdated and Revision match the returned snapshots.
func (s *sqliteStorage) GetHistory(ctx context.Context, repository string) (*traffic.RepositoryHistory, error) {
	h := &traffic.RepositoryHistory{
		Repository: repository,
		Snapshots:  make([]traffic.Snapshot, 0),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lastUpdated int64
	err = tx.QueryRowContext(ctx, "SELECT schema_version, last_updated FROM repositories WHERE name = ?", repository).Scan(&h.Version, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, repository)
	}
	if err != nil {
		return nil, persistenceError("failed to read repository", err)
	}
	h.LastUpdated = fromUnixNano(lastUpdated)

	rows, err := tx.QueryContext(ctx, `
		SELECT seq, fetched_at, date, payload
		FROM snapshots
		WHERE repository = ?
		ORDER BY seq
	`, repository)
	if err != nil {
		return nil, persistenceError("failed to read snapshots", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var seq int64
		var fetchedAt int64
		var date string
		var payload string

		err = rows.Scan(&seq, &fetchedAt, &date, &payload)
		if err != nil {
			return nil, persistenceError("failed to scan snapshot", err)
		}

		var p snapshotPayload
		err = json.Unmarshal([]byte(payload), &p)
		if err != nil {
			return nil, persistenceError("failed to decode snapshot", err)
		}

		h.Revision = seq
		h.Snapshots = append(h.Snapshots, traffic.Snapshot{
			FetchedAt: fromUnixNano(fetchedAt),
			Date:      date,
			Views:     p.Views,
			Clones:    p.Clones,
			Referrers: p.Referrers,
			Paths:     p.Paths,
		})
	}

	err = rows.Err()
	if err != nil {
		return nil, persistenceError("failed to iterate snapshots", err)
	}

	return h, nil
}

// GetRevision returns the sequence number of the last snapshot appended for the repository. It changes
// on every append, including appends that carry an already seen fetch time.
func (s *sqliteStorage) GetRevision(ctx context.Context, repository string) (int64, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(s.seq), 0)
		FROM repositories r
		LEFT JOIN snapshots s ON s.repository = r.name
		WHERE r.name = ?
		GROUP BY r.name
	`, repository).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", common.ErrNotFound, repository)
	}
	if err != nil {
		return 0, persistenceError("failed to read repository revision", err)
	}

	return revision, nil
}

// GetLastUpdated returns the fetch time of the last snapshot appended for the repository
func (s *sqliteStorage) GetLastUpdated(ctx context.Context, repository string) (time.Time, error) {
	var lastUpdated int64
	err := s.db.QueryRowContext(ctx, "SELECT last_updated FROM repositories WHERE name = ?", repository).Scan(&lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %s", common.ErrNotFound, repository)
	}
	if err != nil {
		return time.Time{}, persistenceError("failed to read repository", err)
	}

	return fromUnixNano(lastUpdated), nil
}

// ListRepositories returns the names of all repositories with a stored history, sorted by name
func (s *sqliteStorage) ListRepositories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM repositories ORDER BY name")
	if err != nil {
		return nil, persistenceError("failed to list repositories", err)
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, persistenceError("failed to scan repository", err)
		}
		names = append(names, name)
	}

	err = rows.Err()
	if err != nil {
		return nil, persistenceError("failed to iterate repositories", err)
	}

	return names, nil
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Close closes the database
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
