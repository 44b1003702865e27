/*
Package checkpoint persists periodic snapshots of a running ForEach
loop's progress to a local sqlite database, so a long-running partition
build or engine run can report progress to an external monitor without
that monitor sharing process memory.

Grounded on codewanderer42820-evm_triarb/syncharvester.go's
sql.Open("sqlite3", path) / QueryRow / Exec idiom — the same
mattn/go-sqlite3-backed persistence style, repurposed here from trade and
pool state to loop-progress snapshots.
*/
package checkpoint

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// A Snapshot is one point-in-time record of a running loop's progress.
type Snapshot struct {
	LoopName        string
	Iterations      uint64
	Conflicts       uint64
	AbortedPending  int
	SequenceNumber  int64
}

// Store is a sqlite-backed snapshot sink. The zero Store is not usable;
// use Open.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			seq             INTEGER PRIMARY KEY AUTOINCREMENT,
			loop_name       TEXT NOT NULL,
			iterations      INTEGER NOT NULL,
			conflicts       INTEGER NOT NULL,
			aborted_pending INTEGER NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: creating schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts a new snapshot row for loopName.
func (s *Store) Record(loopName string, iterations, conflicts uint64, abortedPending int) error {
	if _, err := s.db.Exec(
		`INSERT INTO snapshots (loop_name, iterations, conflicts, aborted_pending) VALUES (?, ?, ?, ?)`,
		loopName, iterations, conflicts, abortedPending,
	); err != nil {
		return fmt.Errorf("checkpoint: recording snapshot for %s: %w", loopName, err)
	}
	return nil
}

// Latest returns the most recently recorded snapshot for loopName, or
// ok == false if none exists yet.
func (s *Store) Latest(loopName string) (snap Snapshot, ok bool, err error) {
	row := s.db.QueryRow(
		`SELECT seq, loop_name, iterations, conflicts, aborted_pending
		 FROM snapshots WHERE loop_name = ? ORDER BY seq DESC LIMIT 1`,
		loopName,
	)
	switch scanErr := row.Scan(&snap.SequenceNumber, &snap.LoopName, &snap.Iterations, &snap.Conflicts, &snap.AbortedPending); scanErr {
	case nil:
		return snap, true, nil
	case sql.ErrNoRows:
		return Snapshot{}, false, nil
	default:
		return Snapshot{}, false, fmt.Errorf("checkpoint: reading latest snapshot for %s: %w", loopName, scanErr)
	}
}
