/*
Package store provides a PostgreSQL-backed alternative to the sidecar
META/vertexID-map files partition.FileMetaReader reads, for deployments
that keep partition metadata in a database instead. PostgresReader
implements partition.MetaReader, so partition construction is agnostic
to which one it was given.

Grounded on raja-aiml-flowgraph/internal/adapters/repository/postgres's
pgxpool.Pool-based repository style (Exec/QueryRow/Scan over a
connection pool, upsert-on-conflict schema management).
*/
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exascience/amorphous/partition"
)

// PostgresReader implements partition.MetaReader, reading META records
// and vertexID map entries from Postgres tables instead of sidecar
// files.
type PostgresReader struct {
	pool *pgxpool.Pool
}

// NewPostgresReader wraps an existing connection pool. Callers own the
// pool's lifecycle.
func NewPostgresReader(pool *pgxpool.Pool) *PostgresReader {
	return &PostgresReader{pool: pool}
}

// EnsureSchema creates the meta_records and vertex_id_map tables if they
// do not already exist.
func (r *PostgresReader) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS meta_records (
			host       INTEGER NOT NULL,
			num_hosts  INTEGER NOT NULL,
			global_id  BIGINT NOT NULL,
			local_id   BIGINT NOT NULL,
			owner_id   BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS vertex_id_map (
			global_id BIGINT PRIMARY KEY,
			owner     INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("store: ensuring schema: %w", err)
	}
	return nil
}

// ReadMeta implements partition.MetaReader.
func (r *PostgresReader) ReadMeta(host, numHosts int) ([]partition.MetaRecord, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT global_id, local_id, owner_id FROM meta_records WHERE host = $1 AND num_hosts = $2 ORDER BY local_id`,
		host, numHosts,
	)
	if err != nil {
		return nil, fmt.Errorf("store: querying meta_records for host %d of %d: %w", host, numHosts, err)
	}
	defer rows.Close()

	var records []partition.MetaRecord
	for rows.Next() {
		var rec partition.MetaRecord
		if err := rows.Scan(&rec.GlobalID, &rec.LocalID, &rec.OwnerID); err != nil {
			return nil, fmt.Errorf("store: scanning meta_records row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadVertexIDMap implements partition.MetaReader.
func (r *PostgresReader) ReadVertexIDMap(lo, hi uint64) ([]int32, error) {
	ctx := context.Background()
	out := make([]int32, hi-lo)
	rows, err := r.pool.Query(ctx,
		`SELECT global_id, owner FROM vertex_id_map WHERE global_id >= $1 AND global_id < $2`,
		lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("store: querying vertex_id_map [%d, %d): %w", lo, hi, err)
	}
	defer rows.Close()

	seen := 0
	for rows.Next() {
		var gid uint64
		var owner int32
		if err := rows.Scan(&gid, &owner); err != nil {
			return nil, fmt.Errorf("store: scanning vertex_id_map row: %w", err)
		}
		out[gid-lo] = owner
		seen++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if seen != len(out) {
		return nil, fmt.Errorf("store: vertex_id_map [%d, %d) has %d rows, want %d", lo, hi, seen, len(out))
	}
	return out, nil
}

// PostgresWriter populates the meta_records/vertex_id_map tables, e.g.
// as a one-time migration step from existing sidecar files.
type PostgresWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter wraps an existing connection pool.
func NewPostgresWriter(pool *pgxpool.Pool) *PostgresWriter {
	return &PostgresWriter{pool: pool}
}

// WriteMeta upserts one host's META records: any rows already stored for
// (host, numHosts) are replaced by records.
func (w *PostgresWriter) WriteMeta(ctx context.Context, host, numHosts int, records []partition.MetaRecord) error {
	batch := &pgx.Batch{}
	batch.Queue(
		`DELETE FROM meta_records WHERE host = $1 AND num_hosts = $2`,
		host, numHosts,
	)
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO meta_records (host, num_hosts, global_id, local_id, owner_id) VALUES ($1, $2, $3, $4, $5)`,
			host, numHosts, rec.GlobalID, rec.LocalID, rec.OwnerID,
		)
	}
	br := w.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: writing meta_records: %w", err)
		}
	}
	return nil
}

// WriteVertexIDMap upserts the vertexID map entries for GIDs [lo, hi).
func (w *PostgresWriter) WriteVertexIDMap(ctx context.Context, lo uint64, owners []int32) error {
	batch := &pgx.Batch{}
	for i, owner := range owners {
		gid := lo + uint64(i)
		batch.Queue(
			`INSERT INTO vertex_id_map (global_id, owner) VALUES ($1, $2)
			 ON CONFLICT (global_id) DO UPDATE SET owner = EXCLUDED.owner`,
			gid, owner,
		)
	}
	br := w.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range owners {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("store: writing vertex_id_map: %w", err)
		}
	}
	return nil
}
