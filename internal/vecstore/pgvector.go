// Package vecstore implements the shared vector index on Postgres with the
// pgvector extension. One table holds every chunk point; version and file
// scoping happens through mandatory metadata filters, not separate tables.
package vecstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

const pointsTable = "chunk_embeddings"

type Store struct {
	db        *sqlx.DB
	dimension int
}

func New(db *sqlx.DB, dimension int) *Store {
	return &Store{db: db, dimension: dimension}
}

// EnsureSchema is the create-if-absent bootstrap for the collection:
// extension, points table with a vector column of the configured
// dimensionality, and the secondary indices that make version/file scoped
// filtering cheap. If the stored dimensionality differs (embedding model
// changed), the table is rebuilt and all points must be re-indexed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	if s.dimension <= 0 {
		return fmt.Errorf("%w: invalid vector dimension %d", appErr.ErrVectorIndex, s.dimension)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return wrapIndexErr("create extension", err)
	}

	current, err := s.currentDimension(ctx)
	if err != nil {
		return err
	}
	if current > 0 && current != s.dimension {
		logger.Warn("vector dimension changed, rebuilding points table",
			zap.Int("stored", current), zap.Int("configured", s.dimension))
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+pointsTable); err != nil {
			return wrapIndexErr("drop points table", err)
		}
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id           TEXT PRIMARY KEY,
			version_id   TEXT NOT NULL,
			file_id      TEXT NOT NULL,
			filename     TEXT NOT NULL,
			chunk_index  INT NOT NULL,
			total_chunks INT NOT NULL,
			content      TEXT NOT NULL,
			embedding    vector(%d) NOT NULL,
			ctime        BIGINT NOT NULL
		)`, pointsTable, s.dimension)
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return wrapIndexErr("create points table", err)
	}
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_version ON ` + pointsTable + ` (version_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_file ON ` + pointsTable + ` (file_id)`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return wrapIndexErr("create metadata index", err)
		}
	}
	return nil
}

func (s *Store) currentDimension(ctx context.Context) (int, error) {
	// atttypmod stores the declared dimension for vector columns.
	const query = `
		SELECT COALESCE((
			SELECT a.atttypmod
			FROM pg_attribute a
			JOIN pg_class c ON c.oid = a.attrelid
			WHERE c.relname = $1 AND a.attname = 'embedding'
		), 0)`
	var dim int
	if err := s.db.QueryRowContext(ctx, query, pointsTable).Scan(&dim); err != nil {
		return 0, wrapIndexErr("inspect points table", err)
	}
	return dim, nil
}

// Upsert writes one document's points in a single transaction. Point order
// is irrelevant to retrieval; chunk ordering is carried by chunk_index.
func (s *Store) Upsert(ctx context.Context, points []model.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapIndexErr("begin upsert", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO ` + pointsTable + `
			(id, version_id, file_id, filename, chunk_index, total_chunks, content, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, EXTRACT(EPOCH FROM now())::BIGINT)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			chunk_index = EXCLUDED.chunk_index,
			total_chunks = EXCLUDED.total_chunks`
	for _, p := range points {
		if len(p.Embedding) != s.dimension {
			return fmt.Errorf("%w: point %s has dimension %d, index expects %d",
				appErr.ErrVectorIndex, p.ID, len(p.Embedding), s.dimension)
		}
		if _, err := tx.ExecContext(ctx, query,
			p.ID,
			p.Chunk.VersionID,
			p.Chunk.FileID,
			p.Chunk.Filename,
			p.Chunk.ChunkIndex,
			p.Chunk.TotalChunks,
			p.Chunk.Content,
			pgvector.NewVector(p.Embedding),
		); err != nil {
			return wrapIndexErr("upsert point", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapIndexErr("commit upsert", err)
	}
	return nil
}

func (s *Store) DeleteByFileID(ctx context.Context, fileID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+pointsTable+` WHERE file_id = $1`, fileID); err != nil {
		return wrapIndexErr("delete by file", err)
	}
	return nil
}

func (s *Store) DeleteByVersionID(ctx context.Context, versionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+pointsTable+` WHERE version_id = $1`, versionID); err != nil {
		return wrapIndexErr("delete by version", err)
	}
	return nil
}

// Search returns the topK most similar chunks for the version, ranked by
// cosine similarity (higher is more relevant). The version filter is applied
// before ranking; chunks from other versions are never candidates.
func (s *Store) Search(ctx context.Context, queryVector []float32, versionID string, topK int) ([]model.ContextChunk, error) {
	if topK <= 0 {
		topK = 5
	}
	const query = `
		SELECT content, version_id, file_id, filename, chunk_index,
			1 - (embedding <=> $1) AS score
		FROM ` + pointsTable + `
		WHERE version_id = $2
		ORDER BY embedding <=> $1
		LIMIT $3`
	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(queryVector), versionID, topK)
	if err != nil {
		return nil, wrapIndexErr("search", err)
	}
	defer rows.Close()

	var hits []model.ContextChunk
	for rows.Next() {
		var hit model.ContextChunk
		if err := rows.Scan(&hit.Content, &hit.VersionID, &hit.FileID, &hit.Filename, &hit.ChunkIndex, &hit.Score); err != nil {
			return nil, wrapIndexErr("scan hit", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapIndexErr("iterate hits", err)
	}
	return hits, nil
}

// HealthCheck is a lightweight connectivity probe for the health endpoint;
// the generation path never calls it.
func (s *Store) HealthCheck(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

func wrapIndexErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", appErr.ErrVectorIndex, op, err)
}
