package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

const schemaFilesTable = "schema_files"

type SchemaFileRepo struct {
	db *sqlx.DB
}

func NewSchemaFileRepo(db *sqlx.DB) *SchemaFileRepo {
	return &SchemaFileRepo{db: db}
}

func (r *SchemaFileRepo) Create(ctx context.Context, file *model.SchemaFile) error {
	data := map[string]interface{}{
		"id":          file.ID,
		"version_id":  file.VersionID,
		"filename":    file.Filename,
		"store_key":   file.StoreKey,
		"size":        file.Size,
		"chunk_count": file.ChunkCount,
		"state":       file.State,
		"ctime":       file.Ctime,
		"mtime":       file.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert(schemaFilesTable, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, rebind(sqlStr), args...)
	return err
}

func (r *SchemaFileRepo) UpdateState(ctx context.Context, fileID string, state int, chunkCount int, mtime int64) error {
	where := map[string]interface{}{"id": fileID}
	update := map[string]interface{}{
		"state":       state,
		"chunk_count": chunkCount,
		"mtime":       mtime,
	}
	sqlStr, args, err := builder.BuildUpdate(schemaFilesTable, where, update)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, rebind(sqlStr), args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *SchemaFileRepo) Get(ctx context.Context, fileID string) (*model.SchemaFile, error) {
	where := map[string]interface{}{"id": fileID}
	sqlStr, args, err := builder.BuildSelect(schemaFilesTable, where, fileColumns())
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, rebind(sqlStr), args...)
	file, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	return file, err
}

func (r *SchemaFileRepo) ListByVersion(ctx context.Context, versionID string) ([]*model.SchemaFile, error) {
	where := map[string]interface{}{
		"version_id": versionID,
		"_orderby":   "ctime desc",
	}
	return r.list(ctx, where)
}

// ListByStates returns files in any of the given states, oldest first, for
// the retry job.
func (r *SchemaFileRepo) ListByStates(ctx context.Context, states []int, limit int) ([]*model.SchemaFile, error) {
	where := map[string]interface{}{
		"state in": states,
		"_orderby": "mtime asc",
		"_limit":   []uint{uint(limit)},
	}
	return r.list(ctx, where)
}

func (r *SchemaFileRepo) Delete(ctx context.Context, fileID string) error {
	where := map[string]interface{}{"id": fileID}
	sqlStr, args, err := builder.BuildDelete(schemaFilesTable, where)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, rebind(sqlStr), args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *SchemaFileRepo) list(ctx context.Context, where map[string]interface{}) ([]*model.SchemaFile, error) {
	sqlStr, args, err := builder.BuildSelect(schemaFilesTable, where, fileColumns())
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, rebind(sqlStr), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*model.SchemaFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func fileColumns() []string {
	return []string{"id", "version_id", "filename", "store_key", "size", "chunk_count", "state", "ctime", "mtime"}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row rowScanner) (*model.SchemaFile, error) {
	var file model.SchemaFile
	if err := row.Scan(
		&file.ID,
		&file.VersionID,
		&file.Filename,
		&file.StoreKey,
		&file.Size,
		&file.ChunkCount,
		&file.State,
		&file.Ctime,
		&file.Mtime,
	); err != nil {
		return nil, err
	}
	return &file, nil
}
