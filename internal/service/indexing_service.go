package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/schemapilot/schemapilot/internal/ai"
	"github.com/schemapilot/schemapilot/internal/chunker"
	"github.com/schemapilot/schemapilot/internal/filestore"
	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
	"github.com/schemapilot/schemapilot/internal/repo"
)

// acceptedExtensions are the document kinds the indexer understands. PDF
// extraction is deliberately not implemented.
var acceptedExtensions = map[string]bool{
	".sql": true,
	".md":  true,
	".txt": true,
}

// VectorIndex is the slice of the vector store the indexing pipeline writes.
type VectorIndex interface {
	Upsert(ctx context.Context, points []model.ChunkPoint) error
	DeleteByFileID(ctx context.Context, fileID string) error
	DeleteByVersionID(ctx context.Context, versionID string) error
}

// IndexingService runs the chunk → embed → upsert pipeline and keeps the
// schema_files bookkeeping in step with the vector index.
type IndexingService struct {
	chunker  *chunker.Chunker
	embedder ai.Embedder
	index    VectorIndex
	files    *repo.SchemaFileRepo
	store    filestore.Store
}

func NewIndexingService(ck *chunker.Chunker, embedder ai.Embedder, index VectorIndex, files *repo.SchemaFileRepo, store filestore.Store) *IndexingService {
	return &IndexingService{
		chunker:  ck,
		embedder: embedder,
		index:    index,
		files:    files,
		store:    store,
	}
}

// IndexDocument replaces the indexed chunks for one file with freshly
// embedded ones. Chunks are embedded sequentially; the first embedding
// failure aborts this file without touching other files. Returns the number
// of chunks written.
func (s *IndexingService) IndexDocument(ctx context.Context, content, versionID, fileID, filename string) (int, error) {
	logger := logutil.GetLogger(ctx).With(
		zap.String("version_id", versionID),
		zap.String("file_id", fileID),
		zap.String("filename", filename),
	)

	text := content
	if strings.EqualFold(filepath.Ext(filename), ".md") {
		text = chunker.StripMarkdown(content)
	}
	segments := s.chunker.Chunk(text)
	if len(segments) == 0 {
		logger.Warn("document produced no chunks, clearing stale points")
		if err := s.index.DeleteByFileID(ctx, fileID); err != nil {
			return 0, err
		}
		return 0, nil
	}

	points := make([]model.ChunkPoint, 0, len(segments))
	for i, segment := range segments {
		vec, err := s.embedder.Embed(ctx, segment)
		if err != nil {
			logger.Error("chunk embedding failed, aborting file", zap.Int("chunk_index", i), zap.Error(err))
			return 0, err
		}
		points = append(points, model.ChunkPoint{
			ID:        uuid.NewString(),
			Embedding: vec,
			Chunk: model.DocumentChunk{
				Content:     segment,
				VersionID:   versionID,
				FileID:      fileID,
				Filename:    filename,
				ChunkIndex:  i,
				TotalChunks: len(segments),
			},
		})
	}

	// Replace, never merge: stale points from the previous revision of this
	// file must not survive a re-index.
	if err := s.index.DeleteByFileID(ctx, fileID); err != nil {
		return 0, err
	}
	if err := s.index.Upsert(ctx, points); err != nil {
		return 0, err
	}
	logger.Info("document indexed", zap.Int("chunks", len(points)))
	return len(points), nil
}

// DeleteFileEmbeddings removes every vector point belonging to the file.
func (s *IndexingService) DeleteFileEmbeddings(ctx context.Context, fileID string) error {
	return s.index.DeleteByFileID(ctx, fileID)
}

// DeleteVersionEmbeddings removes every vector point belonging to a version.
func (s *IndexingService) DeleteVersionEmbeddings(ctx context.Context, versionID string) error {
	return s.index.DeleteByVersionID(ctx, versionID)
}

// UploadFile stores the raw document, records it, and indexes it. An
// indexing failure leaves the record in the failed state for the retry job
// instead of failing the upload.
func (s *IndexingService) UploadFile(ctx context.Context, versionID, filename string, r io.Reader, size int64) (*model.SchemaFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !acceptedExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported extension %q", appErr.ErrInvalidFile, ext)
	}
	content, err := io.ReadAll(io.LimitReader(r, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	now := time.Now().UnixMilli()
	file := &model.SchemaFile{
		ID:        uuid.NewString(),
		VersionID: versionID,
		Filename:  filename,
		StoreKey:  uuid.NewString() + ext,
		Size:      int64(len(content)),
		State:     model.SchemaFileStatePending,
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.store.Save(ctx, file.StoreKey, strings.NewReader(string(content)), file.Size); err != nil {
		return nil, fmt.Errorf("save raw file: %w", err)
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	if err := s.indexStoredFile(ctx, file, string(content)); err != nil {
		logutil.GetLogger(ctx).Error("initial indexing failed, file left for retry",
			zap.String("file_id", file.ID), zap.Error(err))
	}
	return file, nil
}

// DeleteFile cascades: vector points first, then the raw object, then the
// record. A file whose points are gone but whose record remains is
// re-deletable; the reverse is not.
func (s *IndexingService) DeleteFile(ctx context.Context, fileID string) error {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.index.DeleteByFileID(ctx, fileID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, file.StoreKey); err != nil {
		logutil.GetLogger(ctx).Warn("failed to delete raw object", zap.String("store_key", file.StoreKey), zap.Error(err))
	}
	return s.files.Delete(ctx, fileID)
}

func (s *IndexingService) ListFiles(ctx context.Context, versionID string) ([]*model.SchemaFile, error) {
	return s.files.ListByVersion(ctx, versionID)
}

// RetryUnindexed re-runs indexing for files stuck in pending or failed
// state, reading the raw content back from the file store.
func (s *IndexingService) RetryUnindexed(ctx context.Context, limit int) error {
	files, err := s.files.ListByStates(ctx, []int{model.SchemaFileStatePending, model.SchemaFileStateFailed}, limit)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, file := range files {
		rc, err := s.store.Open(ctx, file.StoreKey)
		if err != nil {
			logger.Error("cannot open raw file for reindex", zap.String("file_id", file.ID), zap.Error(err))
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			logger.Error("cannot read raw file for reindex", zap.String("file_id", file.ID), zap.Error(err))
			continue
		}
		if err := s.indexStoredFile(ctx, file, string(content)); err != nil {
			logger.Error("reindex failed", zap.String("file_id", file.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *IndexingService) indexStoredFile(ctx context.Context, file *model.SchemaFile, content string) error {
	count, err := s.IndexDocument(ctx, content, file.VersionID, file.ID, file.Filename)
	now := time.Now().UnixMilli()
	if err != nil {
		if stateErr := s.files.UpdateState(ctx, file.ID, model.SchemaFileStateFailed, 0, now); stateErr != nil {
			logutil.GetLogger(ctx).Warn("failed to mark file failed", zap.String("file_id", file.ID), zap.Error(stateErr))
		}
		return err
	}
	return s.files.UpdateState(ctx, file.ID, model.SchemaFileStateIndexed, count, now)
}
