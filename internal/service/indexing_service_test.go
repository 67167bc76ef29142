package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemapilot/schemapilot/internal/chunker"
	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

type fakeIndex struct {
	upserted        []model.ChunkPoint
	deletedFiles    []string
	deletedVersions []string
	upsertErr       error
}

func (f *fakeIndex) Upsert(ctx context.Context, points []model.ChunkPoint) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeIndex) DeleteByFileID(ctx context.Context, fileID string) error {
	f.deletedFiles = append(f.deletedFiles, fileID)
	return nil
}

func (f *fakeIndex) DeleteByVersionID(ctx context.Context, versionID string) error {
	f.deletedVersions = append(f.deletedVersions, versionID)
	return nil
}

type seqEmbedder struct {
	calls   int
	failAt  int
	withErr error
}

func (e *seqEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.withErr != nil && e.calls == e.failAt {
		return nil, e.withErr
	}
	return []float32{float32(e.calls)}, nil
}

func (e *seqEmbedder) ModelName() string { return "seq" }

func TestIndexDocument_ReplacesFilePoints(t *testing.T) {
	index := &fakeIndex{}
	s := NewIndexingService(chunker.New(100, 20), &seqEmbedder{}, index, nil, nil)

	content := strings.Repeat("Orders reference customers via customer_id. ", 10)
	count, err := s.IndexDocument(context.Background(), content, "v1", "f1", "schema.sql")
	require.NoError(t, err)
	require.Greater(t, count, 1)
	require.Equal(t, []string{"f1"}, index.deletedFiles, "stale points must be cleared before upsert")
	require.Len(t, index.upserted, count)

	for i, point := range index.upserted {
		require.NotEmpty(t, point.ID)
		require.NotEmpty(t, point.Embedding)
		require.Equal(t, "v1", point.Chunk.VersionID)
		require.Equal(t, "f1", point.Chunk.FileID)
		require.Equal(t, "schema.sql", point.Chunk.Filename)
		require.Equal(t, i, point.Chunk.ChunkIndex)
		require.Equal(t, count, point.Chunk.TotalChunks)
	}
}

func TestIndexDocument_EmbeddingFailureAbortsFile(t *testing.T) {
	index := &fakeIndex{}
	embedder := &seqEmbedder{failAt: 2, withErr: fmt.Errorf("%w: quota", appErr.ErrEmbedding)}
	s := NewIndexingService(chunker.New(50, 10), embedder, index, nil, nil)

	content := strings.Repeat("customers orders invoices payments ", 10)
	_, err := s.IndexDocument(context.Background(), content, "v1", "f1", "schema.sql")
	require.ErrorIs(t, err, appErr.ErrEmbedding)
	require.Empty(t, index.upserted, "a partially embedded file must not be written")
	require.Empty(t, index.deletedFiles, "existing points stay when the new embedding fails")
}

func TestIndexDocument_EmptyContentClearsStalePoints(t *testing.T) {
	index := &fakeIndex{}
	s := NewIndexingService(chunker.New(100, 20), &seqEmbedder{}, index, nil, nil)

	count, err := s.IndexDocument(context.Background(), "   ", "v1", "f1", "empty.txt")
	require.NoError(t, err)
	require.Zero(t, count)
	require.Equal(t, []string{"f1"}, index.deletedFiles)
}

func TestIndexDocument_MarkdownStripped(t *testing.T) {
	index := &fakeIndex{}
	s := NewIndexingService(chunker.New(1000, 200), &seqEmbedder{}, index, nil, nil)

	content := "# Schema notes\n\nThe **orders** table holds one row per purchase."
	count, err := s.IndexDocument(context.Background(), content, "v1", "f1", "notes.md")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NotContains(t, index.upserted[0].Chunk.Content, "#")
	require.NotContains(t, index.upserted[0].Chunk.Content, "**")
	require.Contains(t, index.upserted[0].Chunk.Content, "orders")
}

func TestDeleteVersionEmbeddings(t *testing.T) {
	index := &fakeIndex{}
	s := NewIndexingService(chunker.New(100, 20), &seqEmbedder{}, index, nil, nil)
	require.NoError(t, s.DeleteVersionEmbeddings(context.Background(), "v9"))
	require.Equal(t, []string{"v9"}, index.deletedVersions)
}
