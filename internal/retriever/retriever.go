// Package retriever answers "what do we know about this version that is
// relevant to the request": it embeds the query, searches the vector index
// scoped to the version, and assembles the context block for prompting.
package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/schemapilot/schemapilot/internal/ai"
	"github.com/schemapilot/schemapilot/internal/model"
)

// NoContextSentinel is the context string produced for an empty chunk list.
// Callers must treat the empty list itself, not this string, as the hard
// no-context failure.
const NoContextSentinel = "No relevant context found."

const DefaultTopK = 5

// Searcher is the slice of the vector index the retriever needs.
type Searcher interface {
	Search(ctx context.Context, queryVector []float32, versionID string, topK int) ([]model.ContextChunk, error)
}

type Retriever struct {
	embedder ai.Embedder
	index    Searcher
	topK     int
	// Query embeddings are pure functions of the text, so identical queries
	// within the TTL skip one upstream call.
	cache *expirable.LRU[string, []float32]
}

func New(embedder ai.Embedder, index Searcher, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		cache:    expirable.NewLRU[string, []float32](2048, nil, 30*time.Minute),
	}
}

// RetrieveContext returns the topK most relevant chunks for the query within
// the version scope, ranked by similarity. topK <= 0 uses the configured
// default. An empty result is a valid return value here.
func (r *Retriever) RetrieveContext(ctx context.Context, query, versionID string, topK int) ([]model.ContextChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}
	logger := logutil.GetLogger(ctx).With(zap.String("version_id", versionID))

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, err
	}
	hits, err := r.index.Search(ctx, vec, versionID, topK)
	if err != nil {
		logger.Error("vector search failed", zap.Error(err))
		return nil, err
	}
	logger.Debug("context retrieved", zap.Int("chunks", len(hits)))
	return hits, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := cacheKey(r.embedder.ModelName(), query)
	if vec, ok := r.cache.Get(key); ok {
		return vec, nil
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, vec)
	return vec, nil
}

func cacheKey(model, query string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + query))
	return hex.EncodeToString(sum[:])
}

// BuildContextString joins chunks in ranked order, each prefixed with its
// source filename and relevance score, so the model can attribute schema
// facts to files.
func BuildContextString(chunks []model.ContextChunk) string {
	if len(chunks) == 0 {
		return NoContextSentinel
	}
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("--- Source: %s (relevance: %.3f) ---\n%s", chunk.Filename, chunk.Score, chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

// ContextFiles lists the distinct source filenames, in ranked order.
func ContextFiles(chunks []model.ContextChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	files := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if _, ok := seen[chunk.Filename]; ok {
			continue
		}
		seen[chunk.Filename] = struct{}{}
		files = append(files, chunk.Filename)
	}
	return files
}
