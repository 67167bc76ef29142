package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

type fakeEmbedProvider struct {
	vec []float32
	err error
}

func (f *fakeEmbedProvider) Name() string { return "fake" }

func (f *fakeEmbedProvider) Embed(ctx context.Context, model, text string) ([]float32, error) {
	return f.vec, f.err
}

func TestEmbedder_WrapsProviderFailure(t *testing.T) {
	e := NewEmbedder(&fakeEmbedProvider{err: fmt.Errorf("quota exceeded")}, "m")
	_, err := e.Embed(context.Background(), "text")
	require.ErrorIs(t, err, appErr.ErrEmbedding)
}

func TestEmbedder_RejectsEmptyVector(t *testing.T) {
	e := NewEmbedder(&fakeEmbedProvider{vec: []float32{}}, "m")
	_, err := e.Embed(context.Background(), "text")
	require.ErrorIs(t, err, appErr.ErrEmbedding)
}

func TestEmbedder_PassesVectorThrough(t *testing.T) {
	e := NewEmbedder(&fakeEmbedProvider{vec: []float32{0.1, 0.2}}, "text-embedding-3-small")
	vec, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2}, vec)
	require.Equal(t, "text-embedding-3-small", e.ModelName())
}

func TestProviderRegistry_BuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"openai", "gemini"} {
		_, okC := completionRegistry[name]
		require.True(t, okC, "completion provider %q must self-register", name)
	}
	_, ok := embedRegistry["openai"]
	require.True(t, ok)
}

func TestNewCompletionProvider_Unknown(t *testing.T) {
	_, err := NewCompletionProvider("unknown-llm", nil)
	require.Error(t, err)

	_, err = NewCompletionProvider("", nil)
	require.Error(t, err)
}
