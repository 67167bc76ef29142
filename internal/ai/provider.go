package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

// CompletionRequest is one chat-style generation call. The system prompt
// carries the persona and generation rules, the user prompt carries the
// retrieved context plus the raw request.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// Completion is the final result of a non-streaming call.
type Completion struct {
	Content    string
	TokensUsed int
	Model      string
}

// StreamDelta is one incremental fragment of a streamed completion.
// A terminal failure is delivered in-band via Err before the channel closes.
type StreamDelta struct {
	Content string
	Err     error
}

// CompletionProvider is a single model backend. Retry, backoff and timeout
// live in Client, never here, so backends stay swappable.
type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, model string, req CompletionRequest) (*Completion, error)
	CompleteStream(ctx context.Context, model string, req CompletionRequest) (<-chan StreamDelta, error)
}

// EmbedProvider turns text into a fixed-length vector. Failures are never
// retried at this layer.
type EmbedProvider interface {
	Name() string
	Embed(ctx context.Context, model string, text string) ([]float32, error)
}

// Embedder binds an EmbedProvider to one model and maps failures to the
// embedding error class.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

type embedder struct {
	provider EmbedProvider
	model    string
}

func NewEmbedder(p EmbedProvider, model string) Embedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.provider.Embed(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbedding, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: provider returned empty vector", appErr.ErrEmbedding)
	}
	return vec, nil
}

func (e *embedder) ModelName() string {
	return e.model
}

type CompletionFactory func(args interface{}) (CompletionProvider, error)

type EmbedFactory func(args interface{}) (EmbedProvider, error)

var (
	completionRegistry = map[string]CompletionFactory{}
	embedRegistry      = map[string]EmbedFactory{}
)

func RegisterCompletion(name string, factory CompletionFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	completionRegistry[key] = factory
}

func RegisterEmbed(name string, factory EmbedFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func NewCompletionProvider(name string, args interface{}) (CompletionProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.completion.provider is required")
	}
	factory := completionRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported completion provider: %s", name)
	}
	return factory(args)
}

func NewEmbedProvider(name string, args interface{}) (EmbedProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.embedding.provider is required")
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported embed provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
