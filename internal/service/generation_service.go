package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/schemapilot/schemapilot/internal/ai"
	"github.com/schemapilot/schemapilot/internal/ambiguity"
	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
	"github.com/schemapilot/schemapilot/internal/prompt"
	"github.com/schemapilot/schemapilot/internal/retriever"
	"github.com/schemapilot/schemapilot/internal/validate"
)

const generationTemperature = 0.7

// ContextRetriever is the retrieval stage as the orchestrator sees it.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, query, versionID string, topK int) ([]model.ContextChunk, error)
}

// CompletionClient is the completion stage; retry and timeout live behind it.
type CompletionClient interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error)
	Model() string
}

// GenerationService sequences retrieval, prompting, completion and output
// validation for one request. It holds no state between requests and causes
// no side effects; persisting results is the caller's concern.
type GenerationService struct {
	retriever  ContextRetriever
	completion CompletionClient
	detector   *ambiguity.Detector
}

func NewGenerationService(r ContextRetriever, completion CompletionClient, detector *ambiguity.Detector) *GenerationService {
	return &GenerationService{
		retriever:  r,
		completion: completion,
		detector:   detector,
	}
}

// GenerateCode runs the full pipeline. Validation problems in the generated
// output never fail the call; every stage failure before that aborts with a
// typed error and no partial result.
func (s *GenerationService) GenerateCode(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start := time.Now()
	logger := logutil.GetLogger(ctx).With(
		zap.String("version_id", req.VersionID),
		zap.String("output_type", string(req.OutputType)),
	)

	chunks, err := s.retriever.RetrieveContext(ctx, req.Request, req.VersionID, 0)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		logger.Warn("no indexed context for version")
		return nil, fmt.Errorf("%w: version %s", appErr.ErrNoContext, req.VersionID)
	}

	prompts, err := prompt.Build(req.OutputType, retriever.BuildContextString(chunks), req.Request)
	if err != nil {
		return nil, err
	}

	completion, err := s.completion.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: prompts.System,
		UserPrompt:   prompts.User,
		Temperature:  generationTemperature,
	})
	if err != nil {
		return nil, err
	}

	code := stripCodeFences(completion.Content)
	validation, err := validate.Validate(code, req.OutputType)
	if err != nil {
		return nil, err
	}

	result := &model.GenerationResult{
		Code:         code,
		TokensUsed:   completion.TokensUsed,
		ElapsedMs:    time.Since(start).Milliseconds(),
		ContextFiles: retriever.ContextFiles(chunks),
		Model:        completion.Model,
		Validation:   validation,
	}
	logger.Info("code generated",
		zap.Int("tokens", result.TokensUsed),
		zap.Int64("elapsed_ms", result.ElapsedMs),
		zap.Bool("valid", validation.IsValid),
	)
	return result, nil
}

// DetectAmbiguity is the advisory pre-check; callers invoke it before
// committing to a generation call.
func (s *GenerationService) DetectAmbiguity(ctx context.Context, request string) model.AmbiguityVerdict {
	return s.detector.Detect(ctx, request)
}

func validateRequest(req model.GenerationRequest) error {
	if strings.TrimSpace(req.Request) == "" {
		return fmt.Errorf("%w: request text is required", appErr.ErrInvalid)
	}
	if req.VersionID == "" {
		return fmt.Errorf("%w: version_id is required", appErr.ErrInvalid)
	}
	if !req.OutputType.Valid() {
		return fmt.Errorf("%w: %q", appErr.ErrUnsupportedOutputType, req.OutputType)
	}
	return nil
}

// stripCodeFences unwraps a ```-fenced reply. Models are told not to fence
// but do it anyway often enough to handle here.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
