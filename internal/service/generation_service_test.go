package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemapilot/schemapilot/internal/ai"
	"github.com/schemapilot/schemapilot/internal/ambiguity"
	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

type fakeRetriever struct {
	chunks []model.ContextChunk
	err    error
}

func (f *fakeRetriever) RetrieveContext(ctx context.Context, query, versionID string, topK int) ([]model.ContextChunk, error) {
	return f.chunks, f.err
}

type fakeCompletion struct {
	calls     int
	gotReq    ai.CompletionRequest
	reply     *ai.Completion
	err       error
	modelName string
}

func (f *fakeCompletion) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	f.calls++
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeCompletion) Model() string { return f.modelName }

func ddlChunks() []model.ContextChunk {
	return []model.ContextChunk{
		{Content: "CREATE TABLE orders (id INT, customer_id INT, created_at TIMESTAMP);", Filename: "orders.sql", Score: 0.93},
		{Content: "CREATE TABLE customers (id INT, name TEXT);", Filename: "customers.sql", Score: 0.88},
	}
}

func validGenRequest() model.GenerationRequest {
	return model.GenerationRequest{
		Request:    "list all orders from the last week with customer names",
		OutputType: model.OutputTypeSQL,
		VersionID:  "v1",
		UserID:     "admin",
	}
}

func TestGenerateCode_HappyPath(t *testing.T) {
	completion := &fakeCompletion{
		reply:     &ai.Completion{Content: "```sql\nSELECT o.id FROM orders o JOIN customers c ON c.id = o.customer_id\n```", TokensUsed: 321, Model: "gpt-test"},
		modelName: "gpt-test",
	}
	s := NewGenerationService(&fakeRetriever{chunks: ddlChunks()}, completion, ambiguity.NewDetector(nil))

	result, err := s.GenerateCode(context.Background(), validGenRequest())
	require.NoError(t, err)
	require.Equal(t, "SELECT o.id FROM orders o JOIN customers c ON c.id = o.customer_id", result.Code)
	require.Equal(t, 321, result.TokensUsed)
	require.Equal(t, "gpt-test", result.Model)
	require.Equal(t, []string{"orders.sql", "customers.sql"}, result.ContextFiles)
	require.True(t, result.Validation.IsValid)
	require.GreaterOrEqual(t, result.ElapsedMs, int64(0))

	require.Contains(t, completion.gotReq.SystemPrompt, "SQL")
	require.Contains(t, completion.gotReq.UserPrompt, "CREATE TABLE orders")
	require.Contains(t, completion.gotReq.UserPrompt, "list all orders from the last week")
	require.Equal(t, float32(generationTemperature), completion.gotReq.Temperature)
}

func TestGenerateCode_NoContextAbortsBeforeCompletion(t *testing.T) {
	completion := &fakeCompletion{reply: &ai.Completion{Content: "SELECT 1"}}
	s := NewGenerationService(&fakeRetriever{}, completion, ambiguity.NewDetector(nil))

	_, err := s.GenerateCode(context.Background(), validGenRequest())
	require.ErrorIs(t, err, appErr.ErrNoContext)
	require.Contains(t, err.Error(), "v1")
	require.Zero(t, completion.calls, "completion must not run without context")
}

func TestGenerateCode_RetrievalErrorPropagates(t *testing.T) {
	s := NewGenerationService(&fakeRetriever{err: fmt.Errorf("%w: index down", appErr.ErrVectorIndex)}, &fakeCompletion{}, ambiguity.NewDetector(nil))

	_, err := s.GenerateCode(context.Background(), validGenRequest())
	require.ErrorIs(t, err, appErr.ErrVectorIndex)
}

func TestGenerateCode_CompletionErrorPropagates(t *testing.T) {
	completion := &fakeCompletion{err: fmt.Errorf("%w: exhausted retries", appErr.ErrCompletion)}
	s := NewGenerationService(&fakeRetriever{chunks: ddlChunks()}, completion, ambiguity.NewDetector(nil))

	_, err := s.GenerateCode(context.Background(), validGenRequest())
	require.ErrorIs(t, err, appErr.ErrCompletion)
}

func TestGenerateCode_InvalidOutputNeverFailsTheCall(t *testing.T) {
	completion := &fakeCompletion{reply: &ai.Completion{Content: "SELECT (1", TokensUsed: 5, Model: "m"}}
	s := NewGenerationService(&fakeRetriever{chunks: ddlChunks()}, completion, ambiguity.NewDetector(nil))

	result, err := s.GenerateCode(context.Background(), validGenRequest())
	require.NoError(t, err)
	require.False(t, result.Validation.IsValid)
	require.NotEmpty(t, result.Validation.Errors)
	require.Equal(t, "SELECT (1", result.Code)
}

func TestGenerateCode_RequestValidation(t *testing.T) {
	s := NewGenerationService(&fakeRetriever{chunks: ddlChunks()}, &fakeCompletion{reply: &ai.Completion{Content: "SELECT 1"}}, ambiguity.NewDetector(nil))

	req := validGenRequest()
	req.Request = "   "
	_, err := s.GenerateCode(context.Background(), req)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	req = validGenRequest()
	req.VersionID = ""
	_, err = s.GenerateCode(context.Background(), req)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	req = validGenRequest()
	req.OutputType = "yaml"
	_, err = s.GenerateCode(context.Background(), req)
	require.ErrorIs(t, err, appErr.ErrUnsupportedOutputType)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "SELECT 1", "SELECT 1"},
		{"plain fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"language fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"unterminated fence", "```sql\nSELECT 1", "SELECT 1"},
		{"surrounding whitespace", "\n  ```json\n{\"a\": 1}\n```  \n", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func TestDetectAmbiguity_Delegates(t *testing.T) {
	s := NewGenerationService(&fakeRetriever{}, &fakeCompletion{}, ambiguity.NewDetector(nil))
	verdict := s.DetectAmbiguity(context.Background(), "it")
	require.True(t, verdict.IsAmbiguous)
}
