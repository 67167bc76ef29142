package ambiguity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemapilot/schemapilot/internal/ai"
)

type fakeCompleter struct {
	calls int
	reply string
	err   error
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Content: f.reply}, nil
}

func TestDetect_HeuristicsSkipModelCall(t *testing.T) {
	tests := []struct {
		name    string
		request string
		reason  string
	}{
		{"too short", "it", "too short"},
		{"bare pronoun", "that thing from before please", "pronoun"},
		{"double question marks", "what is happening with the orders data??", "question"},
		{"short without action verb", "users maybe", "action"},
		{"multi-byte short", "统计每个地区的客户", "too short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{}
			d := NewDetector(completer)
			verdict := d.Detect(context.Background(), tt.request)
			require.True(t, verdict.IsAmbiguous)
			require.Contains(t, verdict.Reason, tt.reason)
			require.NotEmpty(t, verdict.Clarification)
			require.Zero(t, completer.calls, "heuristic verdicts must not call the model")
		})
	}
}

func TestDetect_ClearRequestGoesToModelTier(t *testing.T) {
	completer := &fakeCompleter{reply: `{"is_ambiguous": false, "reason": "", "clarification": ""}`}
	d := NewDetector(completer)
	verdict := d.Detect(context.Background(), "list all orders from the last 7 days with customer names")
	require.False(t, verdict.IsAmbiguous)
	require.Equal(t, 1, completer.calls)
}

func TestDetect_ModelFlagsAmbiguity(t *testing.T) {
	completer := &fakeCompleter{reply: `Sure! {"is_ambiguous": true, "reason": "no time range", "clarification": "Which period do you mean?"}`}
	d := NewDetector(completer)
	verdict := d.Detect(context.Background(), "generate the usual revenue report for the dashboard")
	require.True(t, verdict.IsAmbiguous)
	require.Equal(t, "no time range", verdict.Reason)
	require.Equal(t, "Which period do you mean?", verdict.Clarification)
}

func TestDetect_ModelFailureFailsOpen(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("upstream down")}
	d := NewDetector(completer)
	verdict := d.Detect(context.Background(), "list all orders from the last 7 days with customer names")
	require.False(t, verdict.IsAmbiguous)
}

func TestDetect_GarbageReplyFailsOpen(t *testing.T) {
	completer := &fakeCompleter{reply: "I cannot answer that."}
	d := NewDetector(completer)
	verdict := d.Detect(context.Background(), "list all orders from the last 7 days with customer names")
	require.False(t, verdict.IsAmbiguous)
}

func TestDetect_NilCompleter(t *testing.T) {
	d := NewDetector(nil)
	verdict := d.Detect(context.Background(), "list all orders from the last 7 days with customer names")
	require.False(t, verdict.IsAmbiguous)
}

func TestParseVerdict(t *testing.T) {
	verdict, err := parseVerdict("```json\n{\"is_ambiguous\": true, \"reason\": \"r\", \"clarification\": \"c\"}\n```")
	require.NoError(t, err)
	require.True(t, verdict.IsAmbiguous)
	require.Equal(t, "r", verdict.Reason)

	_, err = parseVerdict("no json here")
	require.Error(t, err)
}
