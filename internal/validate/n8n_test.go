package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemapilot/schemapilot/internal/model"
)

const n8nTwoNodeWorkflow = `{
	"nodes": [
		{"name": "Webhook", "type": "n8n-nodes-base.webhook", "position": [0, 0], "parameters": {"path": "orders"}},
		{"name": "Postgres", "type": "n8n-nodes-base.postgres", "position": [200, 0], "parameters": {"query": "SELECT 1"}}
	],
	"connections": {
		"Webhook": {"main": [[{"node": "Postgres", "type": "main", "index": 0}]]}
	}
}`

func TestValidateN8N_ValidWorkflow(t *testing.T) {
	got, err := Validate(n8nTwoNodeWorkflow, model.OutputTypeN8N)
	require.NoError(t, err)
	require.True(t, got.IsValid)
	require.Empty(t, got.Errors)
	require.Empty(t, got.Suggestions)
}

func TestValidateN8N_NotJSON(t *testing.T) {
	got, err := Validate("not json at all", model.OutputTypeN8N)
	require.NoError(t, err)
	require.False(t, got.IsValid)
	require.Contains(t, got.Errors[0], "not valid JSON")
}

func TestValidateN8N_EmptyNodes(t *testing.T) {
	got, err := Validate(`{"nodes": [], "connections": {}}`, model.OutputTypeN8N)
	require.NoError(t, err)
	require.False(t, got.IsValid)
	requireErrorContaining(t, got.Errors, "at least one node")
}

func TestValidateN8N_MissingSections(t *testing.T) {
	got, err := Validate(`{"name": "wf"}`, model.OutputTypeN8N)
	require.NoError(t, err)
	require.False(t, got.IsValid)
	requireErrorContaining(t, got.Errors, "nodes array")
	requireErrorContaining(t, got.Errors, "connections object")

	got, err = Validate(`{"nodes": null, "connections": null}`, model.OutputTypeN8N)
	require.NoError(t, err)
	require.False(t, got.IsValid)
}

func TestValidateN8N_NodeFieldErrors(t *testing.T) {
	code := `{
		"nodes": [{"type": "", "position": null}],
		"connections": {}
	}`
	got, err := Validate(code, model.OutputTypeN8N)
	require.NoError(t, err)
	require.False(t, got.IsValid)
	requireErrorContaining(t, got.Errors, "missing a name")
	requireErrorContaining(t, got.Errors, "missing a type")
	requireErrorContaining(t, got.Errors, "missing a position")
}

func TestValidateN8N_SingleNodeNeverIsolated(t *testing.T) {
	code := `{
		"nodes": [{"name": "Cron", "type": "n8n-nodes-base.cron", "position": [0, 0], "parameters": {}}],
		"connections": {}
	}`
	got, err := Validate(code, model.OutputTypeN8N)
	require.NoError(t, err)
	require.True(t, got.IsValid)
	for _, s := range got.Suggestions {
		require.NotContains(t, s, "isolated")
	}
}

func TestValidateN8N_IsolatedNodeSuggestion(t *testing.T) {
	code := `{
		"nodes": [
			{"name": "Webhook", "type": "n8n-nodes-base.webhook", "position": [0, 0], "parameters": {}},
			{"name": "Orphan", "type": "n8n-nodes-base.noOp", "position": [400, 0], "parameters": {}},
			{"name": "Postgres", "type": "n8n-nodes-base.postgres", "position": [200, 0], "parameters": {}}
		],
		"connections": {
			"Webhook": {"main": [[{"node": "Postgres", "type": "main", "index": 0}]]}
		}
	}`
	got, err := Validate(code, model.OutputTypeN8N)
	require.NoError(t, err)
	require.True(t, got.IsValid, "isolation is a suggestion, never an error")
	found := false
	for _, s := range got.Suggestions {
		if strings.Contains(s, `"Orphan"`) && strings.Contains(s, "isolated") {
			found = true
		}
	}
	require.True(t, found, "expected an isolation suggestion for Orphan, got %v", got.Suggestions)
}

func requireErrorContaining(t *testing.T, errs []string, needle string) {
	t.Helper()
	for _, e := range errs {
		if strings.Contains(e, needle) {
			return
		}
	}
	t.Fatalf("expected an error containing %q, got %v", needle, errs)
}
