// Package prompt maps an output type to the system/user prompt pair for the
// completion call. Output types are validated upstream; this package assumes
// a valid enum value.
package prompt

import (
	"fmt"

	"github.com/schemapilot/schemapilot/internal/model"
	appErr "github.com/schemapilot/schemapilot/internal/pkg/errors"
)

type Prompts struct {
	System string
	User   string
}

const sqlSystemPrompt = `You are an expert SQL developer.
Generate a SQL query that fulfills the user's request using ONLY the tables and columns present in the provided schema context.
- Use exact table and column names from the schema. Never invent columns.
- Add short inline comments explaining non-obvious parts of the query.
- Prefer explicit column lists over SELECT * where the request allows it.
- Return only the SQL code. No markdown fences, no explanation, no prose.`

const n8nSystemPrompt = `You are an expert n8n workflow engineer.
Generate a complete n8n workflow as a single JSON document fulfilling the user's request, grounded on the provided context.
- The document must contain a "nodes" array and a "connections" object forming a complete node and connection graph.
- Every node needs "name", "type", "position" and realistic "parameters" values.
- Connect every node into the graph; avoid dangling nodes.
- Return only the JSON document. No markdown fences, no explanation.`

const formioSystemPrompt = `You are an expert Form.io form designer.
Generate a Form.io form definition as a single JSON document fulfilling the user's request, grounded on the provided context.
- The document must contain a "components" array.
- Every component needs a "type", a unique machine-friendly "key", an accessible "label", and validation rules where the data demands them.
- Include a submit button.
- Return only the JSON document. No markdown fences, no explanation.`

var systemPrompts = map[model.OutputType]string{
	model.OutputTypeSQL:    sqlSystemPrompt,
	model.OutputTypeN8N:    n8nSystemPrompt,
	model.OutputTypeFormIO: formioSystemPrompt,
}

// Build returns the prompt pair for the output type. The orchestrator
// validates the enum before retrieval; an unknown value still fails here.
func Build(outputType model.OutputType, contextBlock, request string) (Prompts, error) {
	system, ok := systemPrompts[outputType]
	if !ok {
		return Prompts{}, fmt.Errorf("%w: %q", appErr.ErrUnsupportedOutputType, outputType)
	}
	user := fmt.Sprintf("CONTEXT:\n%s\n\nREQUEST:\n%s", contextBlock, request)
	return Prompts{System: system, User: user}, nil
}
