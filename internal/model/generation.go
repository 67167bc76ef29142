package model

// OutputType is the generation target grammar.
type OutputType string

const (
	OutputTypeSQL    OutputType = "sql"
	OutputTypeN8N    OutputType = "n8n"
	OutputTypeFormIO OutputType = "formio"
)

func (t OutputType) Valid() bool {
	switch t {
	case OutputTypeSQL, OutputTypeN8N, OutputTypeFormIO:
		return true
	}
	return false
}

// GenerationRequest is one user request to generate code against a version's
// indexed context. Validated before any retrieval happens.
type GenerationRequest struct {
	Request    string     `json:"request"`
	OutputType OutputType `json:"output_type"`
	VersionID  string     `json:"version_id"`
	UserID     string     `json:"user_id"`
}

// GenerationResult carries the generated code and its provenance back to the
// caller. Validation issues travel with it and never block the result.
type GenerationResult struct {
	Code         string           `json:"code"`
	TokensUsed   int              `json:"tokens_used"`
	ElapsedMs    int64            `json:"elapsed_ms"`
	ContextFiles []string         `json:"context_files"`
	Model        string           `json:"model"`
	Validation   ValidationResult `json:"validation"`
}

// ValidationResult reports structural checks over generated output.
// Errors flag the result as invalid, suggestions are informational only.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Suggestions []string `json:"suggestions"`
}

// AmbiguityVerdict is the advisory outcome of the ambiguity pre-check.
// It is never an error; callers decide whether to block or proceed.
type AmbiguityVerdict struct {
	IsAmbiguous   bool   `json:"is_ambiguous"`
	Reason        string `json:"reason,omitempty"`
	Clarification string `json:"clarification,omitempty"`
}
