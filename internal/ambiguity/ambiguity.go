// Package ambiguity decides whether a request is too vague to generate
// against. Cheap heuristics run first; only when they all pass does a
// low-temperature model call judge the request. The model tier fails open:
// if it errors or returns garbage, the request is treated as unambiguous.
package ambiguity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/schemapilot/schemapilot/internal/ai"
	"github.com/schemapilot/schemapilot/internal/model"
)

// Tunable thresholds, measured in runes so multi-byte scripts are not
// over-counted. The short-request rule is known to flag terse but valid
// domain phrasing ("orders today"); kept for behavioral parity.
const (
	minRequestLen       = 10
	minLenWithoutAction = 20
	llmTierTemperature  = 0.3
)

var barePronouns = []string{"it", "that", "this", "those", "these"}

var actionVerbs = []string{
	"get", "find", "list", "show", "create", "generate", "fetch", "retrieve",
	"select", "query", "search", "filter", "calculate", "count", "sum", "average",
}

// heuristic inspects the request text without any I/O. The bool reports
// whether this rule reached a verdict; the chain stops at the first hit.
type heuristic func(text string) (model.AmbiguityVerdict, bool)

var heuristics = []heuristic{
	tooShort,
	startsWithBarePronoun,
	repeatedQuestionMarks,
	noActionVerbAndShort,
}

// Completer is the single model call the LLM tier needs.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error)
}

type Detector struct {
	completer Completer
}

func NewDetector(completer Completer) *Detector {
	return &Detector{completer: completer}
}

// Detect runs the heuristic chain, then the model tier. The verdict is
// advisory; callers decide whether to block generation.
func (d *Detector) Detect(ctx context.Context, request string) model.AmbiguityVerdict {
	text := strings.TrimSpace(request)
	for _, rule := range heuristics {
		if verdict, hit := rule(text); hit {
			return verdict
		}
	}
	return d.llmTier(ctx, text)
}

func tooShort(text string) (model.AmbiguityVerdict, bool) {
	if utf8.RuneCountInString(text) < minRequestLen {
		return model.AmbiguityVerdict{
			IsAmbiguous:   true,
			Reason:        "request is too short to act on",
			Clarification: "Describe what data or behavior you need, for example: \"list all orders from the last week\".",
		}, true
	}
	return model.AmbiguityVerdict{}, false
}

func startsWithBarePronoun(text string) (model.AmbiguityVerdict, bool) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return model.AmbiguityVerdict{}, false
	}
	first := strings.Trim(fields[0], ".,!?")
	for _, pronoun := range barePronouns {
		if first == pronoun {
			return model.AmbiguityVerdict{
				IsAmbiguous:   true,
				Reason:        "request starts with a pronoun without a referent",
				Clarification: fmt.Sprintf("What does %q refer to? Name the table, workflow or form you mean.", first),
			}, true
		}
	}
	return model.AmbiguityVerdict{}, false
}

func repeatedQuestionMarks(text string) (model.AmbiguityVerdict, bool) {
	if strings.Contains(text, "??") {
		return model.AmbiguityVerdict{
			IsAmbiguous:   true,
			Reason:        "request reads as a question rather than an instruction",
			Clarification: "State the request as an instruction, for example: \"count customers per region\".",
		}, true
	}
	return model.AmbiguityVerdict{}, false
}

func noActionVerbAndShort(text string) (model.AmbiguityVerdict, bool) {
	if utf8.RuneCountInString(text) >= minLenWithoutAction {
		return model.AmbiguityVerdict{}, false
	}
	lower := strings.ToLower(text)
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			return model.AmbiguityVerdict{}, false
		}
	}
	return model.AmbiguityVerdict{
		IsAmbiguous:   true,
		Reason:        "short request without a recognizable action",
		Clarification: "What should happen with this? For example: \"list ...\", \"count ...\", \"create a form for ...\".",
	}, true
}

const llmTierPrompt = `Judge whether the following code-generation request is too ambiguous to fulfill.
Reply with a single JSON object, nothing else:
{"is_ambiguous": <bool>, "reason": "<short reason>", "clarification": "<one clarifying question for the user>"}

REQUEST:
%s`

type llmVerdict struct {
	IsAmbiguous   bool   `json:"is_ambiguous"`
	Reason        string `json:"reason"`
	Clarification string `json:"clarification"`
}

func (d *Detector) llmTier(ctx context.Context, text string) model.AmbiguityVerdict {
	if d.completer == nil {
		return model.AmbiguityVerdict{}
	}
	logger := logutil.GetLogger(ctx)
	resp, err := d.completer.Complete(ctx, ai.CompletionRequest{
		UserPrompt:  fmt.Sprintf(llmTierPrompt, text),
		Temperature: llmTierTemperature,
	})
	if err != nil {
		logger.Warn("ambiguity model call failed, treating request as unambiguous", zap.Error(err))
		return model.AmbiguityVerdict{}
	}
	verdict, err := parseVerdict(resp.Content)
	if err != nil {
		logger.Warn("unparseable ambiguity verdict, treating request as unambiguous", zap.Error(err))
		return model.AmbiguityVerdict{}
	}
	return verdict
}

// parseVerdict extracts the first JSON object embedded in the model reply.
func parseVerdict(output string) (model.AmbiguityVerdict, error) {
	clean := strings.TrimSpace(output)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return model.AmbiguityVerdict{}, fmt.Errorf("no JSON object in reply")
	}
	var verdict llmVerdict
	if err := json.Unmarshal([]byte(clean[start:end+1]), &verdict); err != nil {
		return model.AmbiguityVerdict{}, fmt.Errorf("parse verdict: %w", err)
	}
	return model.AmbiguityVerdict{
		IsAmbiguous:   verdict.IsAmbiguous,
		Reason:        verdict.Reason,
		Clarification: verdict.Clarification,
	}, nil
}
