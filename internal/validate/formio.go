package validate

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/schemapilot/schemapilot/internal/model"
)

var formioKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type formioForm struct {
	Components []formioComponent `json:"components"`
}

type formioComponent struct {
	Type   string          `json:"type"`
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type formioDataValues struct {
	Values []json.RawMessage `json:"values"`
}

func validateFormIO(code string) model.ValidationResult {
	var r report

	var form formioForm
	if err := json.Unmarshal([]byte(code), &form); err != nil {
		r.errorf("output is not valid JSON: %v", err)
		return r.result()
	}
	if len(form.Components) == 0 {
		r.errorf("form must contain a non-empty components array")
		return r.result()
	}

	seenKeys := make(map[string]struct{}, len(form.Components))
	hasSubmit := false
	for i, comp := range form.Components {
		if comp.Type == "" {
			r.errorf("component %d is missing a type", i)
		}
		if comp.Key == "" {
			r.errorf("component %d is missing a key", i)
		} else {
			if !formioKeyPattern.MatchString(comp.Key) {
				r.errorf("component key %q is not a valid identifier", comp.Key)
			}
			if _, dup := seenKeys[comp.Key]; dup {
				r.errorf("duplicate component key %q", comp.Key)
			}
			seenKeys[comp.Key] = struct{}{}
		}

		isButton := comp.Type == "button"
		if !isButton && comp.Label == "" {
			r.suggestf("component %q has no label, screen readers will struggle with it", comp.Key)
		}
		if isButton && (comp.Action == "" || comp.Action == "submit") {
			hasSubmit = true
		}

		if needsDataValues(comp.Type) && !hasDataValues(comp.Data) {
			r.suggestf("component %q (%s) has no data.values options", comp.Key, comp.Type)
		}
	}
	if !hasSubmit {
		r.suggestf("form has no submit button")
	}
	return r.result()
}

func needsDataValues(componentType string) bool {
	switch strings.ToLower(componentType) {
	case "select", "radio", "selectboxes":
		return true
	}
	return false
}

func hasDataValues(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var data formioDataValues
	if err := json.Unmarshal(raw, &data); err != nil {
		return false
	}
	return len(data.Values) > 0
}
