package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/schemapilot/schemapilot/internal/model"
)

type n8nNode struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Position   json.RawMessage `json:"position"`
	Parameters json.RawMessage `json:"parameters"`
}

// n8n connections: source node name -> output kind -> output slot -> targets.
type n8nConnections map[string]map[string][][]n8nConnectionTarget

type n8nConnectionTarget struct {
	Node string `json:"node"`
}

func validateN8N(code string) model.ValidationResult {
	var r report

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(code), &top); err != nil {
		r.errorf("output is not valid JSON: %v", err)
		return r.result()
	}

	var nodes []n8nNode
	rawNodes, hasNodes := top["nodes"]
	if !hasNodes || isJSONNull(rawNodes) {
		r.errorf("workflow must contain a nodes array")
	} else if err := json.Unmarshal(rawNodes, &nodes); err != nil {
		r.errorf("nodes must be an array of node objects")
	} else if len(nodes) == 0 {
		r.errorf("workflow must contain at least one node")
	}

	var connections n8nConnections
	rawConns, hasConns := top["connections"]
	if !hasConns || isJSONNull(rawConns) {
		r.errorf("workflow must contain a connections object")
	} else if err := json.Unmarshal(rawConns, &connections); err != nil {
		r.errorf("connections must be an object mapping source nodes to targets")
	}

	for i, node := range nodes {
		if node.Name == "" {
			r.errorf("node %d is missing a name", i)
		}
		if node.Type == "" {
			r.errorf("node %q is missing a type", nodeLabel(node, i))
		}
		if len(node.Position) == 0 || isJSONNull(node.Position) {
			r.errorf("node %q is missing a position", nodeLabel(node, i))
		}
		if len(node.Parameters) == 0 || isJSONNull(node.Parameters) {
			r.suggestf("node %q has no parameters", nodeLabel(node, i))
		}
	}

	// Isolation only means anything once the graph has multiple nodes.
	if len(nodes) > 1 {
		connected := make(map[string]struct{})
		for source, outputs := range connections {
			connected[source] = struct{}{}
			for _, slots := range outputs {
				for _, targets := range slots {
					for _, target := range targets {
						connected[target.Node] = struct{}{}
					}
				}
			}
		}
		for _, node := range nodes {
			if node.Name == "" {
				continue
			}
			if _, ok := connected[node.Name]; !ok {
				r.suggestf("node %q is isolated: it never appears in connections", node.Name)
			}
		}
	}
	return r.result()
}

func nodeLabel(node n8nNode, index int) string {
	if node.Name != "" {
		return node.Name
	}
	return fmt.Sprintf("#%d", index)
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
