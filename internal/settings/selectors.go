package settings

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"lineup-runner/internal/model"
	"lineup-runner/internal/phase"
	"lineup-runner/internal/surface"
)

// LoadSelectors returns the built-in selector table with the overrides from
// path applied. A missing file means no overrides.
func LoadSelectors(path string) (*phase.Selectors, error) {
	sel := phase.DefaultSelectors()
	if strings.TrimSpace(path) == "" {
		return sel, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sel, nil
		}
		return nil, model.Invalid("selectors_file_unreadable", err)
	}
	if err := ApplySelectors(sel, data); err != nil {
		return nil, err
	}
	return sel, nil
}

// ApplySelectors merges a YAML override document into sel. Each role takes
// a CSS string, a {css, text} mapping, or a list of either. landing_path and
// tab_labels are plain values.
func ApplySelectors(sel *phase.Selectors, data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Invalid("selectors_file_malformed", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return model.Invalid("selectors_file_malformed", errors.New("top level must be a mapping"))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		role, val := strings.TrimSpace(root.Content[i].Value), root.Content[i+1]
		switch role {
		case "landing_path":
			if p := scalar(val); p != "" {
				sel.LandingPath = p
			}
		case "tab_labels":
			labels := map[string]string{}
			if err := val.Decode(&labels); err != nil {
				return model.Invalid("selector_tab_labels", err)
			}
			for k, v := range labels {
				sel.TabLabels[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		default:
			c, err := decodeCandidates(val)
			if err != nil {
				return model.Invalid("selector_"+role, err)
			}
			if err := sel.Override(role, c); err != nil {
				return model.Invalid("selector_"+role, err)
			}
		}
	}
	return nil
}

type candidateSpec struct {
	CSS  string `yaml:"css"`
	Text string `yaml:"text"`
}

func decodeCandidates(node *yaml.Node) (surface.Candidates, error) {
	switch node.Kind {
	case yaml.ScalarNode, yaml.MappingNode:
		q, err := decodeQuery(node)
		if err != nil {
			return nil, err
		}
		return surface.Candidates{q}, nil
	case yaml.SequenceNode:
		out := make(surface.Candidates, 0, len(node.Content))
		for _, item := range node.Content {
			q, err := decodeQuery(item)
			if err != nil {
				return nil, err
			}
			out = append(out, q)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported selector value", node.Line)
	}
}

func decodeQuery(node *yaml.Node) (surface.Query, error) {
	if node.Kind == yaml.ScalarNode {
		return surface.CSS(strings.TrimSpace(node.Value)), nil
	}
	if node.Kind != yaml.MappingNode {
		return surface.Query{}, fmt.Errorf("line %d: selector must be a string or {css, text}", node.Line)
	}
	var spec candidateSpec
	if err := node.Decode(&spec); err != nil {
		return surface.Query{}, err
	}
	q := surface.CSS(strings.TrimSpace(spec.CSS))
	if t := strings.TrimSpace(spec.Text); t != "" {
		re, err := regexp.Compile("(?i)" + t)
		if err != nil {
			return surface.Query{}, fmt.Errorf("line %d: text pattern: %w", node.Line, err)
		}
		q.Text = re
	}
	return q, nil
}
