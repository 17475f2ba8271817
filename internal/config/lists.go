package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/0xn0va/slh-sh/internal/theme"
)

// ThemeList is the themes mapping (name -> {hex, term}) with file order
// preserved.
type ThemeList []theme.Theme

type themeValue struct {
	Hex  string `yaml:"hex"`
	Term string `yaml:"term"`
}

// UnmarshalYAML decodes a mapping node in document order.
func (l *ThemeList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: themes must be a mapping", node.Line)
	}
	out := make(ThemeList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v themeValue
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("theme %q: %w", node.Content[i].Value, err)
		}
		out = append(out, theme.Theme{Color: node.Content[i].Value, Hex: v.Hex, Term: v.Term})
	}
	*l = out
	return nil
}

// MarshalYAML encodes the list as a mapping in list order.
func (l ThemeList) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, t := range l {
		var val yaml.Node
		if err := val.Encode(themeValue{Hex: t.Hex, Term: t.Term}); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalar(t.Color), &val)
	}
	return node, nil
}

// Named is a configured search or source: a short name and its description.
type Named struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NamedList is a name -> description mapping with file order preserved.
type NamedList []Named

// UnmarshalYAML decodes a mapping node in document order.
func (l *NamedList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := make(NamedList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var desc string
		if err := node.Content[i+1].Decode(&desc); err != nil {
			return fmt.Errorf("%q: %w", node.Content[i].Value, err)
		}
		out = append(out, Named{Name: node.Content[i].Value, Description: desc})
	}
	*l = out
	return nil
}

// MarshalYAML encodes the list as a mapping in list order.
func (l NamedList) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, n := range l {
		node.Content = append(node.Content, scalar(n.Name), scalar(n.Description))
	}
	return node, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
