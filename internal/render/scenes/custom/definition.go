package custom

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-aurora/internal/render"
)

// ErrDefinitionInvalid is returned when a definition cannot be parsed,
// compiled or lacks a draw function. Nothing is registered in that case.
var ErrDefinitionInvalid = errors.New("custom drawer definition invalid")

// Uses flags are informational only.
type Uses struct {
	Audio  bool `yaml:"audio"`
	Video  bool `yaml:"video"`
	Canvas bool `yaml:"canvas"`
}

// SettingSpec is one entry of the settings schema. Literal holds bare
// scalar entries ("speed: 5") that carry no schema at all.
type SettingSpec struct {
	Name        string   `yaml:"-"`
	Type        string   `yaml:"type,omitempty"`
	Default     any      `yaml:"default,omitempty"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Literal     any      `yaml:"-"`
}

// Schema keeps settings in document order.
type Schema []SettingSpec

func (s *Schema) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("settings: expected a mapping, got line %d", n.Line)
	}
	out := make(Schema, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		spec := SettingSpec{Name: key.Value}
		if val.Kind == yaml.MappingNode {
			if err := val.Decode(&spec); err != nil {
				return fmt.Errorf("setting %q: %w", key.Value, err)
			}
			spec.Name = key.Value
		} else {
			var lit any
			if err := val.Decode(&lit); err != nil {
				return fmt.Errorf("setting %q: %w", key.Value, err)
			}
			spec.Literal = lit
		}
		out = append(out, spec)
	}
	*s = out
	return nil
}

func (s Schema) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, spec := range s {
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: spec.Name}
		v := &yaml.Node{}
		var err error
		if spec.Literal != nil {
			err = v.Encode(spec.Literal)
		} else {
			err = v.Encode(spec)
		}
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, k, v)
	}
	return n, nil
}

// Definition is a parsed custom drawer document. It is immutable once
// loaded; a changed document needs a new load.
type Definition struct {
	Name        string `yaml:"name"`
	Author      string `yaml:"author,omitempty"`
	Description string `yaml:"description,omitempty"`
	Created     string `yaml:"created,omitempty"`
	Uses        Uses   `yaml:"uses"`
	Settings    Schema `yaml:"settings,omitempty"`
	Code        string `yaml:"code"`
}

// ParseDefinition decodes YAML text into a Definition.
func ParseDefinition(src []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(src, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefinitionInvalid, err)
	}
	if def.Name == "" {
		def.Name = "Custom"
	}
	if strings.TrimSpace(def.Code) == "" {
		return nil, fmt.Errorf("%w: no code section", ErrDefinitionInvalid)
	}
	return &def, nil
}

// YAML re-encodes the definition.
func (d *Definition) YAML() ([]byte, error) { return yaml.Marshal(d) }

// BuildSettings turns the schema into drawer settings. int and float
// entries are ranged (min 0 and max 100 when omitted); bool entries become
// 0/1 in [0,1]; everything else is stored as a literal default.
func (d *Definition) BuildSettings() *render.Settings {
	s := render.NewSettings()
	for _, spec := range d.Settings {
		switch {
		case spec.Literal != nil:
			s.Literal(spec.Name, number(spec.Literal))
		case spec.Type == "int" || spec.Type == "float":
			lo, hi := 0.0, 100.0
			if spec.Min != nil {
				lo = *spec.Min
			}
			if spec.Max != nil {
				hi = *spec.Max
			}
			s.Define(spec.Name, render.ParamType(spec.Type), number(spec.Default), lo, hi)
		case spec.Type == "bool":
			s.Define(spec.Name, render.ParamBool, number(spec.Default), 0, 1)
		default:
			s.Literal(spec.Name, number(spec.Default))
		}
	}
	return s
}

func number(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
	}
	return 0
}
