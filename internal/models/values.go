package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Values is a category selection as written in YAML. It accepts either a
// scalar ("hono") or a sequence ([nuxt, native-nativewind]) and writes a
// single value back as a scalar.
type Values []string

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*v = Values{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*v = Values(append([]string{}, list...))
		return nil
	default:
		return fmt.Errorf("line %d: expected a value or a list of values", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler
func (v Values) MarshalYAML() (interface{}, error) {
	if len(v) == 1 {
		return v[0], nil
	}
	return []string(append([]string{}, v...)), nil
}

// UnmarshalJSON implements json.Unmarshaler with the same scalar-or-list rule
func (v *Values) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Values{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected a value or a list of values")
	}
	*v = Values(append([]string{}, list...))
	return nil
}

// ToStack converts YAML values to the plain stack map shape
func ToStack(m map[string]Values) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string{}, v...)
	}
	return out
}

// FromStack converts the plain stack map shape to YAML values
func FromStack(m map[string][]string) map[string]Values {
	out := make(map[string]Values, len(m))
	for k, v := range m {
		out[k] = Values(append([]string{}, v...))
	}
	return out
}
