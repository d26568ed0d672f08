// Package units formats axis values for display.
package units

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Format types
const (
	Plain      = ""
	Append     = "append"
	Substitute = "substitute"
)

// ValidTypes contains all valid format types
var ValidTypes = []string{Plain, Append, Substitute}

// IsValid checks if the given format type is known
func IsValid(kind string) bool {
	for _, valid := range ValidTypes {
		if kind == valid {
			return true
		}
	}
	return false
}

// Threshold labels every value at or above Value, up to the next threshold.
type Threshold struct {
	Value float64
	Label string
}

// Format describes how one axis renders its tick and inspection values.
//
// In config files the "value" key is a suffix string for append and a list
// of [threshold, label] pairs for substitute:
//
//	x: {type: append, value: mm}
//	z: {type: substitute, value: [[0, Low], [0.3, Medium], [0.7, High]]}
type Format struct {
	Type       string
	Suffix     string
	Thresholds []Threshold
}

// AppendUnit returns a Format that appends suffix.
func AppendUnit(suffix string) Format {
	return Format{Type: Append, Suffix: suffix}
}

// SubstituteLabels returns a Format that replaces values with labels.
func SubstituteLabels(thresholds ...Threshold) Format {
	f := Format{Type: Substitute, Thresholds: append([]Threshold(nil), thresholds...)}
	f.sortThresholds()
	return f
}

// Format renders v. Values below every substitute threshold, and all
// values for the plain type, render with two decimals.
func (f Format) Format(v float64) string {
	switch f.Type {
	case Append:
		return fmt.Sprintf("%.2f%s", v, f.Suffix)
	case Substitute:
		i := sort.Search(len(f.Thresholds), func(i int) bool { return f.Thresholds[i].Value > v })
		if i > 0 {
			return f.Thresholds[i-1].Label
		}
	}
	return fmt.Sprintf("%.2f", v)
}

// Validate checks the format type and its value.
func (f Format) Validate() error {
	if !IsValid(f.Type) {
		return fmt.Errorf("unknown unit type %q (want %q or %q)", f.Type, Append, Substitute)
	}
	if f.Type == Substitute && len(f.Thresholds) == 0 {
		return fmt.Errorf("substitute unit needs at least one [threshold, label] pair")
	}
	return nil
}

func (f *Format) sortThresholds() {
	sort.SliceStable(f.Thresholds, func(i, j int) bool {
		return f.Thresholds[i].Value < f.Thresholds[j].Value
	})
}

type rawFormat[V any] struct {
	Type  string `json:"type" yaml:"type"`
	Value V      `json:"value" yaml:"value"`
}

// UnmarshalJSON decodes {"type": ..., "value": ...}.
func (f *Format) UnmarshalJSON(data []byte) error {
	var head rawFormat[json.RawMessage]
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	out := Format{Type: head.Type}
	if len(head.Value) > 0 && string(head.Value) != "null" {
		switch head.Type {
		case Substitute:
			var pairs [][2]json.RawMessage
			if err := json.Unmarshal(head.Value, &pairs); err != nil {
				return fmt.Errorf("substitute value: %w", err)
			}
			for _, pair := range pairs {
				var th Threshold
				if err := json.Unmarshal(pair[0], &th.Value); err != nil {
					return fmt.Errorf("substitute threshold: %w", err)
				}
				if err := json.Unmarshal(pair[1], &th.Label); err != nil {
					return fmt.Errorf("substitute label: %w", err)
				}
				out.Thresholds = append(out.Thresholds, th)
			}
		default:
			if err := json.Unmarshal(head.Value, &out.Suffix); err != nil {
				return fmt.Errorf("%s value: %w", head.Type, err)
			}
		}
	}
	out.sortThresholds()
	*f = out
	return nil
}

// MarshalJSON encodes the same shape UnmarshalJSON reads.
func (f Format) MarshalJSON() ([]byte, error) {
	if f.Type == Substitute {
		pairs := make([][2]interface{}, len(f.Thresholds))
		for i, th := range f.Thresholds {
			pairs[i] = [2]interface{}{th.Value, th.Label}
		}
		return json.Marshal(rawFormat[[][2]interface{}]{Type: f.Type, Value: pairs})
	}
	return json.Marshal(rawFormat[string]{Type: f.Type, Value: f.Suffix})
}

// UnmarshalYAML decodes the YAML form of a Format.
func (f *Format) UnmarshalYAML(node *yaml.Node) error {
	var head rawFormat[yaml.Node]
	if err := node.Decode(&head); err != nil {
		return err
	}
	out := Format{Type: head.Type}
	if head.Value.Kind != 0 {
		switch head.Type {
		case Substitute:
			var pairs [][]yaml.Node
			if err := head.Value.Decode(&pairs); err != nil {
				return fmt.Errorf("substitute value: %w", err)
			}
			for _, pair := range pairs {
				if len(pair) != 2 {
					return fmt.Errorf("substitute pair must be [threshold, label], got %d items", len(pair))
				}
				var th Threshold
				if err := pair[0].Decode(&th.Value); err != nil {
					return fmt.Errorf("substitute threshold: %w", err)
				}
				if err := pair[1].Decode(&th.Label); err != nil {
					return fmt.Errorf("substitute label: %w", err)
				}
				out.Thresholds = append(out.Thresholds, th)
			}
		default:
			if err := head.Value.Decode(&out.Suffix); err != nil {
				return fmt.Errorf("%s value: %w", head.Type, err)
			}
		}
	}
	out.sortThresholds()
	*f = out
	return nil
}
