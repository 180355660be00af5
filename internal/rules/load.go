package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dam4rus/logan/internal/paint"
)

// Format identifies the on-disk encoding of a rules file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath guesses the rules file format from its extension. Anything
// that is not .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads and validates a rules file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatForPath(path))
}

// Parse validates a rules document. All fields are optional; an empty
// document yields an empty, valid Set.
func Parse(data []byte, format Format) (*Set, error) {
	var tree map[string]any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &tree)
	default:
		err = json.Unmarshal(data, &tree)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}
	set, err := fromTree(tree)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}
	return set, nil
}

// fromTree builds a Set from a decoded document, validating shapes as it
// walks. Unknown keys are ignored, and an explicit null reads as absent.
func fromTree(tree map[string]any) (*Set, error) {
	set := &Set{}

	if v, ok := tree["prefix"]; ok && v != nil {
		s, ok := asString(v)
		if !ok {
			return nil, typeErr("prefix", "string")
		}
		set.Prefix = s
	}

	if v, ok := tree["pattern_colors"]; ok && v != nil {
		items, ok := asSlice(v)
		if !ok {
			return nil, typeErr("pattern_colors", "array")
		}
		for i, item := range items {
			path := fmt.Sprintf("pattern_colors[%d]", i)
			obj, ok := asObject(item)
			if !ok {
				return nil, typeErr(path, "object")
			}
			expr, err := requireString(obj, "pattern", path)
			if err != nil {
				return nil, err
			}
			color, err := requireColor(obj, path)
			if err != nil {
				return nil, err
			}
			pat, err := compileField(set.Prefix, expr, path+".pattern")
			if err != nil {
				return nil, err
			}
			set.Colors = append(set.Colors, ColorRule{Pattern: pat, Color: color})
		}
	}

	if v, ok := tree["event_patterns"]; ok && v != nil {
		items, ok := asSlice(v)
		if !ok {
			return nil, typeErr("event_patterns", "array")
		}
		for i, item := range items {
			path := fmt.Sprintf("event_patterns[%d]", i)
			obj, ok := asObject(item)
			if !ok {
				return nil, typeErr(path, "object")
			}
			startExpr, err := requireString(obj, "start_pattern", path)
			if err != nil {
				return nil, err
			}
			endExpr, err := requireString(obj, "end_pattern", path)
			if err != nil {
				return nil, err
			}
			color, err := optionalColor(obj, path)
			if err != nil {
				return nil, err
			}
			start, err := compileField(set.Prefix, startExpr, path+".start_pattern")
			if err != nil {
				return nil, err
			}
			end, err := compileField(set.Prefix, endExpr, path+".end_pattern")
			if err != nil {
				return nil, err
			}
			set.Events = append(set.Events, EventRule{Start: start, End: end, Color: color})
		}
	}

	if v, ok := tree["state_patterns"]; ok && v != nil {
		items, ok := asSlice(v)
		if !ok {
			return nil, typeErr("state_patterns", "array")
		}
		for i, item := range items {
			path := fmt.Sprintf("state_patterns[%d]", i)
			obj, ok := asObject(item)
			if !ok {
				return nil, typeErr(path, "object")
			}
			expr, err := requireString(obj, "pattern", path)
			if err != nil {
				return nil, err
			}
			color, err := optionalColor(obj, path)
			if err != nil {
				return nil, err
			}
			group := 0
			if gv, ok := obj["group"]; ok && gv != nil {
				g, ok := asInt(gv)
				if !ok {
					return nil, typeErr(path+".group", "integer")
				}
				group = g
			}
			pat, err := compileField(set.Prefix, expr, path+".pattern")
			if err != nil {
				return nil, err
			}
			rule := StateRule{Pattern: pat, Group: group, Color: color}
			if err := rule.Validate(); err != nil {
				return nil, &ConfigError{Field: path + ".group", Kind: KindGroup, Err: err}
			}
			set.States = append(set.States, rule)
		}
	}

	return set, nil
}

func compileField(prefix, expr, field string) (Pattern, error) {
	p, err := Compile(prefix, expr)
	if err != nil {
		return Pattern{}, &ConfigError{Field: field, Kind: KindPattern, Err: err}
	}
	return p, nil
}

func requireString(obj map[string]any, key, path string) (string, error) {
	s, ok := asString(obj[key])
	if !ok {
		return "", typeErr(path+"."+key, "string")
	}
	return s, nil
}

func requireColor(obj map[string]any, path string) (paint.Color, error) {
	s, err := requireString(obj, "color", path)
	if err != nil {
		return 0, err
	}
	c, err := paint.Parse(s)
	if err != nil {
		return 0, &ConfigError{Field: path + ".color", Kind: KindColor, Err: err}
	}
	return c, nil
}

func optionalColor(obj map[string]any, path string) (*paint.Color, error) {
	if v, ok := obj["color"]; !ok || v == nil {
		return nil, nil
	}
	c, err := requireColor(obj, path)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asInt accepts the integer shapes JSON and YAML decoders produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
