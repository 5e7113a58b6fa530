package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
)

var (
	// ErrInvalidKey is returned for empty keys or keys containing the separator.
	ErrInvalidKey = errors.New("invalid config key")
	// ErrConflict is returned when a flat path is both a leaf and a prefix.
	ErrConflict = errors.New("conflicting config paths")
	// ErrMissingKey is returned by getters when the path does not exist.
	ErrMissingKey = errors.New("missing config key")
	// ErrWrongType is returned by getters when the value has another type.
	ErrWrongType = errors.New("wrong config value type")
)

// Separator joins path segments in flat keys.
const Separator = "."

// Config is a nested parameter map. Sub-configurations are Config values;
// plain map[string]any values are accepted and treated the same way.
type Config map[string]any

// Flat maps dotted paths to leaf values.
type Flat map[string]any

// Keys returns the flat paths in sorted order.
func (f Flat) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asConfig(v any) (Config, bool) {
	switch m := v.(type) {
	case Config:
		return m, true
	case map[string]any:
		return Config(m), true
	}
	return nil, false
}

// Flatten turns a nested Config into a Flat map keyed by dotted paths.
func Flatten(c Config) (Flat, error) {
	out := make(Flat)
	if err := flattenInto(out, "", c); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(out Flat, prefix string, c Config) error {
	for k, v := range c {
		if k == "" || strings.Contains(k, Separator) {
			return fmt.Errorf("%w: %q under %q", ErrInvalidKey, k, prefix)
		}
		path := k
		if prefix != "" {
			path = prefix + Separator + k
		}
		sub, ok := asConfig(v)
		if !ok || len(sub) == 0 {
			if ok {
				v = Config{}
			}
			out[path] = v
			continue
		}
		if err := flattenInto(out, path, sub); err != nil {
			return err
		}
	}
	return nil
}

// Unflatten rebuilds a nested Config from its flat form.
func Unflatten(f Flat) (Config, error) {
	out := make(Config)
	// Sorted keys make conflict errors deterministic.
	for _, path := range f.Keys() {
		segs := strings.Split(path, Separator)
		cur := out
		for i, seg := range segs {
			if seg == "" {
				return nil, fmt.Errorf("%w: %q", ErrInvalidKey, path)
			}
			if i == len(segs)-1 {
				if _, exists := cur[seg]; exists {
					return nil, fmt.Errorf("%w: %q", ErrConflict, path)
				}
				v := f[path]
				if sub, ok := asConfig(v); ok && len(sub) == 0 {
					v = Config{}
				}
				cur[seg] = v
				continue
			}
			next, ok := cur[seg]
			if !ok {
				child := make(Config)
				cur[seg] = child
				cur = child
				continue
			}
			// An empty sub-config here is a leaf written by a shorter path.
			child, isSub := asConfig(next)
			if !isSub || len(child) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrConflict, path)
			}
			cur = child
		}
	}
	return out, nil
}

// Merge returns a new Config with overlay applied on top of base. Nested
// sub-configs are merged recursively; any other overlay value replaces the
// base value.
func Merge(base, overlay Config) Config {
	out := Clone(base)
	for k, v := range overlay {
		if sub, ok := asConfig(v); ok {
			if existing, ok := asConfig(out[k]); ok {
				out[k] = Merge(existing, sub)
				continue
			}
			out[k] = Clone(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the nested maps; leaf values are shared.
func Clone(c Config) Config {
	out := make(Config, len(c))
	for k, v := range c {
		if sub, ok := asConfig(v); ok {
			out[k] = Clone(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// Diff returns the sorted flat paths whose values differ between a and b,
// including paths present on one side only.
func Diff(a, b Config) ([]string, error) {
	fa, err := Flatten(a)
	if err != nil {
		return nil, err
	}
	fb, err := Flatten(b)
	if err != nil {
		return nil, err
	}
	var out []string
	for k, va := range fa {
		vb, ok := fb[k]
		if !ok || !cmp.Equal(va, vb) {
			out = append(out, k)
		}
	}
	for k := range fb {
		if _, ok := fa[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Get returns the value at a dotted path.
func (c Config) Get(path string) (any, error) {
	segs := strings.Split(path, Separator)
	cur := c
	for i, seg := range segs {
		v, ok := cur[seg]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingKey, path)
		}
		if i == len(segs)-1 {
			return v, nil
		}
		sub, ok := asConfig(v)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a sub-config", ErrMissingKey, strings.Join(segs[:i+1], Separator))
		}
		cur = sub
	}
	return nil, fmt.Errorf("%w: %q", ErrMissingKey, path)
}

// Has reports whether the dotted path exists.
func (c Config) Has(path string) bool {
	_, err := c.Get(path)
	return err == nil
}

// Float returns a numeric value as float64.
func (c Config) Float(path string) (float64, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: %q is %T, want number", ErrWrongType, path, v)
}

// Int returns an integral numeric value.
func (c Config) Int(path string) (int64, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is %v, want integer", ErrWrongType, path, v)
}

// String returns a string value.
func (c Config) String(path string) (string, error) {
	v, err := c.Get(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrWrongType, path, v)
	}
	return s, nil
}

// Bool returns a boolean value.
func (c Config) Bool(path string) (bool, error) {
	v, err := c.Get(path)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q is %T, want bool", ErrWrongType, path, v)
	}
	return b, nil
}

// Sub returns the sub-config at a dotted path.
func (c Config) Sub(path string) (Config, error) {
	v, err := c.Get(path)
	if err != nil {
		return nil, err
	}
	sub, ok := asConfig(v)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want sub-config", ErrWrongType, path, v)
	}
	return sub, nil
}
