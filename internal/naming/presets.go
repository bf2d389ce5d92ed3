package naming

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Built-in preset names.
const (
	PresetDefault    = "default"
	PresetUnderscore = "underscore"
	PresetTitleFirst = "title_first"
)

// builtinPresets are the naming formats shipped with the tool.
var builtinPresets = map[string]Pattern{
	PresetDefault:    MustParse("[{year}] {author} - {title}.pdf"),
	PresetUnderscore: MustParse("{author}_{year}_{title}.pdf"),
	PresetTitleFirst: MustParse("{title} ({year}).pdf"),
}

// Presets maps preset names to parsed patterns.
type Presets map[string]Pattern

// DefaultPresets returns a copy of the built-in presets.
func DefaultPresets() Presets {
	out := make(Presets, len(builtinPresets))
	for name, p := range builtinPresets {
		out[name] = p
	}
	return out
}

// LoadPresets reads user-defined presets from a YAML file mapping names to
// pattern strings and merges them over the built-ins. User entries shadow
// built-ins of the same name. A missing file yields just the built-ins.
func LoadPresets(path string) (Presets, error) {
	presets := DefaultPresets()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return presets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for name, s := range raw {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		presets[name] = p
	}
	return presets, nil
}

// Resolve returns the pattern for name, or parses name itself as a pattern
// when it is not a preset. This lets config and flags accept either form.
func (p Presets) Resolve(name string) (Pattern, error) {
	if pattern, ok := p[name]; ok {
		return pattern, nil
	}
	return ParsePattern(name)
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
