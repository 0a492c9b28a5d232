package absint

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/cs-au-dk/cat/analysis/cir"
)

// ModelConfig extends the built-in model catalog with project-specific
// input primitives, format sinks and container types. Analyzed code
// bases wrap the libc primitives behind their own I/O layers; a small
// configuration file teaches the analysis about those wrappers without
// recompiling it.
type ModelConfig struct {
	Sources    []SourceCfg `yaml:"sources"`
	Formats    []FormatCfg `yaml:"formats"`
	Containers []string    `yaml:"containers"`
}

// SourceCfg declares an input primitive: calls to Name taint the
// buffer behind the argument at position Dest.
type SourceCfg struct {
	Name string `yaml:"name"`
	Dest int    `yaml:"dest"`
}

// FormatCfg declares a printf-like function. Fmt is the format
// argument's position; Dest names the rendered-output buffer of
// sprintf-like wrappers and is absent for stream writers.
type FormatCfg struct {
	Name string `yaml:"name"`
	Fmt  int    `yaml:"fmt"`
	Dest *int   `yaml:"dest"`
}

// LoadModelConfig reads a model configuration from a YAML file. The
// empty path yields the empty configuration.
func LoadModelConfig(path string) (*ModelConfig, error) {
	if path == "" {
		return &ModelConfig{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseModelConfig(raw)
}

// ParseModelConfig parses a YAML model configuration.
func ParseModelConfig(raw []byte) (*ModelConfig, error) {
	cfg := &ModelConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// entries converts the configured extras into registry entries. They
// precede the built-ins, so a project can override how a name is
// handled.
func (cfg *ModelConfig) entries() Registry {
	if cfg == nil {
		return nil
	}
	var r Registry
	for _, s := range cfg.Sources {
		r = append(r, ModelEntry{s.Name, taintSourceModel{
			fn:           s.Name,
			destArg:      s.Dest,
			variadicFrom: -1,
		}})
	}
	for _, f := range cfg.Formats {
		dst := -1
		if f.Dest != nil {
			dst = *f.Dest
		}
		r = append(r, ModelEntry{f.Name, formatModel{
			fn:     f.Name,
			fmtArg: f.Fmt,
			dstArg: dst,
		}})
	}
	return r
}

// containerNames lists the recognized associative container types.
func (cfg *ModelConfig) containerNames() []string {
	names := []string{"std::map", "std::unordered_map"}
	if cfg != nil {
		names = append(names, cfg.Containers...)
	}
	return names
}

// IsContainer reports whether t is a recognized associative container,
// matching on the template-stripped qualified name.
func (cfg *ModelConfig) IsContainer(t *cir.Type) bool {
	name := t.QualifiedName()
	if name == "" {
		return false
	}
	for _, c := range cfg.containerNames() {
		if name == c {
			return true
		}
	}
	return false
}
