package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a pipeline file, choosing the decoder by extension: .json,
// .yaml/.yml or .toml.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(b, Format(path))
	if err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}

// Format returns the config format implied by path's extension. Unknown
// extensions are treated as JSON.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// Decode parses b in the given format ("json", "yaml" or "toml"). Unknown
// fields are rejected for JSON so typos surface early.
func Decode(b []byte, format string) (Pipeline, error) {
	var p Pipeline
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, err
		}
	case "yaml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Pipeline{}, err
		}
	case "toml":
		if _, err := toml.Decode(string(b), &p); err != nil {
			return Pipeline{}, err
		}
	default:
		return Pipeline{}, fmt.Errorf("unknown config format %q", format)
	}
	p.fillOptions()
	return p, nil
}

// fillOptions replaces nil option maps with empty ones.
func (p *Pipeline) fillOptions() {
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	for i := range p.Transform {
		if p.Transform[i].Options == nil {
			p.Transform[i].Options = Options{}
		}
	}
}
