package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolveYAML is a [kong.ConfigurationLoader] for YAML config files. The
// top level must be a mapping of flag names to values; flag names may use
// either hyphens or underscores.
//
// Example:
//
//	log_level: debug
//	log-format: json
//	output: out.nc
//
// Command-line flags override config file values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	return yamlConfig(values), nil
}

// yamlConfig implements [kong.Resolver] over a flat YAML mapping.
type yamlConfig map[string]any

// Validate implements [kong.Resolver].
func (yamlConfig) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c yamlConfig) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}
