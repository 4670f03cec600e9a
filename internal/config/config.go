package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CONCIERGE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CONCIERGE_PROVIDER -> provider, etc.
	if err := k.Load(env.Provider("CONCIERGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CONCIERGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Dictionaries replace wholesale: koanf merges map keys during
	// unmarshalling, which would keep shipped entries alongside a file's
	// own. A file that replaces the property roster also drops the shipped
	// entity map, which only describes the default properties.
	if k.Exists("entity_map") || k.Exists("properties") {
		cfg.EntityMap = nil
	}
	if k.Exists("support_keywords") {
		cfg.SupportKeywords = nil
	}
	if k.Exists("affirmatives") {
		cfg.Affirmatives = nil
	}
	if k.Exists("interrogatives") {
		cfg.Interrogatives = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if len(c.Properties) == 0 {
		return fmt.Errorf("config: at least one property is required")
	}
	if c.PivotLanguage == "" {
		return fmt.Errorf("config: pivot_language is required")
	}
	supported := make(map[string]bool, len(c.Languages))
	for _, l := range c.Languages {
		supported[l] = true
	}
	if !supported[c.PivotLanguage] {
		return fmt.Errorf("config: pivot_language %q is not in languages", c.PivotLanguage)
	}
	if !supported[c.DefaultLanguage] {
		return fmt.Errorf("config: default_language %q is not in languages", c.DefaultLanguage)
	}
	for name, props := range c.EntityMap {
		for _, p := range props {
			if c.PropertyByName(p) == nil {
				return fmt.Errorf("config: entity %q maps to unknown property %q", name, p)
			}
		}
	}
	if c.Fuzzy.MaxDistance < 0 {
		return fmt.Errorf("config: fuzzy.max_distance must be >= 0")
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
