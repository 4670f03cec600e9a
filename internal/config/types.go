package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// CacheMode selects the answer cache implementation.
type CacheMode string

const (
	CacheOff      CacheMode = "off"
	CacheLRU      CacheMode = "lru"
	CacheSemantic CacheMode = "semantic"
)

// Config is the top-level concierge configuration, corresponding to .concierge.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	DataDir  string       `yaml:"data_dir" koanf:"data_dir"`

	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Support SupportConfig `yaml:"support" koanf:"support"`
	Cache   CacheConfig   `yaml:"cache" koanf:"cache"`

	// Language settings. PivotLanguage is the common intermediate for the
	// knowledge cascade; FallbackChain is appended to the per-turn search
	// order so every supported language is eventually tried.
	PivotLanguage   string   `yaml:"pivot_language" koanf:"pivot_language"`
	DefaultLanguage string   `yaml:"default_language" koanf:"default_language"`
	Languages       []string `yaml:"languages" koanf:"languages"`
	FallbackChain   []string `yaml:"fallback_chain" koanf:"fallback_chain"`

	// Properties served by this deployment.
	Properties []Property `yaml:"properties" koanf:"properties"`

	// Dictionaries. These ship with defaults but are plain data so new
	// venues, phrasings, and languages can be added without code changes.
	EntityMap       map[string][]string `yaml:"entity_map" koanf:"entity_map"`
	ReferringWords  []string            `yaml:"referring_words" koanf:"referring_words"`
	SupportKeywords map[string][]string `yaml:"support_keywords" koanf:"support_keywords"`
	Affirmatives    map[string][]string `yaml:"affirmatives" koanf:"affirmatives"`
	Interrogatives  map[string][]string `yaml:"interrogatives" koanf:"interrogatives"`
	NoInfoPhrases   []string            `yaml:"no_info_phrases" koanf:"no_info_phrases"`
	LocationPhrases []string            `yaml:"location_phrases" koanf:"location_phrases"`

	Fuzzy FuzzyConfig `yaml:"fuzzy" koanf:"fuzzy"`

	// MinAnswerLength is the shortest accepted cascade answer, in runes.
	MinAnswerLength int `yaml:"min_answer_length" koanf:"min_answer_length"`

	// LLMTimeoutSeconds bounds every Answer Generator call.
	LLMTimeoutSeconds int `yaml:"llm_timeout_seconds" koanf:"llm_timeout_seconds"`
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// Property describes one hotel served by the assistant.
type Property struct {
	Name     string   `yaml:"name" koanf:"name"`
	Timezone string   `yaml:"timezone" koanf:"timezone"`
	Aliases  []string `yaml:"aliases" koanf:"aliases"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}

// SupportConfig holds the live-support handoff channel settings.
type SupportConfig struct {
	WebhookURL string `yaml:"webhook_url" koanf:"webhook_url"`
	Channel    string `yaml:"channel" koanf:"channel"`
}

// CacheConfig holds answer cache settings.
type CacheConfig struct {
	Mode       CacheMode `yaml:"mode" koanf:"mode"`
	Size       int       `yaml:"size" koanf:"size"`
	TTLMinutes int       `yaml:"ttl_minutes" koanf:"ttl_minutes"`
}

// FuzzyConfig holds the fuzzy-matching thresholds. Both are heuristic
// trade-offs between false disambiguation and missed matches; they are
// configuration, not constants, so deployments can tune them.
type FuzzyConfig struct {
	MaxDistance   int     `yaml:"max_distance" koanf:"max_distance"`
	MinSimilarity float64 `yaml:"min_similarity" koanf:"min_similarity"`
}

// PropertyNames returns the configured property names in order.
func (c *Config) PropertyNames() []string {
	names := make([]string, 0, len(c.Properties))
	for _, p := range c.Properties {
		names = append(names, p.Name)
	}
	return names
}

// PropertyByName returns the property with the given name, or nil.
func (c *Config) PropertyByName(name string) *Property {
	for i := range c.Properties {
		if c.Properties[i].Name == name {
			return &c.Properties[i]
		}
	}
	return nil
}
