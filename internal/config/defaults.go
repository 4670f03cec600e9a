package config

// modelPresets maps each provider to its default chat model.
var modelPresets = map[ProviderType]string{
	ProviderAnthropic: "claude-haiku-4-5-20251001",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderOllama:    "llama3",
}

// DefaultModel returns the default model for the given provider.
func DefaultModel(p ProviderType) string {
	return modelPresets[p]
}

// DefaultConfig returns a Config with sensible defaults. The dictionary
// defaults cover the four launch languages; deployments extend them in
// .concierge.yml.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o-mini",
		DataDir:  "./data",

		Server: ServerConfig{Port: 8740},
		Cache:  CacheConfig{Mode: CacheLRU, Size: 512, TTLMinutes: 30},

		PivotLanguage:   "en",
		DefaultLanguage: "en",
		Languages:       []string{"en", "tr", "de", "ru"},
		FallbackChain:   []string{"en", "tr", "de", "ru"},

		Properties: []Property{
			{Name: "Belvil", Timezone: "Europe/Istanbul"},
			{Name: "Zeugma", Timezone: "Europe/Istanbul"},
			{Name: "Ayscha", Timezone: "Europe/Istanbul"},
		},

		EntityMap: map[string][]string{
			"pasha restaurant":    {"Belvil"},
			"olive house":         {"Belvil"},
			"belfish restaurant":  {"Belvil"},
			"mey bar":             {"Belvil"},
			"teppanyaki":          {"Zeugma"},
			"safran restaurant":   {"Zeugma"},
			"gaia spa":            {"Zeugma"},
			"vitamin bar":         {"Zeugma", "Ayscha"},
			"l occitane spa":      {"Ayscha"},
			"nippon restaurant":   {"Ayscha"},
			"la perla restaurant": {"Ayscha"},
		},

		ReferringWords: []string{
			"this place", "that place", "that one", "this one",
			"the one you mentioned", "it", "there",
		},

		SupportKeywords: map[string][]string{
			"en": {"talk to a human", "live support", "real person", "customer service", "speak to someone", "talk to an agent"},
			"tr": {"canlı destek", "gerçek biriyle", "müşteri hizmetleri", "yetkiliyle görüşmek"},
			"de": {"mit einem menschen sprechen", "live-support", "kundendienst", "echten mitarbeiter"},
			"ru": {"живой оператор", "поддержка человека", "служба поддержки", "поговорить с человеком"},
		},

		Affirmatives: map[string][]string{
			"en": {"yes", "yeah", "yep", "sure", "ok", "okay", "please"},
			"tr": {"evet", "tamam", "olur", "lütfen"},
			"de": {"ja", "jawohl", "gerne", "okay"},
			"ru": {"да", "ага", "конечно", "хорошо"},
		},

		Interrogatives: map[string][]string{
			"en": {"what", "when", "where", "who", "how", "which", "why", "is", "are", "can", "do", "does"},
			"tr": {"ne", "nerede", "nereden", "kaçta", "nasıl", "hangi", "kim", "mi", "mı", "mu", "mü"},
			"de": {"was", "wann", "wo", "wie", "welche", "wer", "gibt", "kann", "ist", "sind"},
			"ru": {"что", "когда", "где", "как", "какой", "кто", "можно", "есть"},
		},

		NoInfoPhrases: []string{
			"i don't have", "i do not have", "no information",
			"not mentioned", "cannot find", "keine information",
			"nicht verfügbar", "нет информации", "не могу найти",
			"bilgi yok", "bilgi bulunmuyor", "bilgim yok",
		},

		LocationPhrases: []string{
			"nearest", "closest", "how far", "en yakın", "nächste",
			"ближайшая", "ближайший",
		},

		Fuzzy: FuzzyConfig{MaxDistance: 2, MinSimilarity: 0.7},

		MinAnswerLength:   20,
		LLMTimeoutSeconds: 30,
		RequestsPerMinute: 60,
	}
}
