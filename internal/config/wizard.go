package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .concierge.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to concierge! Let's configure your deployment.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = DefaultModel(cfg.Provider)

	// 2. Properties.
	propertiesPrompt := promptui.Prompt{
		Label:   "Property names (comma-separated)",
		Default: strings.Join(cfg.PropertyNames(), ", "),
	}
	propertiesStr, err := propertiesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}

	// 3. Property time zone, shared by all properties entered above.
	tzPrompt := promptui.Prompt{
		Label:   "Property time zone (IANA name)",
		Default: "Europe/Istanbul",
	}
	tz, err := tzPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("time zone: %w", err)
	}

	props := splitAndTrim(propertiesStr)
	if len(props) > 0 {
		cfg.Properties = nil
		for _, name := range props {
			cfg.Properties = append(cfg.Properties, Property{Name: name, Timezone: tz})
		}
		// The shipped entity map only covers the default properties.
		if propertiesStr != strings.Join([]string{"Belvil", "Zeugma", "Ayscha"}, ", ") {
			cfg.EntityMap = map[string][]string{}
		}
	}

	// 4. Supported languages.
	langPrompt := promptui.Prompt{
		Label:   "Supported languages (comma-separated ISO codes)",
		Default: strings.Join(cfg.Languages, ", "),
	}
	langStr, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	if langs := splitAndTrim(langStr); len(langs) > 0 {
		cfg.Languages = langs
		cfg.FallbackChain = langs
	}

	// 5. Support webhook.
	webhookPrompt := promptui.Prompt{
		Label:   "Live-support webhook URL (leave blank to disable handoff notifications)",
		Default: "",
	}
	webhook, err := webhookPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}
	cfg.Support.WebhookURL = webhook

	// 6. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running concierge serve.\n", envVar)
		}
	}

	configPath := ".concierge.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
