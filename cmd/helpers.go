package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/guestdesk/concierge/internal/cache"
	"github.com/guestdesk/concierge/internal/chain"
	"github.com/guestdesk/concierge/internal/config"
	"github.com/guestdesk/concierge/internal/db"
	"github.com/guestdesk/concierge/internal/detect"
	"github.com/guestdesk/concierge/internal/engine"
	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/intent"
	"github.com/guestdesk/concierge/internal/knowledge"
	"github.com/guestdesk/concierge/internal/lang"
	"github.com/guestdesk/concierge/internal/llm"
	"github.com/guestdesk/concierge/internal/questionlog"
	"github.com/guestdesk/concierge/internal/resolver"
	"github.com/guestdesk/concierge/internal/session"
	"github.com/guestdesk/concierge/internal/support"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w (run `concierge init` to create one)", cfgFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// app bundles everything a serving command needs.
type app struct {
	cfg       *config.Config
	db        *db.DB
	engine    *engine.Engine
	knowledge *knowledge.Store
}

func (a *app) Close() {
	a.db.Close()
}

// buildApp assembles the engine and its stores from config.
func buildApp(cfg *config.Config) (*app, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "concierge.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	provider, err := llm.NewGuardedProvider(string(cfg.Provider), cfg.Model, cfg.RequestsPerMinute)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	aliases := make(map[string]string)
	locations := make(map[string]*time.Location)
	for _, p := range cfg.Properties {
		for _, a := range p.Aliases {
			aliases[a] = p.Name
		}
		loc, err := time.LoadLocation(p.Timezone)
		if err != nil {
			log.Printf("warning: unknown timezone %q for %s, using UTC", p.Timezone, p.Name)
			loc = time.UTC
		}
		locations[p.Name] = loc
	}

	dict := entities.New(cfg.EntityMap, cfg.PropertyNames(), aliases, cfg.Fuzzy.MaxDistance, cfg.Fuzzy.MinSimilarity)
	ks := knowledge.NewStore(database)

	ch := chain.New(ks, provider, lang.NewLLMTranslator(provider), dict, buildCache(cfg), chain.Options{
		PivotLanguage:   cfg.PivotLanguage,
		FallbackChain:   cfg.FallbackChain,
		NoInfoPhrases:   cfg.NoInfoPhrases,
		MinAnswerLength: cfg.MinAnswerLength,
		CallTimeout:     time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		Locations:       locations,
	})

	eng := engine.New(
		resolver.New(cfg.ReferringWords),
		detect.New(dict, lang.NewLLMDetector(provider, cfg.Languages, cfg.DefaultLanguage), provider, cfg.Languages, cfg.DefaultLanguage),
		intent.New(dict, provider, cfg.SupportKeywords, cfg.Affirmatives, cfg.Interrogatives, cfg.LocationPhrases),
		dict,
		ch,
		session.NewStore(database),
		support.NewWebhookNotifier(cfg.Support.WebhookURL, cfg.Support.Channel),
		questionlog.NewStore(database),
	)

	return &app{cfg: cfg, db: database, engine: eng, knowledge: ks}, nil
}

// buildCache selects the configured answer cache. The semantic cache needs
// OpenAI embeddings; without a key it degrades to the LRU cache.
func buildCache(cfg *config.Config) cache.AnswerCache {
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	switch cfg.Cache.Mode {
	case config.CacheOff:
		return cache.Noop{}
	case config.CacheSemantic:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			log.Printf("warning: semantic cache requires %s, falling back to LRU", config.APIKeyEnvVar(config.ProviderOpenAI))
			return cache.NewLRU(cfg.Cache.Size, ttl)
		}
		sem, err := cache.NewSemantic(
			chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small),
			0.92, ttl)
		if err != nil {
			log.Printf("warning: semantic cache setup failed (%v), falling back to LRU", err)
			return cache.NewLRU(cfg.Cache.Size, ttl)
		}
		return sem
	default:
		return cache.NewLRU(cfg.Cache.Size, ttl)
	}
}
