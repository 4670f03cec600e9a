package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// Semantic is an answer cache that matches paraphrased questions: lookups
// embed the question and accept the nearest stored question above a
// similarity threshold. Entries carry a TTL so edited knowledge is not
// shadowed by stale cached answers forever.
type Semantic struct {
	collection *chromem.Collection
	threshold  float32
	ttl        time.Duration
}

// NewSemantic creates a semantic cache. embedFunc produces the question
// embeddings (e.g. chromem.NewEmbeddingFuncOpenAI); threshold is the
// minimum cosine similarity for a hit, typically 0.9 or higher so only
// genuine paraphrases match.
func NewSemantic(embedFunc chromem.EmbeddingFunc, threshold float32, ttl time.Duration) (*Semantic, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection("answers", nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("creating answer cache collection: %w", err)
	}
	return &Semantic{collection: col, threshold: threshold, ttl: ttl}, nil
}

func (c *Semantic) Get(ctx context.Context, key string) (string, bool) {
	if c.collection.Count() == 0 {
		return "", false
	}
	results, err := c.collection.Query(ctx, key, 1, nil, nil)
	if err != nil || len(results) == 0 {
		return "", false
	}
	r := results[0]
	if r.Similarity < c.threshold {
		return "", false
	}
	if expires, ok := r.Metadata["expires"]; ok {
		t, err := time.Parse(time.RFC3339, expires)
		if err != nil || time.Now().After(t) {
			return "", false
		}
	}
	return r.Metadata["answer"], true
}

func (c *Semantic) Set(ctx context.Context, key, answer string) {
	doc := chromem.Document{
		ID:      uuid.New().String(),
		Content: key,
		Metadata: map[string]string{
			"answer":  answer,
			"expires": time.Now().Add(c.ttl).Format(time.RFC3339),
		},
	}
	if err := c.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		// Cache writes are best-effort.
		log.Printf("warning: semantic cache write failed: %v", err)
	}
}
