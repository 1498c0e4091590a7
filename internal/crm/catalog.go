package crm

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	openai "github.com/sashabaranov/go-openai"
)

// catalogTTL bounds how stale editor reference data may get. Editors
// fetch catalogs once per session anyway; the cache mostly absorbs
// many sessions hitting the same account.
const catalogTTL = 5 * time.Minute

// fallbackModels is served when no OpenAI key is configured or the
// listing call fails.
var fallbackModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-3.5-turbo",
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// CatalogService serves the editors' reference lists, caching them in
// Redis when configured and in process memory otherwise. Cache failures
// degrade to direct fetches, never to request failures.
type CatalogService struct {
	CRM *Client

	rdb    *redis.Client
	openai *openai.Client

	mu     sync.Mutex
	memory map[string]memoryEntry
}

func NewCatalogService(crmClient *Client, rdb *redis.Client, openaiClient *openai.Client) *CatalogService {
	return &CatalogService{
		CRM:    crmClient,
		rdb:    rdb,
		openai: openaiClient,
		memory: make(map[string]memoryEntry),
	}
}

func (s *CatalogService) cacheGet(ctx context.Context, key string) []byte {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, "catalog:"+key).Bytes()
		if err == nil {
			return data
		}
		if err != redis.Nil {
			log.Printf("Redis get error for %s: %v", key, err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.memory[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.data
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, data []byte) {
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, "catalog:"+key, data, catalogTTL).Err(); err != nil {
			log.Printf("Redis set error for %s: %v", key, err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory[key] = memoryEntry{data: data, expiresAt: time.Now().Add(catalogTTL)}
}

// cached runs fetch through the cache, storing the JSON-encoded result.
func cached[T any](ctx context.Context, s *CatalogService, key string, fetch func(context.Context) (T, error)) (T, error) {
	var result T

	if data := s.cacheGet(ctx, key); data != nil {
		if err := json.Unmarshal(data, &result); err == nil {
			return result, nil
		}
	}

	result, err := fetch(ctx)
	if err != nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		s.cacheSet(ctx, key, data)
	}
	return result, nil
}

func (s *CatalogService) Pipelines(ctx context.Context) ([]Pipeline, error) {
	return cached(ctx, s, "pipelines", s.CRM.GetPipelines)
}

func (s *CatalogService) Users(ctx context.Context) ([]User, error) {
	return cached(ctx, s, "users", s.CRM.GetUsers)
}

func (s *CatalogService) Channels(ctx context.Context) ([]Channel, error) {
	return cached(ctx, s, "channels", s.CRM.GetChannels)
}

func (s *CatalogService) Salesbots(ctx context.Context) ([]Salesbot, error) {
	return cached(ctx, s, "salesbots", s.CRM.GetSalesbots)
}

func (s *CatalogService) DealFields(ctx context.Context) ([]Field, error) {
	return cached(ctx, s, "fields:leads", func(ctx context.Context) ([]Field, error) {
		return s.CRM.GetCustomFields(ctx, "leads")
	})
}

func (s *CatalogService) ContactFields(ctx context.Context) ([]Field, error) {
	return cached(ctx, s, "fields:contacts", func(ctx context.Context) ([]Field, error) {
		return s.CRM.GetCustomFields(ctx, "contacts")
	})
}

// Models returns the identifiers offered by the agent model picker.
// Listing failures fall back to the static set: the picker must never
// come up empty just because the vendor API hiccupped.
func (s *CatalogService) Models(ctx context.Context) []string {
	if s.openai == nil {
		return fallbackModels
	}

	models, err := cached(ctx, s, "models", func(ctx context.Context) ([]string, error) {
		list, err := s.openai.ListModels(ctx)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, m := range list.Models {
			if strings.HasPrefix(m.ID, "gpt-") {
				ids = append(ids, m.ID)
			}
		}
		sort.Strings(ids)
		return ids, nil
	})
	if err != nil || len(models) == 0 {
		log.Printf("Model listing failed, serving fallback list: %v", err)
		return fallbackModels
	}
	return models
}
