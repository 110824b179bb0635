package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"self-analysis/internal/cache"
	"self-analysis/internal/config"
	"self-analysis/internal/domain"
	"self-analysis/internal/logger"

	"github.com/tmc/langchaingo/embeddings"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour // 7 days

// OpenAIEmbeddingService implements the domain.EmbeddingService interface using OpenAI.
// Generated vectors are cached in Redis (gob encoded) and concurrent requests
// for the same text are collapsed with singleflight.
type OpenAIEmbeddingService struct {
	embedder embeddings.Embedder
	cache    domain.Cache
	config   *config.Config
	sfGroup  singleflight.Group
}

// NewOpenAIEmbeddingService creates a new OpenAIEmbeddingService.
func NewOpenAIEmbeddingService(apiKey, modelName string, cacheImpl domain.Cache, cfg *config.Config) (*OpenAIEmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "text-embedding-ada-002" // Default model
	}
	if cacheImpl == nil {
		return nil, fmt.Errorf("cache instance cannot be nil for OpenAIEmbeddingService")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config instance cannot be nil for OpenAIEmbeddingService")
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client for embedder: %w", err)
	}

	embedder, errEmbedder := embeddings.NewEmbedder(llm)
	if errEmbedder != nil {
		return nil, fmt.Errorf("failed to create generic embedder from OpenAI LLM: %w", errEmbedder)
	}

	return &OpenAIEmbeddingService{
		embedder: embedder,
		cache:    cacheImpl,
		config:   cfg,
	}, nil
}

// Generate creates an embedding for the given text using the OpenAI embedder.
func (s *OpenAIEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}
	appLogger := logger.Get()

	textHash := hashString(text)
	cacheKey := cache.GenerateCacheKey("embedding", "openai", textHash)

	// Cache Check
	if s.cache != nil {
		cachedDataString, err := s.cache.Get(ctx, cacheKey)
		if err == nil { // Cache hit
			var embedded []float32
			byteReader := bytes.NewReader([]byte(cachedDataString))
			decoder := gob.NewDecoder(byteReader)
			if errDecode := decoder.Decode(&embedded); errDecode == nil {
				return embedded, nil
			} else if errDecode == io.EOF {
				appLogger.Warn("Cached openai embedding data is empty", zap.String("cacheKey", cacheKey))
			} else {
				appLogger.Error("Failed to decode cached openai embedding",
					zap.Error(errDecode), zap.String("cacheKey", cacheKey))
			}
			// Proceed to generate if decoding failed
		} else if err != domain.ErrCacheMiss {
			appLogger.Error("Failed to get openai embedding from cache",
				zap.Error(err), zap.String("cacheKey", cacheKey))
		}
	}

	// Cache miss or error during cache read: use singleflight to fetch and cache.
	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		rawEmbedding, fetchErr := s.embedder.EmbedQuery(ctx, text)
		if fetchErr != nil {
			return nil, fmt.Errorf("failed to generate embedding using OpenAI: %w", fetchErr)
		}
		if rawEmbedding == nil {
			return nil, fmt.Errorf("received nil embedding from OpenAI without error")
		}

		embeddingResult := make([]float32, len(rawEmbedding))
		for i, v := range rawEmbedding {
			embeddingResult[i] = float32(v)
		}

		if s.cache != nil {
			var buffer bytes.Buffer
			encoder := gob.NewEncoder(&buffer)
			if errEncode := encoder.Encode(embeddingResult); errEncode != nil {
				appLogger.Error("Failed to gob encode openai embedding for caching",
					zap.Error(errEncode), zap.String("cacheKey", cacheKey))
				return embeddingResult, nil // Return data even if caching fails
			}

			cacheTTL := s.config.CacheTTLs.Embeddings
			if cacheTTL <= 0 {
				cacheTTL = defaultEmbeddingTTL
			}
			if errCacheSet := s.cache.Set(ctx, cacheKey, buffer.String(), cacheTTL); errCacheSet != nil {
				appLogger.Error("Failed to set openai embedding to cache",
					zap.Error(errCacheSet), zap.String("cacheKey", cacheKey))
			}
		}
		return embeddingResult, nil
	})

	if err != nil {
		return nil, err
	}

	if embedded, ok := res.([]float32); ok {
		return embedded, nil
	}
	return nil, fmt.Errorf("unexpected type from singleflight.Do for openai embedding: %T", res)
}
