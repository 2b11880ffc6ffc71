package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
	"github.com/kush-lhmm/sampann-search/internal/logger"
)

// Ensure CachedSearchService implements the interface.
var _ driving.SearchService = (*CachedSearchService)(nil)

// CachedSearchService serves repeated requests from a result cache.
// Cache failures never fail a search: they are logged and the request
// falls through to the inner service. Explain requests bypass the cache
// since every explain block carries a fresh request ID.
type CachedSearchService struct {
	inner driving.SearchService
	cache driven.ResultCache
	ttl   time.Duration
}

// NewCachedSearchService wraps inner with cache. A nil cache returns inner.
func NewCachedSearchService(inner driving.SearchService, cache driven.ResultCache, ttl time.Duration) driving.SearchService {
	if cache == nil {
		return inner
	}
	return &CachedSearchService{inner: inner, cache: cache, ttl: ttl}
}

// Search returns a cached result when one exists for the normalised request.
func (s *CachedSearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	req.Normalise()
	if req.Explain {
		return s.inner.Search(ctx, req)
	}

	key := RequestKey(req)
	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		logger.Debug("Search cache hit %s", key[:12])
		return cached, nil
	case !errors.Is(err, domain.ErrNotFound):
		logger.Warn("Search cache read failed: %v", err)
	}

	result, err := s.inner.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
		logger.Warn("Search cache write failed: %v", err)
	}
	return result, nil
}

// RequestKey fingerprints a normalised request.
func RequestKey(req domain.SearchRequest) string {
	// SearchRequest holds only plain values, so Marshal cannot fail.
	data, _ := json.Marshal(req) //nolint:errchkjson
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
