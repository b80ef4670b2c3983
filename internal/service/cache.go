package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/child-growth-server/internal/domain"
)

// ResultCache caches assembled assessment results. An assessment is a pure
// function of (type, sex, dob, measurements, as-of day), so results are
// reusable until the calendar day rolls the child's age forward; the TTL keeps
// entries from outliving that.
type ResultCache struct {
	cache   *expirable.LRU[string, *domain.AssessmentResult]
	enabled bool
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewResultCache creates a result cache per the cache configuration. A
// disabled cache is a valid no-op instance.
func NewResultCache(cfg domain.CacheConfig) *ResultCache {
	rc := &ResultCache{enabled: cfg.Enabled}
	if cfg.Enabled {
		rc.cache = expirable.NewLRU[string, *domain.AssessmentResult](cfg.Size, nil, cfg.TTL)
	}
	return rc
}

// Key derives the cache key for one assessment request.
func (rc *ResultCache) Key(mt domain.MeasurementType, req *domain.AssessmentRequest, asOf time.Time) string {
	raw := fmt.Sprintf("%s|%s|%s|%v|%v|%s",
		mt, req.Sex, req.DateOfBirth.Format("2006-01-02"),
		req.WeightKg, req.HeightCm, asOf.Format("2006-01-02"))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached result, if present. Cached results are shared and must
// be treated as immutable by callers.
func (rc *ResultCache) Get(key string) (*domain.AssessmentResult, bool) {
	if !rc.enabled {
		return nil, false
	}
	result, ok := rc.cache.Get(key)
	if ok {
		rc.hits.Add(1)
	} else {
		rc.misses.Add(1)
	}
	return result, ok
}

// Add stores a result under the given key.
func (rc *ResultCache) Add(key string, result *domain.AssessmentResult) {
	if !rc.enabled {
		return
	}
	rc.cache.Add(key, result)
}

// Stats returns hit/miss counters for the health endpoint.
func (rc *ResultCache) Stats() (hits, misses int64) {
	return rc.hits.Load(), rc.misses.Load()
}
