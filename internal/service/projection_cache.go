package service

import (
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// projectionKey identifies one cached projection
type projectionKey struct {
	EventID      string
	ModelVersion string
}

func (k projectionKey) String() string {
	return fmt.Sprintf("%s:%s", k.EventID, k.ModelVersion)
}

// ProjectionCache memoises projections between rescans. A projection
// only changes when the underlying ratings do, so a short TTL keeps
// rescans cheap without serving stale numbers for long.
type ProjectionCache struct {
	cache *cache.Cache
}

// NewProjectionCache creates a projection cache with the given TTL
func NewProjectionCache(ttl time.Duration) *ProjectionCache {
	return &ProjectionCache{cache: cache.New(ttl, ttl*2)}
}

// Get retrieves a cached projection, or nil
func (pc *ProjectionCache) Get(eventID, modelVersion string) *models.Projection {
	if v, found := pc.cache.Get(projectionKey{eventID, modelVersion}.String()); found {
		if proj, ok := v.(*models.Projection); ok {
			return proj
		}
	}
	return nil
}

// Set stores a projection under its event and model version
func (pc *ProjectionCache) Set(proj *models.Projection) {
	pc.cache.Set(projectionKey{proj.EventID, proj.ModelVersion}.String(), proj, cache.DefaultExpiration)
}

// Delete removes the cached projection for one event and model
func (pc *ProjectionCache) Delete(eventID, modelVersion string) {
	pc.cache.Delete(projectionKey{eventID, modelVersion}.String())
}

// Invalidate drops every cached projection, used after rating updates
func (pc *ProjectionCache) Invalidate() {
	pc.cache.Flush()
}
