package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Grant is the set of room patterns a collab token was issued with.
type Grant struct {
	UserId   string
	Patterns []string
	IssuedAt time.Time
}

// GrantCache remembers issued collab tokens for their lifetime so the hub can
// check room access without re-parsing every token claim set.
type GrantCache struct {
	cache *cache.Cache
}

func NewGrantCache(tokenLifetime time.Duration) *GrantCache {
	c := cache.New(tokenLifetime, 10*time.Minute)
	return &GrantCache{cache: c}
}

func (r *GrantCache) Save(tokenID string, grant *Grant) {
	r.cache.Set(tokenID, grant, cache.DefaultExpiration)
}

func (r *GrantCache) Get(tokenID string) (*Grant, bool) {
	if x, found := r.cache.Get(tokenID); found {
		return x.(*Grant), true
	}
	return nil, false
}

func (r *GrantCache) Delete(tokenID string) {
	r.cache.Delete(tokenID)
}
