package rpcbridge

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// defaultCacheCapacity is the bounded LRU's default size (spec.md 5: "a
// bounded LRU keyed by (branchId, method, args-hash)... Default capacity is
// small").
const defaultCacheCapacity = 256

// BoundedCache is the optional bounded LRU spec.md 5 allows as an
// optimization, never a requirement: "No cross-chain evidence fetched via
// (G) is cached across a verification call... implementations MAY add a
// bounded LRU... provided entries are invalidated on any header accepted
// for the same branch." It is off unless Enable is called. CallRPC and the
// typed method wrappers in methods.go neither read nor fill it.
type BoundedCache struct {
	cache   *lru.Cache
	enabled bool
}

// NewBoundedCache constructs a disabled cache; call Enable to turn it on.
func NewBoundedCache() *BoundedCache {
	c, _ := lru.New(defaultCacheCapacity)
	return &BoundedCache{cache: c}
}

// Enable turns the cache on.
func (c *BoundedCache) Enable() { c.enabled = true }

// Disable turns the cache off and drops all entries.
func (c *BoundedCache) Disable() {
	c.enabled = false
	c.cache.Purge()
}

func cacheKey(branchId common.BranchId, method string, argsHash string) string {
	return fmt.Sprintf("%s:%s:%s", branchId.String(), method, argsHash)
}

// Get returns a previously cached JsonResponse, if the cache is enabled and
// the key is present.
func (c *BoundedCache) Get(branchId common.BranchId, method, argsHash string) (*JsonResponse, bool) {
	if !c.enabled {
		return nil, false
	}
	v, ok := c.cache.Get(cacheKey(branchId, method, argsHash))
	if !ok {
		return nil, false
	}
	return v.(*JsonResponse), true
}

// Set stores resp, if the cache is enabled.
func (c *BoundedCache) Set(branchId common.BranchId, method, argsHash string, resp *JsonResponse) {
	if !c.enabled {
		return
	}
	c.cache.Add(cacheKey(branchId, method, argsHash), resp)
}

// InvalidateBranch drops every cached entry for branchId (spec.md 5's
// invalidation rule). Nothing in this module calls it; AddBlockInfo does not
// notify the cache when it accepts a header. The LRU has no per-prefix
// eviction, so this walks and removes matching keys.
func (c *BoundedCache) InvalidateBranch(branchId common.BranchId) {
	if !c.enabled {
		return
	}
	prefix := branchId.String() + ":"
	for _, k := range c.cache.Keys() {
		ks, ok := k.(string)
		if ok && len(ks) >= len(prefix) && ks[:len(prefix)] == prefix {
			c.cache.Remove(k)
		}
	}
}
