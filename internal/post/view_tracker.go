package post

import (
	"fmt"
	"hash/fnv"

	"coinboard/internal/cache"
)

// ViewTracker deduplicates view-count increments per post and viewer within
// the cache's TTL. Insert-if-absent on the shared cache is the only
// synchronization needed.
type ViewTracker struct {
	seen *cache.Cache
}

// NewViewTracker creates a tracker backed by a time-bounded cache.
func NewViewTracker(seen *cache.Cache) *ViewTracker {
	return &ViewTracker{seen: seen}
}

// ShouldCountView reports whether this viewer's read of the post should
// increment its view count. Members are keyed by id; guests by client IP and
// a User-Agent hash.
func (t *ViewTracker) ShouldCountView(postID uint, memberID uint, clientIP, userAgent string) bool {
	viewer := viewerKey(memberID, clientIP, userAgent)
	if viewer == "" {
		return true
	}
	key := fmt.Sprintf("%d::%s", postID, viewer)
	return t.seen.PutIfAbsent(key, true)
}

func viewerKey(memberID uint, clientIP, userAgent string) string {
	if memberID != 0 {
		return fmt.Sprintf("member:%d", memberID)
	}
	if clientIP == "" {
		return ""
	}
	if userAgent == "" {
		userAgent = "unknown"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userAgent))
	return fmt.Sprintf("guest:%s:%d", clientIP, h.Sum32())
}
