package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// responseMeta collects envelope metadata while a request is handled.
type responseMeta struct {
	started  time.Time
	message  string
	cacheHit *bool
}

// WithResponseMeta starts the request clock read by ExtractMeta.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{started: time.Now()})
		c.Next()
	}
}

// SetCacheHit reports whether dashboard data came from the aggregate cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c).cacheHit = &hit
}

// SetMessage sets the outcome message shown to clients, e.g. "Data stored successfully".
func SetMessage(c *gin.Context, message string) {
	metaFor(c).message = message
}

// ExtractMeta renders the collected metadata as a fresh map, or nil when nothing was recorded.
// processing_time_ms is measured up to this call, so handlers call it just before writing.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := lookupMeta(c)
	if meta == nil {
		return nil
	}
	out := map[string]interface{}{}
	if !meta.started.IsZero() {
		out["processing_time_ms"] = time.Since(meta.started).Milliseconds()
	}
	if meta.message != "" {
		out["message"] = meta.message
	}
	if meta.cacheHit != nil {
		out["cache_hit"] = *meta.cacheHit
	}
	return out
}

func lookupMeta(c *gin.Context) *responseMeta {
	if c == nil {
		return nil
	}
	if v, ok := c.Get(responseMetaKey); ok {
		if meta, ok := v.(*responseMeta); ok {
			return meta
		}
	}
	return nil
}

// metaFor returns the request's metadata, attaching an unclocked one when the middleware is absent.
func metaFor(c *gin.Context) *responseMeta {
	if meta := lookupMeta(c); meta != nil {
		return meta
	}
	meta := &responseMeta{}
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
