package idp

import (
	"context"
	"sync"
)

type cacheKey struct{}

// requestCache holds one sign-in experience lookup for the lifetime of a request
type requestCache struct {
	mu   sync.Mutex
	done bool
	exp  *SignInExperience
	err  error
}

// WithRequestCache returns a context under which the sign-in experience
// is fetched at most once. Attach it per request, never globally.
func WithRequestCache(ctx context.Context) context.Context {
	if _, ok := ctx.Value(cacheKey{}).(*requestCache); ok {
		return ctx
	}
	return context.WithValue(ctx, cacheKey{}, &requestCache{})
}

func cacheFrom(ctx context.Context) *requestCache {
	c, _ := ctx.Value(cacheKey{}).(*requestCache)
	return c
}
