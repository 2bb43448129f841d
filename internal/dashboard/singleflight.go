package dashboard

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// flight collapses concurrent loads of the same key. A caller whose context
// ends stops waiting; the shared load keeps running for the others.
func flight(ctx context.Context, group *singleflight.Group, key string, fn func() (any, error)) (any, error, bool) {
	resultChan := group.DoChan(key, fn)
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
