package assets

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/sdengine/engine/core"
)

// DefaultPreloadWorkers bounds Preload when no limit is configured.
const DefaultPreloadWorkers = 4

// Preload loads paths of one kind with at most workers loads in flight and
// returns their ids in input order. Duplicate paths share one load. The first
// failure cancels the remaining loads and is returned.
func (m *Manager) Preload(ctx context.Context, workers int, kind Kind, paths ...string) ([]core.ResourceID, error) {
	if workers <= 0 {
		workers = DefaultPreloadWorkers
	}
	ids := make([]core.ResourceID, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := m.Load(kind, path)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.logger.Debug("preloaded", "kind", kind, "count", len(paths))
	return ids, nil
}
