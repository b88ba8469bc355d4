package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
)

// LoadAll loads every provider concurrently and merges the snapshots in
// provider order. One failing provider fails the whole load; partial
// snapshots would silently hide tables from completion.
func LoadAll(ctx context.Context, providers []Provider) (*complete.Schema, error) {
	snapshots := make([]*complete.Schema, len(providers))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			snap, err := p.Load(ctx)
			if err != nil {
				return err
			}
			snapshots[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &complete.Schema{}
	for _, snap := range snapshots {
		merged.Tables = append(merged.Tables, snap.Tables...)
		merged.Functions = append(merged.Functions, snap.Functions...)
	}
	return merged, nil
}
