// Package livequery implements the push side of the repository
// contract: a cancellable stream of fresh snapshots driven by MongoDB
// change streams. Each store's Watch method is a thin wrapper around
// Snapshots with its own scope filter baked into the list function.
//
// Change streams need a replica set; on a standalone mongod Watch
// returns the driver's error and callers degrade to load-only behavior.
package livequery

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Snapshots opens a change stream on coll and, on every change event,
// re-runs list and delivers the result. The channel closes when ctx is
// cancelled or the stream fails. Deliveries are whole snapshots, never
// deltas: consumers replace their state wholesale, which is what the
// cells' reconciliation contract expects.
func Snapshots[T any](ctx context.Context, coll *mongo.Collection, list func(context.Context) ([]T, error)) (<-chan []T, error) {
	stream, err := coll.Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	ch := make(chan []T)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			items, err := list(ctx)
			if err != nil {
				return
			}
			select {
			case ch <- items:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
