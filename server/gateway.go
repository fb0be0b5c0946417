package server

import (
	"context"
	"sync/atomic"

	"github.com/nomis52/reactivities/activity"
	"github.com/nomis52/reactivities/apiclient"
)

// reloadableGateway forwards store calls to the current API client.
// Reload swaps the client so config changes apply to the next call while the
// registry survives.
type reloadableGateway struct {
	client atomic.Pointer[apiclient.Client]
}

func (g *reloadableGateway) set(c *apiclient.Client) {
	g.client.Store(c)
}

func (g *reloadableGateway) List(ctx context.Context) ([]activity.Activity, error) {
	return g.client.Load().List(ctx)
}

func (g *reloadableGateway) Create(ctx context.Context, a activity.Activity) error {
	return g.client.Load().Create(ctx, a)
}

func (g *reloadableGateway) Update(ctx context.Context, a activity.Activity) error {
	return g.client.Load().Update(ctx, a)
}

func (g *reloadableGateway) Delete(ctx context.Context, id string) error {
	return g.client.Load().Delete(ctx, id)
}
