// Package service holds the engagement engine: vote ledger, audit trail,
// comment trees, scoring, ranking and the read facade.
package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
)

// Observer is told about committed engagement. Implementations run inline
// after the write and must not fail the request.
type Observer interface {
	VoteCast(ctx context.Context, reaction *models.Reaction, ownerID uint)
	CommentAdded(ctx context.Context, comment *models.Comment, ownerID uint)
	ContentChanged(ctx context.Context)
}

// Observers fans every event out in order.
type Observers []Observer

func (o Observers) VoteCast(ctx context.Context, reaction *models.Reaction, ownerID uint) {
	for _, obs := range o {
		obs.VoteCast(ctx, reaction, ownerID)
	}
}

func (o Observers) CommentAdded(ctx context.Context, comment *models.Comment, ownerID uint) {
	for _, obs := range o {
		obs.CommentAdded(ctx, comment, ownerID)
	}
}

func (o Observers) ContentChanged(ctx context.Context) {
	for _, obs := range o {
		obs.ContentChanged(ctx)
	}
}

// DashboardInvalidator drops the cached dashboard on every engagement change.
type DashboardInvalidator struct {
	Cache *cache.Cache
}

func (d DashboardInvalidator) VoteCast(ctx context.Context, _ *models.Reaction, _ uint) {
	d.Cache.Invalidate(ctx, cache.DashboardKey)
}

func (d DashboardInvalidator) CommentAdded(ctx context.Context, _ *models.Comment, _ uint) {
	d.Cache.Invalidate(ctx, cache.DashboardKey)
}

func (d DashboardInvalidator) ContentChanged(ctx context.Context) {
	d.Cache.Invalidate(ctx, cache.DashboardKey)
}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return Observers(nil)
	}
	return o
}
