package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

// DuplicateGuard answers whether a (user, item) pair already has a
// COMPLETED payment. The check is not atomic with the following insert;
// the store's unique index on completed (user, item) closes that gap.
type DuplicateGuard struct {
	store  PaymentStore
	cache  CompletedPaymentCache
	logger *zap.Logger
}

// NewDuplicateGuard accepts a nil cache.
func NewDuplicateGuard(store PaymentStore, cache CompletedPaymentCache, logger *zap.Logger) *DuplicateGuard {
	return &DuplicateGuard{store: store, cache: cache, logger: logger}
}

func (g *DuplicateGuard) HasCompletedPayment(ctx context.Context, userID, itemID int64) (bool, error) {
	p, err := g.FindCompleted(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// FindCompleted returns the existing COMPLETED payment, or nil.
func (g *DuplicateGuard) FindCompleted(ctx context.Context, userID, itemID int64) (*models.Payment, error) {
	if p := g.fromCache(ctx, userID, itemID); p != nil {
		return p, nil
	}

	p, err := g.store.FindCompleted(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up completed payment: %w", err)
	}
	if p != nil {
		g.Remember(ctx, p)
	}
	return p, nil
}

// Remember records a COMPLETED payment in the cache.
func (g *DuplicateGuard) Remember(ctx context.Context, p *models.Payment) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Remember(ctx, p.UserID, p.ItemID, p.ID); err != nil {
		g.logger.Warn("failed to cache completed payment",
			zap.String("payment_id", p.ID), zap.Error(err))
	}
}

// Forget drops the pair from the cache, e.g. after a refund.
func (g *DuplicateGuard) Forget(ctx context.Context, userID, itemID int64) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Forget(ctx, userID, itemID); err != nil {
		g.logger.Warn("failed to evict completed payment from cache",
			zap.Int64("user_id", userID), zap.Int64("item_id", itemID), zap.Error(err))
	}
}

// fromCache trusts a hit only after the store confirms the payment is still
// COMPLETED. Cache failures fall through to the store.
func (g *DuplicateGuard) fromCache(ctx context.Context, userID, itemID int64) *models.Payment {
	if g.cache == nil {
		return nil
	}

	id, ok, err := g.cache.Lookup(ctx, userID, itemID)
	if err != nil {
		g.logger.Warn("completed payment cache lookup failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	p, err := g.store.FindByID(ctx, id)
	if err != nil || p == nil || p.Status != models.PaymentStatusCompleted {
		g.Forget(ctx, userID, itemID)
		return nil
	}
	return p
}
