package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/models"
)

// MemoryPaymentRepository keeps payments in process memory and enforces the
// same uniqueness rule as the SQL schema: one COMPLETED payment per
// (user, item).
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*models.Payment
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[string]*models.Payment)}
}

func (r *MemoryPaymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.Status == models.PaymentStatusCompleted {
		for id, p := range r.payments {
			if id != payment.ID && p.Status == models.PaymentStatusCompleted &&
				p.UserID == payment.UserID && p.ItemID == payment.ItemID {
				return apperr.New(apperr.Duplicate, "completed payment already exists for user and item")
			}
		}
	}

	r.payments[payment.ID] = payment.Clone()
	return nil
}

func (r *MemoryPaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.payments[id].Clone(), nil
}

func (r *MemoryPaymentRepository) FindByUser(ctx context.Context, userID int64) ([]*models.Payment, error) {
	return r.filter(func(p *models.Payment) bool { return p.UserID == userID }), nil
}

func (r *MemoryPaymentRepository) FindByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error) {
	return r.filter(func(p *models.Payment) bool { return p.Status == status }), nil
}

func (r *MemoryPaymentRepository) FindCompleted(ctx context.Context, userID, itemID int64) (*models.Payment, error) {
	matches := r.filter(func(p *models.Payment) bool {
		return p.UserID == userID && p.ItemID == itemID && p.Status == models.PaymentStatusCompleted
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// Count returns the number of stored payments.
func (r *MemoryPaymentRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}

// filter returns copies ordered by creation time, newest first.
func (r *MemoryPaymentRepository) filter(keep func(*models.Payment) bool) []*models.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Payment{}
	for _, p := range r.payments {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type MemoryReceiptRepository struct {
	mu       sync.RWMutex
	receipts map[string]*models.Receipt // keyed by payment id
}

func NewMemoryReceiptRepository() *MemoryReceiptRepository {
	return &MemoryReceiptRepository{receipts: make(map[string]*models.Receipt)}
}

// Save rejects a second receipt for a payment or a reused receipt number.
func (r *MemoryReceiptRepository) Save(ctx context.Context, receipt *models.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.receipts[receipt.PaymentID]; ok {
		return apperr.Newf(apperr.Duplicate, "receipt already issued for payment %s", receipt.PaymentID)
	}
	for _, existing := range r.receipts {
		if existing.ReceiptNumber == receipt.ReceiptNumber {
			return apperr.Newf(apperr.Duplicate, "receipt number %s already used", receipt.ReceiptNumber)
		}
	}

	c := *receipt
	r.receipts[receipt.PaymentID] = &c
	return nil
}

func (r *MemoryReceiptRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.receipts[paymentID]
	if !ok {
		return nil, nil
	}
	c := *rec
	return &c, nil
}

func (r *MemoryReceiptRepository) FindByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.receipts {
		if rec.ReceiptNumber == number {
			c := *rec
			return &c, nil
		}
	}
	return nil, nil
}

func (r *MemoryReceiptRepository) FindByUser(ctx context.Context, userID int64) ([]*models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Receipt{}
	for _, rec := range r.receipts {
		if rec.UserID == userID {
			c := *rec
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiptDate.After(out[j].ReceiptDate) })
	return out, nil
}
