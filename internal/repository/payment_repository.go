// internal/repository/payment_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const uniqueViolation = "23505"

const paymentColumns = `
	id, user_id, item_id, item_cost, shipping_cost, shipping_type,
	estimated_shipping_days, tax_amount, total_amount, status,
	error_message, transaction_reference,
	first_name, last_name, street, street_number, province, country, postal_code,
	card_last_four, card_brand, name_on_card, card_expiry,
	created_at, updated_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save inserts the payment or updates its mutable columns.
func (r *PaymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			transaction_reference = EXCLUDED.transaction_reference,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.UserID,
		payment.ItemID,
		payment.ItemCost,
		payment.ShippingCost,
		payment.ShippingType,
		payment.EstimatedShippingDays,
		payment.TaxAmount,
		payment.TotalAmount,
		payment.Status,
		payment.ErrorMessage,
		payment.TransactionReference,
		payment.Address.FirstName,
		payment.Address.LastName,
		payment.Address.Street,
		payment.Address.StreetNumber,
		payment.Address.Province,
		payment.Address.Country,
		payment.Address.PostalCode,
		payment.Card.LastFour,
		payment.Card.Brand,
		payment.Card.NameOnCard,
		payment.Card.Expiry,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return translate(err)
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return payment, err
}

func (r *PaymentRepository) FindByUser(ctx context.Context, userID int64) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PaymentRepository) FindByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, status)
}

func (r *PaymentRepository) FindCompleted(ctx context.Context, userID, itemID int64) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments WHERE user_id = $1 AND item_id = $2 AND status = $3
		LIMIT 1`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, userID, itemID, models.PaymentStatusCompleted))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return payment, err
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row scanner) (*models.Payment, error) {
	payment := &models.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.ItemID,
		&payment.ItemCost,
		&payment.ShippingCost,
		&payment.ShippingType,
		&payment.EstimatedShippingDays,
		&payment.TaxAmount,
		&payment.TotalAmount,
		&payment.Status,
		&payment.ErrorMessage,
		&payment.TransactionReference,
		&payment.Address.FirstName,
		&payment.Address.LastName,
		&payment.Address.Street,
		&payment.Address.StreetNumber,
		&payment.Address.Province,
		&payment.Address.Country,
		&payment.Address.PostalCode,
		&payment.Card.LastFour,
		&payment.Card.Brand,
		&payment.Card.NameOnCard,
		&payment.Card.Expiry,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// translate maps a unique-index violation to apperr.Duplicate.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Wrap(apperr.Duplicate, "unique constraint "+pqErr.Constraint+" violated", err)
	}
	return err
}
