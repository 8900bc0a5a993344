package repository

import (
	"context"
	"database/sql"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const receiptColumns = `
	id, payment_id, user_id, receipt_number, customer_name, customer_address,
	item_id, item_cost, shipping_cost, tax_amount, total_paid,
	payment_method, shipping_estimate_days, receipt_date`

type ReceiptRepository struct {
	db *sql.DB
}

func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Save inserts a receipt. Receipts are never updated.
func (r *ReceiptRepository) Save(ctx context.Context, receipt *models.Receipt) error {
	query := `
		INSERT INTO receipts (` + receiptColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		receipt.ID,
		receipt.PaymentID,
		receipt.UserID,
		receipt.ReceiptNumber,
		receipt.CustomerName,
		receipt.CustomerAddress,
		receipt.ItemID,
		receipt.ItemCost,
		receipt.ShippingCost,
		receipt.TaxAmount,
		receipt.TotalPaid,
		receipt.PaymentMethod,
		receipt.ShippingEstimateDays,
		receipt.ReceiptDate,
	)
	return translate(err)
}

func (r *ReceiptRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE payment_id = $1`
	return r.one(ctx, query, paymentID)
}

func (r *ReceiptRepository) FindByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_number = $1`
	return r.one(ctx, query, number)
}

func (r *ReceiptRepository) FindByUser(ctx context.Context, userID int64) ([]*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE user_id = $1 ORDER BY receipt_date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []*models.Receipt{}
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}

func (r *ReceiptRepository) one(ctx context.Context, query string, arg interface{}) (*models.Receipt, error) {
	rec, err := scanReceipt(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func scanReceipt(row scanner) (*models.Receipt, error) {
	rec := &models.Receipt{}
	err := row.Scan(
		&rec.ID,
		&rec.PaymentID,
		&rec.UserID,
		&rec.ReceiptNumber,
		&rec.CustomerName,
		&rec.CustomerAddress,
		&rec.ItemID,
		&rec.ItemCost,
		&rec.ShippingCost,
		&rec.TaxAmount,
		&rec.TotalPaid,
		&rec.PaymentMethod,
		&rec.ShippingEstimateDays,
		&rec.ReceiptDate,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
