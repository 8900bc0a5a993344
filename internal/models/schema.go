package models

// Database schema
const PaymentSchema = `
CREATE TABLE IF NOT EXISTS payments (
    id VARCHAR(36) PRIMARY KEY,
    user_id BIGINT NOT NULL,
    item_id BIGINT NOT NULL,
    item_cost NUMERIC(19, 2) NOT NULL CHECK (item_cost >= 0),
    shipping_cost NUMERIC(19, 2) NOT NULL CHECK (shipping_cost >= 0),
    shipping_type VARCHAR(16) NOT NULL,
    estimated_shipping_days INT NOT NULL DEFAULT 0,
    tax_amount NUMERIC(19, 2) NOT NULL CHECK (tax_amount >= 0),
    total_amount NUMERIC(19, 2) NOT NULL CHECK (total_amount >= 0),
    status VARCHAR(16) NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    transaction_reference VARCHAR(64) NOT NULL DEFAULT '',
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255) NOT NULL,
    street VARCHAR(255) NOT NULL,
    street_number INT NOT NULL CHECK (street_number BETWEEN 1 AND 999999),
    province VARCHAR(255) NOT NULL,
    country VARCHAR(255) NOT NULL,
    postal_code VARCHAR(32) NOT NULL,
    card_last_four VARCHAR(4) NOT NULL,
    card_brand VARCHAR(16) NOT NULL,
    name_on_card VARCHAR(255) NOT NULL,
    card_expiry VARCHAR(5) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments (user_id);
CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (status);
CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_completed_user_item
    ON payments (user_id, item_id) WHERE status = 'COMPLETED';
`

const ReceiptSchema = `
CREATE TABLE IF NOT EXISTS receipts (
    id VARCHAR(36) PRIMARY KEY,
    payment_id VARCHAR(36) NOT NULL UNIQUE REFERENCES payments (id),
    user_id BIGINT NOT NULL,
    receipt_number VARCHAR(64) NOT NULL UNIQUE,
    customer_name VARCHAR(511) NOT NULL,
    customer_address VARCHAR(500) NOT NULL,
    item_id BIGINT NOT NULL,
    item_cost NUMERIC(19, 2) NOT NULL,
    shipping_cost NUMERIC(19, 2) NOT NULL,
    tax_amount NUMERIC(19, 2) NOT NULL,
    total_paid NUMERIC(19, 2) NOT NULL,
    payment_method VARCHAR(16) NOT NULL,
    shipping_estimate_days INT NOT NULL DEFAULT 0,
    receipt_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_receipts_user_id ON receipts (user_id);
`
