package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/events"
	"github.com/CASH-ECOMM/payment-service/internal/metrics"
	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const (
	msgCompleted       = "Payment processed successfully"
	msgDuplicate       = "Payment already completed for this user and item."
	msgDuplicateRace   = "Duplicate payment: a completed payment already exists for this user and item."
	settlementErrorMsg = "Settlement failed: "

	maxReceiptAttempts = 3
)

type Outcome string

const (
	OutcomeCompleted Outcome = "COMPLETED"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeDuplicate Outcome = "DUPLICATE"
	OutcomeRejected  Outcome = "REJECTED"
)

// ProcessResult is the discriminated result of one processing attempt.
// Payment is the new payment for COMPLETED/FAILED and the already completed
// one for DUPLICATE. Err is set for REJECTED.
type ProcessResult struct {
	Outcome     Outcome
	Payment     *models.Payment
	Receipt     *models.Receipt
	Err         *apperr.Error
	ProcessedAt time.Time
}

func (r *ProcessResult) Success() bool { return r.Outcome == OutcomeCompleted }

// Response renders the result in its outbound shape.
func (r *ProcessResult) Response() models.PaymentResponse {
	resp := models.PaymentResponse{
		Success:              r.Success(),
		TransactionTimestamp: r.ProcessedAt.UTC().Format(time.RFC3339),
	}
	if r.Payment != nil {
		resp.PaymentID = r.Payment.ID
		resp.Status = r.Payment.Status
	}

	switch r.Outcome {
	case OutcomeCompleted:
		resp.Message = msgCompleted
		if r.Receipt != nil {
			resp.Receipt = models.NewReceiptSummary(r.Receipt)
		}
	case OutcomeFailed:
		resp.Message = "Payment failed: " + r.Payment.ErrorMessage
	case OutcomeDuplicate:
		resp.Message = msgDuplicate
		if r.Receipt != nil {
			resp.Receipt = models.NewReceiptSummary(r.Receipt)
		}
	case OutcomeRejected:
		resp.Message = r.Err.Message
	}
	return resp
}

type Config struct {
	Money                 MoneyConfig
	RegularShippingDays   int
	ExpeditedShippingDays int
	SettlementTimeout     time.Duration
}

type Option func(*PaymentService)

func WithCache(c CompletedPaymentCache) Option {
	return func(s *PaymentService) { s.cache = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *PaymentService) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PaymentService) { s.metrics = m }
}

func WithIDGenerator(ids IDGenerator) Option {
	return func(s *PaymentService) { s.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(s *PaymentService) { s.now = now }
}

// PaymentService runs the end-to-end processing flow. It is the only
// component that touches the stores and the settler.
type PaymentService struct {
	payments  PaymentStore
	receipts  ReceiptStore
	settler   Settler
	cache     CompletedPaymentCache
	publisher EventPublisher
	metrics   *metrics.Metrics
	ids       IDGenerator
	now       func() time.Time
	logger    *zap.Logger
	cfg       Config

	validator  *CardValidator
	calculator *MoneyCalculator
	guard      *DuplicateGuard
	states     *StateMachine
	receiptGen *ReceiptGenerator
}

func NewPaymentService(payments PaymentStore, receipts ReceiptStore, settler Settler, cfg Config, logger *zap.Logger, opts ...Option) (*PaymentService, error) {
	s := &PaymentService{
		payments: payments,
		receipts: receipts,
		settler:  settler,
		ids:      NewIDGenerator(),
		now:      time.Now,
		logger:   logger,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NewLogPublisher(logger)
	}

	calc, err := NewMoneyCalculator(cfg.Money)
	if err != nil {
		return nil, err
	}
	s.calculator = calc
	s.validator = NewCardValidator(s.now)
	s.guard = NewDuplicateGuard(payments, s.cache, logger)
	s.states = NewStateMachine(s.now)
	s.receiptGen = NewReceiptGenerator(s.ids, s.now)

	return s, nil
}

// ProcessPayment validates, prices, persists, settles and, on success,
// issues a receipt. Domain outcomes are reported in the result; the error
// return is reserved for infrastructure failures.
func (s *PaymentService) ProcessPayment(ctx context.Context, req *models.PaymentRequest) (*ProcessResult, error) {
	log := s.logger.With(zap.Int64("user_id", req.UserID), zap.Int64("item_id", req.ItemID))

	existing, err := s.guard.FindCompleted(ctx, req.UserID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Warn("duplicate payment attempt", zap.String("existing_payment_id", existing.ID))
		s.publish(ctx, events.TypeDuplicate, existing)

		receipt, err := s.receiptFor(context.WithoutCancel(ctx), existing)
		if err != nil {
			log.Error("failed to issue missing receipt",
				zap.String("existing_payment_id", existing.ID), zap.Error(err))
		}
		return s.finish(OutcomeDuplicate, existing, receipt, nil), nil
	}

	if res := s.validator.Validate(req.Card.Number, req.Card.NameOnCard, req.Card.Expiry, req.Card.SecurityCode); !res.Valid {
		log.Info("payment rejected", zap.Strings("errors", res.Errors))
		return s.reject(apperr.ValidationErr(res.Errors)), nil
	}

	if err := ValidateStreetNumber(req.Address.StreetNumber); err != nil {
		return s.rejectErr(err)
	}

	days, err := s.shippingDays(req.Shipping)
	if err != nil {
		return s.rejectErr(err)
	}

	amounts, err := s.calculator.Calculate(req.ItemCost, req.Shipping.BaseCost, req.Shipping.Type)
	if err != nil {
		return s.rejectErr(err)
	}

	now := s.now()
	payment := &models.Payment{
		ID:                    s.ids.NewPaymentID(),
		UserID:                req.UserID,
		ItemID:                req.ItemID,
		ItemCost:              amounts.ItemCost,
		ShippingCost:          amounts.ShippingCost,
		ShippingType:          req.Shipping.Type,
		EstimatedShippingDays: days,
		TaxAmount:             amounts.TaxAmount,
		TotalAmount:           amounts.TotalAmount,
		Status:                models.PaymentStatusProcessing,
		Address:               toAddress(req.Address),
		Card:                  NewCardInfo(req.Card),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	s.publish(ctx, events.TypeProcessing, payment)

	log = log.With(zap.String("payment_id", payment.ID))
	log.Info("payment processing",
		zap.String("card", payment.Card.Masked()),
		zap.String("card_brand", string(payment.Card.Brand)),
		zap.String("total_amount", payment.TotalAmount.StringFixed(2)))

	outcome := s.settle(ctx, payment)

	// The row must reach a terminal status even if the caller has gone away.
	persistCtx := context.WithoutCancel(ctx)

	if !outcome.Success {
		if err := s.states.Fail(payment, outcome.Message); err != nil {
			return nil, err
		}
		if err := s.payments.Save(persistCtx, payment); err != nil {
			return nil, fmt.Errorf("failed to save failed payment: %w", err)
		}
		log.Info("payment failed", zap.String("reason", payment.ErrorMessage))
		s.publish(persistCtx, events.TypeFailed, payment)
		return s.finish(OutcomeFailed, payment, nil, nil), nil
	}

	completed := payment.Clone()
	if err := s.states.Complete(completed, s.ids.NewTransactionReference()); err != nil {
		return nil, err
	}

	if err := s.payments.Save(persistCtx, completed); err != nil {
		if apperr.Is(err, apperr.Duplicate) {
			return s.resolveRace(persistCtx, payment, log)
		}
		return nil, fmt.Errorf("failed to save completed payment: %w", err)
	}
	payment = completed
	s.guard.Remember(persistCtx, payment)
	s.publish(persistCtx, events.TypeCompleted, payment)

	receipt, err := s.issueReceipt(persistCtx, payment)
	if err != nil {
		return nil, err
	}

	log.Info("payment completed",
		zap.String("transaction_reference", payment.TransactionReference),
		zap.String("receipt_number", receipt.ReceiptNumber))

	return s.finish(OutcomeCompleted, payment, receipt, nil), nil
}

// resolveRace handles a concurrent request that completed the same
// (user, item) first: this payment is failed and kept for audit.
func (s *PaymentService) resolveRace(ctx context.Context, payment *models.Payment, log *zap.Logger) (*ProcessResult, error) {
	log.Warn("completed payment rejected by uniqueness constraint")

	if err := s.states.Fail(payment, msgDuplicateRace); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save duplicate payment: %w", err)
	}
	s.publish(ctx, events.TypeFailed, payment)

	existing, err := s.payments.FindCompleted(ctx, payment.UserID, payment.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up completed payment: %w", err)
	}
	if existing == nil {
		existing = payment
	}
	return s.finish(OutcomeDuplicate, existing, nil, nil), nil
}

// issueReceipt generates and stores the receipt of a COMPLETED payment. A
// receipt number already taken elsewhere is regenerated; a receipt already
// stored for the payment is returned instead.
func (s *PaymentService) issueReceipt(ctx context.Context, payment *models.Payment) (*models.Receipt, error) {
	var lastErr error
	for attempt := 1; attempt <= maxReceiptAttempts; attempt++ {
		receipt, err := s.receiptGen.Generate(payment)
		if err != nil {
			return nil, err
		}

		err = s.receipts.Save(ctx, receipt)
		if err == nil {
			return receipt, nil
		}
		if !apperr.Is(err, apperr.Duplicate) {
			return nil, fmt.Errorf("failed to save receipt: %w", err)
		}

		existing, ferr := s.receipts.FindByPaymentID(ctx, payment.ID)
		if ferr != nil {
			return nil, fmt.Errorf("failed to load receipt: %w", ferr)
		}
		if existing != nil {
			return existing, nil
		}

		s.logger.Warn("receipt number already taken, regenerating",
			zap.String("payment_id", payment.ID),
			zap.String("receipt_number", receipt.ReceiptNumber),
			zap.Int("attempt", attempt))
		lastErr = err
	}
	return nil, fmt.Errorf("failed to save receipt after %d attempts: %w", maxReceiptAttempts, lastErr)
}

// receiptFor returns the stored receipt of a payment, issuing it when the
// payment is COMPLETED but an earlier attempt never stored one.
func (s *PaymentService) receiptFor(ctx context.Context, payment *models.Payment) (*models.Receipt, error) {
	r, err := s.receipts.FindByPaymentID(ctx, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}
	if r != nil || payment.Status != models.PaymentStatusCompleted {
		return r, nil
	}

	s.logger.Warn("issuing missing receipt", zap.String("payment_id", payment.ID))
	return s.issueReceipt(ctx, payment)
}

func (s *PaymentService) settle(ctx context.Context, payment *models.Payment) SettlementResult {
	if s.cfg.SettlementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SettlementTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.settler.Settle(ctx, payment.Clone())
	s.metrics.ObserveSettlement(time.Since(start))

	if err != nil {
		return SettlementResult{Success: false, Message: settlementErrorMsg + err.Error()}
	}
	return res
}

func (s *PaymentService) shippingDays(in models.ShippingInfo) (int, error) {
	if in.EstimatedDays < 0 {
		return 0, apperr.New(apperr.DomainRange, "Estimated shipping days must not be negative")
	}
	if in.EstimatedDays > 0 {
		return in.EstimatedDays, nil
	}
	if in.Type == models.ShippingTypeExpedited {
		return s.cfg.ExpeditedShippingDays, nil
	}
	return s.cfg.RegularShippingDays, nil
}

func (s *PaymentService) rejectErr(err error) (*ProcessResult, error) {
	if ae, ok := apperr.As(err); ok {
		return s.reject(ae), nil
	}
	return nil, err
}

func (s *PaymentService) reject(err *apperr.Error) *ProcessResult {
	s.metrics.ValidationFailure(string(err.Kind))
	return s.finish(OutcomeRejected, nil, nil, err)
}

func (s *PaymentService) finish(outcome Outcome, p *models.Payment, r *models.Receipt, err *apperr.Error) *ProcessResult {
	s.metrics.Processed(string(outcome))
	return &ProcessResult{
		Outcome:     outcome,
		Payment:     p,
		Receipt:     r,
		Err:         err,
		ProcessedAt: s.now(),
	}
}

func (s *PaymentService) publish(ctx context.Context, eventType string, p *models.Payment) {
	if err := s.publisher.Publish(ctx, eventType, p); err != nil {
		s.logger.Error("failed to publish payment event",
			zap.String("event", eventType),
			zap.String("payment_id", p.ID),
			zap.Error(err))
	}
}

// RefundPayment applies the administrative COMPLETED -> REFUNDED transition.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.states.Refund(payment); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save refunded payment: %w", err)
	}

	s.guard.Forget(ctx, payment.UserID, payment.ItemID)
	s.metrics.Refunded()
	s.publish(ctx, events.TypeRefunded, payment)
	s.logger.Info("payment refunded", zap.String("payment_id", payment.ID))

	return payment, nil
}

// GetPayment retrieves a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if p == nil {
		return nil, apperr.Newf(apperr.NotFound, "Payment %s not found", paymentID)
	}
	return p, nil
}

func (s *PaymentService) ListPaymentsByUser(ctx context.Context, userID int64) ([]*models.Payment, error) {
	return s.payments.FindByUser(ctx, userID)
}

func (s *PaymentService) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error) {
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "Unknown payment status %q", status)
	}
	return s.payments.FindByStatus(ctx, status)
}

// HasCompletedPayment exposes the duplicate check to callers.
func (s *PaymentService) HasCompletedPayment(ctx context.Context, userID, itemID int64) (bool, error) {
	return s.guard.HasCompletedPayment(ctx, userID, itemID)
}

// GetReceiptForPayment issues the receipt of a COMPLETED payment that is
// still missing one.
func (s *PaymentService) GetReceiptForPayment(ctx context.Context, paymentID string) (*models.Receipt, error) {
	p, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if p == nil {
		return nil, apperr.Newf(apperr.NotFound, "No receipt for payment %s", paymentID)
	}

	r, err := s.receiptFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.Newf(apperr.NotFound, "No receipt for payment %s", paymentID)
	}
	return r, nil
}

func (s *PaymentService) GetReceiptByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	r, err := s.receipts.FindByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}
	if r == nil {
		return nil, apperr.Newf(apperr.NotFound, "Receipt %s not found", number)
	}
	return r, nil
}

func (s *PaymentService) ListReceiptsByUser(ctx context.Context, userID int64) ([]*models.Receipt, error) {
	return s.receipts.FindByUser(ctx, userID)
}

func toAddress(in models.AddressInput) models.Address {
	return models.Address{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Street:       in.Street,
		StreetNumber: in.StreetNumber,
		Province:     in.Province,
		Country:      in.Country,
		PostalCode:   in.PostalCode,
	}
}
