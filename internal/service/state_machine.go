package service

import (
	"time"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/models"
)

const defaultFailureMessage = "Payment processing failed"

var allowedTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending:    {models.PaymentStatusProcessing},
	models.PaymentStatusProcessing: {models.PaymentStatusCompleted, models.PaymentStatusFailed},
	models.PaymentStatusCompleted:  {models.PaymentStatusRefunded},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to models.PaymentStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateMachine is the only writer of Payment.Status.
type StateMachine struct {
	now func() time.Time
}

func NewStateMachine(now func() time.Time) *StateMachine {
	if now == nil {
		now = time.Now
	}
	return &StateMachine{now: now}
}

// Start moves a PENDING payment to PROCESSING.
func (m *StateMachine) Start(p *models.Payment) error {
	return m.transition(p, models.PaymentStatusProcessing)
}

// Complete records a successful settlement.
func (m *StateMachine) Complete(p *models.Payment, transactionRef string) error {
	if transactionRef == "" {
		return apperr.New(apperr.IllegalTransition, "completed payment requires a transaction reference")
	}
	if err := m.transition(p, models.PaymentStatusCompleted); err != nil {
		return err
	}
	p.TransactionReference = transactionRef
	p.ErrorMessage = ""
	return nil
}

// Fail records a failed settlement.
func (m *StateMachine) Fail(p *models.Payment, message string) error {
	if message == "" {
		message = defaultFailureMessage
	}
	if err := m.transition(p, models.PaymentStatusFailed); err != nil {
		return err
	}
	p.ErrorMessage = message
	p.TransactionReference = ""
	return nil
}

func (m *StateMachine) Refund(p *models.Payment) error {
	return m.transition(p, models.PaymentStatusRefunded)
}

func (m *StateMachine) transition(p *models.Payment, to models.PaymentStatus) error {
	if !CanTransition(p.Status, to) {
		return apperr.Newf(apperr.IllegalTransition, "cannot move payment %s from %s to %s", p.ID, p.Status, to)
	}
	p.Status = to
	p.UpdatedAt = m.now()
	return nil
}
