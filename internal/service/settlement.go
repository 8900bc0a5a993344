package service

import (
	"context"
	"time"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

type SettlementResult struct {
	Success bool
	Message string // failure reason when !Success
}

// Settler decides whether a PROCESSING payment succeeds.
type Settler interface {
	Settle(ctx context.Context, payment *models.Payment) (SettlementResult, error)
}

// SimulatedSettler stands in for a payment network: it waits a fixed delay
// and returns a fixed outcome.
type SimulatedSettler struct {
	delay          time.Duration
	succeed        bool
	failureMessage string
}

func NewSimulatedSettler(delay time.Duration, succeed bool) *SimulatedSettler {
	return &SimulatedSettler{
		delay:          delay,
		succeed:        succeed,
		failureMessage: "Payment declined by processor",
	}
}

func (s *SimulatedSettler) Settle(ctx context.Context, payment *models.Payment) (SettlementResult, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return SettlementResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	if !s.succeed {
		return SettlementResult{Success: false, Message: s.failureMessage}, nil
	}
	return SettlementResult{Success: true}, nil
}
