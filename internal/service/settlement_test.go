package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

func TestSimulatedSettler(t *testing.T) {
	ctx := context.Background()
	p := &models.Payment{ID: "p1"}

	ok, err := NewSimulatedSettler(0, true).Settle(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok.Success)

	declined, err := NewSimulatedSettler(time.Millisecond, false).Settle(ctx, p)
	require.NoError(t, err)
	assert.False(t, declined.Success)
	assert.Equal(t, "Payment declined by processor", declined.Message)
}

func TestSimulatedSettler_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewSimulatedSettler(time.Minute, true).Settle(ctx, &models.Payment{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
