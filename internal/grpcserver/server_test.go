package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/CASH-ECOMM/payment-service/internal/models"
	"github.com/CASH-ECOMM/payment-service/internal/repository"
	"github.com/CASH-ECOMM/payment-service/internal/service"
)

func startServer(t *testing.T, settler service.Settler) *Client {
	t.Helper()

	svc, err := service.NewPaymentService(
		repository.NewMemoryPaymentRepository(),
		repository.NewMemoryReceiptRepository(),
		settler,
		service.Config{
			Money: service.MoneyConfig{
				TaxRate:            decimal.RequireFromString("0.13"),
				ExpeditedSurcharge: decimal.RequireFromString("10.00"),
			},
			RegularShippingDays:   7,
			ExpeditedShippingDays: 2,
			SettlementTimeout:     time.Second,
		},
		zap.NewNop(),
	)
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	srv := New(svc, zap.NewNop())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn)
}

func request(userID, itemID int64) *models.PaymentRequest {
	return &models.PaymentRequest{
		UserID:   userID,
		ItemID:   itemID,
		ItemCost: decimal.RequireFromString("49.99"),
		Shipping: models.ShippingInfo{BaseCost: decimal.RequireFromString("9.99"), Type: models.ShippingTypeExpedited},
		Address: models.AddressInput{
			FirstName: "Jane", LastName: "Doe", Street: "King St W", StreetNumber: 120,
			Province: "Ontario", Country: "Canada", PostalCode: "M5H 1J9",
		},
		Card: models.CardInput{Number: "4111111111111111", NameOnCard: "Jane Doe", Expiry: "12/40", SecurityCode: "123"},
	}
}

func TestProcessPayment_CompletedThenDuplicate(t *testing.T) {
	client := startServer(t, service.NewSimulatedSettler(0, true))
	ctx := context.Background()

	reply, err := client.ProcessPayment(ctx, request(1, 1))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeCompleted, reply.Outcome)
	assert.True(t, reply.Success)
	require.NotNil(t, reply.Receipt)
	assert.Equal(t, "79.08", reply.Receipt.TotalAmount)

	dup, err := client.ProcessPayment(ctx, request(1, 1))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeDuplicate, dup.Outcome)
	assert.False(t, dup.Success)
	assert.Equal(t, reply.PaymentID, dup.PaymentID)

	got, err := client.GetPayment(ctx, reply.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Payment.Status)
	assert.Equal(t, "79.08", got.Payment.TotalAmount.StringFixed(2))
}

func TestProcessPayment_Declined(t *testing.T) {
	client := startServer(t, service.NewSimulatedSettler(0, false))

	reply, err := client.ProcessPayment(context.Background(), request(1, 1))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeFailed, reply.Outcome)
	assert.Equal(t, models.PaymentStatusFailed, reply.Status)
}

func TestProcessPayment_StatusErrors(t *testing.T) {
	client := startServer(t, service.NewSimulatedSettler(0, true))
	ctx := context.Background()

	bad := request(1, 1)
	bad.Card.Number = "4111111111111112"
	_, err := client.ProcessPayment(ctx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "Invalid card number", status.Convert(err).Message())

	_, err = client.ProcessPayment(ctx, request(0, 1))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetPayment(ctx, "missing")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetPayment(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestJSONCodec(t *testing.T) {
	c := Codec()
	assert.Equal(t, "json", c.Name())

	data, err := c.Marshal(&GetPaymentRequest{PaymentID: "p1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"payment_id":"p1"}`, string(data))

	var out GetPaymentRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, "p1", out.PaymentID)
}
