package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/CASH-ECOMM/payment-service/internal/models"
)

// Client calls payment.PaymentService with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ProcessPayment(ctx context.Context, req *models.PaymentRequest, opts ...grpc.CallOption) (*ProcessPaymentReply, error) {
	out := new(ProcessPaymentReply)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec())}, opts...)
	if err := c.cc.Invoke(ctx, processPaymentMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string, opts ...grpc.CallOption) (*GetPaymentReply, error) {
	out := new(GetPaymentReply)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec())}, opts...)
	if err := c.cc.Invoke(ctx, getPaymentMethod, &GetPaymentRequest{PaymentID: paymentID}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
