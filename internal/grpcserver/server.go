// Package grpcserver exposes payment processing over gRPC.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/models"
	"github.com/CASH-ECOMM/payment-service/internal/service"
)

const (
	ServiceName          = "payment.PaymentService"
	processPaymentMethod = "/" + ServiceName + "/ProcessPayment"
	getPaymentMethod     = "/" + ServiceName + "/GetPayment"
)

type ProcessPaymentReply struct {
	Outcome service.Outcome `json:"outcome"`
	models.PaymentResponse
}

type GetPaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

type GetPaymentReply struct {
	Payment *models.Payment `json:"payment"`
}

// PaymentServer is the server API of payment.PaymentService.
type PaymentServer interface {
	ProcessPayment(ctx context.Context, req *models.PaymentRequest) (*ProcessPaymentReply, error)
	GetPayment(ctx context.Context, req *GetPaymentRequest) (*GetPaymentReply, error)
}

type Processor interface {
	ProcessPayment(ctx context.Context, req *models.PaymentRequest) (*service.ProcessResult, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
}

type Server struct {
	service Processor
	logger  *zap.Logger
}

func NewServer(svc Processor, logger *zap.Logger) *Server {
	return &Server{service: svc, logger: logger}
}

// ProcessPayment reports COMPLETED, FAILED and DUPLICATE outcomes in the
// reply. Rejected requests and infrastructure failures are status errors.
func (s *Server) ProcessPayment(ctx context.Context, req *models.PaymentRequest) (*ProcessPaymentReply, error) {
	if req.UserID <= 0 || req.ItemID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id and item_id are required")
	}

	result, err := s.service.ProcessPayment(ctx, req)
	if err != nil {
		s.logger.Error("failed to process payment", zap.Error(err))
		return nil, toStatus(err)
	}
	if result.Outcome == service.OutcomeRejected {
		return nil, toStatus(result.Err)
	}

	return &ProcessPaymentReply{Outcome: result.Outcome, PaymentResponse: result.Response()}, nil
}

func (s *Server) GetPayment(ctx context.Context, req *GetPaymentRequest) (*GetPaymentReply, error) {
	if req.PaymentID == "" {
		return nil, status.Error(codes.InvalidArgument, "payment_id is required")
	}

	p, err := s.service.GetPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetPaymentReply{Payment: p}, nil
}

func toStatus(err error) error {
	return status.Error(apperr.GRPCCode(err), apperr.PublicMessage(err))
}

// New builds a gRPC server with the JSON codec and payment.PaymentService
// registered.
func New(svc Processor, logger *zap.Logger) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(Codec()),
		grpc.ChainUnaryInterceptor(LoggingInterceptor(logger)),
	)
	Register(srv, NewServer(svc, logger))
	return srv
}

func Register(s grpc.ServiceRegistrar, srv PaymentServer) {
	s.RegisterService(&serviceDesc, srv)
}

// LoggingInterceptor logs each unary call with its status code.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("grpc_request", append(fields, zap.Error(err))...)
		} else {
			logger.Info("grpc_request", fields...)
		}
		return resp, err
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProcessPayment", Handler: processPaymentHandler},
		{MethodName: "GetPayment", Handler: getPaymentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payment.proto",
}

func processPaymentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(models.PaymentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PaymentServer).ProcessPayment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: processPaymentMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PaymentServer).ProcessPayment(ctx, req.(*models.PaymentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getPaymentHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetPaymentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PaymentServer).GetPayment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getPaymentMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PaymentServer).GetPayment(ctx, req.(*GetPaymentRequest))
	}
	return interceptor(ctx, in, info, handler)
}
