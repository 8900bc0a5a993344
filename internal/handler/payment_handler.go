package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CASH-ECOMM/payment-service/internal/apperr"
	"github.com/CASH-ECOMM/payment-service/internal/models"
	"github.com/CASH-ECOMM/payment-service/internal/service"
	"github.com/CASH-ECOMM/payment-service/pkg/middleware"
)

// PaymentProcessor is the slice of service.PaymentService used over HTTP.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, req *models.PaymentRequest) (*service.ProcessResult, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID int64) ([]*models.Payment, error)
	ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Payment, error)
	RefundPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	GetReceiptForPayment(ctx context.Context, paymentID string) (*models.Receipt, error)
	GetReceiptByNumber(ctx context.Context, number string) (*models.Receipt, error)
	ListReceiptsByUser(ctx context.Context, userID int64) ([]*models.Receipt, error)
}

type PaymentHandler struct {
	service PaymentProcessor
	logger  *zap.Logger
}

var tagNamesOnce sync.Once

func NewPaymentHandler(service PaymentProcessor, logger *zap.Logger) *PaymentHandler {
	tagNamesOnce.Do(useJSONFieldNames)
	return &PaymentHandler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the payment routes on the given group.
func (h *PaymentHandler) Register(v1 *gin.RouterGroup) {
	payments := v1.Group("/payments")
	{
		payments.POST("", h.ProcessPayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id/refund", h.RefundPayment)
		payments.GET("/:id/receipt", h.GetPaymentReceipt)
	}
	v1.GET("/receipts/:number", h.GetReceiptByNumber)
	v1.GET("/users/:user_id/receipts", h.ListUserReceipts)
}

// ProcessPayment handles POST /api/v1/payments
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.PaymentResponse{
			Success:              false,
			Message:              bindErrorMessage(err),
			TransactionTimestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	result, err := h.service.ProcessPayment(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to process payment",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Int64("user_id", req.UserID),
			zap.Int64("item_id", req.ItemID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.PaymentResponse{
			Success:              false,
			Message:              "Failed to process payment",
			TransactionTimestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(outcomeStatus(result), result.Response())
}

func outcomeStatus(r *service.ProcessResult) int {
	switch r.Outcome {
	case service.OutcomeCompleted:
		return http.StatusCreated
	case service.OutcomeFailed:
		return http.StatusPaymentRequired
	case service.OutcomeDuplicate:
		return http.StatusConflict
	case service.OutcomeRejected:
		return apperr.HTTPStatus(r.Err)
	default:
		return http.StatusInternalServerError
	}
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentView(payment))
}

// ListPayments handles GET /api/v1/payments?user_id= or ?status=
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var (
		payments []*models.Payment
		err      error
	)

	switch {
	case c.Query("user_id") != "":
		userID, perr := parseID(c.Query("user_id"), "user_id")
		if perr != nil {
			h.fail(c, perr)
			return
		}
		payments, err = h.service.ListPaymentsByUser(c.Request.Context(), userID)
	case c.Query("status") != "":
		status := models.PaymentStatus(strings.ToUpper(c.Query("status")))
		payments, err = h.service.ListPaymentsByStatus(c.Request.Context(), status)
	default:
		err = apperr.New(apperr.Validation, "user_id or status query parameter is required")
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	if payments == nil {
		payments = []*models.Payment{}
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// RefundPayment handles POST /api/v1/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	payment, err := h.service.RefundPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	view := paymentView(payment)
	view["message"] = "Payment refunded successfully"
	c.JSON(http.StatusOK, view)
}

// GetPaymentReceipt handles GET /api/v1/payments/:id/receipt
func (h *PaymentHandler) GetPaymentReceipt(c *gin.Context) {
	receipt, err := h.service.GetReceiptForPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receiptBody(receipt)})
}

// GetReceiptByNumber handles GET /api/v1/receipts/:number
func (h *PaymentHandler) GetReceiptByNumber(c *gin.Context) {
	receipt, err := h.service.GetReceiptByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receiptBody(receipt)})
}

// ListUserReceipts handles GET /api/v1/users/:user_id/receipts
func (h *PaymentHandler) ListUserReceipts(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"), "user_id")
	if err != nil {
		h.fail(c, err)
		return
	}

	receipts, err := h.service.ListReceiptsByUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, receiptBody(r))
	}
	c.JSON(http.StatusOK, gin.H{"receipts": out, "count": len(out)})
}

// paymentView adds the masked card and the postal label to a payment.
func paymentView(p *models.Payment) gin.H {
	return gin.H{
		"payment":        p,
		"card_display":   p.Card.Masked(),
		"shipping_label": p.Address.MultiLine(),
	}
}

func receiptBody(r *models.Receipt) gin.H {
	return gin.H{
		"payment_id":   r.PaymentID,
		"receipt_date": r.ReceiptDate.UTC().Format(time.RFC3339),
		"summary":      models.NewReceiptSummary(r),
	}
}

func (h *PaymentHandler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{
		"success":    false,
		"message":    apperr.PublicMessage(err),
		"request_id": middleware.GetRequestID(c),
	})
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.Validation, "%s must be a positive integer", name)
	}
	return id, nil
}

// bindErrorMessage lists field failures by their JSON path, e.g.
// "shipping.type is required".
func bindErrorMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msgs = append(msgs, field+" "+messageForTag(fe.Tag(), fe.Param()))
	}
	return strings.Join(msgs, "; ")
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + param
	case "gt":
		return "must be greater than " + param
	default:
		return "is invalid"
	}
}

func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
