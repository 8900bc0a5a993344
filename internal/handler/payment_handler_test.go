package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CASH-ECOMM/payment-service/internal/models"
	"github.com/CASH-ECOMM/payment-service/internal/repository"
	"github.com/CASH-ECOMM/payment-service/internal/service"
	"github.com/CASH-ECOMM/payment-service/pkg/middleware"
)

func setupRouter(t *testing.T, settler service.Settler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	router := gin.New()
	router.Use(middleware.RequestID())
	NewPaymentHandler(svc, zap.NewNop()).Register(router.Group("/api/v1"))
	return router
}

func paymentBody(userID, itemID int64, cardNumber string) string {
	return fmt.Sprintf(`{
		"user_id": %d,
		"item_id": %d,
		"item_cost": 49.99,
		"shipping": {"base_cost": "9.99", "type": "EXPEDITED"},
		"address": {
			"first_name": "Jane", "last_name": "Doe", "street": "King St W", "street_number": 120,
			"province": "Ontario", "country": "Canada", "postal_code": "M5H 1J9"
		},
		"card": {"number": %q, "name_on_card": "Jane Doe", "expiry": "12/40", "security_code": "123"}
	}`, userID, itemID, cardNumber)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.PaymentResponse {
	t.Helper()
	var resp models.PaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProcessPayment_Completed(t *testing.T) {
	router := setupRouter(t, service.NewSimulatedSettler(0, true))

	w := do(router, http.MethodPost, "/api/v1/payments", paymentBody(1, 1, "4111111111111111"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Payment processed successfully", resp.Message)
	assert.Equal(t, models.PaymentStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.PaymentID)
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, "79.08", resp.Receipt.TotalAmount)
	assert.Equal(t, "9.10", resp.Receipt.TaxAmount)
	assert.Equal(t, "Jane Doe", resp.Receipt.Name)
	assert.Equal(t, models.CardBrandVisa, resp.Receipt.PaymentMethod)
	assert.NotContains(t, w.Body.String(), "4111111111111111")

	get := do(router, http.MethodGet, "/api/v1/payments/"+resp.PaymentID, "")
	assert.Equal(t, http.StatusOK, get.Code)
	assert.NotContains(t, get.Body.String(), "security_code")

	var view struct {
		CardDisplay   string `json:"card_display"`
		ShippingLabel string `json:"shipping_label"`
	}
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &view))
	assert.Equal(t, "**** **** **** 1111", view.CardDisplay)
	assert.Equal(t, "Jane Doe\n120 King St W\nOntario, Canada M5H 1J9", view.ShippingLabel)

	rec := do(router, http.MethodGet, "/api/v1/payments/"+resp.PaymentID+"/receipt", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), resp.Receipt.ReceiptNumber)

	byNumber := do(router, http.MethodGet, "/api/v1/receipts/"+resp.Receipt.ReceiptNumber, "")
	assert.Equal(t, http.StatusOK, byNumber.Code)

	userReceipts := do(router, http.MethodGet, "/api/v1/users/1/receipts", "")
	assert.Equal(t, http.StatusOK, userReceipts.Code)
	assert.Contains(t, userReceipts.Body.String(), `"count":1`)
}

func TestProcessPayment_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		settler  service.Settler
		body     string
		repeat   bool
		want     int
		wantMsg  string
		wantSucc bool
	}{
		{
			name:    "declined",
			settler: service.NewSimulatedSettler(0, false),
			body:    paymentBody(1, 1, "4111111111111111"),
			want:    http.StatusPaymentRequired,
			wantMsg: "Payment failed: Payment declined by processor",
		},
		{
			name:    "duplicate",
			settler: service.NewSimulatedSettler(0, true),
			body:    paymentBody(1, 1, "4111111111111111"),
			repeat:  true,
			want:    http.StatusConflict,
			wantMsg: "Payment already completed for this user and item.",
		},
		{
			name:    "invalid card",
			settler: service.NewSimulatedSettler(0, true),
			body:    paymentBody(1, 1, "4111111111111112"),
			want:    http.StatusBadRequest,
			wantMsg: "Invalid card number",
		},
		{
			name:    "street number out of range",
			settler: service.NewSimulatedSettler(0, true),
			body:    strings.Replace(paymentBody(1, 1, "4111111111111111"), `"street_number": 120`, `"street_number": 1000000`, 1),
			want:    http.StatusBadRequest,
			wantMsg: "Street number must be between 1 and 999999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, tt.settler)
			w := do(router, http.MethodPost, "/api/v1/payments", tt.body)
			if tt.repeat {
				w = do(router, http.MethodPost, "/api/v1/payments", tt.body)
			}

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			resp := decodeResponse(t, w)
			assert.Equal(t, tt.wantSucc, resp.Success)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.NotEmpty(t, resp.TransactionTimestamp)
		})
	}
}

func TestProcessPayment_BindErrors(t *testing.T) {
	router := setupRouter(t, service.NewSimulatedSettler(0, true))

	w := do(router, http.MethodPost, "/api/v1/payments", `{"user_id": "x"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decodeResponse(t, w).Message)

	missing := strings.Replace(paymentBody(1, 1, "4111111111111111"), `"type": "EXPEDITED"`, `"type": "OVERNIGHT"`, 1)
	w = do(router, http.MethodPost, "/api/v1/payments", missing)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "shipping.type must be one of REGULAR EXPEDITED", decodeResponse(t, w).Message)

	noUser := strings.Replace(paymentBody(1, 1, "4111111111111111"), `"user_id": 1`, `"user_id": 0`, 1)
	w = do(router, http.MethodPost, "/api/v1/payments", noUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id is required", decodeResponse(t, w).Message)

	negative := strings.Replace(paymentBody(1, 1, "4111111111111111"), `"user_id": 1`, `"user_id": -7`, 1)
	negative = strings.Replace(negative, `"item_id": 1`, `"item_id": -3`, 1)
	w = do(router, http.MethodPost, "/api/v1/payments", negative)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id must be greater than 0; item_id must be greater than 0", decodeResponse(t, w).Message)
}

func TestRefundPayment(t *testing.T) {
	router := setupRouter(t, service.NewSimulatedSettler(0, true))

	created := decodeResponse(t, do(router, http.MethodPost, "/api/v1/payments", paymentBody(1, 1, "4111111111111111")))

	w := do(router, http.MethodPost, "/api/v1/payments/"+created.PaymentID+"/refund", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"REFUNDED"`)

	w = do(router, http.MethodPost, "/api/v1/payments/"+created.PaymentID+"/refund", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPost, "/api/v1/payments/missing/refund", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPayments(t *testing.T) {
	router := setupRouter(t, service.NewSimulatedSettler(0, true))
	do(router, http.MethodPost, "/api/v1/payments", paymentBody(1, 1, "4111111111111111"))
	do(router, http.MethodPost, "/api/v1/payments", paymentBody(1, 2, "5555555555554444"))

	tests := []struct {
		query string
		want  int
		count string
	}{
		{"?user_id=1", http.StatusOK, `"count":2`},
		{"?user_id=2", http.StatusOK, `"count":0`},
		{"?status=completed", http.StatusOK, `"count":2`},
		{"?status=DONE", http.StatusBadRequest, ""},
		{"?user_id=abc", http.StatusBadRequest, ""},
		{"", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(router, http.MethodGet, "/api/v1/payments"+tt.query, "")
			assert.Equal(t, tt.want, w.Code)
			if tt.count != "" {
				assert.Contains(t, w.Body.String(), tt.count)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	router := setupRouter(t, service.NewSimulatedSettler(0, true))

	for _, path := range []string{
		"/api/v1/payments/nope",
		"/api/v1/payments/nope/receipt",
		"/api/v1/receipts/RCP-1",
	} {
		w := do(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), `"success":false`)
	}
}
