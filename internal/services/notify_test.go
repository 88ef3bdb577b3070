package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/logistics-erp/internal/config"
	"github.com/example/logistics-erp/internal/models"
)

func TestFormatPrice(t *testing.T) {
	cases := map[string]string{
		"0":           "₹0.00",
		"123":         "₹123.00",
		"1234.5":      "₹1,234.50",
		"1234567.891": "₹1,234,567.89",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPrice(decimal.RequireFromString(in)), in)
	}
}

func TestTelegramNotifyNewOrder(t *testing.T) {
	var (
		mu       sync.Mutex
		paths    []string
		messages []telegramMessage
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg telegramMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		messages = append(messages, msg)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewTelegramService("bot-token", "42", zap.NewNop())
	svc.apiBase = srv.URL

	order := models.Order{
		ID:              "ORD-1",
		DeliveryAddress: &models.DeliveryAddress{Name: "Asha <Rao>", Phone: "9876543210"},
		Subtotal:        decimal.RequireFromString("1000"),
		Tax:             decimal.RequireFromString("180"),
		Total:           decimal.RequireFromString("1180"),
		PaymentMethod:   "Card",
		Items: []models.OrderItem{
			{ProductName: "Courier box", Quantity: 2, Price: decimal.RequireFromString("500")},
		},
	}
	require.NoError(t, svc.NotifyNewOrder(order))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, messages, 1)
	assert.Equal(t, "/botbot-token/sendMessage", paths[0])
	assert.Equal(t, "42", messages[0].ChatID)
	assert.Equal(t, "HTML", messages[0].ParseMode)
	assert.Contains(t, messages[0].Text, "ORD-1")
	assert.Contains(t, messages[0].Text, "Asha &lt;Rao&gt;")
	assert.Contains(t, messages[0].Text, "2 x ₹500.00 = ₹1,000.00")
	assert.Contains(t, messages[0].Text, "₹1,180.00")
}

func TestTelegramWithoutTokenIsNoop(t *testing.T) {
	svc := NewTelegramService("", "42", zap.NewNop())
	assert.NoError(t, svc.NotifyOrderCancelled(models.Order{ID: "ORD-1"}))

	svc = NewTelegramService("token", "", zap.NewNop())
	assert.NoError(t, svc.NotifyOrderCancelled(models.Order{ID: "ORD-1"}))
}

func TestTelegramReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewTelegramService("token", "42", zap.NewNop())
	svc.apiBase = srv.URL
	assert.Error(t, svc.SendToAdmin("hello"))
}

func TestNewMailerFallsBackToLog(t *testing.T) {
	mailer := NewMailer(config.SMTPConfig{}, zap.NewNop())
	require.IsType(t, &LogMailer{}, mailer)
	assert.NoError(t, mailer.SendOTP(context.Background(), "a@example.com", "123456", 10*time.Minute))

	mailer = NewMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "erp@example.com"}, zap.NewNop())
	assert.IsType(t, &SMTPMailer{}, mailer)
}

func TestOTPMessage(t *testing.T) {
	var buf bytes.Buffer
	_, err := otpMessage("erp@example.com", "a@example.com", "123456", 10*time.Minute).WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Subject: Password Reset OTP")
	assert.Contains(t, out, "To: a@example.com")
	assert.Contains(t, out, "123456")
	assert.Contains(t, out, "10 minutes")
}
