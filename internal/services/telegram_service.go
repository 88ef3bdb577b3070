package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/logistics-erp/internal/models"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramService sends order notifications to the admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	apiBase     string
	client      *http.Client
	logger      *zap.Logger
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string, logger *zap.Logger) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		apiBase:     telegramAPIBase,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		s.logger.Debug("telegram bot token not configured, skipping message")
		return nil
	}

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatPrice renders an amount with thousand separators and two decimals.
func FormatPrice(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, fraction, _ := strings.Cut(fixed, ".")

	var result strings.Builder
	if amount.IsNegative() {
		result.WriteString("-")
	}
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	result.WriteString(".")
	result.WriteString(fraction)
	return "₹" + result.String()
}

// NotifyNewOrder reports a freshly placed order.
func (s *TelegramService) NotifyNewOrder(order models.Order) error {
	var items strings.Builder
	for i, item := range order.Items {
		items.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.ProductName),
			item.Quantity,
			FormatPrice(item.Price),
			FormatPrice(item.LineTotal()),
		))
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>Order:</b> %s
<b>Customer:</b> %s
<b>Phone:</b> %s
<b>Products:</b>
%s
<b>Subtotal:</b> %s
<b>GST:</b> %s
<b>Total:</b> %s
<b>Payment:</b> %s`,
		html.EscapeString(order.ID),
		html.EscapeString(customerName(order)),
		html.EscapeString(customerPhone(order)),
		items.String(),
		FormatPrice(order.Subtotal),
		FormatPrice(order.Tax),
		FormatPrice(order.Total),
		html.EscapeString(order.PaymentMethod),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// NotifyOrderCancelled reports a customer cancellation.
func (s *TelegramService) NotifyOrderCancelled(order models.Order) error {
	message := fmt.Sprintf(`<b>❌ ORDER CANCELLED</b>
<b>Order:</b> %s
<b>Customer:</b> %s
<b>Total:</b> %s`,
		html.EscapeString(order.ID),
		html.EscapeString(customerName(order)),
		FormatPrice(order.Total),
	)

	return s.SendToAdmin(message)
}

func customerName(order models.Order) string {
	if order.DeliveryAddress != nil && order.DeliveryAddress.Name != "" {
		return order.DeliveryAddress.Name
	}
	return "unknown"
}

func customerPhone(order models.Order) string {
	if order.DeliveryAddress != nil {
		return order.DeliveryAddress.Phone
	}
	return ""
}
