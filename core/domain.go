package core

import (
	"strings"
	"time"
)

type PaymentMethodType string

const (
	PaymentMethodCard     PaymentMethodType = "card"
	PaymentMethodDemoCard PaymentMethodType = "demo_card"
)

type PaymentMethod struct {
	Type           PaymentMethodType `json:"type"`
	CardNumber     string            `json:"cardNumber"`
	ExpiryDate     string            `json:"expiryDate"`
	CVV            string            `json:"cvv"`
	CardholderName string            `json:"cardholderName"`
}

type PaymentReceipt struct {
	PaymentID         string            `json:"paymentId"`
	Amount            float64           `json:"amount"`
	Currency          string            `json:"currency"`
	Method            PaymentMethodType `json:"method"`
	Timestamp         time.Time         `json:"timestamp"`
	Last4             string            `json:"last4"`
	Brand             string            `json:"brand"`
	IsDemoTransaction bool              `json:"isDemoTransaction"`
}

// PaymentResult carries payment failures as values so checkout can branch on
// Success without error handling.
type PaymentResult struct {
	Success       bool            `json:"success"`
	PaymentID     string          `json:"paymentId"`
	TransactionID string          `json:"transactionId,omitempty"`
	Error         string          `json:"error,omitempty"`
	Receipt       *PaymentReceipt `json:"receipt,omitempty"`
}

const (
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusSucceeded             = "succeeded"
	IntentStatusCanceled              = "canceled"
)

type PaymentIntent struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	ClientSecret string  `json:"clientSecret,omitempty"`
}

type PaymentMethodOption struct {
	ID          string            `json:"id"`
	Type        PaymentMethodType `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Brands      []string          `json:"brands"`
	Demo        bool              `json:"demo"`
}

// ValidationResult maps field names to their first validation message.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

type RefundResult struct {
	Success  bool    `json:"success"`
	RefundID string  `json:"refundId,omitempty"`
	Amount   float64 `json:"amount"`
	Error    string  `json:"error,omitempty"`
}

type WebhookEvent struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Created int64          `json:"created"`
	Data    map[string]any `json:"data"`
}

type WebhookResult struct {
	Success bool          `json:"success"`
	Event   *WebhookEvent `json:"event,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// OrderStatusFlow is the auto-advance lifecycle. CANCELLED and REFUNDED are
// only reachable by external action.
var OrderStatusFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

func ParseOrderStatus(raw string) OrderStatus {
	return OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

type Order struct {
	ID            string      `json:"id"`
	Status        OrderStatus `json:"status"`
	PaymentMethod string      `json:"paymentMethod"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsDemoPaymentMethod reports whether an order's recorded payment method was
// produced by the demo engine.
func IsDemoPaymentMethod(method string) bool {
	method = strings.ToLower(strings.TrimSpace(method))
	return method != "" && strings.HasPrefix(method, "demo")
}

type StatusUpdate struct {
	Status OrderStatus `json:"status"`
	Note   string      `json:"note"`
}

type StatusChange struct {
	OrderID    string      `json:"orderId"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	Note       string      `json:"note"`
	Order      Order       `json:"order"`
	OccurredAt time.Time   `json:"occurredAt"`
}

type EmailMessage struct {
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

type EmailResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Provider  string `json:"provider"`
	Error     string `json:"error,omitempty"`
}

type OrderConfirmation struct {
	OrderID       string  `json:"orderId"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerName  string  `json:"customerName"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
	IsDemo        bool    `json:"isDemo"`
}

type StoredAsset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Provider    string `json:"provider"`
}

type AssetURLOptions struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
}
