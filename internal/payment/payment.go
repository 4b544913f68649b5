package payment

import "github.com/shopspring/decimal"

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCanceled   Status = "CANCELED"
)

// Terminal reports whether no gateway notification may move the payment out
// of s. A FAILED payment is only revived by an explicit new processing call,
// never by a late or out-of-order delivery.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// Method is the customer-facing payment instrument.
type Method string

const (
	MethodCard   Method = "CARD"
	MethodPix    Method = "PIX"
	MethodBoleto Method = "BOLETO"
)

// ValidMethod reports whether m is a supported payment method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCard, MethodPix, MethodBoleto:
		return true
	}
	return false
}

// Payment ties an order to a gateway payment intent. There is at most one
// payment per order.
type Payment struct {
	ID           string          `json:"paymentId"`
	OrderID      string          `json:"orderId"`
	Amount       decimal.Decimal `json:"amount"`
	Method       Method          `json:"method"`
	Status       Status          `json:"status"`
	IntentID     string          `json:"intentId,omitempty"`
	ClientSecret string          `json:"clientSecret,omitempty"`
	ReceiptURL   string          `json:"receiptUrl,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}
