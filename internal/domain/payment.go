package domain

import "errors"

// ErrPaymentDismissed is reported by a checkout window the user closed
// without paying.
var ErrPaymentDismissed = errors.New("payment window dismissed")

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	OrderID         string        `json:"orderId"`
	ExternalOrderID string        `json:"razorpayOrderId,omitempty"`
	PaymentID       string        `json:"razorpayPaymentId,omitempty"`
	Status          PaymentStatus `json:"status"`
}

// PaymentOrder is the descriptor handed to the checkout widget.
type PaymentOrder struct {
	ExternalOrderID string  `json:"razorpayOrderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Key             string  `json:"razorpayKey,omitempty"`
	PaymentURL      string  `json:"paymentUrl,omitempty"`
}

// PaymentResult is what the widget reports on completion.
type PaymentResult struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// Complete reports whether all three fields needed for verification are set.
func (r *PaymentResult) Complete() bool {
	return r != nil && r.OrderID != "" && r.PaymentID != "" && r.Signature != ""
}
