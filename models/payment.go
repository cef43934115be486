package models

// PaymentDetails is returned alongside a freshly created appointment so the
// client can drive the payment provider's checkout flow.
type PaymentDetails struct {
	IntentID      string  `json:"id"`
	ClientSecret  string  `json:"clientSecret"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	AppointmentID string  `json:"appointmentId"`
}

// PaymentStatusInfo is the provider-side view of a payment.
type PaymentStatusInfo struct {
	IntentID string  `json:"paymentId"`
	State    string  `json:"state"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Created  int64   `json:"createTime"`
}
