// Package payment wraps the payment provider. The provider is an opaque
// collaborator: we create an intent per appointment, the client drives the
// checkout, and the confirmation endpoint reports the outcome back to us.
package payment

import (
	"fmt"
	"math"

	"curaconnect/config"
	"curaconnect/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Provider creates and inspects consultation payments.
type Provider interface {
	// CreateIntent registers a payment for the consultation fee and returns
	// the details the client needs to complete checkout.
	CreateIntent(amount float64, description, appointmentID string) (*models.PaymentDetails, error)
	// GetStatus reports the provider-side state of a payment.
	GetStatus(intentID string) (*models.PaymentStatusInfo, error)
}

// StripeProvider implements Provider on Stripe PaymentIntents.
type StripeProvider struct {
	currency string
}

// NewStripeProvider configures the global Stripe key and returns a provider.
func NewStripeProvider() *StripeProvider {
	stripe.Key = config.AppConfig.StripeKey
	return &StripeProvider{currency: config.AppConfig.PaymentCurrency}
}

func (p *StripeProvider) CreateIntent(amount float64, description, appointmentID string) (*models.PaymentDetails, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toMinorUnits(amount)),
		Currency:    stripe.String(p.currency),
		Description: stripe.String(description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("appointmentId", appointmentID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &models.PaymentDetails{
		IntentID:      pi.ID,
		ClientSecret:  pi.ClientSecret,
		Amount:        amount,
		Currency:      p.currency,
		AppointmentID: appointmentID,
	}, nil
}

func (p *StripeProvider) GetStatus(intentID string) (*models.PaymentStatusInfo, error) {
	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent %s: %w", intentID, err)
	}
	return &models.PaymentStatusInfo{
		IntentID: pi.ID,
		State:    string(pi.Status),
		Amount:   fromMinorUnits(pi.Amount),
		Currency: string(pi.Currency),
		Created:  pi.Created,
	}, nil
}

// Succeeded reports whether the provider considers the payment settled.
func Succeeded(state string) bool {
	return state == string(stripe.PaymentIntentStatusSucceeded)
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(v int64) float64 {
	return float64(v) / 100
}
