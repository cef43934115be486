package config

import "testing"

func TestLoadConfigEnvOnlySecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-jwt-secret")
	t.Setenv("STRIPE_KEY", "sk_test_env")
	t.Setenv("CLOUDINARY_API_KEY", "cld-key")
	t.Setenv("GOOGLE_CLIENT_ID", "google-id")

	LoadConfig()

	if AppConfig.JWTSecret != "env-jwt-secret" {
		t.Errorf("JWT_SECRET = %q, want env value", AppConfig.JWTSecret)
	}
	if AppConfig.StripeKey != "sk_test_env" {
		t.Errorf("STRIPE_KEY = %q, want env value", AppConfig.StripeKey)
	}
	if AppConfig.CloudinaryAPIKey != "cld-key" {
		t.Errorf("CLOUDINARY_API_KEY = %q, want env value", AppConfig.CloudinaryAPIKey)
	}
	if AppConfig.GoogleClientID != "google-id" {
		t.Errorf("GOOGLE_CLIENT_ID = %q, want env value", AppConfig.GoogleClientID)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()

	if AppConfig.AppPort != "8080" {
		t.Errorf("APP_PORT default = %q, want 8080", AppConfig.AppPort)
	}
	if AppConfig.DatabaseName != "curaconnect" {
		t.Errorf("DATABASE_NAME default = %q, want curaconnect", AppConfig.DatabaseName)
	}
	if AppConfig.HoldExpiryMinutes != 30 {
		t.Errorf("HOLD_EXPIRY_MINUTES default = %d, want 30", AppConfig.HoldExpiryMinutes)
	}
	if AppConfig.PaymentCurrency != "usd" {
		t.Errorf("PAYMENT_CURRENCY default = %q, want usd", AppConfig.PaymentCurrency)
	}
	if IsProduction() {
		t.Error("default environment should not be production")
	}
}
