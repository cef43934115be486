package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// OTPTTL is how long an issued one-time passcode stays valid.
const OTPTTL = 10 * time.Minute

// ErrOTPMismatch is returned when the provided code does not match the stored
// one, or no code is outstanding for the email.
var ErrOTPMismatch = fmt.Errorf("invalid or expired OTP")

// GenerateOTP produces a random 6-digit numeric passcode.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpKey(email string) string {
	return "otp:" + email
}

// StoreOTP caches the passcode for the email with the standard TTL,
// replacing any outstanding code.
func StoreOTP(ctx context.Context, email, otp string) error {
	client := GetOTPCacheClient()
	if err := client.Set(ctx, otpKey(email), otp, OTPTTL).Err(); err != nil {
		GetLogger().Error("Failed to cache OTP", zap.Error(err))
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

// OTPStore issues and verifies one-time codes. Services depend on this
// rather than the package functions so tests can swap in memory.
type OTPStore interface {
	// Issue generates a fresh code for the email and caches it.
	Issue(ctx context.Context, email string) (string, error)
	// Verify checks the code; it matches at most once.
	Verify(ctx context.Context, email, otp string) error
}

// RedisOTPStore is the Redis-backed OTPStore.
type RedisOTPStore struct{}

func (RedisOTPStore) Issue(ctx context.Context, email string) (string, error) {
	otp, err := GenerateOTP()
	if err != nil {
		return "", err
	}
	if err := StoreOTP(ctx, email, otp); err != nil {
		return "", err
	}
	return otp, nil
}

func (RedisOTPStore) Verify(ctx context.Context, email, otp string) error {
	return VerifyOTP(ctx, email, otp)
}

// VerifyOTP compares the provided code against the stored one and deletes it
// on success, so a code verifies at most once.
func VerifyOTP(ctx context.Context, email, provided string) error {
	client := GetOTPCacheClient()
	stored, err := client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrOTPMismatch
		}
		return fmt.Errorf("failed to retrieve OTP: %w", err)
	}
	if stored != provided {
		return ErrOTPMismatch
	}
	if err := client.Del(ctx, otpKey(email)).Err(); err != nil {
		GetLogger().Error("Failed to delete OTP after verification", zap.Error(err))
	}
	return nil
}
