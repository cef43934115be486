package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"curaconnect/config"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
)

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthTokenTTL is how long issued tokens stay valid.
const AuthTokenTTL = 7 * 24 * time.Hour

func secretKey() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateToken creates a signed JWT with the given subject (a patient or
// doctor id), email and role. The token expires after AuthTokenTTL.
func GenerateToken(subject, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(AuthTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// StoreAuthToken caches the token's hash for its subject. Active sessions
// live in Redis so a token can be revoked before it expires.
func StoreAuthToken(ctx context.Context, subject, token string) error {
	return GetAuthCacheClient().Set(ctx, AuthCachePrefix+subject, HashToken(token), AuthTokenTTL).Err()
}

// CheckAuthToken reports whether the token is the active session for its
// subject. A missing key means the session was revoked or never issued.
func CheckAuthToken(ctx context.Context, subject, token string) (bool, error) {
	cached, err := GetAuthCacheClient().Get(ctx, AuthCachePrefix+subject).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return cached == HashToken(token), nil
}

// RevokeAuthToken drops the subject's active session.
func RevokeAuthToken(ctx context.Context, subject string) error {
	return GetAuthCacheClient().Del(ctx, AuthCachePrefix+subject).Err()
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractClaimsFromToken extracts the subject and role from a valid JWT.
func ExtractClaimsFromToken(tokenString string) (subject, role string, err error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	r, _ := claims["role"].(string)
	return sub, r, nil
}
