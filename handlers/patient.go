package handlers

import (
	"errors"
	"net/http"

	"curaconnect/models"
	"curaconnect/services/patient"
	"curaconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterPatientHandler creates an unverified patient account and sends the
// verification code.
func RegisterPatientHandler(svc patient.PatientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req models.PatientRegistration
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		registered, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, patient.ErrEmailTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
			logger.Error("Failed to register patient", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"patient": registered,
			"message": "Verification code sent to your email",
		})
	}
}

// VerifyPatientEmailHandler consumes the emailed code and activates the
// account.
func VerifyPatientEmailHandler(svc patient.PatientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req otpVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		verified, err := svc.VerifyEmail(c.Request.Context(), req.Email, req.OTP)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrOTPMismatch):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
			case errors.Is(err, patient.ErrPatientNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			case errors.Is(err, patient.ErrAlreadyVerified):
				c.JSON(http.StatusConflict, gin.H{"error": "Email already verified"})
			default:
				logger.Error("Failed to verify email", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"patient": verified, "message": "Email verified"})
	}
}

// ResendOTPHandler issues a fresh verification code.
func ResendOTPHandler(svc patient.PatientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		if err := svc.ResendOTP(c.Request.Context(), req.Email); err != nil {
			switch {
			case errors.Is(err, patient.ErrPatientNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			case errors.Is(err, patient.ErrAlreadyVerified):
				c.JSON(http.StatusConflict, gin.H{"error": "Email already verified"})
			default:
				logger.Error("Failed to resend OTP", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend OTP"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginPatientHandler checks credentials on a verified account and returns a
// token.
func LoginPatientHandler(svc patient.PatientService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		token, p, err := svc.Login(req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, patient.ErrInvalidCredentials):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			case errors.Is(err, patient.ErrNotVerified):
				c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
			default:
				logger.Error("Failed to log in patient", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			}
			return
		}

		if err := utils.StoreAuthToken(c.Request.Context(), p.ID, token); err != nil {
			logger.Warn("Failed to cache auth token", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "patient": p})
	}
}

// LogoutHandler revokes the caller's active session.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("subjectID")
		if err := utils.RevokeAuthToken(c.Request.Context(), subject); err != nil {
			getLogger(c).Error("Failed to revoke session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
