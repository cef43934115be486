package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"curaconnect/models"
	"curaconnect/services/doctor"
	"curaconnect/services/schedule"
	"curaconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterDoctorHandler creates a doctor account.
func RegisterDoctorHandler(svc doctor.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req models.DoctorRegistration
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		registered, err := svc.Register(req)
		if err != nil {
			if errors.Is(err, doctor.ErrEmailTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
			logger.Error("Failed to register doctor", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register doctor"})
			return
		}
		c.JSON(http.StatusCreated, registered)
	}
}

// ListDoctorsHandler returns all doctors with their upcoming free slots. The
// optional "days" query parameter controls how many working days of slots to
// include.
func ListDoctorsHandler(svc doctor.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		days := targetDaysParam(c)

		doctors, err := svc.ListWithSlots(days)
		if err != nil {
			logger.Error("Failed to list doctors", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get doctors"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"doctors": doctors})
	}
}

// GetDoctorHandler returns one doctor with upcoming free slots.
func GetDoctorHandler(svc doctor.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		id := c.Param("id")

		view, err := svc.GetWithSlots(id, targetDaysParam(c))
		if err != nil {
			if errors.Is(err, doctor.ErrDoctorNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
				return
			}
			logger.Error("Failed to fetch doctor", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get doctor"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type scheduleUpdateRequest struct {
	WorkingDays  []int                `json:"workingDays"`
	WorkingHours *models.WorkingHours `json:"workingHours"`
}

// UpdateScheduleHandler replaces the authenticated doctor's working days and
// hours.
func UpdateScheduleHandler(svc doctor.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		id := c.GetString("subjectID")

		var req scheduleUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		updated, err := svc.UpdateSchedule(id, req.WorkingDays, req.WorkingHours)
		if err != nil {
			if errors.Is(err, doctor.ErrDoctorNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
				return
			}
			logger.Error("Failed to update schedule", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type otpVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// DoctorOTPRequestHandler emails a login code to a registered doctor.
func DoctorOTPRequestHandler(svc doctor.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		if err := svc.RequestLoginOTP(c.Request.Context(), req.Email); err != nil {
			if errors.Is(err, doctor.ErrDoctorNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
				return
			}
			logger.Error("Failed to send login OTP", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
	}
}

// DoctorOTPVerifyHandler exchanges a login code for a token.
func DoctorOTPVerifyHandler(svc doctor.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req otpVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		token, doc, err := svc.VerifyLoginOTP(c.Request.Context(), req.Email, req.OTP)
		if err != nil {
			if errors.Is(err, utils.ErrOTPMismatch) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
				return
			}
			if errors.Is(err, doctor.ErrDoctorNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
				return
			}
			logger.Error("Failed to verify login OTP", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
			return
		}

		if err := utils.StoreAuthToken(c.Request.Context(), doc.ID, token); err != nil {
			logger.Warn("Failed to cache auth token", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "doctor": doc})
	}
}

func targetDaysParam(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", ""))
	if err != nil || days <= 0 {
		return schedule.DefaultTargetDays
	}
	return days
}
