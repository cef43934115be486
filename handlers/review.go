package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"curaconnect/models"
	"curaconnect/services/review"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitReviewHandler records a review for the caller's own paid appointment.
func SubmitReviewHandler(svc review.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req models.ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		if subject := c.GetString("subjectID"); subject != "" {
			req.PatientID = subject
		}

		saved, err := svc.Submit(req)
		if err != nil {
			switch {
			case errors.Is(err, review.ErrAppointmentNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			case errors.Is(err, review.ErrNotEligible):
				c.JSON(http.StatusForbidden, gin.H{"error": "Appointment not eligible for review"})
			case errors.Is(err, review.ErrAlreadyReviewed):
				c.JSON(http.StatusConflict, gin.H{"error": "Appointment already reviewed"})
			default:
				logger.Error("Failed to submit review", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
			}
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

// DoctorReviewsHandler lists reviews for one doctor.
func DoctorReviewsHandler(svc review.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		doctorID := c.Param("id")

		reviews, err := svc.ForDoctor(doctorID)
		if err != nil {
			logger.Error("Failed to list reviews", zap.String("doctorId", doctorID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reviews"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}

// MyReviewsHandler lists reviews the authenticated patient has written.
func MyReviewsHandler(svc review.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		patientID := c.GetString("subjectID")

		reviews, err := svc.ForPatient(patientID)
		if err != nil {
			logger.Error("Failed to list reviews", zap.String("patientId", patientID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reviews"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}

// AppointmentReviewHandler returns the review left on one appointment.
func AppointmentReviewHandler(svc review.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		appointmentID := c.Param("appointmentId")

		saved, err := svc.ForAppointment(appointmentID)
		if err != nil {
			logger.Error("Failed to fetch review", zap.String("appointmentId", appointmentID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get review"})
			return
		}
		if saved == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No review for this appointment"})
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

// TestimonialsHandler returns the highest-rated recent reviews for the
// landing page.
func TestimonialsHandler(svc review.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		reviews, err := svc.Testimonials(limit)
		if err != nil {
			logger.Error("Failed to load testimonials", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get testimonials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}
