package handlers

import (
	"errors"
	"net/http"

	"curaconnect/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CompletePaymentHandler confirms a checkout the client finished. The
// provider-side state is verified server-side before anything is marked paid.
func CompletePaymentHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		id := c.Param("id")

		appt, err := svc.CompletePayment(id)
		if err != nil {
			if errors.Is(err, booking.ErrAppointmentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
				return
			}
			if errors.Is(err, booking.ErrHoldExpired) {
				c.JSON(http.StatusConflict, gin.H{"error": "Appointment hold expired before payment completed"})
				return
			}
			logger.Error("Failed to complete payment", zap.String("appointmentId", id), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment not completed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"appointment": appt, "message": "Payment confirmed"})
	}
}

// PaymentStatusHandler reports the provider-side state of a payment intent.
func PaymentStatusHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		intentID := c.Param("intentId")

		status, err := svc.PaymentStatus(intentID)
		if err != nil {
			logger.Error("Failed to fetch payment status", zap.String("intentId", intentID), zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
