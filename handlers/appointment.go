package handlers

import (
	"errors"
	"net/http"

	appointmentRepo "curaconnect/database/repository/appointment"
	"curaconnect/models"
	"curaconnect/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookAppointmentHandler reserves a slot for the authenticated patient and
// returns the appointment together with the payment checkout details.
func BookAppointmentHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		var req models.BookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		// The token decides who is booking, not the payload.
		if subject := c.GetString("subjectID"); subject != "" {
			req.PatientID = subject
		}

		appt, payment, err := svc.Book(req)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrSlotAlreadyBooked):
				c.JSON(http.StatusConflict, gin.H{"error": "Slot already booked"})
			case errors.Is(err, booking.ErrSlotBeingBooked):
				c.JSON(http.StatusConflict, gin.H{"error": "Slot is being booked by someone else, try again"})
			case errors.Is(err, booking.ErrDoctorNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			default:
				logger.Error("Failed to book appointment", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book appointment"})
			}
			return
		}
		c.JSON(http.StatusCreated, gin.H{"appointment": appt, "payment": payment})
	}
}

// GetAppointmentHandler returns one appointment.
func GetAppointmentHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		appt, err := svc.Get(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		c.JSON(http.StatusOK, appt)
	}
}

// ListAppointmentsHandler returns appointments filtered by doctorId and/or
// patientId query parameters.
func ListAppointmentsHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		filter := appointmentRepo.ListFilter{
			DoctorID:  c.Query("doctorId"),
			PatientID: c.Query("patientId"),
		}

		appts, err := svc.List(filter)
		if err != nil {
			logger.Error("Failed to list appointments", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get appointments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"appointments": appts})
	}
}

type meetingLinkRequest struct {
	MeetingLink     string `json:"meetingLink" binding:"required,url"`
	MeetingPlatform string `json:"meetingPlatform"`
}

// UpdateMeetingLinkHandler lets a doctor set or replace the meeting link.
func UpdateMeetingLinkHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		id := c.Param("id")
		var req meetingLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		appt, err := svc.UpdateMeetingLink(id, req.MeetingLink, req.MeetingPlatform)
		if err != nil {
			if errors.Is(err, booking.ErrAppointmentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
				return
			}
			logger.Error("Failed to update meeting link", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meeting link"})
			return
		}
		c.JSON(http.StatusOK, appt)
	}
}
