package handlers

import (
	"net/http"

	"curaconnect/services/calendar"
	"curaconnect/services/doctor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GoogleAuthURLHandler starts the calendar OAuth flow for the authenticated
// doctor. The doctor's id rides along as the state parameter.
func GoogleAuthURLHandler(cal calendar.MeetingScheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		doctorID := c.GetString("subjectID")
		c.JSON(http.StatusOK, gin.H{"authUrl": cal.AuthURL(doctorID)})
	}
}

// GoogleCallbackHandler finishes the OAuth flow: the authorization code is
// exchanged for tokens, which are stored on the doctor identified by state.
func GoogleCallbackHandler(cal calendar.MeetingScheduler, svc doctor.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		code := c.Query("code")
		doctorID := c.Query("state")
		if code == "" || doctorID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code or state"})
			return
		}

		token, err := cal.Exchange(c.Request.Context(), code)
		if err != nil {
			logger.Error("Failed to exchange authorization code", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to connect Google account"})
			return
		}
		if err := svc.SaveGoogleToken(doctorID, token); err != nil {
			logger.Error("Failed to store calendar credentials", zap.String("doctorId", doctorID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Google Calendar connected"})
	}
}
