package handlers

import (
	"net/http"
	"time"

	fileRepo "curaconnect/database/repository/file"
	"curaconnect/models"
	"curaconnect/services/booking"
	"curaconnect/services/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20 // 10 MiB

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

// UploadFileHandler stores a document for an appointment. Only the patient or
// doctor on the appointment may upload to it.
func UploadFileHandler(store storage.StorageService, files fileRepo.FileRepository, bookings booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		appointmentID := c.Param("id")

		appt, err := bookings.Get(appointmentID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		subject := c.GetString("subjectID")
		if subject != appt.PatientID && subject != appt.DoctorID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this appointment"})
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
			return
		}
		if header.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		if !allowedUploadTypes[header.Header.Get("Content-Type")] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
			return
		}

		f, err := header.Open()
		if err != nil {
			logger.Error("Failed to open upload", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
			return
		}
		defer f.Close()

		record := &models.AppointmentFile{
			ID:            uuid.New().String(),
			AppointmentID: appointmentID,
			PatientID:     appt.PatientID,
			DoctorID:      appt.DoctorID,
			OriginalName:  header.Filename,
			ContentType:   header.Header.Get("Content-Type"),
			Size:          header.Size,
			Description:   c.PostForm("description"),
			UploadedBy:    c.GetString("role"),
			CreatedAt:     time.Now(),
		}

		publicID, url, err := store.Upload(c.Request.Context(), f, appointmentID, record.ID)
		if err != nil {
			logger.Error("Failed to store file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
			return
		}
		record.PublicID = publicID
		record.URL = url

		if err := files.Create(record); err != nil {
			logger.Error("Failed to save file metadata", zap.Error(err))
			// Orphaned object cleanup.
			if delErr := store.Delete(c.Request.Context(), publicID); delErr != nil {
				logger.Warn("Failed to remove orphaned upload", zap.Error(delErr))
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

// ListFilesHandler returns the documents attached to an appointment, newest
// first.
func ListFilesHandler(files fileRepo.FileRepository, bookings booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		appointmentID := c.Param("id")

		appt, err := bookings.Get(appointmentID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		subject := c.GetString("subjectID")
		if subject != appt.PatientID && subject != appt.DoctorID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this appointment"})
			return
		}

		list, err := files.FindByAppointment(appointmentID)
		if err != nil {
			logger.Error("Failed to list files", zap.String("appointmentId", appointmentID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get files"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": list})
	}
}

// DeleteFileHandler removes a document; only the uploader's side may delete.
func DeleteFileHandler(store storage.StorageService, files fileRepo.FileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		fileID := c.Param("fileId")

		record, err := files.GetByID(fileID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		subject := c.GetString("subjectID")
		if subject != record.PatientID && subject != record.DoctorID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this appointment"})
			return
		}

		if err := store.Delete(c.Request.Context(), record.PublicID); err != nil {
			logger.Error("Failed to delete stored file", zap.String("fileId", fileID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
			return
		}
		if err := files.Delete(fileID); err != nil {
			logger.Error("Failed to delete file metadata", zap.String("fileId", fileID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
	}
}
