// Package review lets patients rate consultations they completed and paid
// for, and serves the review lists shown on doctor profiles.
package review

import (
	"errors"
	"fmt"
	"time"

	appointmentRepo "curaconnect/database/repository/appointment"
	patientRepo "curaconnect/database/repository/patient"
	reviewRepo "curaconnect/database/repository/review"
	"curaconnect/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotEligible         = errors.New("appointment not eligible for review")
	ErrAlreadyReviewed     = errors.New("appointment already reviewed")
)

const defaultTestimonialLimit = 10

// ReviewService manages consultation reviews.
type ReviewService interface {
	// Submit records a review for the patient's own booked and paid
	// appointment.
	Submit(req models.ReviewRequest) (*models.Review, error)
	// ForDoctor returns reviews for one doctor.
	ForDoctor(doctorID string) ([]models.Review, error)
	// ForPatient returns reviews written by one patient.
	ForPatient(patientID string) ([]models.Review, error)
	// ForAppointment returns the review on one appointment, if any.
	ForAppointment(appointmentID string) (*models.Review, error)
	// Testimonials returns the highest-rated recent reviews.
	Testimonials(limit int) ([]models.Review, error)
}

// DefaultReviewService is the production implementation.
type DefaultReviewService struct {
	Repo     reviewRepo.ReviewRepository
	Appts    appointmentRepo.AppointmentRepository
	Patients patientRepo.PatientRepository
	Logger   *zap.Logger
}

func (s *DefaultReviewService) Submit(req models.ReviewRequest) (*models.Review, error) {
	appt, err := s.Appts.GetByID(req.AppointmentID)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.PatientID != req.PatientID || appt.DoctorID != req.DoctorID {
		return nil, ErrNotEligible
	}
	if appt.Status != models.StatusBooked || appt.PaymentStatus != models.PaymentCompleted {
		return nil, ErrNotEligible
	}

	review := &models.Review{
		ID:            uuid.New().String(),
		DoctorID:      req.DoctorID,
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		Rating:        req.Rating,
		Review:        req.Review,
		CreatedAt:     time.Now(),
	}
	if patient, err := s.Patients.GetByID(req.PatientID); err == nil {
		review.PatientName = patient.Name
	}

	if err := s.Repo.Create(review); err != nil {
		if errors.Is(err, reviewRepo.ErrDuplicateReview) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	s.Logger.Info("review submitted",
		zap.String("doctorId", req.DoctorID), zap.Int("rating", req.Rating))
	return review, nil
}

func (s *DefaultReviewService) ForDoctor(doctorID string) ([]models.Review, error) {
	return s.Repo.FindByDoctor(doctorID)
}

func (s *DefaultReviewService) ForPatient(patientID string) ([]models.Review, error) {
	return s.Repo.FindByPatient(patientID)
}

func (s *DefaultReviewService) ForAppointment(appointmentID string) (*models.Review, error) {
	review, err := s.Repo.GetByAppointment(appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return review, nil
}

func (s *DefaultReviewService) Testimonials(limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = defaultTestimonialLimit
	}
	return s.Repo.Top(limit)
}
