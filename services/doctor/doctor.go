// Package doctor covers practitioner registration, OTP login and the
// availability views that merge the computed schedule with booked slots.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "curaconnect/database/repository/appointment"
	doctorRepo "curaconnect/database/repository/doctor"
	"curaconnect/models"
	"curaconnect/services/schedule"
	"curaconnect/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrEmailTaken     = errors.New("email already registered")
)

// DoctorService manages doctor accounts and availability.
type DoctorService interface {
	// Register creates a doctor account, applying schedule and fee defaults
	// for omitted fields.
	Register(req models.DoctorRegistration) (*models.Doctor, error)
	// RequestLoginOTP emails a one-time code to a registered doctor.
	RequestLoginOTP(ctx context.Context, email string) error
	// VerifyLoginOTP exchanges a valid code for a signed token.
	VerifyLoginOTP(ctx context.Context, email, otp string) (string, *models.Doctor, error)
	// ListWithSlots returns every doctor annotated with upcoming free slots
	// over targetDays working days.
	ListWithSlots(targetDays int) ([]models.DoctorWithSlots, error)
	// GetWithSlots returns one doctor annotated with upcoming free slots.
	GetWithSlots(id string, targetDays int) (*models.DoctorWithSlots, error)
	// UpdateSchedule replaces a doctor's working days and hours.
	UpdateSchedule(id string, days []int, hours *models.WorkingHours) (*models.Doctor, error)
	// SaveGoogleToken stores calendar credentials after the OAuth exchange.
	SaveGoogleToken(id string, token *models.GoogleToken) error
}

// DefaultDoctorService is the production implementation.
type DefaultDoctorService struct {
	Repo   doctorRepo.DoctorRepository
	Appts  appointmentRepo.AppointmentRepository
	OTP    utils.OTPStore
	Mailer utils.Mailer
	Logger *zap.Logger
}

func (s *DefaultDoctorService) Register(req models.DoctorRegistration) (*models.Doctor, error) {
	existing, err := s.Repo.GetByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	days := req.WorkingDays
	if len(days) == 0 {
		days = models.DefaultWorkingDays
	}
	hours := models.DefaultWorkingHours
	if req.WorkingHours != nil {
		hours = *req.WorkingHours
	}
	fee := req.ConsultationFee
	if fee == 0 {
		fee = models.DefaultConsultationFee
	}
	platform := req.MeetingPlatform
	if platform == "" {
		platform = models.DefaultMeetingPlatform
	}

	now := time.Now()
	doctor := &models.Doctor{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Email:           req.Email,
		PasswordHash:    string(hash),
		Speciality:      req.Speciality,
		Location:        req.Location,
		WorkingDays:     days,
		WorkingHours:    hours,
		Phone:           req.Phone,
		Bio:             req.Bio,
		ProfileImage:    req.ProfileImage,
		ConsultationFee: fee,
		MeetingPlatform: platform,
		GoogleMeetEmail: req.GoogleMeetEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	s.Logger.Info("doctor registered",
		zap.String("doctorId", doctor.ID), zap.String("speciality", doctor.Speciality))
	return doctor, nil
}

func (s *DefaultDoctorService) RequestLoginOTP(ctx context.Context, email string) error {
	doctor, err := s.Repo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to look up doctor: %w", err)
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	otp, err := s.OTP.Issue(ctx, email)
	if err != nil {
		return err
	}
	if err := s.Mailer.SendOTP(email, doctor.Name, otp, "login"); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}
	s.Logger.Info("login OTP sent", zap.String("doctorId", doctor.ID))
	return nil
}

func (s *DefaultDoctorService) VerifyLoginOTP(ctx context.Context, email, otp string) (string, *models.Doctor, error) {
	doctor, err := s.Repo.GetByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up doctor: %w", err)
	}
	if doctor == nil {
		return "", nil, ErrDoctorNotFound
	}
	if err := s.OTP.Verify(ctx, email, otp); err != nil {
		return "", nil, err
	}

	token, err := utils.GenerateToken(doctor.ID, doctor.Email, "doctor")
	if err != nil {
		return "", nil, err
	}
	return token, doctor, nil
}

// effectiveSchedule resolves a doctor's availability template at read time.
// Documents stored without one (seeded or legacy data) fall back to the
// defaults rather than yielding an empty schedule.
func effectiveSchedule(d *models.Doctor) ([]int, models.WorkingHours) {
	days := d.WorkingDays
	if len(days) == 0 {
		days = models.DefaultWorkingDays
	}
	hours := d.WorkingHours
	if hours.Start == "" || hours.End == "" {
		hours = models.DefaultWorkingHours
	}
	return days, hours
}

func (s *DefaultDoctorService) ListWithSlots(targetDays int) ([]models.DoctorWithSlots, error) {
	doctors, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	booked, err := s.Appts.FindAllBooked()
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}

	now := time.Now()
	out := make([]models.DoctorWithSlots, 0, len(doctors))
	for _, d := range doctors {
		days, hours := effectiveSchedule(&d)
		slots := schedule.NextSlots(days, hours, targetDays, now)
		out = append(out, models.DoctorWithSlots{
			Doctor:             d,
			NextAvailableSlots: schedule.Annotate(d.ID, slots, booked),
		})
	}
	return out, nil
}

func (s *DefaultDoctorService) GetWithSlots(id string, targetDays int) (*models.DoctorWithSlots, error) {
	doctor, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	booked, err := s.Appts.FindBookedByDoctor(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}

	now := time.Now()
	days, hours := effectiveSchedule(doctor)
	slots := schedule.NextSlots(days, hours, targetDays, now)
	return &models.DoctorWithSlots{
		Doctor:             *doctor,
		NextAvailableSlots: schedule.Annotate(doctor.ID, slots, booked),
	}, nil
}

func (s *DefaultDoctorService) UpdateSchedule(id string, days []int, hours *models.WorkingHours) (*models.Doctor, error) {
	doctor, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	if days != nil {
		doctor.WorkingDays = days
	}
	if hours != nil {
		doctor.WorkingHours = *hours
	}
	doctor.UpdatedAt = time.Now()
	if err := s.Repo.Update(doctor); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	return doctor, nil
}

func (s *DefaultDoctorService) SaveGoogleToken(id string, token *models.GoogleToken) error {
	if _, err := s.Repo.GetByID(id); err != nil {
		return ErrDoctorNotFound
	}
	return s.Repo.UpdateFields(id, bson.M{"googleToken": token, "updatedAt": time.Now()})
}
