// Package patient handles account registration with email verification and
// password login for the people who book consultations.
package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	patientRepo "curaconnect/database/repository/patient"
	"curaconnect/models"
	"curaconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
)

const defaultRole = "patient"

// PatientService manages patient accounts.
type PatientService interface {
	// Register creates an unverified account and emails a verification code.
	Register(ctx context.Context, req models.PatientRegistration) (*models.Patient, error)
	// VerifyEmail consumes the code and marks the account verified.
	VerifyEmail(ctx context.Context, email, otp string) (*models.Patient, error)
	// ResendOTP issues a fresh verification code for an unverified account.
	ResendOTP(ctx context.Context, email string) error
	// Login checks the password on a verified account and returns a signed
	// token.
	Login(email, password string) (string, *models.Patient, error)
	// Get retrieves one patient.
	Get(id string) (*models.Patient, error)
}

// DefaultPatientService is the production implementation.
type DefaultPatientService struct {
	Repo   patientRepo.PatientRepository
	OTP    utils.OTPStore
	Mailer utils.Mailer
	Logger *zap.Logger
}

func (s *DefaultPatientService) Register(ctx context.Context, req models.PatientRegistration) (*models.Patient, error) {
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
	role := req.Role
	if role == "" {
		role = defaultRole
	}

	now := time.Now()
	patient := &models.Patient{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	otp, err := s.OTP.Issue(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.Mailer.SendOTP(req.Email, req.Name, otp, "registration"); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	s.Logger.Info("patient registered, verification pending",
		zap.String("patientId", patient.ID))
	return patient, nil
}

func (s *DefaultPatientService) VerifyEmail(ctx context.Context, email, otp string) (*models.Patient, error) {
	patient, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if patient.Verified {
		return nil, ErrAlreadyVerified
	}
	if err := s.OTP.Verify(ctx, email, otp); err != nil {
		return nil, err
	}

	patient.Verified = true
	patient.UpdatedAt = time.Now()
	if err := s.Repo.Update(patient); err != nil {
		return nil, fmt.Errorf("failed to mark patient verified: %w", err)
	}
	s.Logger.Info("patient email verified", zap.String("patientId", patient.ID))
	return patient, nil
}

func (s *DefaultPatientService) ResendOTP(ctx context.Context, email string) error {
	patient, err := s.Repo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to look up patient: %w", err)
	}
	if patient == nil {
		return ErrPatientNotFound
	}
	if patient.Verified {
		return ErrAlreadyVerified
	}

	otp, err := s.OTP.Issue(ctx, email)
	if err != nil {
		return err
	}
	return s.Mailer.SendOTP(email, patient.Name, otp, "registration")
}

func (s *DefaultPatientService) Login(email, password string) (string, *models.Patient, error) {
	patient, err := s.Repo.GetByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up patient: %w", err)
	}
	if patient == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(patient.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !patient.Verified {
		return "", nil, ErrNotVerified
	}

	token, err := utils.GenerateToken(patient.ID, patient.Email, patient.Role)
	if err != nil {
		return "", nil, err
	}
	return token, patient, nil
}

func (s *DefaultPatientService) Get(id string) (*models.Patient, error) {
	patient, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}
