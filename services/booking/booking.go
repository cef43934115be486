// Package booking creates appointments, guards slots against double-booking
// and drives the payment lifecycle.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "curaconnect/database/repository/appointment"
	doctorRepo "curaconnect/database/repository/doctor"
	"curaconnect/models"
	"curaconnect/services/calendar"
	"curaconnect/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HoldScheduler schedules the deferred expiry check for an unpaid hold.
type HoldScheduler interface {
	ScheduleExpiry(appointmentID string, delay time.Duration) error
}

// BookingService is the appointment-facing API surface.
type BookingService interface {
	// Book reserves the slot and registers a payment for it. The returned
	// appointment holds the slot with payment pending until the client
	// completes checkout or the hold expires.
	Book(req models.BookingRequest) (*models.Appointment, *models.PaymentDetails, error)
	// Get retrieves one appointment.
	Get(id string) (*models.Appointment, error)
	// List returns appointments for a doctor and/or patient, ordered by
	// date then start.
	List(filter appointmentRepo.ListFilter) ([]models.Appointment, error)
	// CompletePayment verifies the provider-side payment outcome, marks the
	// appointment paid and, for online consultations, attaches a meeting
	// link when the doctor has connected a calendar account.
	CompletePayment(appointmentID string) (*models.Appointment, error)
	// UpdateMeetingLink sets the meeting link and platform directly.
	UpdateMeetingLink(id, link, platform string) (*models.Appointment, error)
	// PaymentStatus reports the provider-side state of a payment intent.
	PaymentStatus(intentID string) (*models.PaymentStatusInfo, error)
	// ExpireHold releases the slot if the appointment is still unpaid.
	ExpireHold(appointmentID string) error
	// SweepExpiredHolds releases every unpaid hold older than the hold
	// window. It backstops ExpireHold for queued tasks that were lost.
	SweepExpiredHolds() (int, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo       appointmentRepo.AppointmentRepository
	DoctorRepo doctorRepo.DoctorRepository
	Payments   payment.Provider
	Calendar   calendar.MeetingScheduler
	Locker     SlotLocker
	Holds      HoldScheduler
	HoldTTL    time.Duration
	Logger     *zap.Logger
}

func (s *DefaultBookingService) Book(req models.BookingRequest) (*models.Appointment, *models.PaymentDetails, error) {
	doctor, err := s.DoctorRepo.GetByID(req.DoctorID)
	if err != nil {
		return nil, nil, ErrDoctorNotFound
	}

	consultation := req.ConsultationType
	if consultation == "" {
		consultation = models.ConsultationOnline
	}
	platform := doctor.MeetingPlatform
	if platform == "" {
		platform = models.DefaultMeetingPlatform
	}

	now := time.Now()
	appt := &models.Appointment{
		ID:               uuid.New().String(),
		DoctorID:         req.DoctorID,
		PatientID:        req.PatientID,
		Date:             req.Date,
		Start:            req.Start,
		End:              req.End,
		Status:           models.StatusPending,
		ConsultationType: consultation,
		MeetingPlatform:  platform,
		Amount:           doctor.ConsultationFee,
		PaymentStatus:    models.PaymentPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := appt.TransitionStatus(models.StatusBooked); err != nil {
		return nil, nil, fmt.Errorf("failed to mark appointment booked: %w", err)
	}

	// The pre-insert existence check is a fast path; the unique partial
	// index behind Create is what actually closes the race. The slot lock
	// keeps simultaneous requests from both reaching the insert.
	err = s.Locker.WithSlotLock(context.Background(), req.DoctorID, req.Date, req.Start, func(ctx context.Context) error {
		existing, err := s.Repo.FindBookedSlot(req.DoctorID, req.Date, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if existing != nil {
			return ErrSlotAlreadyBooked
		}
		if err := s.Repo.Create(appt); err != nil {
			if errors.Is(err, appointmentRepo.ErrDuplicateSlot) {
				return ErrSlotAlreadyBooked
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) {
			return nil, nil, ErrSlotBeingBooked
		}
		return nil, nil, err
	}

	if err := s.Holds.ScheduleExpiry(appt.ID, s.HoldTTL); err != nil {
		s.Logger.Error("failed to schedule hold expiry",
			zap.String("appointmentId", appt.ID), zap.Error(err))
	}

	details, err := s.Payments.CreateIntent(
		doctor.ConsultationFee,
		fmt.Sprintf("Consultation with Dr. %s", doctor.Name),
		appt.ID,
	)
	if err != nil {
		// The hold stays; the expiry worker releases it if the client
		// never retries checkout.
		return nil, nil, fmt.Errorf("appointment %s created but payment setup failed: %w", appt.ID, err)
	}

	appt.PaymentIntentID = details.IntentID
	if err := s.Repo.Update(appt); err != nil {
		return nil, nil, fmt.Errorf("failed to record payment intent: %w", err)
	}

	s.Logger.Info("appointment booked, payment pending",
		zap.String("appointmentId", appt.ID),
		zap.String("doctorId", req.DoctorID),
		zap.String("slot", req.Date+" "+req.Start))
	return appt, details, nil
}

func (s *DefaultBookingService) Get(id string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func (s *DefaultBookingService) List(filter appointmentRepo.ListFilter) ([]models.Appointment, error) {
	return s.Repo.List(filter)
}

func (s *DefaultBookingService) CompletePayment(appointmentID string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(appointmentID)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.PaymentIntentID == "" {
		return nil, fmt.Errorf("appointment %s has no payment intent", appointmentID)
	}

	status, err := s.Payments.GetStatus(appt.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if !payment.Succeeded(status.State) {
		return nil, fmt.Errorf("payment %s not completed, state %s", appt.PaymentIntentID, status.State)
	}

	if err := appt.TransitionPayment(models.PaymentCompleted); err != nil {
		return nil, err
	}
	paidAt := time.Now()
	appt.PaymentDate = &paidAt

	if appt.ConsultationType == models.ConsultationOnline {
		s.attachMeetingLink(appt)
	}

	// Conditional write: the expiry worker may have released the hold after
	// our read, and settling the payment must not resurrect a cancelled
	// appointment or overwrite a rebooked slot.
	if err := s.Repo.UpdateIfPaymentPending(appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrStaleAppointment) {
			s.Logger.Warn("payment settled after hold was released",
				zap.String("appointmentId", appt.ID))
			return nil, ErrHoldExpired
		}
		return nil, err
	}
	s.Logger.Info("payment completed", zap.String("appointmentId", appt.ID))
	return appt, nil
}

// attachMeetingLink creates a Meet event when the doctor has connected a
// Google account. Failure is logged, not surfaced: the payment stands either
// way and the doctor can set a link manually.
func (s *DefaultBookingService) attachMeetingLink(appt *models.Appointment) {
	doctor, err := s.DoctorRepo.GetByID(appt.DoctorID)
	if err != nil || doctor.GoogleToken == nil {
		return
	}
	link, err := s.Calendar.CreateMeetEvent(context.Background(), doctor.GoogleToken, appt)
	if err != nil {
		s.Logger.Warn("failed to create meeting event",
			zap.String("appointmentId", appt.ID), zap.Error(err))
		return
	}
	appt.MeetingLink = link
	appt.MeetingPlatform = models.DefaultMeetingPlatform
}

func (s *DefaultBookingService) UpdateMeetingLink(id, link, platform string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	appt.MeetingLink = link
	if platform != "" {
		appt.MeetingPlatform = platform
	}
	if err := s.Repo.Update(appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *DefaultBookingService) PaymentStatus(intentID string) (*models.PaymentStatusInfo, error) {
	return s.Payments.GetStatus(intentID)
}

func (s *DefaultBookingService) ExpireHold(appointmentID string) error {
	appt, err := s.Repo.GetByID(appointmentID)
	if err != nil {
		return ErrAppointmentNotFound
	}
	if appt.Status != models.StatusBooked || appt.PaymentStatus != models.PaymentPending {
		return nil // paid or already released
	}

	if err := appt.TransitionPayment(models.PaymentFailed); err != nil {
		return err
	}
	if err := appt.TransitionStatus(models.StatusCancelled); err != nil {
		return err
	}
	if err := s.Repo.UpdateIfPaymentPending(appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrStaleAppointment) {
			// The payment landed between our read and write; the hold stands.
			return nil
		}
		return err
	}
	s.Logger.Info("unpaid hold released",
		zap.String("appointmentId", appt.ID),
		zap.String("slot", appt.Date+" "+appt.Start))
	return nil
}

func (s *DefaultBookingService) SweepExpiredHolds() (int, error) {
	stale, err := s.Repo.FindExpiredHolds(time.Now().Add(-s.HoldTTL))
	if err != nil {
		return 0, err
	}
	released := 0
	for _, appt := range stale {
		if err := s.ExpireHold(appt.ID); err != nil {
			s.Logger.Error("failed to release stale hold",
				zap.String("appointmentId", appt.ID), zap.Error(err))
			continue
		}
		released++
	}
	return released, nil
}
