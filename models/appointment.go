package models

import (
	"errors"
	"fmt"
	"time"
)

// AppointmentStatus tracks the booking lifecycle of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
)

// PaymentStatus tracks the payment lifecycle, independent of booking status
// except where a combination is forbidden (see Transition methods).
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// ConsultationType distinguishes remote from in-person visits; only online
// consultations get a meeting link.
type ConsultationType string

const (
	ConsultationOnline   ConsultationType = "online"
	ConsultationInPerson ConsultationType = "in-person"
)

// ErrInvalidTransition is returned when a status change is not permitted by
// the transition tables below.
var ErrInvalidTransition = errors.New("invalid status transition")

var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending: {StatusBooked, StatusCancelled},
	StatusBooked:  {StatusCancelled},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentCompleted, PaymentFailed},
}

// Appointment is a half-hour consultation reserved by a patient with a
// doctor. Date, Start and End use the same wall-clock string formats as Slot.
type Appointment struct {
	ID        string `bson:"id" json:"id"`
	DoctorID  string `bson:"doctorId" json:"doctorId"`
	PatientID string `bson:"patientId" json:"patientId"`
	Date      string `bson:"date" json:"date"`   // "2006-01-02"
	Start     string `bson:"start" json:"start"` // "15:04"
	End       string `bson:"end" json:"end"`

	Status           AppointmentStatus `bson:"status" json:"status"`
	ConsultationType ConsultationType  `bson:"consultationType" json:"consultationType"`
	MeetingLink      string            `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	MeetingPlatform  string            `bson:"meetingPlatform" json:"meetingPlatform"`

	Amount          float64       `bson:"amount" json:"amount"`
	PaymentStatus   PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentIntentID string        `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	PaymentDate     *time.Time    `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TransitionStatus moves the appointment to the given booking status,
// enforcing the transition table. Cancelling a paid appointment is refused:
// a completed payment pins the booking until refunds exist.
func (a *Appointment) TransitionStatus(next AppointmentStatus) error {
	if next == StatusCancelled && a.PaymentStatus == PaymentCompleted {
		return fmt.Errorf("cannot cancel a paid appointment: %w", ErrInvalidTransition)
	}
	for _, allowed := range statusTransitions[a.Status] {
		if allowed == next {
			a.Status = next
			return nil
		}
	}
	return fmt.Errorf("%s -> %s: %w", a.Status, next, ErrInvalidTransition)
}

// TransitionPayment moves the appointment to the given payment status.
// Completing payment on a cancelled appointment is refused.
func (a *Appointment) TransitionPayment(next PaymentStatus) error {
	if next == PaymentCompleted && a.Status == StatusCancelled {
		return fmt.Errorf("cannot complete payment on a cancelled appointment: %w", ErrInvalidTransition)
	}
	for _, allowed := range paymentTransitions[a.PaymentStatus] {
		if allowed == next {
			a.PaymentStatus = next
			return nil
		}
	}
	return fmt.Errorf("payment %s -> %s: %w", a.PaymentStatus, next, ErrInvalidTransition)
}

// BookingRequest is the payload for creating an appointment.
type BookingRequest struct {
	DoctorID         string           `json:"doctorId" binding:"required"`
	PatientID        string           `json:"patientId" binding:"required"`
	Date             string           `json:"date" binding:"required"`
	Start            string           `json:"start" binding:"required"`
	End              string           `json:"end" binding:"required"`
	ConsultationType ConsultationType `json:"consultationType"`
}
