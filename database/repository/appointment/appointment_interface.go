package appointmentRepo

import (
	"errors"
	"time"

	"curaconnect/models"
)

// ErrDuplicateSlot is returned by Create when the unique partial index on
// (doctorId, date, start, end) for booked appointments rejects the insert.
// It is the authoritative double-booking signal; the pre-insert existence
// check is only a fast path.
var ErrDuplicateSlot = errors.New("slot already has a booked appointment")

// ErrStaleAppointment is returned by UpdateIfPaymentPending when the stored
// document is no longer an unpaid booked hold, meaning a concurrent writer
// settled or released it between this caller's read and write.
var ErrStaleAppointment = errors.New("appointment state changed concurrently")

// ListFilter narrows List results; zero-value fields are ignored.
type ListFilter struct {
	DoctorID  string
	PatientID string
}

// AppointmentRepository defines methods for appointment data access.
type AppointmentRepository interface {
	// Create inserts a new appointment. Returns ErrDuplicateSlot when the
	// booked-slot uniqueness constraint rejects it.
	Create(appt *models.Appointment) error
	// GetByID retrieves an appointment by its unique ID.
	GetByID(id string) (*models.Appointment, error)
	// Update replaces an existing appointment record.
	Update(appt *models.Appointment) error
	// UpdateIfPaymentPending replaces the appointment only while the stored
	// document is still booked with payment pending. Returns
	// ErrStaleAppointment otherwise.
	UpdateIfPaymentPending(appt *models.Appointment) error
	// FindBookedSlot returns the booked appointment occupying the exact
	// (doctor, date, start, end) tuple, or (nil, nil) when the slot is free.
	FindBookedSlot(doctorID, date, start, end string) (*models.Appointment, error)
	// FindBookedByDoctor returns every appointment with status booked for
	// the doctor.
	FindBookedByDoctor(doctorID string) ([]models.Appointment, error)
	// FindAllBooked returns every booked appointment across doctors.
	FindAllBooked() ([]models.Appointment, error)
	// List returns appointments matching the filter, sorted by date then
	// start time.
	List(filter ListFilter) ([]models.Appointment, error)
	// FindExpiredHolds returns booked appointments whose payment is still
	// pending and that were created before the cutoff.
	FindExpiredHolds(cutoff time.Time) ([]models.Appointment, error)
}
