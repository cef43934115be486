package booking

import "errors"

var (
	// ErrSlotAlreadyBooked signals that the requested slot is occupied by a
	// booked appointment; the request is rejected, nothing is persisted and
	// no retry is attempted.
	ErrSlotAlreadyBooked = errors.New("slot already booked")

	// ErrSlotBeingBooked signals that another request holds the slot lock;
	// the caller should retry.
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")

	// ErrDoctorNotFound signals an unknown doctor id.
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrAppointmentNotFound signals an unknown appointment id.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrHoldExpired signals that the unpaid hold was released before the
	// payment confirmation landed; the slot may already belong to someone
	// else and the payment needs a refund or a fresh booking.
	ErrHoldExpired = errors.New("appointment hold expired before payment completed")
)
