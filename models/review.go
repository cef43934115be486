package models

import "time"

// Review is a patient's rating of a completed, paid consultation. At most one
// review exists per (appointment, patient); the repository enforces this with
// a unique compound index.
type Review struct {
	ID            string    `bson:"id" json:"id"`
	DoctorID      string    `bson:"doctorId" json:"doctorId"`
	PatientID     string    `bson:"patientId" json:"patientId"`
	AppointmentID string    `bson:"appointmentId" json:"appointmentId"`
	Rating        int       `bson:"rating" json:"rating"` // 1..5
	Review        string    `bson:"review,omitempty" json:"review,omitempty"`
	PatientName   string    `bson:"patientName,omitempty" json:"patientName,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// ReviewRequest is the payload for submitting a review.
type ReviewRequest struct {
	DoctorID      string `json:"doctorId" binding:"required"`
	PatientID     string `json:"patientId" binding:"required"`
	AppointmentID string `json:"appointmentId" binding:"required"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	Review        string `json:"review"`
}
