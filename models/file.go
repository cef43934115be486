package models

import "time"

// AppointmentFile records a document exchanged between patient and doctor for
// a given appointment. The bytes live in object storage; this is metadata.
type AppointmentFile struct {
	ID            string    `bson:"id" json:"id"`
	AppointmentID string    `bson:"appointmentId" json:"appointmentId"`
	PatientID     string    `bson:"patientId" json:"patientId"`
	DoctorID      string    `bson:"doctorId" json:"doctorId"`
	PublicID      string    `bson:"publicId" json:"-"` // storage handle
	OriginalName  string    `bson:"originalName" json:"originalName"`
	ContentType   string    `bson:"contentType" json:"contentType"`
	Size          int64     `bson:"size" json:"size"`
	URL           string    `bson:"url" json:"downloadUrl"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	UploadedBy    string    `bson:"uploadedBy" json:"uploadedBy"` // "patient" or "doctor"
	CreatedAt     time.Time `bson:"createdAt" json:"uploadedAt"`
}
