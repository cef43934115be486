package models

import "time"

// GoogleToken holds the OAuth credentials a doctor grants for calendar access.
type GoogleToken struct {
	AccessToken  string    `bson:"accessToken" json:"-"`
	RefreshToken string    `bson:"refreshToken" json:"-"`
	TokenType    string    `bson:"tokenType" json:"-"`
	Expiry       time.Time `bson:"expiry" json:"-"`
}

// Doctor represents a registered practitioner.
type Doctor struct {
	ID           string       `bson:"id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Email        string       `bson:"email" json:"email"`
	PasswordHash string       `bson:"passwordHash" json:"-"`
	Speciality   string       `bson:"speciality" json:"speciality"`
	Location     string       `bson:"location" json:"location"`
	WorkingDays  []int        `bson:"workingDays" json:"workingDays"` // 0=Sunday .. 6=Saturday
	WorkingHours WorkingHours `bson:"workingHours" json:"workingHours"`
	Phone        string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio          string       `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage string       `bson:"profileImage,omitempty" json:"profileImage,omitempty"`

	ConsultationFee float64      `bson:"consultationFee" json:"consultationFee"`
	MeetingPlatform string       `bson:"meetingPlatform" json:"meetingPlatform"`
	GoogleMeetEmail string       `bson:"googleMeetEmail,omitempty" json:"googleMeetEmail,omitempty"`
	GoogleToken     *GoogleToken `bson:"googleToken,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultConsultationFee applies when registration omits a fee.
const DefaultConsultationFee = 500

// DefaultMeetingPlatform is the only conferencing platform currently wired.
const DefaultMeetingPlatform = "google-meet"

// DoctorWithSlots is the caller-facing doctor shape: the stored record plus
// the computed availability window list.
type DoctorWithSlots struct {
	Doctor
	NextAvailableSlots []Slot `json:"nextAvailableSlots"`
}

// DoctorRegistration is the payload for registering a new doctor.
type DoctorRegistration struct {
	Name            string        `json:"name" binding:"required"`
	Email           string        `json:"email" binding:"required,email"`
	Password        string        `json:"password" binding:"required,min=6"`
	Speciality      string        `json:"speciality" binding:"required"`
	Location        string        `json:"location" binding:"required"`
	WorkingDays     []int         `json:"workingDays" binding:"required"`
	WorkingHours    *WorkingHours `json:"workingHours" binding:"required"`
	Phone           string        `json:"phone"`
	Bio             string        `json:"bio"`
	ProfileImage    string        `json:"profileImage"`
	ConsultationFee float64       `json:"consultationFee"`
	MeetingPlatform string        `json:"meetingPlatform"`
	GoogleMeetEmail string        `json:"googleMeetEmail"`
}
