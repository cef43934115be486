package doctorRepo

import (
	"curaconnect/models"

	"go.mongodb.org/mongo-driver/bson"
)

// DoctorRepository defines methods for doctor data access.
type DoctorRepository interface {
	// Create inserts a new doctor record.
	Create(doctor *models.Doctor) error
	// GetByID retrieves a doctor by its unique ID.
	GetByID(id string) (*models.Doctor, error)
	// GetByEmail retrieves a doctor by email; (nil, nil) when absent.
	GetByEmail(email string) (*models.Doctor, error)
	// GetAll retrieves all doctors.
	GetAll() ([]models.Doctor, error)
	// Update replaces mutable fields of an existing doctor record.
	Update(doctor *models.Doctor) error
	// UpdateFields applies a partial update to the doctor document.
	UpdateFields(id string, fields bson.M) error
	// Delete removes a doctor record by its ID.
	Delete(id string) error
}
