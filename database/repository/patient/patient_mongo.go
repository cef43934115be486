package patientRepo

import (
	"context"
	"fmt"
	"time"

	"curaconnect/database"
	"curaconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PatientRepository defines methods for patient data access.
type PatientRepository interface {
	Create(patient *models.Patient) error
	GetByID(id string) (*models.Patient, error)
	// GetByEmail retrieves a patient by email; (nil, nil) when absent.
	GetByEmail(email string) (*models.Patient, error)
	Update(patient *models.Patient) error
	Delete(id string) error
}

// MongoPatientRepo implements PatientRepository using MongoDB.
type MongoPatientRepo struct {
	coll *mongo.Collection
}

// NewMongoPatientRepo creates a new instance of PatientRepository using MongoDB.
func NewMongoPatientRepo() PatientRepository {
	coll := database.DB().Collection("patients")
	repo := &MongoPatientRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create patient indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPatientRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPatientRepo) Create(patient *models.Patient) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, patient); err != nil {
		return fmt.Errorf("failed to insert patient: %w", err)
	}
	return nil
}

func (r *MongoPatientRepo) GetByID(id string) (*models.Patient, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to fetch patient with id %s: %w", id, err)
	}
	return &p, nil
}

func (r *MongoPatientRepo) GetByEmail(email string) (*models.Patient, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch patient with email %s: %w", email, err)
	}
	return &p, nil
}

func (r *MongoPatientRepo) Update(patient *models.Patient) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	patient.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": patient.ID}, patient)
	if err != nil {
		return fmt.Errorf("failed to update patient %s: %w", patient.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("patient %s not found", patient.ID)
	}
	return nil
}

func (r *MongoPatientRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete patient %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("patient %s not found", id)
	}
	return nil
}
