package fileRepo

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

// FileRepository defines methods for appointment file metadata access.
type FileRepository interface {
	Create(file *models.AppointmentFile) error
	GetByID(id string) (*models.AppointmentFile, error)
	// FindByAppointment lists files for an appointment, newest first.
	FindByAppointment(appointmentID string) ([]models.AppointmentFile, error)
	Delete(id string) error
}

// MongoFileRepo implements FileRepository using MongoDB.
type MongoFileRepo struct {
	coll *mongo.Collection
}

// NewMongoFileRepo creates a new instance of FileRepository using MongoDB.
func NewMongoFileRepo() FileRepository {
	coll := database.DB().Collection("appointment_files")
	repo := &MongoFileRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create file indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoFileRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "appointmentId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoFileRepo) Create(file *models.AppointmentFile) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, file); err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}
	return nil
}

func (r *MongoFileRepo) GetByID(id string) (*models.AppointmentFile, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var f models.AppointmentFile
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to fetch file %s: %w", id, err)
	}
	return &f, nil
}

func (r *MongoFileRepo) FindByAppointment(appointmentID string) ([]models.AppointmentFile, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"appointmentId": appointmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer cursor.Close(ctx)

	var files []models.AppointmentFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}
	return files, nil
}

func (r *MongoFileRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("file %s not found", id)
	}
	return nil
}
