package reviewRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"curaconnect/database"
	"curaconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateReview is returned when a patient already reviewed the
// appointment; the unique compound index enforces one review per
// (appointment, patient).
var ErrDuplicateReview = errors.New("appointment already reviewed by this patient")

// ReviewRepository defines methods for review data access.
type ReviewRepository interface {
	Create(review *models.Review) error
	// GetByAppointment returns the review for an appointment; (nil, nil)
	// when none exists.
	GetByAppointment(appointmentID string) (*models.Review, error)
	FindByDoctor(doctorID string) ([]models.Review, error)
	FindByPatient(patientID string) ([]models.Review, error)
	// Top returns the highest-rated, most recent reviews.
	Top(limit int) ([]models.Review, error)
}

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	coll *mongo.Collection
}

// NewMongoReviewRepo creates a new instance of ReviewRepository using MongoDB.
func NewMongoReviewRepo() ReviewRepository {
	coll := database.DB().Collection("reviews")
	repo := &MongoReviewRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create review indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "appointmentId", Value: 1}, {Key: "patientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) Create(review *models.Review) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) GetByAppointment(appointmentID string) (*models.Review, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var review models.Review
	if err := r.coll.FindOne(ctx, bson.M{"appointmentId": appointmentID}).Decode(&review); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch review for appointment %s: %w", appointmentID, err)
	}
	return &review, nil
}

func (r *MongoReviewRepo) FindByDoctor(doctorID string) ([]models.Review, error) {
	sort := bson.D{{Key: "createdAt", Value: -1}}
	return r.find(bson.M{"doctorId": doctorID}, options.Find().SetSort(sort))
}

func (r *MongoReviewRepo) FindByPatient(patientID string) ([]models.Review, error) {
	sort := bson.D{{Key: "createdAt", Value: -1}}
	return r.find(bson.M{"patientId": patientID}, options.Find().SetSort(sort))
}

func (r *MongoReviewRepo) Top(limit int) ([]models.Review, error) {
	sort := bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}
	return r.find(bson.M{}, options.Find().SetSort(sort).SetLimit(int64(limit)))
}

func (r *MongoReviewRepo) find(query bson.M, opts *options.FindOptions) ([]models.Review, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
