package appointmentRepo

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

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo creates a new instance of AppointmentRepository using MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	coll := database.DB().Collection("appointments")
	repo := &MongoAppointmentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create appointment indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates the query indexes plus the uniqueness constraint that
// closes the check-then-act booking race: at most one appointment with
// status "booked" may occupy a (doctorId, date, start, end) tuple.
func (r *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{
				{Key: "doctorId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start", Value: 1},
				{Key: "end", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(models.StatusBooked)}),
		},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "paymentStatus", Value: 1}, {Key: "createdAt", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoAppointmentRepo) Create(appt *models.Appointment) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

func (r *MongoAppointmentRepo) GetByID(id string) (*models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		return nil, fmt.Errorf("failed to fetch appointment with id %s: %w", id, err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) Update(appt *models.Appointment) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	appt.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": appt.ID}, appt)
	if err != nil {
		return fmt.Errorf("failed to update appointment %s: %w", appt.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s not found", appt.ID)
	}
	return nil
}

// UpdateIfPaymentPending guards the hold boundary: payment completion and
// hold expiry both read-modify-write the same document, and the filter makes
// the loser's write a no-op instead of resurrecting the other outcome.
func (r *MongoAppointmentRepo) UpdateIfPaymentPending(appt *models.Appointment) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	appt.UpdatedAt = time.Now()
	filter := bson.M{
		"id":            appt.ID,
		"status":        models.StatusBooked,
		"paymentStatus": models.PaymentPending,
	}
	res, err := r.coll.ReplaceOne(ctx, filter, appt)
	if err != nil {
		return fmt.Errorf("failed to update appointment %s: %w", appt.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleAppointment
	}
	return nil
}

func (r *MongoAppointmentRepo) FindBookedSlot(doctorID, date, start, end string) (*models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"doctorId": doctorID,
		"date":     date,
		"start":    start,
		"end":      end,
		"status":   models.StatusBooked,
	}
	var appt models.Appointment
	if err := r.coll.FindOne(ctx, filter).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query booked slot: %w", err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) FindBookedByDoctor(doctorID string) ([]models.Appointment, error) {
	return r.find(bson.M{"doctorId": doctorID, "status": models.StatusBooked}, nil)
}

func (r *MongoAppointmentRepo) FindAllBooked() ([]models.Appointment, error) {
	return r.find(bson.M{"status": models.StatusBooked}, nil)
}

func (r *MongoAppointmentRepo) List(filter ListFilter) ([]models.Appointment, error) {
	query := bson.M{}
	if filter.DoctorID != "" {
		query["doctorId"] = filter.DoctorID
	}
	if filter.PatientID != "" {
		query["patientId"] = filter.PatientID
	}
	sort := bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}}
	return r.find(query, options.Find().SetSort(sort))
}

func (r *MongoAppointmentRepo) FindExpiredHolds(cutoff time.Time) ([]models.Appointment, error) {
	return r.find(bson.M{
		"status":        models.StatusBooked,
		"paymentStatus": models.PaymentPending,
		"createdAt":     bson.M{"$lt": cutoff},
	}, nil)
}

func (r *MongoAppointmentRepo) find(query bson.M, opts *options.FindOptions) ([]models.Appointment, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.coll.Find(ctx, query, opts)
	} else {
		cursor, err = r.coll.Find(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}
