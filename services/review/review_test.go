package review

import (
	"errors"
	"testing"
	"time"

	appointmentRepo "curaconnect/database/repository/appointment"
	reviewRepo "curaconnect/database/repository/review"
	"curaconnect/models"

	"go.uber.org/zap"
)

type memReviewRepo struct {
	reviews []models.Review
}

func (r *memReviewRepo) Create(review *models.Review) error {
	for _, existing := range r.reviews {
		if existing.AppointmentID == review.AppointmentID && existing.PatientID == review.PatientID {
			return reviewRepo.ErrDuplicateReview
		}
	}
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *memReviewRepo) GetByAppointment(appointmentID string) (*models.Review, error) {
	for _, rev := range r.reviews {
		if rev.AppointmentID == appointmentID {
			cp := rev
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memReviewRepo) FindByDoctor(doctorID string) ([]models.Review, error) {
	var out []models.Review
	for _, rev := range r.reviews {
		if rev.DoctorID == doctorID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (r *memReviewRepo) FindByPatient(patientID string) ([]models.Review, error) {
	var out []models.Review
	for _, rev := range r.reviews {
		if rev.PatientID == patientID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (r *memReviewRepo) Top(limit int) ([]models.Review, error) {
	if limit > len(r.reviews) {
		limit = len(r.reviews)
	}
	return r.reviews[:limit], nil
}

type memApptRepo struct {
	appts map[string]*models.Appointment
}

func (r *memApptRepo) Create(a *models.Appointment) error { r.appts[a.ID] = a; return nil }
func (r *memApptRepo) GetByID(id string) (*models.Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}
func (r *memApptRepo) Update(a *models.Appointment) error                 { return nil }
func (r *memApptRepo) UpdateIfPaymentPending(a *models.Appointment) error { return nil }
func (r *memApptRepo) FindBookedSlot(doctorID, date, start, end string) (*models.Appointment, error) {
	return nil, nil
}
func (r *memApptRepo) FindBookedByDoctor(doctorID string) ([]models.Appointment, error) {
	return nil, nil
}
func (r *memApptRepo) FindAllBooked() ([]models.Appointment, error) { return nil, nil }
func (r *memApptRepo) List(filter appointmentRepo.ListFilter) ([]models.Appointment, error) {
	return nil, nil
}
func (r *memApptRepo) FindExpiredHolds(cutoff time.Time) ([]models.Appointment, error) {
	return nil, nil
}

type memPatientRepo struct {
	patients map[string]*models.Patient
}

func (r *memPatientRepo) Create(p *models.Patient) error { r.patients[p.ID] = p; return nil }
func (r *memPatientRepo) GetByID(id string) (*models.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}
func (r *memPatientRepo) GetByEmail(email string) (*models.Patient, error) { return nil, nil }
func (r *memPatientRepo) Update(p *models.Patient) error                   { return nil }
func (r *memPatientRepo) Delete(id string) error                           { return nil }

func newTestService() (*DefaultReviewService, *memApptRepo) {
	appts := &memApptRepo{appts: make(map[string]*models.Appointment)}
	svc := &DefaultReviewService{
		Repo:  &memReviewRepo{},
		Appts: appts,
		Patients: &memPatientRepo{patients: map[string]*models.Patient{
			"pat-1": {ID: "pat-1", Name: "Ravi Kumar"},
		}},
		Logger: zap.NewNop(),
	}
	return svc, appts
}

func paidAppointment() *models.Appointment {
	return &models.Appointment{
		ID:            "appt-1",
		DoctorID:      "doc-1",
		PatientID:     "pat-1",
		Status:        models.StatusBooked,
		PaymentStatus: models.PaymentCompleted,
	}
}

func request() models.ReviewRequest {
	return models.ReviewRequest{
		DoctorID:      "doc-1",
		PatientID:     "pat-1",
		AppointmentID: "appt-1",
		Rating:        5,
		Review:        "Very thorough consultation.",
	}
}

func TestSubmitPaidAppointment(t *testing.T) {
	svc, appts := newTestService()
	appts.Create(paidAppointment())

	review, err := svc.Submit(request())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if review.Rating != 5 || review.PatientName != "Ravi Kumar" {
		t.Errorf("review = %+v", review)
	}

	listed, err := svc.ForDoctor("doc-1")
	if err != nil || len(listed) != 1 {
		t.Errorf("ForDoctor = %v, err %v", listed, err)
	}
}

func TestSubmitRejectsUnpaidAppointment(t *testing.T) {
	svc, appts := newTestService()
	appt := paidAppointment()
	appt.PaymentStatus = models.PaymentPending
	appts.Create(appt)

	if _, err := svc.Submit(request()); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}
}

func TestSubmitRejectsCancelledAppointment(t *testing.T) {
	svc, appts := newTestService()
	appt := paidAppointment()
	appt.Status = models.StatusCancelled
	appts.Create(appt)

	if _, err := svc.Submit(request()); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}
}

func TestSubmitRejectsForeignAppointment(t *testing.T) {
	svc, appts := newTestService()
	appt := paidAppointment()
	appt.PatientID = "someone-else"
	appts.Create(appt)

	if _, err := svc.Submit(request()); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	svc, appts := newTestService()
	appts.Create(paidAppointment())

	if _, err := svc.Submit(request()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := svc.Submit(request()); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("second Submit err = %v, want ErrAlreadyReviewed", err)
	}
}

func TestForAppointment(t *testing.T) {
	svc, appts := newTestService()
	appts.Create(paidAppointment())

	if _, err := svc.Submit(request()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	found, err := svc.ForAppointment("appt-1")
	if err != nil {
		t.Fatalf("ForAppointment: %v", err)
	}
	if found == nil || found.Rating != 5 || found.AppointmentID != "appt-1" {
		t.Errorf("review = %+v", found)
	}

	none, err := svc.ForAppointment("appt-unreviewed")
	if err != nil {
		t.Fatalf("ForAppointment: %v", err)
	}
	if none != nil {
		t.Errorf("got %+v for unreviewed appointment, want nil", none)
	}
}

func TestSubmitUnknownAppointment(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Submit(request()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("err = %v, want ErrAppointmentNotFound", err)
	}
}
