package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	appointmentRepo "curaconnect/database/repository/appointment"
	"curaconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type memAppointmentRepo struct {
	byID map[string]*models.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{byID: make(map[string]*models.Appointment)}
}

func slotKey(a *models.Appointment) string {
	return fmt.Sprintf("%s|%s|%s|%s", a.DoctorID, a.Date, a.Start, a.End)
}

func (r *memAppointmentRepo) Create(appt *models.Appointment) error {
	if appt.Status == models.StatusBooked {
		for _, existing := range r.byID {
			if existing.Status == models.StatusBooked && slotKey(existing) == slotKey(appt) {
				return appointmentRepo.ErrDuplicateSlot
			}
		}
	}
	cp := *appt
	r.byID[appt.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) GetByID(id string) (*models.Appointment, error) {
	appt, ok := r.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *appt
	return &cp, nil
}

func (r *memAppointmentRepo) Update(appt *models.Appointment) error {
	if _, ok := r.byID[appt.ID]; !ok {
		return errors.New("not found")
	}
	cp := *appt
	r.byID[appt.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) UpdateIfPaymentPending(appt *models.Appointment) error {
	stored, ok := r.byID[appt.ID]
	if !ok {
		return errors.New("not found")
	}
	if stored.Status != models.StatusBooked || stored.PaymentStatus != models.PaymentPending {
		return appointmentRepo.ErrStaleAppointment
	}
	cp := *appt
	r.byID[appt.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) FindBookedSlot(doctorID, date, start, end string) (*models.Appointment, error) {
	for _, a := range r.byID {
		if a.Status == models.StatusBooked && a.DoctorID == doctorID &&
			a.Date == date && a.Start == start && a.End == end {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAppointmentRepo) FindBookedByDoctor(doctorID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.byID {
		if a.Status == models.StatusBooked && a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) FindAllBooked() ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.byID {
		if a.Status == models.StatusBooked {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) List(filter appointmentRepo.ListFilter) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.byID {
		if filter.DoctorID != "" && a.DoctorID != filter.DoctorID {
			continue
		}
		if filter.PatientID != "" && a.PatientID != filter.PatientID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *memAppointmentRepo) FindExpiredHolds(cutoff time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.byID {
		if a.Status == models.StatusBooked && a.PaymentStatus == models.PaymentPending &&
			a.CreatedAt.Before(cutoff) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type memDoctorRepo struct {
	doctors map[string]*models.Doctor
}

func (r *memDoctorRepo) Create(d *models.Doctor) error { r.doctors[d.ID] = d; return nil }

func (r *memDoctorRepo) GetByID(id string) (*models.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func (r *memDoctorRepo) GetByEmail(email string) (*models.Doctor, error) {
	for _, d := range r.doctors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, nil
}

func (r *memDoctorRepo) GetAll() ([]models.Doctor, error) {
	var out []models.Doctor
	for _, d := range r.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (r *memDoctorRepo) Update(d *models.Doctor) error              { r.doctors[d.ID] = d; return nil }
func (r *memDoctorRepo) UpdateFields(id string, fields bson.M) error { return nil }
func (r *memDoctorRepo) Delete(id string) error                      { delete(r.doctors, id); return nil }

type fakeProvider struct {
	state      string
	createErr  error
	lastAmount float64
}

func (p *fakeProvider) CreateIntent(amount float64, description, appointmentID string) (*models.PaymentDetails, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.lastAmount = amount
	return &models.PaymentDetails{
		IntentID:      "pi_" + appointmentID,
		ClientSecret:  "secret_" + appointmentID,
		Amount:        amount,
		Currency:      "usd",
		AppointmentID: appointmentID,
	}, nil
}

func (p *fakeProvider) GetStatus(intentID string) (*models.PaymentStatusInfo, error) {
	return &models.PaymentStatusInfo{IntentID: intentID, State: p.state}, nil
}

type fakeCalendar struct {
	link string
	err  error
}

func (c *fakeCalendar) AuthURL(state string) string { return "" }

func (c *fakeCalendar) Exchange(ctx context.Context, code string) (*models.GoogleToken, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeCalendar) CreateMeetEvent(ctx context.Context, token *models.GoogleToken, appt *models.Appointment) (string, error) {
	return c.link, c.err
}

// passLocker runs the critical section inline; lockedLocker simulates a
// concurrent holder.
type passLocker struct{}

func (passLocker) WithSlotLock(ctx context.Context, doctorID, date, start string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type lockedLocker struct{}

func (lockedLocker) WithSlotLock(ctx context.Context, doctorID, date, start string, fn func(ctx context.Context) error) error {
	return ErrLockNotAcquired
}

type recordingHolds struct {
	ids    []string
	delays []time.Duration
}

func (h *recordingHolds) ScheduleExpiry(appointmentID string, delay time.Duration) error {
	h.ids = append(h.ids, appointmentID)
	h.delays = append(h.delays, delay)
	return nil
}

func newTestService() (*DefaultBookingService, *memAppointmentRepo, *fakeProvider, *recordingHolds) {
	repo := newMemAppointmentRepo()
	provider := &fakeProvider{state: "succeeded"}
	holds := &recordingHolds{}
	doctors := &memDoctorRepo{doctors: map[string]*models.Doctor{
		"doc-1": {
			ID:              "doc-1",
			Name:            "Asha Rao",
			Email:           "asha@example.com",
			ConsultationFee: 750,
			MeetingPlatform: models.DefaultMeetingPlatform,
			GoogleToken:     &models.GoogleToken{AccessToken: "tok"},
		},
	}}
	svc := &DefaultBookingService{
		Repo:       repo,
		DoctorRepo: doctors,
		Payments:   provider,
		Calendar:   &fakeCalendar{link: "https://meet.google.com/abc-defg-hij"},
		Locker:     passLocker{},
		Holds:      holds,
		HoldTTL:    30 * time.Minute,
		Logger:     zap.NewNop(),
	}
	return svc, repo, provider, holds
}

func request() models.BookingRequest {
	return models.BookingRequest{
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      "2026-09-14",
		Start:     "10:00",
		End:       "10:30",
	}
}

func TestBookReservesSlot(t *testing.T) {
	svc, repo, provider, holds := newTestService()

	appt, details, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.Status != models.StatusBooked {
		t.Errorf("status = %s, want booked", appt.Status)
	}
	if appt.PaymentStatus != models.PaymentPending {
		t.Errorf("paymentStatus = %s, want pending", appt.PaymentStatus)
	}
	if appt.Amount != 750 || provider.lastAmount != 750 {
		t.Errorf("amount = %v (charged %v), want doctor's fee 750", appt.Amount, provider.lastAmount)
	}
	if details.ClientSecret == "" || appt.PaymentIntentID != details.IntentID {
		t.Errorf("payment details not threaded back: %+v vs intent %q", details, appt.PaymentIntentID)
	}
	if len(holds.ids) != 1 || holds.ids[0] != appt.ID || holds.delays[0] != 30*time.Minute {
		t.Errorf("hold expiry schedule = %v %v, want [%s] [30m]", holds.ids, holds.delays, appt.ID)
	}

	stored, err := repo.GetByID(appt.ID)
	if err != nil || stored.PaymentIntentID != details.IntentID {
		t.Errorf("stored appointment missing intent id: %+v, err %v", stored, err)
	}
}

func TestBookRejectsOccupiedSlot(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, _, err := svc.Book(request()); err != nil {
		t.Fatalf("first Book: %v", err)
	}
	_, _, err := svc.Book(request())
	if !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Fatalf("second Book err = %v, want ErrSlotAlreadyBooked", err)
	}
}

func TestBookAllowsDifferentTuple(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, _, err := svc.Book(request()); err != nil {
		t.Fatalf("first Book: %v", err)
	}
	later := request()
	later.Start, later.End = "10:30", "11:00"
	if _, _, err := svc.Book(later); err != nil {
		t.Fatalf("adjacent slot Book: %v", err)
	}
	otherDay := request()
	otherDay.Date = "2026-09-15"
	if _, _, err := svc.Book(otherDay); err != nil {
		t.Fatalf("other day Book: %v", err)
	}
}

func TestBookDuplicateInsertMapsToSlotError(t *testing.T) {
	svc, repo, _, _ := newTestService()
	seed := &models.Appointment{
		ID: "seeded", DoctorID: "doc-1", Date: "2026-09-14",
		Start: "10:00", End: "10:30", Status: models.StatusBooked,
	}
	if err := repo.Create(seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, _, err := svc.Book(request())
	if !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Fatalf("err = %v, want ErrSlotAlreadyBooked", err)
	}
}

func TestBookLockContention(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.Locker = lockedLocker{}

	_, _, err := svc.Book(request())
	if !errors.Is(err, ErrSlotBeingBooked) {
		t.Fatalf("err = %v, want ErrSlotBeingBooked", err)
	}
}

func TestBookUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newTestService()
	req := request()
	req.DoctorID = "missing"

	_, _, err := svc.Book(req)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("err = %v, want ErrDoctorNotFound", err)
	}
}

func TestBookKeepsHoldWhenIntentFails(t *testing.T) {
	svc, repo, provider, holds := newTestService()
	provider.createErr = errors.New("stripe down")

	_, _, err := svc.Book(request())
	if err == nil {
		t.Fatal("expected error when intent creation fails")
	}
	booked, _ := repo.FindBookedSlot("doc-1", "2026-09-14", "10:00", "10:30")
	if booked == nil {
		t.Fatal("hold should remain for the expiry worker to release")
	}
	if len(holds.ids) != 1 {
		t.Errorf("expiry not scheduled: %v", holds.ids)
	}
}

func TestCompletePaymentAttachesMeetLink(t *testing.T) {
	svc, repo, _, _ := newTestService()
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	paid, err := svc.CompletePayment(appt.ID)
	if err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if paid.PaymentStatus != models.PaymentCompleted {
		t.Errorf("paymentStatus = %s, want completed", paid.PaymentStatus)
	}
	if paid.PaymentDate == nil {
		t.Error("payment date not set")
	}
	if paid.MeetingLink != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("meetingLink = %q", paid.MeetingLink)
	}

	stored, _ := repo.GetByID(appt.ID)
	if stored.PaymentStatus != models.PaymentCompleted {
		t.Errorf("stored paymentStatus = %s, want completed", stored.PaymentStatus)
	}
}

func TestCompletePaymentRejectsUnsettledIntent(t *testing.T) {
	svc, _, provider, _ := newTestService()
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	provider.state = "requires_payment_method"
	if _, err := svc.CompletePayment(appt.ID); err == nil {
		t.Fatal("expected error for unsettled intent")
	}
}

func TestCompletePaymentSurvivesCalendarFailure(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.Calendar = &fakeCalendar{err: errors.New("calendar unavailable")}
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	paid, err := svc.CompletePayment(appt.ID)
	if err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if paid.PaymentStatus != models.PaymentCompleted {
		t.Errorf("paymentStatus = %s, want completed despite calendar failure", paid.PaymentStatus)
	}
	if paid.MeetingLink != "" {
		t.Errorf("meetingLink = %q, want empty", paid.MeetingLink)
	}
}

func TestExpireHoldReleasesUnpaidSlot(t *testing.T) {
	svc, repo, _, _ := newTestService()
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if err := svc.ExpireHold(appt.ID); err != nil {
		t.Fatalf("ExpireHold: %v", err)
	}
	released, _ := repo.GetByID(appt.ID)
	if released.Status != models.StatusCancelled {
		t.Errorf("status = %s, want cancelled", released.Status)
	}
	if released.PaymentStatus != models.PaymentFailed {
		t.Errorf("paymentStatus = %s, want failed", released.PaymentStatus)
	}

	// The tuple is free again.
	if _, _, err := svc.Book(request()); err != nil {
		t.Fatalf("rebooking released slot: %v", err)
	}
}

func TestExpireHoldLeavesPaidAppointment(t *testing.T) {
	svc, repo, _, _ := newTestService()
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := svc.CompletePayment(appt.ID); err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}

	if err := svc.ExpireHold(appt.ID); err != nil {
		t.Fatalf("ExpireHold: %v", err)
	}
	kept, _ := repo.GetByID(appt.ID)
	if kept.Status != models.StatusBooked || kept.PaymentStatus != models.PaymentCompleted {
		t.Errorf("paid appointment mutated by expiry: %s/%s", kept.Status, kept.PaymentStatus)
	}
}

// snapshotRepo serves a fixed earlier read for one appointment, simulating a
// writer that raced in between another caller's read and write.
type snapshotRepo struct {
	*memAppointmentRepo
	snapshot *models.Appointment
}

func (r *snapshotRepo) GetByID(id string) (*models.Appointment, error) {
	if r.snapshot != nil && r.snapshot.ID == id {
		cp := *r.snapshot
		return &cp, nil
	}
	return r.memAppointmentRepo.GetByID(id)
}

func TestCompletePaymentLosesRaceToExpiry(t *testing.T) {
	svc, repo, _, _ := newTestService()
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	unpaid := *appt

	if err := svc.ExpireHold(appt.ID); err != nil {
		t.Fatalf("ExpireHold: %v", err)
	}

	// The confirmation request read the appointment before the expiry
	// worker committed its release.
	svc.Repo = &snapshotRepo{memAppointmentRepo: repo, snapshot: &unpaid}
	if _, err := svc.CompletePayment(appt.ID); !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("err = %v, want ErrHoldExpired", err)
	}

	stored, _ := repo.GetByID(appt.ID)
	if stored.Status != models.StatusCancelled || stored.PaymentStatus != models.PaymentFailed {
		t.Errorf("released appointment resurrected: %s/%s", stored.Status, stored.PaymentStatus)
	}
}

func TestExpireHoldLosesRaceToPayment(t *testing.T) {
	svc, repo, _, _ := newTestService()
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	unpaid := *appt

	if _, err := svc.CompletePayment(appt.ID); err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}

	svc.Repo = &snapshotRepo{memAppointmentRepo: repo, snapshot: &unpaid}
	if err := svc.ExpireHold(appt.ID); err != nil {
		t.Fatalf("ExpireHold: %v", err)
	}

	stored, _ := repo.GetByID(appt.ID)
	if stored.Status != models.StatusBooked || stored.PaymentStatus != models.PaymentCompleted {
		t.Errorf("paid appointment cancelled by stale expiry: %s/%s", stored.Status, stored.PaymentStatus)
	}
}

func TestSweepExpiredHolds(t *testing.T) {
	svc, repo, _, _ := newTestService()

	stale := &models.Appointment{
		ID: "stale", DoctorID: "doc-1", Date: "2026-09-10",
		Start: "10:00", End: "10:30",
		Status: models.StatusBooked, PaymentStatus: models.PaymentPending,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	fresh := &models.Appointment{
		ID: "fresh", DoctorID: "doc-1", Date: "2026-09-10",
		Start: "11:00", End: "11:30",
		Status: models.StatusBooked, PaymentStatus: models.PaymentPending,
		CreatedAt: time.Now(),
	}
	if err := repo.Create(stale); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(fresh); err != nil {
		t.Fatal(err)
	}

	released, err := svc.SweepExpiredHolds()
	if err != nil {
		t.Fatalf("SweepExpiredHolds: %v", err)
	}
	if released != 1 {
		t.Fatalf("released = %d, want 1", released)
	}
	got, _ := repo.GetByID("stale")
	if got.Status != models.StatusCancelled {
		t.Errorf("stale hold status = %s, want cancelled", got.Status)
	}
	kept, _ := repo.GetByID("fresh")
	if kept.Status != models.StatusBooked {
		t.Errorf("fresh hold status = %s, want booked", kept.Status)
	}
}

func TestUpdateMeetingLink(t *testing.T) {
	svc, _, _, _ := newTestService()
	appt, _, err := svc.Book(request())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	updated, err := svc.UpdateMeetingLink(appt.ID, "https://zoom.us/j/123", "zoom")
	if err != nil {
		t.Fatalf("UpdateMeetingLink: %v", err)
	}
	if updated.MeetingLink != "https://zoom.us/j/123" || updated.MeetingPlatform != "zoom" {
		t.Errorf("link/platform = %q/%q", updated.MeetingLink, updated.MeetingPlatform)
	}
}
