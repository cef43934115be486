package doctor

import (
	"errors"
	"testing"
	"time"

	appointmentRepo "curaconnect/database/repository/appointment"
	"curaconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memDoctorRepo struct {
	doctors map[string]*models.Doctor
}

func newMemDoctorRepo() *memDoctorRepo {
	return &memDoctorRepo{doctors: make(map[string]*models.Doctor)}
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

func (r *memDoctorRepo) Update(d *models.Doctor) error { r.doctors[d.ID] = d; return nil }

func (r *memDoctorRepo) UpdateFields(id string, fields bson.M) error {
	d, ok := r.doctors[id]
	if !ok {
		return errors.New("not found")
	}
	if tok, ok := fields["googleToken"].(*models.GoogleToken); ok {
		d.GoogleToken = tok
	}
	return nil
}

func (r *memDoctorRepo) Delete(id string) error { delete(r.doctors, id); return nil }

type memApptRepo struct {
	booked []models.Appointment
}

func (r *memApptRepo) Create(a *models.Appointment) error { r.booked = append(r.booked, *a); return nil }
func (r *memApptRepo) GetByID(id string) (*models.Appointment, error) {
	return nil, errors.New("not found")
}
func (r *memApptRepo) Update(a *models.Appointment) error                 { return nil }
func (r *memApptRepo) UpdateIfPaymentPending(a *models.Appointment) error { return nil }
func (r *memApptRepo) FindBookedSlot(doctorID, date, start, end string) (*models.Appointment, error) {
	return nil, nil
}
func (r *memApptRepo) FindBookedByDoctor(doctorID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.booked {
		if a.DoctorID == doctorID && a.Status == models.StatusBooked {
			out = append(out, a)
		}
	}
	return out, nil
}
func (r *memApptRepo) FindAllBooked() ([]models.Appointment, error) { return r.booked, nil }
func (r *memApptRepo) List(filter appointmentRepo.ListFilter) ([]models.Appointment, error) {
	return nil, nil
}
func (r *memApptRepo) FindExpiredHolds(cutoff time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func newTestService() (*DefaultDoctorService, *memDoctorRepo, *memApptRepo) {
	repo := newMemDoctorRepo()
	appts := &memApptRepo{}
	svc := &DefaultDoctorService{
		Repo:   repo,
		Appts:  appts,
		Logger: zap.NewNop(),
	}
	return svc, repo, appts
}

func registration() models.DoctorRegistration {
	return models.DoctorRegistration{
		Name:       "Asha Rao",
		Email:      "asha@example.com",
		Password:   "s3cret-pass",
		Speciality: "cardiology",
		Location:   "Pune",
	}
}

func TestRegisterAppliesDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	doctor, err := svc.Register(registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(doctor.WorkingDays) != len(models.DefaultWorkingDays) {
		t.Errorf("workingDays = %v, want default Mon-Sat", doctor.WorkingDays)
	}
	if doctor.WorkingHours != models.DefaultWorkingHours {
		t.Errorf("workingHours = %v, want %v", doctor.WorkingHours, models.DefaultWorkingHours)
	}
	if doctor.ConsultationFee != models.DefaultConsultationFee {
		t.Errorf("fee = %v, want %v", doctor.ConsultationFee, models.DefaultConsultationFee)
	}
	if doctor.MeetingPlatform != models.DefaultMeetingPlatform {
		t.Errorf("platform = %q", doctor.MeetingPlatform)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(doctor.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("password hash does not verify: %v", err)
	}
	if doctor.PasswordHash == "s3cret-pass" {
		t.Error("password stored in clear")
	}
}

func TestRegisterKeepsExplicitSchedule(t *testing.T) {
	svc, _, _ := newTestService()
	req := registration()
	req.WorkingDays = []int{2, 4}
	req.WorkingHours = &models.WorkingHours{Start: "09:00", End: "13:00"}
	req.ConsultationFee = 1200

	doctor, err := svc.Register(req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(doctor.WorkingDays) != 2 || doctor.WorkingDays[0] != 2 {
		t.Errorf("workingDays = %v", doctor.WorkingDays)
	}
	if doctor.WorkingHours.Start != "09:00" || doctor.ConsultationFee != 1200 {
		t.Errorf("explicit fields overridden: %v fee %v", doctor.WorkingHours, doctor.ConsultationFee)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(registration()); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(registration()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestGetWithSlotsAnnotatesBookings(t *testing.T) {
	svc, _, appts := newTestService()
	req := registration()
	// Around-the-clock schedule so slots exist whatever the test runtime.
	req.WorkingDays = []int{0, 1, 2, 3, 4, 5, 6}
	req.WorkingHours = &models.WorkingHours{Start: "00:00", End: "23:30"}
	doctor, err := svc.Register(req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	view, err := svc.GetWithSlots(doctor.ID, 2)
	if err != nil {
		t.Fatalf("GetWithSlots: %v", err)
	}
	if len(view.NextAvailableSlots) == 0 {
		t.Fatal("no slots produced")
	}
	for _, s := range view.NextAvailableSlots {
		if s.Booked {
			t.Fatalf("slot %v marked booked with no appointments", s)
		}
	}

	target := view.NextAvailableSlots[0]
	appts.Create(&models.Appointment{
		ID: "a1", DoctorID: doctor.ID, Date: target.Date,
		Start: target.Start, End: target.End, Status: models.StatusBooked,
	})

	view, err = svc.GetWithSlots(doctor.ID, 2)
	if err != nil {
		t.Fatalf("GetWithSlots: %v", err)
	}
	var found bool
	for _, s := range view.NextAvailableSlots {
		if s.Date == target.Date && s.Start == target.Start {
			found = true
			if !s.Booked {
				t.Errorf("slot %s %s not marked booked", s.Date, s.Start)
			}
		} else if s.Booked {
			t.Errorf("unrelated slot %s %s marked booked", s.Date, s.Start)
		}
	}
	if !found {
		t.Skip("booked slot rolled past the clock, cannot assert")
	}
}

func TestSlotsDefaultScheduleForBareDocument(t *testing.T) {
	svc, repo, _ := newTestService()
	// Inserted directly, bypassing Register: no availability template at all.
	repo.Create(&models.Doctor{
		ID:    "d-bare",
		Name:  "Lena Vogt",
		Email: "lena@example.com",
	})

	view, err := svc.GetWithSlots("d-bare", 7)
	if err != nil {
		t.Fatalf("GetWithSlots: %v", err)
	}
	if len(view.NextAvailableSlots) == 0 {
		t.Fatal("bare document yielded no slots, want default Mon-Sat 10:00-16:00 windows")
	}
	for _, s := range view.NextAvailableSlots {
		if s.Start < "10:00" || s.End > "16:00" {
			t.Fatalf("slot %s-%s outside default hours", s.Start, s.End)
		}
		day, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			t.Fatal(err)
		}
		if day.Weekday() == time.Sunday {
			t.Fatalf("slot on %s falls on a Sunday", s.Date)
		}
	}

	views, err := svc.ListWithSlots(7)
	if err != nil {
		t.Fatalf("ListWithSlots: %v", err)
	}
	if len(views) != 1 || len(views[0].NextAvailableSlots) == 0 {
		t.Fatal("list view did not apply the default schedule")
	}
}

func TestListWithSlotsCoversAllDoctors(t *testing.T) {
	svc, _, _ := newTestService()
	first := registration()
	second := registration()
	second.Email = "ben@example.com"
	second.Name = "Ben Okoye"
	if _, err := svc.Register(first); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(second); err != nil {
		t.Fatal(err)
	}

	views, err := svc.ListWithSlots(7)
	if err != nil {
		t.Fatalf("ListWithSlots: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d doctors, want 2", len(views))
	}
	for _, v := range views {
		if v.NextAvailableSlots == nil {
			t.Errorf("doctor %s has nil slot list", v.ID)
		}
	}
}

func TestUpdateSchedule(t *testing.T) {
	svc, _, _ := newTestService()
	doctor, err := svc.Register(registration())
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateSchedule(doctor.ID, []int{1, 3, 5}, &models.WorkingHours{Start: "08:00", End: "12:00"})
	if err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if len(updated.WorkingDays) != 3 || updated.WorkingHours.End != "12:00" {
		t.Errorf("schedule not applied: %v %v", updated.WorkingDays, updated.WorkingHours)
	}

	if _, err := svc.UpdateSchedule("missing", nil, nil); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("err = %v, want ErrDoctorNotFound", err)
	}
}

func TestSaveGoogleToken(t *testing.T) {
	svc, repo, _ := newTestService()
	doctor, err := svc.Register(registration())
	if err != nil {
		t.Fatal(err)
	}

	tok := &models.GoogleToken{AccessToken: "at", RefreshToken: "rt"}
	if err := svc.SaveGoogleToken(doctor.ID, tok); err != nil {
		t.Fatalf("SaveGoogleToken: %v", err)
	}
	stored, _ := repo.GetByID(doctor.ID)
	if stored.GoogleToken == nil || stored.GoogleToken.RefreshToken != "rt" {
		t.Errorf("token not stored: %+v", stored.GoogleToken)
	}
}
