package handlers

import (
	fileRepo "curaconnect/database/repository/file"
	"curaconnect/services/booking"
	"curaconnect/services/calendar"
	"curaconnect/services/doctor"
	"curaconnect/services/patient"
	"curaconnect/services/review"
	"curaconnect/services/storage"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Doctor endpoints
	RegisterDoctor   gin.HandlerFunc
	ListDoctors      gin.HandlerFunc
	GetDoctor        gin.HandlerFunc
	UpdateSchedule   gin.HandlerFunc
	DoctorOTPRequest gin.HandlerFunc
	DoctorOTPVerify  gin.HandlerFunc

	// Patient endpoints
	RegisterPatient gin.HandlerFunc
	VerifyEmail     gin.HandlerFunc
	ResendOTP       gin.HandlerFunc
	LoginPatient    gin.HandlerFunc
	Logout          gin.HandlerFunc

	// Appointment and payment endpoints
	BookAppointment   gin.HandlerFunc
	GetAppointment    gin.HandlerFunc
	ListAppointments  gin.HandlerFunc
	UpdateMeetingLink gin.HandlerFunc
	CompletePayment   gin.HandlerFunc
	PaymentStatus     gin.HandlerFunc

	// Review endpoints
	SubmitReview      gin.HandlerFunc
	DoctorReviews     gin.HandlerFunc
	MyReviews         gin.HandlerFunc
	AppointmentReview gin.HandlerFunc
	Testimonials      gin.HandlerFunc

	// File exchange endpoints
	UploadFile gin.HandlerFunc
	ListFiles  gin.HandlerFunc
	DeleteFile gin.HandlerFunc

	// Google Calendar OAuth endpoints
	GoogleAuthURL  gin.HandlerFunc
	GoogleCallback gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle wires every handler to its service.
func NewHandlerBundle(
	doctorSvc doctor.DoctorService,
	patientSvc patient.PatientService,
	bookingSvc booking.BookingService,
	reviewSvc review.ReviewService,
	cal calendar.MeetingScheduler,
	store storage.StorageService,
	files fileRepo.FileRepository,
) *HandlerBundle {
	return &HandlerBundle{
		RegisterDoctor:   RegisterDoctorHandler(doctorSvc),
		ListDoctors:      ListDoctorsHandler(doctorSvc),
		GetDoctor:        GetDoctorHandler(doctorSvc),
		UpdateSchedule:   UpdateScheduleHandler(doctorSvc),
		DoctorOTPRequest: DoctorOTPRequestHandler(doctorSvc),
		DoctorOTPVerify:  DoctorOTPVerifyHandler(doctorSvc),

		RegisterPatient: RegisterPatientHandler(patientSvc),
		VerifyEmail:     VerifyPatientEmailHandler(patientSvc),
		ResendOTP:       ResendOTPHandler(patientSvc),
		LoginPatient:    LoginPatientHandler(patientSvc),
		Logout:          LogoutHandler(),

		BookAppointment:   BookAppointmentHandler(bookingSvc),
		GetAppointment:    GetAppointmentHandler(bookingSvc),
		ListAppointments:  ListAppointmentsHandler(bookingSvc),
		UpdateMeetingLink: UpdateMeetingLinkHandler(bookingSvc),
		CompletePayment:   CompletePaymentHandler(bookingSvc),
		PaymentStatus:     PaymentStatusHandler(bookingSvc),

		SubmitReview:      SubmitReviewHandler(reviewSvc),
		DoctorReviews:     DoctorReviewsHandler(reviewSvc),
		MyReviews:         MyReviewsHandler(reviewSvc),
		AppointmentReview: AppointmentReviewHandler(reviewSvc),
		Testimonials:      TestimonialsHandler(reviewSvc),

		UploadFile: UploadFileHandler(store, files, bookingSvc),
		ListFiles:  ListFilesHandler(files, bookingSvc),
		DeleteFile: DeleteFileHandler(store, files),

		GoogleAuthURL:  GoogleAuthURLHandler(cal),
		GoogleCallback: GoogleCallbackHandler(cal, doctorSvc),

		Health: HealthHandler(),
	}
}
