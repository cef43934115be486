package routes

import (
	"time"

	"curaconnect/config"
	"curaconnect/handlers"
	"curaconnect/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers patient account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterPatient)
		api.POST("/verify", hb.VerifyEmail)
		api.POST("/resend-otp", hb.ResendOTP)
		api.POST("/login", hb.LoginPatient)

		api.POST("/logout", middleware.JWTAuth(), hb.Logout)
	}
}

// RegisterDoctorRoutes registers doctor endpoints.
func RegisterDoctorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/doctors")
	{
		// Public: registration, OTP login and the availability listings.
		api.POST("/register", hb.RegisterDoctor)
		api.POST("/otp/request", hb.DoctorOTPRequest)
		api.POST("/otp/verify", hb.DoctorOTPVerify)
		api.GET("", hb.ListDoctors)
		api.GET("/:id", hb.GetDoctor)
		api.GET("/:id/reviews", hb.DoctorReviews)

		// Schedule changes require a doctor token.
		api.PUT("/schedule", middleware.JWTAuth("doctor"), hb.UpdateSchedule)
	}
}

// RegisterAppointmentRoutes registers booking, payment and file endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuth())
		api.POST("", hb.BookAppointment)
		api.GET("", hb.ListAppointments)
		api.GET("/:id", hb.GetAppointment)
		api.PUT("/:id/meeting-link", middleware.JWTAuth("doctor"), hb.UpdateMeetingLink)
		api.POST("/:id/payment/complete", hb.CompletePayment)

		api.POST("/:id/files", hb.UploadFile)
		api.GET("/:id/files", hb.ListFiles)
	}

	r.DELETE("/api/files/:fileId", middleware.JWTAuth(), hb.DeleteFile)
	r.GET("/api/payments/:intentId", middleware.JWTAuth(), hb.PaymentStatus)
}

// RegisterReviewRoutes registers review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.GET("/testimonials", hb.Testimonials)
		api.GET("/appointment/:appointmentId", middleware.JWTAuth(), hb.AppointmentReview)

		api.POST("", middleware.JWTAuth("patient"), hb.SubmitReview)
		api.GET("/mine", middleware.JWTAuth("patient"), hb.MyReviews)
	}
}

// RegisterGoogleRoutes registers the calendar OAuth endpoints.
func RegisterGoogleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/google")
	{
		api.GET("/oauth/url", middleware.JWTAuth("doctor"), hb.GoogleAuthURL)
		// Google redirects the browser here; no bearer token is present.
		api.GET("/oauth/callback", hb.GoogleCallback)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterAuthRoutes(r, hb)
	RegisterDoctorRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterGoogleRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
