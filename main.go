package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curaconnect/config"
	"curaconnect/cron"
	"curaconnect/database"
	appointmentRepo "curaconnect/database/repository/appointment"
	doctorRepo "curaconnect/database/repository/doctor"
	fileRepo "curaconnect/database/repository/file"
	patientRepo "curaconnect/database/repository/patient"
	reviewRepo "curaconnect/database/repository/review"
	"curaconnect/handlers"
	"curaconnect/routes"
	"curaconnect/services/booking"
	"curaconnect/services/calendar"
	"curaconnect/services/doctor"
	"curaconnect/services/patient"
	"curaconnect/services/payment"
	"curaconnect/services/review"
	"curaconnect/services/storage"
	"curaconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	storageService, err := storage.NewCloudinaryStorage()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	doctors := doctorRepo.NewMongoDoctorRepo()
	patients := patientRepo.NewMongoPatientRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	reviews := reviewRepo.NewMongoReviewRepo()
	files := fileRepo.NewMongoFileRepo()

	// services.
	otpStore := utils.RedisOTPStore{}
	mailer := utils.NewSMTPMailer()
	calendarService := calendar.NewGoogleCalendar()
	holds := cron.NewHoldEnqueuer()

	doctorService := &doctor.DefaultDoctorService{
		Repo:   doctors,
		Appts:  appointments,
		OTP:    otpStore,
		Mailer: mailer,
		Logger: logger,
	}
	patientService := &patient.DefaultPatientService{
		Repo:   patients,
		OTP:    otpStore,
		Mailer: mailer,
		Logger: logger,
	}
	bookingService := &booking.DefaultBookingService{
		Repo:       appointments,
		DoctorRepo: doctors,
		Payments:   payment.NewStripeProvider(),
		Calendar:   calendarService,
		Locker:     booking.NewRedisSlotLocker(utils.GetLockCacheClient(), 30*time.Second),
		Holds:      holds,
		HoldTTL:    time.Duration(config.AppConfig.HoldExpiryMinutes) * time.Minute,
		Logger:     logger,
	}
	reviewService := &review.DefaultReviewService{
		Repo:     reviews,
		Appts:    appointments,
		Patients: patients,
		Logger:   logger,
	}

	cron.InitHoldExpiryWorker(bookingService)

	handlerBundle := handlers.NewHandlerBundle(
		doctorService,
		patientService,
		bookingService,
		reviewService,
		calendarService,
		storageService,
		files,
	)
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor([]*redis.Client{
		utils.GetAuthCacheClient(),
		utils.GetOTPCacheClient(),
		utils.GetLockCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if err := holds.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close task queue client: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
