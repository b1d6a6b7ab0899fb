package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"haulbook/internal/api"
	"haulbook/internal/auth"
	"haulbook/internal/config"
	"haulbook/internal/repository"
	"haulbook/internal/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	bookingRepo := repository.NewBookingRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	calendarRepo := repository.NewCalendarRepository(database)
	postalRepo := repository.NewPostalRepository(database)
	cachedPostals := repository.NewCachedPostalStore(postalRepo, redisClient, cfg.Scheduling.PostalCacheTTL)
	adminAuthRepo := repository.NewAdminAuthRepository(database)
	jobRepo := repository.NewJobRepository(database)

	calendar := service.NewAvailabilityCalendar(calendarRepo, cfg.Scheduling)
	distance := service.NewDistanceResolver(cachedPostals, cfg.Scheduling)
	conflicts := service.NewConflictDetector(bookingRepo)
	ledger := service.NewCapacityLedger(bookingRepo, calendarRepo)
	scheduler := service.NewBookingScheduler(bookingRepo, vehicleRepo, calendar, distance, conflicts, ledger, cfg.Scheduling)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	sweeps := service.NewSweepService(jobRepo)

	bookingHandler := api.NewBookingHandler(scheduler, calendar)
	adminHandler := api.NewAdminHandler(scheduler)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	c := cron.New()
	if _, err := c.AddFunc("@every 10m", func() {
		if err := sweeps.CompleteFinishedBookings(); err != nil {
			log.Printf("Sweep error: %v", err)
		}
		if err := sweeps.CancelStalePendingBookings(); err != nil {
			log.Printf("Sweep error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to register sweep job: %v", err)
	}
	c.Start()
	defer c.Stop()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/hours", bookingHandler.GetDayHours).Methods("GET")
	r.HandleFunc("/api/bookings", bookingHandler.SubmitBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.RescheduleBooking).Methods("PUT")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.CancelBooking).Methods("DELETE")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/admins", adminAuthHandler.CreateAdmin).Methods("POST")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{id}/confirm", adminHandler.ConfirmBooking).Methods("POST")
	admin.HandleFunc("/bookings/{id}/complete", adminHandler.CompleteBooking).Methods("POST")
	admin.HandleFunc("/vehicles/{id}/schedule", adminHandler.VehicleSchedule).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
