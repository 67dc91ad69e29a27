package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gym-backend/config"
	"gym-backend/controllers"
	"gym-backend/routes"
	"gym-backend/services"
	"gym-backend/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("config.DB is nil after ConnectDatabase()")
	}
	log.Println("database connection established and migrations applied")

	// Initialize services
	statusService := services.NewStatusService(db)
	bookingService := services.NewBookingService(db, statusService)
	webhookService := services.NewWebhookService(db, statusService)
	sweepService := services.NewSweepService(db, statusService)
	auditService := services.NewAuditService(db)
	parentService := services.NewParentService(db)
	athleteService := services.NewAthleteService(db)
	skillService := services.NewSkillService(db)
	waiverService := services.NewWaiverService(db, statusService)

	// Initialize controllers
	bookingController := controllers.NewBookingController(bookingService, statusService)
	webhookController := controllers.NewWebhookController(webhookService)
	parentController := controllers.NewParentController(parentService)
	athleteController := controllers.NewAthleteController(athleteService, skillService)
	waiverController := controllers.NewWaiverController(waiverService)
	auditController := controllers.NewAuditController(auditService)
	authController := controllers.NewAuthController(parentService)

	router := routes.SetupRouter(
		bookingController,
		webhookController,
		parentController,
		athleteController,
		waiverController,
		auditController,
		authController,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Expiry sweep runs until shutdown. Overlapping runs are safe, so a plain
	// ticker is enough; no distributed lock.
	sweepInterval := time.Duration(utils.EnvIntOrDefault("SWEEP_INTERVAL_MINUTES", 60)) * time.Minute
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := sweepService.RunOnce(); err != nil {
					log.Printf("sweep run failed: %v", err)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, shutting down server...")
	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped gracefully")
}
