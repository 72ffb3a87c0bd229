// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nearmeet/nearmeet-backend/internal/auth"
	"github.com/nearmeet/nearmeet-backend/internal/common/database"
	"github.com/nearmeet/nearmeet-backend/internal/config"
	"github.com/nearmeet/nearmeet-backend/internal/meetups"
	"github.com/nearmeet/nearmeet-backend/internal/people"
	"github.com/nearmeet/nearmeet-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting NearMeet API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed: ", err)
	}
	log.Println("✅ Configuration loaded and valid")

	// 3. Connect to PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional)
	log.Println("\n📮 Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without it", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	log.Println("\n🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Initialize auth middleware
	log.Println("\n🔐 Step 6: Initializing authentication...")
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, redisClient)
	log.Println("✅ Authentication initialized")

	// 7. Initialize People module
	log.Println("\n🧭 Step 7: Initializing People module...")
	peopleRepo := people.NewPostgresRepository(db)
	peopleMetrics := people.NewMetrics()
	peopleService := people.NewService(peopleRepo, cfg.DefaultRadiusKm, cfg.PageSize, peopleMetrics)
	peopleHandler := people.NewHandler(peopleService, peopleMetrics)
	log.Println("✅ People module initialized")

	// 8. Initialize Meetups module
	log.Println("\n📅 Step 8: Initializing Meetups module...")
	meetupsRepo := meetups.NewPostgresRepository(db)
	meetupsMetrics := meetups.NewMetrics()
	meetupsService := meetups.NewService(
		meetupsRepo,
		redisClient,
		cfg.PageSize,
		cfg.NearbyRadiusKm,
		cfg.DailyJoinRequestLimit,
		meetupsMetrics,
	)
	meetupsHandler := meetups.NewHandler(meetupsService, meetupsMetrics)
	log.Println("✅ Meetups module initialized")

	// 9. Initialize Profile module
	log.Println("\n👤 Step 9: Initializing Profile module...")
	profileRepo := profile.NewPostgresRepository(db)

	var uploader profile.Uploader
	if cfg.UseS3 {
		uploader, err = profile.NewS3Uploader(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.S3BucketName)
		if err != nil {
			log.Printf("⚠️  Failed to init S3, falling back to local storage: %v", err)
		} else {
			log.Println("   ✅ Using S3 for avatar uploads")
		}
	}
	if uploader == nil {
		uploader, err = profile.NewLocalUploader(cfg.LocalUploadDir, cfg.BaseURL)
		if err != nil {
			log.Fatal("❌ Failed to init local upload storage: ", err)
		}
		log.Println("   ✅ Using local storage for avatar uploads")
	}

	profileService := profile.NewService(profileRepo, uploader)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profile module initialized")

	// 10. Setup routes
	log.Println("\n🛣️  Step 10: Setting up routes...")
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
		log.Println("   ✅ Static file server configured")
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	people.RegisterRoutes(api, peopleHandler, authMiddleware.Authenticate)
	log.Println("   ✅ People routes registered")
	meetups.RegisterRoutes(api, meetupsHandler, authMiddleware.Authenticate)
	log.Println("   ✅ Meetups routes registered")
	profile.RegisterRoutes(api, profileHandler, authMiddleware.Authenticate)
	log.Println("   ✅ Profile routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 11. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown: ", err)
	}

	log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("→ %s %s %d (%v)", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
