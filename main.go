package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"quillbox.dev/project-quillbox/database"
	"quillbox.dev/project-quillbox/middleware"
	"quillbox.dev/project-quillbox/routes"
	"quillbox.dev/project-quillbox/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" || os.Getenv("DATABASE_URL") == "" {
		log.Fatal("JWT_SECRET and DATABASE_URL must be set")
	}

	db, err := database.ConnectDB()
	for i := 1; err != nil && i < 3; i++ {
		log.Printf("Database connection attempt %d failed: %v", i, err)
		time.Sleep(2 * time.Second)
		db, err = database.ConnectDB()
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to apply schema:", err)
	}

	nc, js, err := services.ConnectQueue()
	if err != nil {
		log.Fatal("Failed to connect to NATS:", err)
	}
	defer nc.Close()

	if path := os.Getenv("FIREBASE_CREDENTIALS_PATH"); path != "" {
		if err := services.InitFirebase(path); err != nil {
			log.Printf("Firebase init failed, push notifications disabled: %v", err)
		}
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, push notifications disabled")
	}

	router := mux.NewRouter()
	router.Use(middleware.RateLimit)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	routes.CreatePublicRoutes(db, router)

	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.RequireAuth)
	routes.CreateAuthRoutes(db, router, protected)
	routes.CreatePostRoutes(db, services.NewQueue(js), protected)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}

	log.Println("Server stopped")
}
