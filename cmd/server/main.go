package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/lingua-prep/backend/internal/auth"
	"github.com/lingua-prep/backend/internal/exercises"
	"github.com/lingua-prep/backend/internal/generator"
	"github.com/lingua-prep/backend/internal/middleware"
	"github.com/lingua-prep/backend/internal/staticpool"
	"github.com/lingua-prep/backend/internal/store"
	"github.com/rs/cors"
)

func main() {
	// Backend selection happens once here, not per request.
	st, db, err := store.New()
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Process-wide singletons, injected into the orchestrator.
	pool := staticpool.NewPool()
	gen := generator.NewGenerator()

	service := exercises.NewService(st, gen, pool)

	// One-time seed; the natural-key upsert makes repeated boots converge.
	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	service.SeedStaticPool(seedCtx)
	cancel()

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	exerciseHandler := exercises.NewHandler(service)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Exercise routes: identity is optional, anonymous learners are served too.
	open := api.PathPrefix("").Subrouter()
	open.Use(middleware.OptionalIdentity)
	open.HandleFunc("/exercises/batch", exerciseHandler.ResolveBatch).Methods("POST")
	open.HandleFunc("/exercises/{id}/attempt", exerciseHandler.RecordAttempt).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
