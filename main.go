// Taskdesk is a multi-tenant project and task tracking API. This entry
// point wires configuration, the database pool, migrations, the feature
// services and their handlers, the chi router with its middleware stack,
// and runs the HTTP server with graceful shutdown.
//
// @title TaskDesk API
// @version 1.0
// @description Multi-tenant project and task tracking API.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Type 'Token YOUR_API_TOKEN' to authorize
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/taskdesk-go/apperror"
	"github.com/user/taskdesk-go/auth"
	"github.com/user/taskdesk-go/config"
	"github.com/user/taskdesk-go/db"
	_ "github.com/user/taskdesk-go/docs" // generated Swagger docs
	"github.com/user/taskdesk-go/projects"
	"github.com/user/taskdesk-go/tasks"
	"github.com/user/taskdesk-go/users"
)

func main() {
	// In development the .env file supplies the environment; in production
	// the variables are set directly, so a missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.EnableExtensions(pool); err != nil {
		log.Fatalf("Failed to enable extensions: %v", err)
	}

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Manual dependency injection: services carry the business logic,
	// handlers translate HTTP.
	authService := auth.NewService(pool, *cfg.Auth)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(pool)

	projectService := projects.NewService(pool)
	projectHandlers := projects.NewHandlers(projectService)

	taskService := tasks.NewService(pool, userService)
	taskHandlers := tasks.NewHandlers(taskService)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that renders the shared apperror JSON shape instead of
	// a bare 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Auth routes. Logout stays public: it must succeed with a bad or
	// absent token.
	r.Post("/register", authHandlers.HandleRegister())
	r.Post("/login", authHandlers.HandleLogin())
	r.Post("/logout", authHandlers.HandleLogout())

	// Project routes, with tasks nested under their project.
	r.Route("/projects", func(r chi.Router) {
		r.Use(auth.TokenMiddleware(authService))

		projectHandlers.RegisterRoutes(r)
		r.Route("/{projectID}/tasks", taskHandlers.RegisterProjectTaskRoutes)
		r.Get("/{projectID}/summary", taskHandlers.HandleSummary)
	})

	// Global task filter, unscoped across projects.
	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth.TokenMiddleware(authService))
		r.Get("/", taskHandlers.HandleFilter)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError renders an AppError from the panic recovery middleware, which
// runs outside any handler's response conventions.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
