package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance-tracking/internal/admin"
	"github.com/frahmantamala/attendance-tracking/internal/attendance"
	"github.com/frahmantamala/attendance-tracking/internal/auth"
	"github.com/frahmantamala/attendance-tracking/internal/location"
	"github.com/frahmantamala/attendance-tracking/internal/transport/middleware"
	"github.com/frahmantamala/attendance-tracking/internal/transport/swagger"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, attendanceHandler *attendance.Handler, locationHandler *location.Handler, adminHandler *admin.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Attendance lifecycle
				if attendanceHandler != nil {
					pr.Route("/attendance", func(ar chi.Router) {
						ar.Post("/checkin", attendanceHandler.CheckIn)
						ar.Post("/checkout", attendanceHandler.CheckOut)
						ar.Get("/status", attendanceHandler.Status)
						ar.Get("/history", attendanceHandler.History)
					})
				}

				// Location tracking
				if locationHandler != nil {
					pr.Route("/locations", func(lr chi.Router) {
						lr.Post("/update", locationHandler.UpdateLocation)
						lr.Get("/me", locationHandler.MyLocation)
						lr.Get("/address", locationHandler.Address)
						lr.Get("/users/{id}", locationHandler.UserLocation)
					})
				}

				// Admin surface, gated on the role capability table
				if adminHandler != nil {
					pr.Group(func(amr chi.Router) {
						amr.Use(authHandler.RequireAdmin)

						amr.Route("/admin", func(ar chi.Router) {
							ar.Get("/dashboard", adminHandler.Dashboard)
							ar.Get("/locations", adminHandler.ActiveLocations)
							ar.Post("/locations/reset", adminHandler.ResetLocations)
							ar.Get("/attendance", adminHandler.AttendanceOverview)
							ar.Get("/activity", adminHandler.ActivityLog)
							ar.Post("/activity/reset", adminHandler.ResetActivity)

							ar.Route("/users", func(ur chi.Router) {
								ur.Get("/", adminHandler.ListUsers)
								ur.Post("/", adminHandler.CreateUser)
								ur.Delete("/{id}", adminHandler.DeleteUser)
								ur.Post("/{id}/reset-device", adminHandler.ResetDevice)
							})

							ar.Get("/settings", adminHandler.GetSettings)
							ar.Put("/settings", adminHandler.UpdateSetting)
						})
					})
				}
			})
		}
	})
}
