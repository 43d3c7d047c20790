package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/gymnica/clubapi/internal/auth"
	"github.com/gymnica/clubapi/internal/handlers"
	"github.com/gymnica/clubapi/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	adminHandler *handlers.AdminHandler,
	rosterHandler *handlers.RosterHandler,
	tokenManager *auth.TokenManager,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.Post("/register", authHandler.Register)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/admin/login", authHandler.AdminLogin)

	// Member routes - authenticated member required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Use(auth.RequireMember)

		r.Get("/me", memberHandler.Me)
		r.Get("/scheda", memberHandler.Attachment)
		r.Post("/logout", authHandler.Logout)
	})

	// Admin routes - authenticated admin required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Use(auth.RequireAdmin)

		r.Post("/admin/logout", authHandler.AdminLogout)
		r.Get("/admin/users", adminHandler.ListMembers)
		r.Post("/admin/upload/{id}", adminHandler.UploadAttachment)
		r.Get("/admin/course-data/{course}", rosterHandler.GetRoster)
		r.Post("/admin/course-data/{course}", rosterHandler.ReplaceRoster)
		r.Post("/admin/course-data-single/{course}", rosterHandler.SaveSingleRow)
		r.Post("/admin/send-payment-reminder", adminHandler.SendPaymentReminder)
		r.Get("/admin/course-totals/{course}", adminHandler.GetTotals)
		r.Post("/admin/course-totals/{course}", adminHandler.SetTotals)
	})
}
