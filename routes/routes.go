package routes

import (
	"github.com/gin-gonic/gin"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Daanveer10/medcAIr/config"
	"github.com/Daanveer10/medcAIr/handlers"
	"github.com/Daanveer10/medcAIr/middleware"
)

func SetupRoutes(router *gin.Engine, supabaseClient *supa.Client, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(supabaseClient, cfg)
	clinicHandler := handlers.NewClinicHandler(supabaseClient, cfg)
	slotHandler := handlers.NewSlotHandler(supabaseClient, cfg)
	appointmentHandler := handlers.NewAppointmentHandler(supabaseClient, cfg)
	followupHandler := handlers.NewFollowupHandler(supabaseClient, cfg)

	router.Use(middleware.RateLimitMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":              "ok",
			"supabase_configured": cfg.SupabaseURL != "" && cfg.SupabaseKey != "",
			"jwt_configured":      cfg.JWTSecret != "",
		})
	})

	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthMiddleware(cfg), authHandler.GetMe)
		}

		// Public clinic browsing and search
		api.GET("/clinics", clinicHandler.GetClinics)
		api.GET("/clinics/search", clinicHandler.SearchClinics)
		api.GET("/clinics/:id", clinicHandler.GetClinicByID)
		api.GET("/clinics/:id/slots", slotHandler.GetClinicSlots)
		api.GET("/clinics/:id/slots/grouped", slotHandler.GetClinicSlotsGrouped)

		// Booking tolerates walk-in (unauthenticated) callers; identity is
		// taken from the token when present.
		api.POST("/appointments", middleware.OptionalAuthMiddleware(cfg), appointmentHandler.CreateAppointment)
		api.GET("/patient/appointments", middleware.OptionalAuthMiddleware(cfg), appointmentHandler.GetPatientAppointments)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/clinics", clinicHandler.CreateClinic)
			protected.POST("/clinics/:id/slots", slotHandler.CreateSlot)

			hospital := protected.Group("/hospital")
			hospital.Use(middleware.RequireRole("hospital"))
			{
				hospital.GET("/clinics", clinicHandler.GetHospitalClinics)
				hospital.GET("/appointments", appointmentHandler.GetHospitalAppointments)
			}

			protected.GET("/appointments", appointmentHandler.GetAppointments)
			protected.GET("/appointments/today", appointmentHandler.GetTodayAppointments)
			protected.PATCH("/appointments/:id", appointmentHandler.UpdateAppointmentStatus)
			protected.DELETE("/appointments/:id", appointmentHandler.DeleteAppointment)
			protected.POST("/appointments/:id/followup", followupHandler.ScheduleFollowup)

			protected.GET("/stats", appointmentHandler.GetStats)

			protected.GET("/followups", followupHandler.GetFollowups)
			protected.POST("/followups", followupHandler.CreateFollowup)
		}
	}
}
