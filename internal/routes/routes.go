package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/billing"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/storage"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/report"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
)

// Deps are the singletons built in main and shared by the handlers.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *zap.Logger
	Clock  timezone.Clock

	Auth         *auth.Service
	Salons       *salon.Service
	Reports      *report.Reports
	Appointments domain.Repository
	Audit        *audit.Dispatcher
	Images       *storage.Images
	Billing      *billing.Service
}

const (
	owner  = models.RoleOwner
	admin  = models.RoleAdmin
	client = models.RoleClient
)

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestLogger(d.Log),
		middleware.CORS(d.Config.CORSOrigins),
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Auth, d.Salons, d.Audit)
	appointmentHandler := handlers.NewAppointmentHandler(d.Appointments, d.Audit, d.Clock)
	clientHandler := handlers.NewClientHandler(d.DB, d.Auth.Tokens(), d.Audit, d.Clock)
	serviceHandler := handlers.NewServiceHandler(d.DB, d.Audit)
	professionalHandler := handlers.NewProfessionalHandler(d.DB, d.Images, d.Audit)
	hoursHandler := handlers.NewBusinessHoursHandler(d.DB, d.Audit)
	reportHandler := handlers.NewReportHandler(d.Reports)
	salonHandler := handlers.NewSalonHandler(d.Salons, d.Images)
	adminHandler := handlers.NewAdminHandler(d.Salons, d.Images, d.Clock)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB, d.Clock)
	billingHandler := handlers.NewBillingHandler(d.Billing)
	publicHandler := handlers.NewPublicHandler(d.DB, d.Salons)

	r.GET("/health", func(c *gin.Context) {
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ------------------------------
	// PUBLIC
	// ------------------------------
	public := r.Group("/public/salons")
	{
		public.GET("", publicHandler.ListSalons)
		public.GET("/:id", publicHandler.GetSalon)
		public.GET("/:id/business-hours", publicHandler.BusinessHours)
		public.GET("/:id/services", publicHandler.ListServices)
		public.GET("/:id/professionals", publicHandler.ListProfessionals)
		public.GET("/:id/availability", appointmentHandler.PublicAvailability)
		public.GET("/:id/professionals/:pid/available-times", appointmentHandler.PublicAvailability)
		public.POST("/:id/appointments", appointmentHandler.CreatePublic)
		public.POST("/:id/clients/register", clientHandler.Register)
	}

	r.POST("/billing/webhook", billingHandler.Webhook)

	// ------------------------------
	// AUTH
	// ------------------------------
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)

	secured := r.Group("/")
	secured.Use(middleware.Auth(d.Auth))

	anyRole := middleware.RequireRole(owner, admin, client)
	staff := middleware.RequireRole(owner, admin)

	{
		secured.POST("/auth/logout", authHandler.Logout)
		secured.GET("/auth/me", authHandler.Me)
		secured.PUT("/auth/me", authHandler.UpdateMe)
		secured.POST("/auth/change-password", authHandler.ChangePassword)

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		appointments := secured.Group("/appointments", anyRole)
		appointments.GET("", appointmentHandler.List)
		appointments.POST("", appointmentHandler.Create)
		appointments.GET("/:id", appointmentHandler.Get)
		appointments.PUT("/:id/status", appointmentHandler.UpdateStatus)
		appointments.PUT("/:id", staff, appointmentHandler.Update)
		appointments.DELETE("/:id", staff, appointmentHandler.Delete)

		// ------------------------------
		// CLIENTS
		// ------------------------------
		clients := secured.Group("/clients")
		clients.GET("/me", middleware.RequireRole(client), clientHandler.Me)
		clients.GET("/me/stats", middleware.RequireRole(client), clientHandler.Stats)
		clients.GET("/me/appointments", middleware.RequireRole(client), appointmentHandler.List)
		clients.POST("/:id/points/redeem", anyRole, clientHandler.RedeemPoints)

		clients.GET("", staff, clientHandler.List)
		clients.POST("", staff, clientHandler.Create)
		clients.GET("/:id", staff, clientHandler.Get)
		clients.PUT("/:id", staff, clientHandler.Update)
		clients.DELETE("/:id", staff, clientHandler.Delete)
		clients.POST("/:id/points/add", staff, clientHandler.AddPoints)

		// ------------------------------
		// CATALOG
		// ------------------------------
		services := secured.Group("/services")
		services.GET("", anyRole, serviceHandler.List)
		services.GET("/:id", anyRole, serviceHandler.Get)
		services.POST("", staff, serviceHandler.Create)
		services.PUT("/:id", staff, serviceHandler.Update)
		services.DELETE("/:id", staff, serviceHandler.Delete)

		pros := secured.Group("/professionals")
		pros.GET("", anyRole, professionalHandler.List)
		pros.GET("/available/:service_id", anyRole, professionalHandler.AvailableForService)
		pros.GET("/:id", anyRole, professionalHandler.Get)
		pros.GET("/:id/available-times", anyRole, appointmentHandler.Availability)
		pros.GET("/:id/services", anyRole, professionalHandler.ListServices)
		pros.POST("", staff, professionalHandler.Create)
		pros.PUT("/:id", staff, professionalHandler.Update)
		pros.DELETE("/:id", staff, professionalHandler.Delete)
		pros.POST("/:id/services/:service_id", staff, professionalHandler.LinkService)
		pros.DELETE("/:id/services/:service_id", staff, professionalHandler.UnlinkService)
		pros.POST("/:id/photo", staff, professionalHandler.UploadPhoto)

		hours := secured.Group("/business-hours")
		hours.GET("", anyRole, hoursHandler.Get)
		hours.GET("/available", anyRole, appointmentHandler.Availability)
		hours.PUT("", staff, hoursHandler.Update)

		// ------------------------------
		// REPORTS
		// ------------------------------
		reports := secured.Group("/reports", staff)
		reports.GET("/dashboard", reportHandler.Dashboard)
		reports.GET("/appointments/status", reportHandler.StatusBreakdown)
		reports.GET("/services/popular", reportHandler.PopularServices)
		reports.GET("/revenue/daily", reportHandler.DailyRevenue)
		reports.GET("/revenue/monthly", reportHandler.MonthlyRevenue)
		reports.GET("/clients/new", reportHandler.NewClients)
		reports.GET("/performance", reportHandler.Performance)

		// ------------------------------
		// SALONS
		// ------------------------------
		salons := secured.Group("/salons")
		salons.GET("/me", staff, salonHandler.GetMe)
		salons.PUT("/me", staff, salonHandler.UpdateMe)
		salons.PUT("/me/appearance", staff, salonHandler.UpdateAppearance)
		salons.POST("/me/logo", staff, salonHandler.UploadLogo)
		salons.GET("/:id/share-link", middleware.RequireRole(owner), salonHandler.ShareLink)

		adminGroup := salons.Group("/admin", middleware.RequireRole(admin))
		adminGroup.POST("/create", adminHandler.Create)
		adminGroup.PUT("/:id/subscription", adminHandler.UpdateSubscription)
		adminGroup.PUT("/:id/status", adminHandler.SetStatus)
		adminGroup.GET("/subscriptions", adminHandler.Subscriptions)
		adminGroup.GET("/owners", adminHandler.Owners)

		company := adminGroup.Group("/company/:id")
		company.GET("/details", adminHandler.CompanyDetails)
		company.PUT("/basic-info", adminHandler.UpdateCompanyBasicInfo)
		company.PUT("/appearance", adminHandler.UpdateCompanyAppearance)
		company.PUT("/owner-info", adminHandler.UpdateCompanyOwnerInfo)
		company.POST("/upload-logo", adminHandler.UploadCompanyLogo)

		secured.GET("/audit-logs", staff, auditLogsHandler.List)
		secured.POST("/billing/checkout", middleware.RequireRole(owner), billingHandler.Checkout)
	}
}
