package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/handlers"
	"github.com/hervefr78/fga-crm/internal/middleware"
	"github.com/hervefr78/fga-crm/internal/radarsync"
	"github.com/hervefr78/fga-crm/internal/realtime"
	"github.com/hervefr78/fga-crm/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.Radar = radarsync.NewSyncer(db.DB, nil)

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), realtime.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PUT("/me", middleware.AuthMiddleware(), handlers.UpdateProfile)
			auth.POST("/change-password", middleware.AuthMiddleware(), handlers.ChangePassword)
		}

		users := api.Group("/users", middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			users.GET("", handlers.ListUsers)
			users.GET("/:id", handlers.GetUser)
			users.PATCH("/:id/role", handlers.UpdateUserRole)
			users.PATCH("/:id/active", handlers.ToggleUserActive)
		}

		companies := api.Group("/companies", middleware.AuthMiddleware())
		{
			companies.GET("", handlers.ListCompanies)
			companies.POST("", handlers.CreateCompany)
			companies.GET("/:id", handlers.GetCompany)
			companies.PUT("/:id", handlers.UpdateCompany)
			companies.DELETE("/:id", handlers.DeleteCompany)
		}

		contacts := api.Group("/contacts", middleware.AuthMiddleware())
		{
			contacts.GET("", handlers.ListContacts)
			contacts.POST("", handlers.CreateContact)
			contacts.GET("/:id", handlers.GetContact)
			contacts.PUT("/:id", handlers.UpdateContact)
			contacts.DELETE("/:id", handlers.DeleteContact)
		}

		deals := api.Group("/deals", middleware.AuthMiddleware())
		{
			deals.GET("", handlers.ListDeals)
			deals.POST("", handlers.CreateDeal)
			deals.GET("/:id", handlers.GetDeal)
			deals.PUT("/:id", handlers.UpdateDeal)
			deals.DELETE("/:id", handlers.DeleteDeal)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("", handlers.ListTasks)
			tasks.POST("", handlers.CreateTask)
			tasks.GET("/:id", handlers.GetTask)
			tasks.PUT("/:id", handlers.UpdateTask)
			tasks.DELETE("/:id", handlers.DeleteTask)
		}

		activities := api.Group("/activities", middleware.AuthMiddleware())
		{
			activities.GET("", handlers.ListActivities)
			activities.POST("", handlers.CreateActivity)
			activities.GET("/:id", handlers.GetActivity)
			activities.PUT("/:id", handlers.UpdateActivity)
			activities.DELETE("/:id", handlers.DeleteActivity)
		}

		templates := api.Group("/email-templates", middleware.AuthMiddleware())
		{
			templates.GET("", handlers.ListEmailTemplates)
			templates.POST("", handlers.CreateEmailTemplate)
			templates.GET("/:id", handlers.GetEmailTemplate)
			templates.PUT("/:id", handlers.UpdateEmailTemplate)
			templates.DELETE("/:id", handlers.DeleteEmailTemplate)
		}

		integrations := api.Group("/integrations/startup-radar", middleware.AuthMiddleware())
		{
			integrations.POST("/sync", handlers.TriggerRadarSync)
			integrations.GET("/status", handlers.GetRadarSyncStatus)
			integrations.POST("/audit/:company_id", handlers.TriggerCompanyAudit)
		}

		api.GET("/search", middleware.AuthMiddleware(), handlers.GlobalSearch)
	}

	return r
}
