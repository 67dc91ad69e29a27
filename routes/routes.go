package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gym-backend/controllers"
	"gym-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	bc *controllers.BookingController,
	whc *controllers.WebhookController,
	pc *controllers.ParentController,
	ac *controllers.AthleteController,
	wc *controllers.WaiverController,
	auc *controllers.AuditController,
	authc *controllers.AuthController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Provider webhook: signature verified upstream, so no auth middleware
		// here, only the parser's own validation.
		api.POST("/webhooks/payment", whc.HandlePaymentWebhook)

		auth := api.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/parent-login", authc.ParentLogin)
		}

		// Public lookups for the booking form.
		api.GET("/lesson-types", controllers.GetLessonTypes)
		api.GET("/apparatus", controllers.GetApparatus)
		api.GET("/focus-areas", controllers.GetFocusAreas)
		api.GET("/side-quests", controllers.GetSideQuests)
		api.GET("/skills", controllers.GetSkills)
		api.GET("/content", controllers.GetSiteContent)
		api.GET("/content/:slug", controllers.GetSiteContentBySlug)

		// Checkout initiation and waiver signing come from the parent flow.
		api.POST("/bookings", bc.CreateBooking)
		api.POST("/parents", pc.CreateParent)
		api.POST("/waivers", wc.SignWaiver)

		admin := api.Group("", middleware.RequireRole(middleware.RoleAdmin))
		{
			bookings := admin.Group("/bookings")
			{
				bookings.GET("", bc.GetBookings)
				bookings.GET("/:id", bc.GetBookingDetails)
				bookings.DELETE("/:id", bc.CancelBooking)
				bookings.PATCH("/:id/payment-status", bc.PatchPaymentStatus)
				bookings.PATCH("/:id/attendance-status", bc.PatchAttendanceStatus)
				bookings.PATCH("/:id/status", bc.PatchStatus)
			}

			admin.GET("/parents", pc.GetParents)
			admin.GET("/parents/:id", pc.GetParent)
			admin.GET("/parents/:id/bookings", bc.GetParentBookings)

			athletes := admin.Group("/athletes")
			{
				athletes.GET("", ac.GetAthletes)
				athletes.GET("/:id", ac.GetAthlete)
				athletes.POST("", ac.CreateAthlete)
				athletes.PUT("/:id", ac.UpdateAthlete)
				athletes.GET("/:id/skills", ac.GetSkillProgress)
				athletes.POST("/:id/skills", ac.UpsertSkill)
				athletes.GET("/:id/waiver", wc.GetCurrentWaiver)
			}

			admin.GET("/waivers", wc.GetWaivers)

			admin.POST("/lesson-types", controllers.CreateLessonType)
			admin.DELETE("/lesson-types/:id", controllers.DeactivateLessonType)
			admin.PUT("/content/:slug", controllers.UpsertSiteContent)

			admin.GET("/admin/audit", auc.RunAudit)
		}
	}

	return r
}
