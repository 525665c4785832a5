package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/swimdesk/internal/app/controllers"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/middleware"
	"github.com/yigit/swimdesk/internal/pkg/metrics"
	"github.com/yigit/swimdesk/internal/pkg/websocket"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth       *controllers.AuthController
	Offering   *controllers.OfferingController
	Instructor *controllers.InstructorController
	Swimmer    *controllers.SwimmerController
	Session    *controllers.SessionController
	Enrollment *controllers.EnrollmentController
	Roster     *controllers.RosterController
	Payment    *controllers.PaymentController
	Websocket  *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.ActiveUserRequired())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	deskStaff := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleStaff)
	sessionAccess := authMiddleware.SessionAccessRequired("id")

	{
		authenticated.GET("/auth/profile", h.Auth.GetProfile)
		authenticated.PUT("/auth/password", h.Auth.ChangePassword)

		staff := authenticated.Group("/staff", adminOnly)
		{
			staff.GET("", h.Auth.ListStaff)
			staff.POST("", h.Auth.CreateStaff)
		}

		offerings := authenticated.Group("/offerings")
		{
			offerings.GET("", h.Offering.ListOfferings)
			offerings.GET("/:id", h.Offering.GetOffering)
			offerings.POST("", adminOnly, h.Offering.CreateOffering)
			offerings.PUT("/:id", adminOnly, h.Offering.UpdateOffering)
			offerings.DELETE("/:id", adminOnly, h.Offering.DeleteOffering)
		}

		instructors := authenticated.Group("/instructors")
		{
			instructors.GET("", h.Instructor.ListInstructors)
			instructors.GET("/:id", h.Instructor.GetInstructorByID)
			instructors.POST("", adminOnly, h.Instructor.CreateInstructor)
			instructors.PUT("/:id", adminOnly, h.Instructor.UpdateInstructor)
			instructors.DELETE("/:id", adminOnly, h.Instructor.DeleteInstructor)
		}

		swimmers := authenticated.Group("/swimmers", deskStaff)
		{
			swimmers.GET("", h.Swimmer.ListSwimmers)
			swimmers.GET("/:id", h.Swimmer.GetSwimmer)
			swimmers.POST("", h.Swimmer.CreateSwimmer)
			swimmers.PUT("/:id", h.Swimmer.UpdateSwimmer)
			swimmers.DELETE("/:id", h.Swimmer.DeleteSwimmer)
		}

		sessions := authenticated.Group("/sessions")
		{
			sessions.GET("", h.Session.ListSessions)
			sessions.GET("/:id", sessionAccess, h.Session.GetSession)
			sessions.GET("/:id/usage", sessionAccess, h.Session.GetUsage)
			sessions.GET("/:id/ws", sessionAccess, h.Websocket.HandleConnection)
			sessions.POST("", adminOnly, h.Session.CreateSession)
			sessions.PUT("/:id", adminOnly, h.Session.UpdateSession)
			sessions.PUT("/:id/instructors", adminOnly, h.Session.AssignInstructors)
			sessions.DELETE("/:id", adminOnly, h.Session.DeleteSession)
		}

		enrollments := authenticated.Group("/enrollments", deskStaff)
		{
			enrollments.GET("", h.Enrollment.ListEnrollments)
			enrollments.POST("", h.Enrollment.Enroll)
			enrollments.GET("/:id", h.Enrollment.GetEnrollment)
			enrollments.POST("/:id/transfer", h.Enrollment.Transfer)
			enrollments.POST("/:id/cancel", h.Enrollment.Cancel)
			enrollments.GET("/:id/skips", h.Enrollment.ListSkips)
			enrollments.POST("/:id/skip", h.Enrollment.RecordSkip)
			enrollments.GET("/:id/balance", h.Enrollment.GetBalance)
		}

		roster := authenticated.Group("/rosters", deskStaff)
		{
			roster.GET("", h.Roster.GetSlots)
			roster.GET("/by-offering", h.Roster.GetByOffering)
		}

		payments := authenticated.Group("/payments", deskStaff)
		{
			payments.GET("", h.Payment.ListPayments)
			payments.POST("", h.Payment.RecordPayment)
			payments.POST("/:id/refund", adminOnly, h.Payment.RefundPayment)
		}
	}

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}))
	})
}
