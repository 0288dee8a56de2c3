package routes

import (
	adminapi "community-app/internal/api/admin"
	authapi "community-app/internal/api/auth"
	channelsapi "community-app/internal/api/channels"
	coursesapi "community-app/internal/api/courses"
	groupsapi "community-app/internal/api/groups"
	notificationsapi "community-app/internal/api/notifications"
	paymentsapi "community-app/internal/api/payments"
	plansapi "community-app/internal/api/plans"
	subscriptionsapi "community-app/internal/api/subscriptions"
	usersapi "community-app/internal/api/users"
	"community-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every route handler the router needs. Each field is
// constructed once in cmd/serve.go with its own dependencies.
type Handlers struct {
	Auth          *authapi.Handler
	Users         *usersapi.Handler
	Groups        *groupsapi.Handler
	Plans         *plansapi.Handler
	Payments      *paymentsapi.Handler
	Subscriptions *subscriptionsapi.Handler
	Courses       *coursesapi.Handler
	Channels      *channelsapi.Handler
	Notifications *notificationsapi.Handler
	Admin         *adminapi.Handler
}

func Register(r *gin.Engine, jwtSecret string, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.GET("/verify", h.Auth.VerifyEmail)
	public.POST("/resend-verification", h.Auth.ResendVerification)
	public.POST("/request-password-reset", h.Auth.RequestPasswordReset)
	public.POST("/reset-password", h.Auth.ResetPassword)

	public.GET("/auth/google", h.Auth.GoogleStart)
	public.GET("/auth/google/callback", h.Auth.GoogleCallback)

	public.GET("/api/groups", h.Groups.List)
	public.GET("/api/groups/:id", h.Groups.Get)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(jwtSecret), middleware.SanitizeAndCleanInputMiddleware())

	auth.GET("/me", h.Users.GetCurrentUser)
	auth.POST("/change-password", h.Auth.ChangePassword)
	auth.GET("/ws", h.Channels.ServeWS)

	auth.POST("/api/owner-applications", h.Auth.ApplyForOwner)
	auth.GET("/api/owner-applications/me", h.Auth.MyOwnerApplication)

	auth.POST("/api/groups/:id/join", h.Groups.Join)
	auth.GET("/api/groups/:id/members", h.Groups.Members)
	auth.GET("/api/groups/:id/pricing-plans", h.Plans.List)

	auth.POST("/api/member-payments/create-order", h.Payments.CreateOrder)
	auth.POST("/api/member-payments/verify", h.Payments.Verify)
	auth.GET("/api/member-payments", h.Payments.History)

	auth.GET("/api/notifications", h.Notifications.List)
	auth.POST("/api/notifications/:id/read", h.Notifications.MarkRead)

	auth.GET("/api/groups/:id/channels", h.Channels.List)
	auth.GET("/api/channels/:id/messages", h.Channels.Messages)
	auth.POST("/api/channels/:id/messages", h.Channels.PostMessage)
	auth.POST("/api/direct-messages", h.Channels.SendDirect)
	auth.GET("/api/direct-messages/:userID", h.Channels.DirectHistory)

	auth.GET("/api/groups/:id/courses", h.Courses.List)
	auth.GET("/api/courses/:id", h.Courses.Get)

	// Owner routes. Handlers still verify ownership of the specific
	// group; the role gate just keeps plain members out entirely.
	owner := auth.Group("/")
	owner.Use(middleware.RequireAnyRole("owner", "admin"))

	owner.POST("/api/groups", h.Groups.Create)
	owner.DELETE("/api/groups/:id", h.Groups.Delete)

	owner.POST("/api/groups/:id/pricing-plans", h.Plans.Create)
	owner.PUT("/api/pricing-plans/:id", h.Plans.Update)
	owner.POST("/api/pricing-plans/:id/activate", h.Plans.Activate)
	owner.DELETE("/api/pricing-plans/:id", h.Plans.Delete)

	owner.POST("/api/subscriptions", h.Subscriptions.Create)
	owner.GET("/api/subscriptions/:groupID", h.Subscriptions.Get)

	owner.POST("/api/groups/:id/channels", h.Channels.Create)

	owner.POST("/api/groups/:id/courses", h.Courses.Create)
	owner.PUT("/api/courses/:id", h.Courses.Update)
	owner.DELETE("/api/courses/:id", h.Courses.Delete)
	owner.POST("/api/courses/:id/publish", h.Courses.SetPublished(true))
	owner.POST("/api/courses/:id/unpublish", h.Courses.SetPublished(false))
	owner.POST("/api/courses/:id/lessons", h.Courses.CreateLesson)
	owner.PUT("/api/courses/:id/lessons/reorder", h.Courses.ReorderLessons)
	owner.PUT("/api/lessons/:id", h.Courses.UpdateLesson)
	owner.DELETE("/api/lessons/:id", h.Courses.DeleteLesson)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireRole("admin"))
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/payments", h.Admin.ListPayments)
	admin.GET("/owner-applications", h.Admin.ListOwnerApplications)
	admin.POST("/owner-applications/:id/review", h.Admin.ReviewOwnerApplication)
}
