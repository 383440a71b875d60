package routes

import (
	adminapi "unified-saas-backend/internal/api/admin"
	appsapi "unified-saas-backend/internal/api/apps"
	authapi "unified-saas-backend/internal/api/auth"
	"unified-saas-backend/internal/api/billing"
	customersapi "unified-saas-backend/internal/api/customers"
	productsapi "unified-saas-backend/internal/api/products"
	stripewebhooks "unified-saas-backend/internal/api/stripewebhook"
	subscriptionsapi "unified-saas-backend/internal/api/subscriptions"
	templatesapi "unified-saas-backend/internal/api/templates"
	"unified-saas-backend/internal/api/users"
	"unified-saas-backend/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Raw body route: must stay outside the sanitize middleware, the Stripe
	// signature covers the exact byte sequence.
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public pricing page data
	r.GET("/apps/:slug/public", appsapi.GetAppBySlug)
	r.GET("/apps/:slug/public/products", productsapi.ListAppProducts)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/verify", users.VerifyEmail)
	public.GET("/templates", templatesapi.ListTemplates)
	public.GET("/templates/:id", templatesapi.GetTemplate)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)

	auth.POST("/create-checkout-session", billing.CreateCheckoutSession)
	auth.POST("/provision-products", productsapi.ProvisionProducts)

	auth.POST("/apps", appsapi.CreateApp)
	auth.GET("/apps", appsapi.ListMyApps)
	auth.PUT("/apps/:id", appsapi.UpdateApp)
	auth.DELETE("/apps/:id", appsapi.DeleteApp)
	auth.POST("/apps/:id/verify-integration", middleware.RequireActiveSubscription(), appsapi.VerifyIntegration)

	auth.GET("/subscriptions", subscriptionsapi.ListMySubscriptions)
	auth.GET("/customers", customersapi.ListMyAppCustomers)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminapi.AdminDashboard)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/stats", adminapi.PlatformStats)
	admin.POST("/templates", templatesapi.CreateTemplate)
}
