package routers

import (
	"fonegitim-api-io/api/internal/auth"
	"fonegitim-api-io/api/internal/container"
	"fonegitim-api-io/api/internal/middleware"

	"fonegitim-api-io/api/pkg/controllers"

	"github.com/gin-gonic/gin"
)

// InitRoute creates the Gin router with the service layer wired in
func InitRoute() *gin.Engine {
	serviceContainer := container.NewServiceContainer()
	router := gin.Default()
	router.Use(middleware.CorsMiddleware())

	api := router.Group("/v1", middleware.GlobalRateLimiter())
	{
		setupAuthRoutes(api, serviceContainer)
		campaignRoutes(api, serviceContainer)
		verificationRoutes(api, serviceContainer)
		paymentRoutes(api, serviceContainer)
		adminRoutes(api, serviceContainer)
	}

	return router
}

// setupAuthRoutes configures public authentication endpoints
func setupAuthRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	api.GET("/ping", controllers.Ping)

	api.POST("/signup", sc.UserController.CreateUser())
	api.POST("/auth", sc.UserController.HandleUserAuthentication())
	api.POST("/auth/google", sc.UserController.HandleUserGoogleAuthentication())
	api.DELETE("/logout", sc.UserController.Logout())

	secured := api.Group("/users").Use(auth.Auth())
	secured.GET("/me", sc.UserController.CurrentUser())
}

// campaignRoutes configures public browsing and owner management
func campaignRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	campaigns := api.Group("/campaigns")

	campaigns.GET("", sc.CampaignController.GetCampaigns())
	campaigns.GET("/:campaignid", sc.CampaignController.GetCampaign())

	secured := campaigns.Group("").Use(auth.Auth())
	secured.POST("", sc.CampaignController.CreateCampaign())
	secured.PUT("/:campaignid", sc.CampaignController.UpdateCampaign())
	secured.POST("/:campaignid/publish", sc.CampaignController.PublishCampaign())
}

// verificationRoutes configures the student verification surface
func verificationRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	verification := api.Group("/verification")

	// Public: tier requirements for UI hinting
	verification.GET("/tiers/:tier", sc.VerificationController.GetTierRequirements())

	secured := verification.Group("").Use(auth.Auth())
	secured.POST("", sc.VerificationController.StartVerification())
	secured.GET("", sc.VerificationController.GetMyVerification())
	secured.POST("/:verificationid/documents", sc.VerificationController.UploadDocument())
	secured.POST("/:verificationid/submit", sc.VerificationController.Submit())
}

// paymentRoutes configures donation quoting and saved cards
func paymentRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	api.POST("/donations/quote", sc.PaymentController.QuoteDonation())

	cards := api.Group("/users/payment/cards").Use(auth.Auth())
	cards.POST("", sc.PaymentController.CreatePaymentCard())
	cards.GET("", sc.PaymentController.GetPaymentCards())
	cards.DELETE("/:id", sc.PaymentController.DeletePaymentCard())
}

// adminRoutes configures the review queue behind the admin gate
func adminRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	admin := api.Group("/admin").Use(auth.Auth(), middleware.AdminOnly(sc.UserService))

	admin.GET("/verifications", sc.VerificationController.ListPendingVerifications())
	admin.GET("/verifications/:verificationid", sc.VerificationController.GetVerification())
	admin.PUT("/verifications/:verificationid", sc.VerificationController.Review())
}
