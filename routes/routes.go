package routes

import (
	"time"

	"leadline/handlers"
	"leadline/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCallRoutes registers the tool endpoints used during a live call.
func RegisterCallRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/calls")
	{
		api.Use(middleware.ToolAuthMiddleware())
		api.POST("", hb.OpenCallHandler)
		api.GET("/:callID", hb.GetCallHandler)
		api.POST("/:callID/check-availability", hb.CheckAvailabilityHandler)
		api.POST("/:callID/schedule", hb.ScheduleMeetingHandler)
		api.POST("/:callID/transcript", hb.TranscriptHandler)
		api.POST("/:callID/transfer", hb.TransferCallHandler)
		api.POST("/:callID/end", hb.EndCallHandler)
	}
}

// RegisterHistoryRoutes registers the operator views over stored call results.
func RegisterHistoryRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	history := r.Group("/api/history")
	{
		history.Use(middleware.ToolAuthMiddleware())
		history.GET("", hb.CallsByPhoneHandler)
		history.GET("/scheduled", hb.ScheduledHandler)
		history.GET("/calls/:callID", hb.CallRecordHandler)
	}
}

// RegisterOAuthRoutes registers the operator consent flow. The callback is
// public because Google redirects the browser to it.
func RegisterOAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	oauth := r.Group("/oauth/google")
	{
		oauth.GET("/start", middleware.ToolAuthMiddleware(), hb.OAuthStartHandler)
		oauth.GET("/callback", hb.OAuthCallbackHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterCallRoutes(r, hb)
	RegisterHistoryRoutes(r, hb)
	RegisterOAuthRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
