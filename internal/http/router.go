package api

import (
	"log"
	stdhttp "net/http"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/gateway"
	h "tourbooking/internal/http/handlers"
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/notify"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, notifier notify.Notifier) *gin.Engine {
	h.Configure(env, notifier, gateway.NewHTTP(env))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins...))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.RequireAuth(env.JWTSecret)
	admin := middleware.RequireRole("admin")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Auth
		api.POST("/auth/login", h.Login)
		api.POST("/auth/register", h.Register)

		// Gateway callback, authenticated by signature, not JWT
		api.POST("/payments/notification", h.PaymentNotification)

		// Bookings
		bookings := api.Group("/bookings", auth)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/history", h.BookingHistory)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/status-updates", h.GetBookingStatusUpdates)
		bookings.GET("/:id/reschedules", h.ListBookingReschedules)
		bookings.PUT("/:id/status", admin, h.UpdateBookingStatus)
		bookings.PUT("/:id/assign", admin, h.AssignDriverVehicle)

		// Payments
		payments := api.Group("/payments", auth)
		payments.POST("", h.CreatePayment)
		payments.GET("/:id/status", h.GetPaymentStatus)

		// Refunds
		refunds := api.Group("/refunds", auth)
		refunds.POST("", h.CreateRefund)
		refunds.GET("", h.ListMyRefunds)
		refunds.GET("/:id", h.GetRefund)
		refunds.PUT("/:id/approve", admin, h.ApproveRefund)
		refunds.PUT("/:id/reject", admin, h.RejectRefund)
		refunds.PUT("/:id/process", admin, h.ProcessRefund)
		refunds.PUT("/:id/complete", admin, h.CompleteRefund)

		// Reschedules
		reschedules := api.Group("/reschedules", auth)
		reschedules.POST("", h.CreateReschedule)
		reschedules.POST("/validate", h.ValidateReschedule)
		reschedules.GET("", h.ListMyReschedules)
		reschedules.GET("/pending", admin, h.ListPendingReschedules)
		reschedules.GET("/:id", h.GetReschedule)
		reschedules.PUT("/:id/status", admin, h.UpdateRescheduleStatus)
	}

	return r
}
