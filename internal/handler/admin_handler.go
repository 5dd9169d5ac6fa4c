package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/platform/middleware"
	"github.com/shareit/service-booking/internal/platform/response"
)

// AdminBookingHandler handles admin HTTP requests for booking statistics.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin routes guarded by the static admin token.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, adminToken string) {
	admin := r.Group("/admin")
	admin.Use(middleware.AdminTokenMiddleware(adminToken))
	{
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
