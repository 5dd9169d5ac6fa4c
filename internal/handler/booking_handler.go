package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/application"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/platform/middleware"
	"github.com/shareit/service-booking/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
// The group must already resolve the caller id.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookerBookings)
		bookings.GET("/owner", h.ListOwnerBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.DecideBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	callerID, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), callerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// DecideBooking handles PATCH /api/v1/bookings/:id?approved=true|false.
func (h *BookingHandler) DecideBooking(c *gin.Context) {
	callerID, ok := callerOrAbort(c)
	if !ok {
		return
	}
	bookingID, ok := bookingIDOrAbort(c)
	if !ok {
		return
	}

	raw, ok := c.GetQuery("approved")
	if !ok {
		response.BadRequest(c, "query parameter approved is required")
		return
	}
	// Anything other than "true" rejects.
	approved := strings.EqualFold(strings.TrimSpace(raw), "true")

	result, err := h.service.ApproveReject(c.Request.Context(), callerID, bookingID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	callerID, ok := callerOrAbort(c)
	if !ok {
		return
	}
	bookingID, ok := bookingIDOrAbort(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), callerID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookerBookings handles GET /api/v1/bookings?state=.
func (h *BookingHandler) ListBookerBookings(c *gin.Context) {
	h.list(c, h.service.ListForBooker)
}

// ListOwnerBookings handles GET /api/v1/bookings/owner?state=.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	h.list(c, h.service.ListForOwner)
}

type listFunc func(ctx context.Context, actorID uuid.UUID, state bookingDomain.ViewState) ([]application.BookingDTO, error)

func (h *BookingHandler) list(c *gin.Context, fn listFunc) {
	callerID, ok := callerOrAbort(c)
	if !ok {
		return
	}

	state, err := bookingDomain.ParseViewState(c.DefaultQuery("state", string(bookingDomain.ViewAll)))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := fn(c.Request.Context(), callerID, state)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func callerOrAbort(c *gin.Context) (uuid.UUID, bool) {
	callerID, ok := middleware.GetCallerID(c)
	if !ok {
		response.BadRequest(c, "caller id is missing")
	}
	return callerID, ok
}

func bookingIDOrAbort(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, false
	}
	return id, true
}
