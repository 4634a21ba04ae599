package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zeena/middleware"
	"zeena/models"
	booking "zeena/services/booking"
	"zeena/utils"
)

// BookingHandler exposes the booking engine over HTTP.
type BookingHandler struct {
	Engine booking.BookingEngine
}

func NewBookingHandler(engine booking.BookingEngine) *BookingHandler {
	return &BookingHandler{Engine: engine}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	req.CustomerID = middleware.CustomerID(c)
	if req.CustomerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing customer identity"})
		return
	}

	b, err := h.Engine.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// CheckAvailability handles POST /api/bookings/check-availability.
// Advisory only: a positive answer can still lose the commit race.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req models.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.Engine.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProviderAvailability handles GET /api/providers/:id/availability.
func (h *BookingHandler) GetProviderAvailability(c *gin.Context) {
	providerID := c.Param("id")
	date := c.Query("date")
	serviceID := c.Query("serviceId")
	if date == "" || serviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and serviceId query parameters are required"})
		return
	}

	day, err := h.Engine.GetAvailableSlots(c.Request.Context(), providerID, serviceID, date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Engine.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	// Only the parties to the booking may read it.
	actor := middleware.CustomerID(c)
	if actor == "" {
		actor = middleware.ProviderID(c)
	}
	if b.CustomerID != actor && b.ProviderID != actor {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListProviderBookings handles GET /api/providers/:id/bookings.
func (h *BookingHandler) ListProviderBookings(c *gin.Context) {
	providerID := c.Param("id")
	if middleware.ProviderID(c) != providerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "providers may only list their own bookings"})
		return
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	list, err := h.Engine.ListProviderBookings(c.Request.Context(), providerID, date)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// ConfirmBooking handles PATCH /api/bookings/:id/confirm (provider action).
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	b, err := h.Engine.ConfirmBooking(c.Request.Context(), c.Param("id"), middleware.ProviderID(c))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles PATCH /api/bookings/:id/cancel (either party).
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor := middleware.CustomerID(c)
	if actor == "" {
		actor = middleware.ProviderID(c)
	}
	b, err := h.Engine.CancelBooking(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CompleteBooking handles PATCH /api/bookings/:id/complete (provider action).
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	b, err := h.Engine.CompleteBooking(c.Request.Context(), c.Param("id"), middleware.ProviderID(c))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// MarkNoShow handles PATCH /api/bookings/:id/no-show (provider action).
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	b, err := h.Engine.MarkNoShow(c.Request.Context(), c.Param("id"), middleware.ProviderID(c))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RescheduleBooking handles PATCH /api/bookings/:id/reschedule (customer action).
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Engine.RescheduleBooking(c.Request.Context(), c.Param("id"), middleware.CustomerID(c), req)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// respondEngineError maps the engine's closed error set onto HTTP statuses.
// Conflicts carry the blocking booking ids so clients refresh availability
// instead of retrying the same slot.
func respondEngineError(c *gin.Context, err error) {
	var (
		validation *booking.ValidationError
		conflict   *booking.ConflictError
		policy     *booking.PolicyError
		transition *booking.InvalidTransitionError
		notFound   *booking.NotFoundError
		persist    *booking.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": validation.Message})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":               "conflict",
			"message":             conflict.Message,
			"conflictingBookings": conflict.BlockingIDs,
			"retryable":           true,
		})
	case errors.As(err, &policy):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "policy_violation", "message": policy.Message})
	case errors.As(err, &transition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid_transition",
			"message": transition.Error(),
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": notFound.Error()})
	case errors.As(err, &persist):
		utils.GetLogger().Error("persistence failure", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "persistence_error",
			"message":   "could not complete the operation, please retry",
			"retryable": true,
		})
	default:
		utils.GetLogger().Error("unexpected engine error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
