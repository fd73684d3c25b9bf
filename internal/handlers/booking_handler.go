package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/middleware"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/services"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the error body shape shared by all handlers
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	bookings  *services.BookingService
	reconcile *services.ReconcileService
	logger    *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, reconcile *services.ReconcileService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings:  bookings,
		reconcile: reconcile,
		logger:    logger,
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	now := time.Now()
	startTime, err := utils.ParseDateTime(req.Date, req.StartTime, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_time",
			Message: "Invalid date or start time: " + err.Error(),
		})
		return
	}
	endTime, err := utils.ParseDateTime(req.Date, req.EndTime, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_time",
			Message: "Invalid end time: " + err.Error(),
		})
		return
	}

	resp, err := h.bookings.Create(c.Request.Context(), services.CreateParams{
		UserID:         userCtx.UserID.String(),
		SpaceID:        req.SpaceID,
		StartTime:      startTime,
		EndTime:        endTime,
		BillingMode:    models.BillingMode(req.BillingMode),
		AttendeesCount: req.AttendeesCount,
		Notes:          req.Notes,
	})
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(bookingID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	if booking.UserID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You can only view your own bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var filter models.BookingFilter
	if status := c.Query("status"); status != "" {
		if !models.IsValidBookingStatus(status) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Unknown booking status: " + status,
			})
			return
		}
		s := models.BookingStatus(status)
		filter.Status = &s
	}
	filter.UpcomingOnly = c.Query("upcoming") == "true"

	bookings, err := h.bookings.ListUserBookings(userCtx.UserID.String(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.Cancel(bookingID, userCtx.UserID.String())
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"message": "Booking cancelled successfully",
	})
}

// ReconcileBooking handles POST /api/v1/bookings/:id/reconcile
//
// The client calls this after returning from the payment page. The
// response always reports the booking's current status; "still pending"
// is a 200, not an error.
func (h *BookingHandler) ReconcileBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(bookingID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	if booking.UserID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You can only reconcile your own bookings",
		})
		return
	}

	resp, err := h.reconcile.Reconcile(c.Request.Context(), bookingID)
	if err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Error("Reconciliation failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "payment_provider_error",
			Message: "Could not verify payment with the provider. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondBookingError maps service errors onto HTTP statuses
func (h *BookingHandler) respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_interval",
			Message: "End time must be after start time",
		})
	case errors.Is(err, models.ErrPastBooking):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "past_booking",
			Message: "Bookings cannot start in the past",
		})
	case errors.Is(err, models.ErrUnknownBillingMode):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, models.ErrUnpriceable):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unpriceable",
			Message: "The space has no rate for the requested billing mode",
		})
	case errors.Is(err, models.ErrSpaceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "space_not_found",
			Message: "Space not found",
		})
	case errors.Is(err, models.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "booking_not_found",
			Message: "Booking not found",
		})
	case errors.Is(err, models.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "slot_unavailable",
			Message: "The space is already booked for the requested time",
		})
	case errors.Is(err, models.ErrNotOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You can only cancel your own bookings",
		})
	case errors.Is(err, models.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_finalized",
			Message: "The booking is already in a final state",
		})
	case errors.Is(err, models.ErrIllegalTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "illegal_transition",
			Message: err.Error(),
		})
	default:
		h.logger.WithError(err).Error("Unhandled booking error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
	}
}

// parseUUIDParam validates a UUID path parameter, writing the 400 itself
func parseUUIDParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " format",
		})
		return "", false
	}
	return raw, true
}
