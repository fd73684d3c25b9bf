package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/services"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SpaceHandler handles space catalog HTTP requests
type SpaceHandler struct {
	spaces   services.SpaceStore
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewSpaceHandler creates a new space handler
func NewSpaceHandler(spaces services.SpaceStore, bookings *services.BookingService, logger *logrus.Logger) *SpaceHandler {
	return &SpaceHandler{
		spaces:   spaces,
		bookings: bookings,
		logger:   logger,
	}
}

// ListSpaces handles GET /api/v1/spaces
func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	filter := models.SpaceFilter{ActiveOnly: true}

	if spaceType := c.Query("type"); spaceType != "" {
		if !models.IsValidSpaceType(spaceType) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Unknown space type: " + spaceType,
			})
			return
		}
		t := models.SpaceType(spaceType)
		filter.Type = &t
	}
	if location := c.Query("location"); location != "" {
		filter.Location = &location
	}

	spaces, err := h.spaces.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list spaces")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve spaces",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spaces": spaces,
		"total":  len(spaces),
	})
}

// GetSpace handles GET /api/v1/spaces/:id
func (h *SpaceHandler) GetSpace(c *gin.Context) {
	spaceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	space, err := h.spaces.GetByID(spaceID)
	if err != nil {
		if errors.Is(err, models.ErrSpaceNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "space_not_found",
				Message: "Space not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to get space")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve space",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"space": space})
}

// CheckAvailability handles GET /api/v1/spaces/:id/availability
//
// Read-only: reports whether the interval is free without reserving
// anything. Accepts the same flexible date/time formats as booking
// creation.
func (h *SpaceHandler) CheckAvailability(c *gin.Context) {
	spaceID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	date := c.Query("date")
	startStr := c.Query("start_time")
	endStr := c.Query("end_time")
	if date == "" || startStr == "" || endStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "date, start_time and end_time query parameters are required",
		})
		return
	}

	now := time.Now()
	start, err := utils.ParseDateTime(date, startStr, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_time",
			Message: "Invalid date or start time: " + err.Error(),
		})
		return
	}
	end, err := utils.ParseDateTime(date, endStr, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_time",
			Message: "Invalid end time: " + err.Error(),
		})
		return
	}

	available, err := h.bookings.IsSpaceFree(spaceID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_interval",
				Message: "End time must be after start time",
			})
		case errors.Is(err, models.ErrSpaceNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "space_not_found",
				Message: "Space not found",
			})
		default:
			h.logger.WithError(err).Error("Availability check failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "database_error",
				Message: "Failed to check availability",
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.AvailabilityResponse{
		SpaceID:   spaceID,
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
		Available: available,
	})
}
