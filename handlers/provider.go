package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zeena/models"
	booking "zeena/services/booking"
)

type scheduleValidationRequest struct {
	WeeklySchedule []models.DaySchedule       `json:"weeklySchedule"`
	Exceptions     []models.ScheduleException `json:"exceptions"`
}

// ValidateSchedule handles POST /api/providers/schedule/validate.
// It runs the definition-time checks without persisting anything, so the
// provider app can reject bad working hours before submitting them.
func ValidateSchedule(c *gin.Context) {
	var req scheduleValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := booking.ValidateSchedule(req.WeeklySchedule, req.Exceptions); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
