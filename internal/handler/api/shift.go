package api

import (
	"errors"
	"net/http"

	reqdto "packtrack/internal/handler/dto/request"
	resdto "packtrack/internal/handler/dto/response"
	"packtrack/internal/handler/middleware"
	"packtrack/internal/usecase/commands"
	"packtrack/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShiftHandler struct {
	shiftCommands commands.ShiftCommands
	shiftQueries  queries.ShiftQueries
}

func NewShiftHandler(shiftCommands commands.ShiftCommands, shiftQueries queries.ShiftQueries) *ShiftHandler {
	return &ShiftHandler{
		shiftCommands: shiftCommands,
		shiftQueries:  shiftQueries,
	}
}

func (h *ShiftHandler) RecordOpening(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shift ID",
		})
		return
	}

	var req reqdto.RecordOpeningRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.shiftCommands.RecordOpening(c.Request.Context(), shiftID, req.PackID, req.OpeningSerial); err != nil {
		h.handleShiftCommandError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

func (h *ShiftHandler) CloseShift(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shift ID",
		})
		return
	}

	var req reqdto.CloseShiftRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.shiftCommands.CloseShift(c.Request.Context(), req.ToParams(shiftID, actorID))
	if err != nil {
		h.handleShiftCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCloseShiftResult(result))
}

func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shift ID",
		})
		return
	}

	if err := h.shiftCommands.DeleteShift(c.Request.Context(), shiftID, actorID); err != nil {
		h.handleShiftCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShiftHandler) GetReport(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shift ID",
		})
		return
	}

	report, err := h.shiftQueries.GetReport(c.Request.Context(), shiftID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrShiftNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Shift not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromShiftReport(report))
}

func (h *ShiftHandler) ListVariances(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shift ID",
		})
		return
	}

	onlyOpen := c.Query("open") == "true"

	views, err := h.shiftQueries.ListVariances(c.Request.Context(), shiftID, onlyOpen)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromVarianceViews(views))
}

func (h *ShiftHandler) GetVariance(c *gin.Context) {
	varianceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variance ID",
		})
		return
	}

	v, err := h.shiftQueries.GetVariance(c.Request.Context(), varianceID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrVarianceNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Variance not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromVarianceView(v))
}

func (h *ShiftHandler) ApproveVariance(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	varianceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variance ID",
		})
		return
	}

	if err := h.shiftCommands.ApproveVariance(c.Request.Context(), varianceID, actorID); err != nil {
		h.handleShiftCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShiftHandler) handleShiftCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrShiftNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Shift not found",
		})
	case errors.Is(err, commands.ErrPackNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pack not found",
		})
	case errors.Is(err, commands.ErrVarianceNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Variance not found",
		})
	case errors.Is(err, commands.ErrShiftAlreadyClosed):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Shift is already closed",
		})
	case errors.Is(err, commands.ErrDuplicateOpening):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Opening already recorded for this shift and pack",
		})
	case errors.Is(err, commands.ErrDuplicateClosing):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Closing already recorded for this shift and pack",
		})
	case errors.Is(err, commands.ErrVarianceAlreadyApproved):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Variance is already approved",
		})
	case errors.Is(err, commands.ErrStoreMismatch):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Pack and shift belong to different stores",
		})
	case errors.Is(err, commands.ErrPackNotActive):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Pack is not active",
		})
	case errors.Is(err, commands.ErrInvalidOpeningSerial):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Opening serial out of range or malformed",
		})
	case errors.Is(err, commands.ErrInvalidClosingSerial):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Closing serial out of range or malformed",
		})
	case errors.Is(err, commands.ErrManualEntryUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Manual serial entry requires authorization",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
