package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "packtrack/internal/handler/dto/request"
	resdto "packtrack/internal/handler/dto/response"
	"packtrack/internal/handler/middleware"
	"packtrack/internal/usecase/commands"
	"packtrack/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PackHandler struct {
	packCommands commands.PackCommands
	packQueries  queries.PackQueries
}

func NewPackHandler(packCommands commands.PackCommands, packQueries queries.PackQueries) *PackHandler {
	return &PackHandler{
		packCommands: packCommands,
		packQueries:  packQueries,
	}
}

func (h *PackHandler) GetPack(c *gin.Context) {
	packID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pack ID",
		})
		return
	}

	pv, err := h.packQueries.GetByID(c.Request.Context(), packID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrPackNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Pack not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPackView(pv))
}

func (h *PackHandler) ListPacks(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid store ID",
		})
		return
	}

	filters := queries.PackFilters{}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if gameCode := c.Query("game_code"); gameCode != "" {
		filters.GameCode = &gameCode
	}

	var cursor *queries.Cursor
	if after := c.Query("cursor"); after != "" {
		cursor = &queries.Cursor{After: after}
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	items, next, err := h.packQueries.ListByStore(c.Request.Context(), storeID, filters, cursor, limit)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrInvalidCursor):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid pagination cursor",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPackListItems(items, next))
}

func (h *PackHandler) GetBinBoard(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid store ID",
		})
		return
	}

	slots, err := h.packQueries.GetBinBoard(c.Request.Context(), storeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromBinBoard(slots))
}

func (h *PackHandler) GetMovementHistory(c *gin.Context) {
	packID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pack ID",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	movements, err := h.packQueries.GetMovementHistory(c.Request.Context(), packID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromMovements(movements))
}

func (h *PackHandler) MovePack(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	packID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pack ID",
		})
		return
	}

	var req reqdto.MovePackRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.packCommands.MovePack(c.Request.Context(), req.ToParams(packID, actorID))
	if err != nil {
		h.handlePackCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromMoveResult(result))
}

func (h *PackHandler) ActivatePack(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	packID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pack ID",
		})
		return
	}

	var req reqdto.ActivatePackRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.packCommands.ActivatePack(c.Request.Context(), req.ToParams(packID, actorID)); err != nil {
		h.handlePackCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PackHandler) MarkDepleted(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	packID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pack ID",
		})
		return
	}

	var req reqdto.MarkDepletedRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.packCommands.MarkDepleted(c.Request.Context(), packID, req.ShiftID, actorID); err != nil {
		h.handlePackCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PackHandler) ReturnPack(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	packID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pack ID",
		})
		return
	}

	var req reqdto.ReturnPackRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.packCommands.ReturnPack(c.Request.Context(), req.ToParams(packID, actorID)); err != nil {
		h.handlePackCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PackHandler) DeletePack(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	packID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pack ID",
		})
		return
	}

	if err := h.packCommands.DeletePack(c.Request.Context(), packID, actorID); err != nil {
		h.handlePackCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PackHandler) SetupBins(c *gin.Context) {
	var req reqdto.SetupBinsRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ids, err := h.packCommands.SetupBins(c.Request.Context(), req.StoreID, req.ToTemplates())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidBinLayout):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid bin layout",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.SetupBinsResponse{BinIDs: ids})
}

func (h *PackHandler) handlePackCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrPackNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pack not found",
		})
	case errors.Is(err, commands.ErrBinNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Bin not found",
		})
	case errors.Is(err, commands.ErrShiftNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Shift not found",
		})
	case errors.Is(err, commands.ErrStoreMismatch):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Pack and bin belong to different stores",
		})
	case errors.Is(err, commands.ErrBinOccupied):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Bin already holds an active pack",
		})
	case errors.Is(err, commands.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Invalid pack status transition",
		})
	case errors.Is(err, commands.ErrDuplicateClosing):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Closing already recorded for this shift and pack",
		})
	case errors.Is(err, commands.ErrInvalidClosingSerial):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Closing serial out of range or malformed",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
