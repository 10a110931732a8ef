package api

import (
	"errors"
	"net/http"

	reqdto "packtrack/internal/handler/dto/request"
	resdto "packtrack/internal/handler/dto/response"
	"packtrack/internal/handler/middleware"
	"packtrack/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type ReceptionHandler struct {
	receptionCommands commands.ReceptionCommands
}

func NewReceptionHandler(receptionCommands commands.ReceptionCommands) *ReceptionHandler {
	return &ReceptionHandler{
		receptionCommands: receptionCommands,
	}
}

// ReceiveBatch ingests a batch of scanned pack codes. Per-code rejections
// come back in the 200 body; only batch-level failures produce an error
// status.
func (h *ReceptionHandler) ReceiveBatch(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.ReceiveBatchRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.receptionCommands.ReceiveBatch(c.Request.Context(), req.StoreID, req.Codes, actorID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrBatchTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Batch exceeds maximum size",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromBatchResult(result))
}
