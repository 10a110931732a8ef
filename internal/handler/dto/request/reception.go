package request

import (
	"github.com/google/uuid"
)

type ReceiveBatchRequest struct {
	StoreID uuid.UUID `json:"store_id" binding:"required"`
	Codes   []string  `json:"codes" binding:"required,min=1"`
}
