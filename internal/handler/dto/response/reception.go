package response

import (
	"packtrack/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreatedPackResponse struct {
	ID          uuid.UUID `json:"id"`
	PackNumber  string    `json:"packNumber"`
	GameCode    string    `json:"gameCode"`
	SerialStart string    `json:"serialStart"`
	SerialEnd   string    `json:"serialEnd"`
}

type BatchErrorResponse struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type ReceiveBatchResponse struct {
	Created    []CreatedPackResponse `json:"created"`
	Duplicates []string              `json:"duplicates"`
	Errors     []BatchErrorResponse  `json:"errors"`
}

func FromBatchResult(r *commands.BatchResult) *ReceiveBatchResponse {
	resp := &ReceiveBatchResponse{
		Created:    make([]CreatedPackResponse, 0, len(r.Created)),
		Duplicates: r.Duplicates,
		Errors:     make([]BatchErrorResponse, 0, len(r.Errors)),
	}
	for _, c := range r.Created {
		resp.Created = append(resp.Created, CreatedPackResponse{
			ID:          c.ID,
			PackNumber:  c.PackNumber,
			GameCode:    c.GameCode,
			SerialStart: c.SerialStart,
			SerialEnd:   c.SerialEnd,
		})
	}
	for _, e := range r.Errors {
		resp.Errors = append(resp.Errors, BatchErrorResponse{Code: e.Code, Reason: e.Reason})
	}
	return resp
}
