package results

import (
	"context"

	"leadline/database/repository/callrecords"
	"leadline/models"
)

// HistorySink keeps every call result in the call record repository.
type HistorySink struct {
	Repo callrecords.CallRecordRepository
}

func NewHistorySink(repo callrecords.CallRecordRepository) *HistorySink {
	return &HistorySink{Repo: repo}
}

func (h *HistorySink) Deliver(ctx context.Context, rec models.CallResult) error {
	_, err := h.Repo.Create(ctx, rec)
	return err
}
