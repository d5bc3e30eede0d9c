package call

import (
	"context"
	"errors"

	"leadline/models"
)

// ErrCallNotFound is returned for an unknown or expired call id.
var ErrCallNotFound = errors.New("call not found")

// CallService manages the live calls handled by this process.
type CallService interface {
	Open(ctx context.Context, room string, job models.Job) (*Session, error)
	Get(callID string) (*Session, error)
	CheckAvailability(ctx context.Context, callID, dateTime string) (models.AvailabilityAnswer, error)
	Schedule(ctx context.Context, callID, email, dateTime string) (models.BookingAnswer, error)
	AddTranscript(callID string, entry models.TranscriptEntry) error
	Transfer(ctx context.Context, callID string) (models.TransferAnswer, error)
	End(ctx context.Context, callID string, status models.CallStatus, hangup bool) (models.CallOutcome, error)
	Outcome(callID string) (models.CallOutcome, error)
}
