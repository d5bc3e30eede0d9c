package results

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"leadline/models"
)

// Sink receives the flat record of a finished call.
type Sink interface {
	Deliver(ctx context.Context, rec models.CallResult) error
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, rec models.CallResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeliveryTimeout bounds one Report call.
const DeliveryTimeout = 30 * time.Second

// Report delivers rec and swallows any failure after logging it. A lost
// report row must never affect the call.
func Report(sink Sink, rec models.CallResult, logger *zap.Logger) {
	if sink == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), DeliveryTimeout)
	defer cancel()

	if err := sink.Deliver(ctx, rec); err != nil {
		logger.Error("Failed to deliver call result",
			zap.String("call_id", rec.CallID),
			zap.String("row_id", rec.RowID),
			zap.String("status", rec.CallStatus),
			zap.Error(err))
		return
	}
	logger.Info("Call result delivered",
		zap.String("call_id", rec.CallID),
		zap.String("status", rec.CallStatus),
		zap.Bool("appointment_scheduled", rec.AppointmentScheduled))
}
