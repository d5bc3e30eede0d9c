package dispatch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadline/models"
	"leadline/services/leadsheet"
)

// Lead sheet status labels owned by the dispatcher.
const (
	StatusPending    = "Pending"
	StatusDispatched = "Dispatched"
	StatusFailed     = "Failed"
)

const lastCalledLayout = "2006-01-02 15:04:05"

// SheetSource turns pending lead sheet rows into jobs.
type SheetSource struct {
	Client *leadsheet.Client
	Logger *zap.Logger
	Now    func() time.Time
}

func NewSheetSource(client *leadsheet.Client, logger *zap.Logger) *SheetSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetSource{Client: client, Logger: logger, Now: time.Now}
}

// PendingJobs returns a job for every row whose status is Pending and which
// has a valid phone number.
func PendingJobs(t *leadsheet.Table, logger *zap.Logger) []models.Job {
	if t.Column(leadsheet.ColStatus) < 0 || t.Column(leadsheet.ColPhoneNumber) < 0 {
		logger.Error("Lead sheet is missing Status or Phone Number column", zap.Strings("header", t.Header))
		return nil
	}
	var jobs []models.Job
	for _, row := range t.Rows {
		if !strings.EqualFold(t.Cell(row, leadsheet.ColStatus), StatusPending) {
			continue
		}
		phone := t.Cell(row, leadsheet.ColPhoneNumber)
		if phone == "" {
			continue
		}
		job, err := NewJob(phone, t.Cell(row, leadsheet.ColName), t.Cell(row, leadsheet.ColAppointmentTime), strconv.Itoa(row.Number))
		if err == nil {
			job, err = WithTransfer(job, t.Cell(row, leadsheet.ColTransferTo))
		}
		if err != nil {
			logger.Warn("Skipping lead row", zap.Int("row", row.Number), zap.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// Claim reads the sheet, marks every pending row as Dispatched and returns
// the jobs. A row that cannot be marked is not returned, so it will be
// picked up again on the next poll.
func (s *SheetSource) Claim(ctx context.Context) ([]models.Job, error) {
	table, err := s.Client.Read(ctx)
	if err != nil {
		return nil, err
	}
	pending := PendingJobs(table, s.Logger)

	claimed := make([]models.Job, 0, len(pending))
	for _, job := range pending {
		row, _ := strconv.Atoi(job.RowID)
		if err := s.mark(ctx, table, row, StatusDispatched); err != nil {
			s.Logger.Error("Failed to claim lead row", zap.Int("row", row), zap.Error(err))
			continue
		}
		claimed = append(claimed, job)
	}
	if len(claimed) > 0 {
		s.Logger.Info("Claimed pending leads", zap.Int("count", len(claimed)))
	}
	return claimed, nil
}

// MarkFailed records that a job could not be launched.
func (s *SheetSource) MarkFailed(ctx context.Context, job models.Job) error {
	row, err := strconv.Atoi(job.RowID)
	if err != nil {
		return err
	}
	table, err := s.Client.Read(ctx)
	if err != nil {
		return err
	}
	return s.mark(ctx, table, row, StatusFailed)
}

func (s *SheetSource) mark(ctx context.Context, t *leadsheet.Table, row int, status string) error {
	_, err := s.Client.UpdateRow(ctx, t, row, map[string]string{
		leadsheet.ColStatus:     status,
		leadsheet.ColLastCalled: s.Now().Format(lastCalledLayout),
	})
	return err
}
