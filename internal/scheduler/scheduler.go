package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository/sheets"
)

const sweepTimeout = 2 * time.Minute

// sheetHeader is the first row written to the mirrored range.
var sheetHeader = []interface{}{"id", "name", "quantity", "expiry_date", "expiry_status"}

// ItemLister returns every pantry item with its current expiry status.
type ItemLister interface {
	List(ctx context.Context) ([]models.ItemView, error)
}

// StatusRecorder receives the per-status item counts after each sweep.
type StatusRecorder interface {
	SetItemCounts(counts map[models.ExpiryStatus]int)
}

// Options configures the optional parts of the sweep.
type Options struct {
	// Schedule is a standard five-field cron expression. Empty disables the job.
	Schedule string
	// Location is the timezone the schedule is evaluated in.
	Location *time.Location
	// Sheet, when set, receives a snapshot of the pantry into SheetRange.
	Sheet      sheets.Repository
	SheetRange string
}

// Scheduler runs the periodic expiry sweep.
type Scheduler struct {
	cron     *cron.Cron
	items    ItemLister
	recorder StatusRecorder
	opts     Options
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. The recorder may be nil.
func NewScheduler(items ItemLister, recorder StatusRecorder, opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(opts.Location)),
		items:    items,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
	}
}

// Start registers the sweep, runs it once and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.opts.Schedule == "" {
		s.logger.Info("expiry sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.opts.Schedule, s.runSweep); err != nil {
		return fmt.Errorf("schedule expiry sweep %q: %w", s.opts.Schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.opts.Schedule))
	go s.runSweep()
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
	}
}

// Sweep classifies the pantry, records the counts, logs items that need
// attention and refreshes the sheet mirror. A mirror failure does not hide
// the counts; it is returned after they are recorded.
func (s *Scheduler) Sweep(ctx context.Context) (map[models.ExpiryStatus]int, error) {
	views, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	counts := make(map[models.ExpiryStatus]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}

	for _, item := range views {
		counts[item.ExpiryStatus]++
		switch item.ExpiryStatus {
		case models.StatusExpired:
			s.logger.Info("item expired", zap.Int64("id", item.ID), zap.String("name", item.Name), zap.String("expiry_date", item.ExpiryDate))
		case models.StatusNearExpiry:
			s.logger.Info("item near expiry", zap.Int64("id", item.ID), zap.String("name", item.Name), zap.String("expiry_date", item.ExpiryDate))
		}
	}

	if s.recorder != nil {
		s.recorder.SetItemCounts(counts)
	}

	s.logger.Info("expiry sweep completed",
		zap.Int("items", len(views)),
		zap.Int("expired", counts[models.StatusExpired]),
		zap.Int("near_expiry", counts[models.StatusNearExpiry]))

	if s.opts.Sheet == nil {
		return counts, nil
	}
	if err := s.opts.Sheet.ReplaceRange(ctx, s.opts.SheetRange, sheetRows(views)); err != nil {
		return counts, fmt.Errorf("mirror pantry to sheet: %w", err)
	}
	return counts, nil
}

func sheetRows(views []models.ItemView) [][]interface{} {
	rows := make([][]interface{}, 0, len(views)+1)
	rows = append(rows, sheetHeader)
	for _, item := range views {
		rows = append(rows, []interface{}{item.ID, item.Name, item.Quantity, item.ExpiryDate, string(item.ExpiryStatus)})
	}
	return rows
}
