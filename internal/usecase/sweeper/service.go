// Package sweeper marks active employees without attendance as Absent for a
// target date. The original deployment ran it daily after the morning cutoff.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	"github.com/kailas-cloud/attendex/internal/metrics"
)

// Service runs the absence sweep.
type Service struct {
	records RecordStore
	emps    EmployeeLister
	newID   func() string
	logger  *zap.Logger
}

// New creates a sweeper service.
func New(records RecordStore, emps EmployeeLister, logger *zap.Logger) *Service {
	return &Service{
		records: records,
		emps:    emps,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// Result summarizes one sweep run.
type Result struct {
	Day     domatt.Day
	Marked  int
	Skipped int
}

// Sweep creates an Absent record for every active employee with no record on
// day. Already-recorded employees are skipped up front; creation still goes
// through the storage create-if-absent constraint, so a concurrent check-in
// or a second sweep for the same date never duplicates a row. Running it
// twice is a no-op.
func (s *Service) Sweep(ctx context.Context, day domatt.Day, now time.Time) (Result, error) {
	employees, err := s.emps.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list active employees: %w", err)
	}

	existing, err := s.records.ListByDay(ctx, day)
	if err != nil {
		return Result{}, fmt.Errorf("list records for %s: %w", day, err)
	}
	recorded := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		recorded[rec.EmployeeID()] = struct{}{}
	}

	res := Result{Day: day}
	for _, emp := range employees {
		if _, ok := recorded[emp.ID()]; ok {
			res.Skipped++
			continue
		}
		rec := domatt.NewAbsent(s.newID(), emp.ID(), day, now)
		err := s.records.CreateIfAbsent(ctx, rec)
		switch {
		case errors.Is(err, domain.ErrDuplicateAttendance):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("mark %s absent: %w", emp.ID(), err)
		default:
			res.Marked++
			metrics.AbsenceMarkedTotal.Inc()
		}
	}

	s.logger.Info("absence sweep finished",
		zap.String("day", day.String()),
		zap.Int("marked", res.Marked),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
