// Package attendance implements the ledger: the check-in/check-out state
// machine over one record per employee per day.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
)

// Service is the attendance ledger. All record mutations go through
// Transition, which serializes per (employee, day) and recomputes status and
// working hours before persisting.
type Service struct {
	repo   Repository
	cfgs   ConfigStore
	emps   EmployeeReader
	locks  *keyedMutex
	newID  func() string
	logger *zap.Logger
}

// New creates the ledger service.
func New(repo Repository, cfgs ConfigStore, emps EmployeeReader, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cfgs:   cfgs,
		emps:   emps,
		locks:  newKeyedMutex(),
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Transition applies one attendance action for (employeeID, day-of-now).
//
// Outcomes: a nil error with the resulting record on success; the current
// record together with ErrAlreadyCheckedIn / ErrAlreadyCheckedOut when the
// action was already done (idempotent warning, nothing mutated); a zero
// record with ErrNotCheckedInYet for a check-out with no prior check-in.
func (s *Service) Transition(
	ctx context.Context, employeeID string, action domatt.Action, now time.Time, location string,
) (domatt.Record, error) {
	day := domatt.DayOf(now)

	unlock := s.locks.Lock(employeeID + "|" + day.String())
	defer unlock()

	cfg := s.effectiveConfig(ctx)

	switch action {
	case domatt.ActionCheckIn:
		return s.checkIn(ctx, employeeID, day, now, location, cfg)
	case domatt.ActionCheckOut:
		return s.checkOut(ctx, employeeID, day, now, location, cfg)
	default:
		return domatt.Record{}, fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
	}
}

func (s *Service) checkIn(
	ctx context.Context, employeeID string, day domatt.Day, now time.Time,
	location string, cfg domatt.Config,
) (domatt.Record, error) {
	rec, err := s.repo.Get(ctx, employeeID, day)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return s.createCheckIn(ctx, employeeID, day, now, location, cfg)
	case err != nil:
		return domatt.Record{}, fmt.Errorf("get record: %w", err)
	}

	if rec.HasCheckIn() {
		return rec, domain.ErrAlreadyCheckedIn
	}

	// Sweeper marked the day Absent before the employee arrived; the
	// check-in fills the record in and the status is recomputed (Late,
	// given the sweep runs after the cutoff).
	if err := rec.SetCheckIn(now, location); err != nil {
		return domatt.Record{}, fmt.Errorf("set check-in: %w", err)
	}
	rec.Recompute(cfg)
	if err := s.repo.Update(ctx, rec); err != nil {
		return domatt.Record{}, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

func (s *Service) createCheckIn(
	ctx context.Context, employeeID string, day domatt.Day, now time.Time,
	location string, cfg domatt.Config,
) (domatt.Record, error) {
	rec := domatt.NewCheckIn(s.newID(), employeeID, day, now, location)
	rec.Recompute(cfg)

	err := s.repo.CreateIfAbsent(ctx, rec)
	if errors.Is(err, domain.ErrDuplicateAttendance) {
		// Lost a cross-process race: another instance created the record
		// between our read and write. Report it as the idempotent warning.
		existing, gerr := s.repo.Get(ctx, employeeID, day)
		if gerr != nil {
			return domatt.Record{}, fmt.Errorf("get record after create race: %w", gerr)
		}
		s.logger.Warn("check-in creation race absorbed",
			zap.String("employee_id", employeeID),
			zap.String("day", day.String()),
		)
		return existing, domain.ErrAlreadyCheckedIn
	}
	if err != nil {
		return domatt.Record{}, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

func (s *Service) checkOut(
	ctx context.Context, employeeID string, day domatt.Day, now time.Time,
	location string, cfg domatt.Config,
) (domatt.Record, error) {
	rec, err := s.repo.Get(ctx, employeeID, day)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return domatt.Record{}, domain.ErrNotCheckedInYet
	case err != nil:
		return domatt.Record{}, fmt.Errorf("get record: %w", err)
	}

	if !rec.HasCheckIn() {
		// Absent record from the sweeper; still no check-in to close.
		return domatt.Record{}, domain.ErrNotCheckedInYet
	}
	if rec.HasCheckOut() {
		return rec, domain.ErrAlreadyCheckedOut
	}

	if err := rec.SetCheckOut(now, location); err != nil {
		return domatt.Record{}, fmt.Errorf("set check-out: %w", err)
	}
	rec.Recompute(cfg)
	if err := s.repo.Update(ctx, rec); err != nil {
		return domatt.Record{}, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

// effectiveConfig returns the latest configured cutoffs, or the default
// 08:00–17:00 window when nothing is configured. Storage failures fall back
// to the default too: recording attendance with default cutoffs beats
// rejecting the punch.
func (s *Service) effectiveConfig(ctx context.Context) domatt.Config {
	cfg, err := s.cfgs.Latest(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrConfigNotFound) {
			s.logger.Error("load attendance config", zap.Error(err))
		}
		return domatt.DefaultConfig()
	}
	return cfg
}

// Entry is one history row: a record joined with its employee summary.
type Entry struct {
	Record   domatt.Record
	Employee domemp.Summary
}

// History returns records newest-day-first, optionally filtered by employee
// and an inclusive day range.
func (s *Service) History(
	ctx context.Context, employeeID string, from, to domatt.Day,
) ([]Entry, error) {
	var records []domatt.Record
	var err error
	if employeeID != "" {
		records, err = s.repo.ListByEmployee(ctx, employeeID)
	} else {
		records, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	filtered := records[:0]
	for _, rec := range records {
		if !from.IsZero() && rec.Day().Before(from) {
			continue
		}
		if !to.IsZero() && to.Before(rec.Day()) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[j].Day().Before(filtered[i].Day())
	})

	summaries := make(map[string]domemp.Summary)
	entries := make([]Entry, 0, len(filtered))
	for _, rec := range filtered {
		sum, ok := summaries[rec.EmployeeID()]
		if !ok {
			emp, err := s.emps.Get(ctx, rec.EmployeeID())
			if err != nil {
				if !errors.Is(err, domain.ErrEmployeeNotFound) {
					return nil, fmt.Errorf("get employee %s: %w", rec.EmployeeID(), err)
				}
				// Employee removed after the record was written; keep the
				// row with a bare id rather than dropping history.
				sum = domemp.Summary{EmployeeID: rec.EmployeeID()}
			} else {
				sum = emp.Summarize()
			}
			summaries[rec.EmployeeID()] = sum
		}
		entries = append(entries, Entry{Record: rec, Employee: sum})
	}
	return entries, nil
}

// Config returns the latest cutoff configuration;
// domain.ErrConfigNotFound when none exists.
func (s *Service) Config(ctx context.Context) (domatt.Config, error) {
	return s.cfgs.Latest(ctx)
}

// SetConfig appends a new cutoff configuration version, which becomes the
// authoritative one.
func (s *Service) SetConfig(
	ctx context.Context, checkInTime, checkOutTime domatt.TimeOfDay, now time.Time,
) (domatt.Config, error) {
	cfg, err := domatt.NewConfig(checkInTime, checkOutTime, now)
	if err != nil {
		return domatt.Config{}, err
	}
	if err := s.cfgs.Append(ctx, cfg); err != nil {
		return domatt.Config{}, fmt.Errorf("append config: %w", err)
	}
	return cfg, nil
}
