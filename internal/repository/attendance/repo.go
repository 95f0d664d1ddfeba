// Package attendance persists attendance records keyed by (employee, day).
package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/attendex/internal/db"
	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
)

// store is the consumer interface for record blobs (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the ledger's persistence contract.
type Repo struct {
	store store
}

// New creates an attendance record repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// CreateIfAbsent writes a new record only when no record exists for its
// (employee, day) key. A concurrent creation surfaces as
// domain.ErrDuplicateAttendance; the caller decides whether that is a race
// to report or an idempotent retry to absorb.
func (r *Repo) CreateIfAbsent(ctx context.Context, rec domatt.Record) error {
	data, err := recordToJSON(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	key := recordKey(rec.Day(), rec.EmployeeID())
	created, err := r.store.SetNX(ctx, key, data)
	if err != nil {
		return fmt.Errorf("setnx %s: %w", key, err)
	}
	if !created {
		return domain.ErrDuplicateAttendance
	}
	return nil
}

// Get returns the record for one (employee, day) key.
func (r *Repo) Get(ctx context.Context, employeeID string, day domatt.Day) (domatt.Record, error) {
	key := recordKey(day, employeeID)
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domatt.Record{}, domain.ErrRecordNotFound
		}
		return domatt.Record{}, fmt.Errorf("get %s: %w", key, err)
	}
	return recordFromJSON(employeeID, day, raw)
}

// Update overwrites an existing record after a transition.
func (r *Repo) Update(ctx context.Context, rec domatt.Record) error {
	data, err := recordToJSON(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := recordKey(rec.Day(), rec.EmployeeID())
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// ListByDay returns every record for one calendar date.
func (r *Repo) ListByDay(ctx context.Context, day domatt.Day) ([]domatt.Record, error) {
	return r.listPattern(ctx, recordScanPattern(day.String(), "*"))
}

// ListByEmployee returns every record for one employee across all days.
func (r *Repo) ListByEmployee(ctx context.Context, employeeID string) ([]domatt.Record, error) {
	return r.listPattern(ctx, recordScanPattern("*", employeeID))
}

// ListAll returns every stored record.
func (r *Repo) ListAll(ctx context.Context) ([]domatt.Record, error) {
	return r.listPattern(ctx, recordScanPattern("*", "*"))
}

func (r *Repo) listPattern(ctx context.Context, pattern string) ([]domatt.Record, error) {
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}

	records := make([]domatt.Record, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				// Deleted between SCAN and GET.
				continue
			}
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		empID, day, err := parseRecordKey(key)
		if err != nil {
			return nil, err
		}
		rec, err := recordFromJSON(empID, day, raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
