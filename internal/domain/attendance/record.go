// Package attendance holds the attendance record aggregate, the daily
// check-in/check-out cutoffs, and the pure status/working-hours policy.
package attendance

import (
	"fmt"
	"time"
)

// Status classifies an attendance record.
type Status string

const (
	// StatusPresent means the employee checked in at or before the late threshold.
	StatusPresent Status = "Present"
	// StatusLate means the employee checked in strictly after the late threshold.
	StatusLate Status = "Late"
	// StatusAbsent is assigned only by the absence sweep, never by a check-in.
	StatusAbsent Status = "Absent"
)

// Action is a requested attendance transition.
type Action string

const (
	// ActionCheckIn records the start of a working day.
	ActionCheckIn Action = "check_in"
	// ActionCheckOut records the end of a working day.
	ActionCheckOut Action = "check_out"
)

// ParseAction validates a wire-level action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCheckIn, ActionCheckOut:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// Record is one employee's attendance for one day. There is at most one per
// (employee, day); the ledger enforces that, not the caller.
type Record struct {
	id               string
	employeeID       string
	day              Day
	checkIn          time.Time
	checkOut         time.Time
	checkInLocation  string
	checkOutLocation string
	status           Status
	workingHours     float64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewCheckIn creates the record for a first check-in event. Status and
// working hours are left for Recompute before persisting.
func NewCheckIn(id, employeeID string, day Day, at time.Time, location string) Record {
	return Record{
		id:              id,
		employeeID:      employeeID,
		day:             day,
		checkIn:         at,
		checkInLocation: location,
		createdAt:       at,
		updatedAt:       at,
	}
}

// NewAbsent creates the record the sweeper writes for an employee with no
// attendance on the target day.
func NewAbsent(id, employeeID string, day Day, at time.Time) Record {
	return Record{
		id:         id,
		employeeID: employeeID,
		day:        day,
		status:     StatusAbsent,
		createdAt:  at,
		updatedAt:  at,
	}
}

// Reconstruct hydrates a Record from storage without validation.
func Reconstruct(
	id, employeeID string, day Day,
	checkIn, checkOut time.Time, checkInLocation, checkOutLocation string,
	status Status, workingHours float64, createdAt, updatedAt time.Time,
) Record {
	return Record{
		id:               id,
		employeeID:       employeeID,
		day:              day,
		checkIn:          checkIn,
		checkOut:         checkOut,
		checkInLocation:  checkInLocation,
		checkOutLocation: checkOutLocation,
		status:           status,
		workingHours:     workingHours,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// EmployeeID returns the owning employee's identifier.
func (r *Record) EmployeeID() string { return r.employeeID }

// Day returns the calendar date of the record.
func (r *Record) Day() Day { return r.day }

// CheckIn returns the check-in timestamp, zero when unset.
func (r *Record) CheckIn() time.Time { return r.checkIn }

// CheckOut returns the check-out timestamp, zero when unset.
func (r *Record) CheckOut() time.Time { return r.checkOut }

// CheckInLocation returns the free-text capture location of the check-in.
func (r *Record) CheckInLocation() string { return r.checkInLocation }

// CheckOutLocation returns the free-text capture location of the check-out.
func (r *Record) CheckOutLocation() string { return r.checkOutLocation }

// Status returns the computed classification.
func (r *Record) Status() Status { return r.status }

// WorkingHours returns the computed worked hours, two-decimal precision.
func (r *Record) WorkingHours() float64 { return r.workingHours }

// CreatedAt returns the creation timestamp.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last mutation timestamp.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// HasCheckIn reports whether a check-in has been recorded.
func (r *Record) HasCheckIn() bool { return !r.checkIn.IsZero() }

// HasCheckOut reports whether a check-out has been recorded.
func (r *Record) HasCheckOut() bool { return !r.checkOut.IsZero() }

// SetCheckIn fills the check-in on a record that has none yet (a sweeper-created
// Absent record being upgraded by a late arrival).
func (r *Record) SetCheckIn(at time.Time, location string) error {
	if r.HasCheckIn() {
		return fmt.Errorf("check-in already recorded at %s", r.checkIn.Format(time.RFC3339))
	}
	r.checkIn = at
	r.checkInLocation = location
	r.updatedAt = at
	return nil
}

// SetCheckOut fills the check-out. The check-in must exist and precede it.
func (r *Record) SetCheckOut(at time.Time, location string) error {
	if !r.HasCheckIn() {
		return fmt.Errorf("check-out without check-in")
	}
	if r.HasCheckOut() {
		return fmt.Errorf("check-out already recorded at %s", r.checkOut.Format(time.RFC3339))
	}
	if at.Before(r.checkIn) {
		return fmt.Errorf("check-out %s before check-in %s",
			at.Format(time.RFC3339), r.checkIn.Format(time.RFC3339))
	}
	r.checkOut = at
	r.checkOutLocation = location
	r.updatedAt = at
	return nil
}

// Recompute re-derives status and working hours from the timestamps. The
// ledger calls it after every mutating transition, before persisting.
func (r *Record) Recompute(cfg Config) {
	r.status = Classify(r.checkIn, cfg.CheckInTime())
	r.workingHours = WorkingHours(r.checkIn, r.checkOut, cfg.CheckInTime(), cfg.CheckOutTime())
}
