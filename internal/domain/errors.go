package domain

import "errors"

var (
	// ErrInvalidImage signals an undecodable image payload.
	ErrInvalidImage = errors.New("invalid image")
	// ErrNoFaceDetected signals that the encoder found no face in the sample.
	ErrNoFaceDetected = errors.New("no face detected")
	// ErrEmployeeNotFound signals that a matched id no longer resolves to an employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrAlreadyCheckedIn signals a repeated check-in for the same day (idempotent warning).
	ErrAlreadyCheckedIn = errors.New("already checked in")
	// ErrAlreadyCheckedOut signals a repeated check-out for the same day (idempotent warning).
	ErrAlreadyCheckedOut = errors.New("already checked out")
	// ErrNotCheckedInYet signals a check-out attempted with no prior check-in.
	ErrNotCheckedInYet = errors.New("not checked in yet")
	// ErrDuplicateAttendance signals a creation race detected at the storage constraint.
	ErrDuplicateAttendance = errors.New("duplicate attendance record")
	// ErrRecordNotFound signals a missing attendance record.
	ErrRecordNotFound = errors.New("attendance record not found")

	// ErrConfigNotFound signals that no attendance config has been created yet.
	ErrConfigNotFound = errors.New("attendance config not configured")
	// ErrInvalidConfig signals a rejected cutoff pair.
	ErrInvalidConfig = errors.New("invalid attendance config")
	// ErrEncoderError signals an encoder sidecar failure.
	ErrEncoderError = errors.New("encoder error")
	// ErrInvalidAction signals an unknown attendance action.
	ErrInvalidAction = errors.New("invalid action")
)
