package attendance

import (
	"math"
	"time"
)

// Classify derives the record status from the check-in timestamp. A missing
// check-in is Absent; a check-in strictly after the late threshold is Late;
// anything else is Present. A check-in by definition implies presence, so the
// sweeper is the only writer of Absent on records that stay empty.
func Classify(checkIn time.Time, lateThreshold TimeOfDay) Status {
	if checkIn.IsZero() {
		return StatusAbsent
	}
	secs := checkIn.Hour()*3600 + checkIn.Minute()*60 + checkIn.Second()
	if secs > lateThreshold.SecondOfDay() {
		return StatusLate
	}
	return StatusPresent
}

// WorkingHours computes hours worked inside the configured work window.
// Either timestamp missing yields 0. The interval is clipped to
// [workStart, workEnd] on the check-in's date; a non-positive clipped
// interval yields 0. The result is rounded to two decimal places.
func WorkingHours(checkIn, checkOut time.Time, workStart, workEnd TimeOfDay) float64 {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}

	start := workStart.On(checkIn)
	end := workEnd.On(checkIn)

	from := checkIn
	if from.Before(start) {
		from = start
	}
	to := checkOut
	if to.After(end) {
		to = end
	}

	if !to.After(from) {
		return 0
	}
	return math.Round(to.Sub(from).Hours()*100) / 100
}
