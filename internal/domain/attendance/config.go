package attendance

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/attendex/internal/domain"
)

// Config holds the daily cutoffs: CheckInTime is the late-arrival threshold
// and the start of the counted work window, CheckOutTime is the end of it.
// Multiple historical versions may exist; the one created last is
// authoritative. Written through the admin endpoint, read-only to the core.
type Config struct {
	checkInTime  TimeOfDay
	checkOutTime TimeOfDay
	createdAt    time.Time
}

// NewConfig validates a cutoff pair.
func NewConfig(checkInTime, checkOutTime TimeOfDay, createdAt time.Time) (Config, error) {
	if checkOutTime.SecondOfDay() <= checkInTime.SecondOfDay() {
		return Config{}, fmt.Errorf("%w: check-out cutoff %s must be after check-in cutoff %s",
			domain.ErrInvalidConfig, checkOutTime, checkInTime)
	}
	return Config{checkInTime: checkInTime, checkOutTime: checkOutTime, createdAt: createdAt}, nil
}

// ReconstructConfig hydrates a Config from storage without validation.
func ReconstructConfig(checkInTime, checkOutTime TimeOfDay, createdAt time.Time) Config {
	return Config{checkInTime: checkInTime, checkOutTime: checkOutTime, createdAt: createdAt}
}

// DefaultConfig returns the 08:00–17:00 window used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		checkInTime:  TimeOfDay{hour: 8},
		checkOutTime: TimeOfDay{hour: 17},
	}
}

// CheckInTime returns the late threshold / work window start.
func (c Config) CheckInTime() TimeOfDay { return c.checkInTime }

// CheckOutTime returns the work window end.
func (c Config) CheckOutTime() TimeOfDay { return c.checkOutTime }

// CreatedAt returns the version creation timestamp; latest wins.
func (c Config) CreatedAt() time.Time { return c.createdAt }
