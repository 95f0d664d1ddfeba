package attendance

import (
	"context"

	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
)

// Repository defines the storage contract for attendance records.
type Repository interface {
	CreateIfAbsent(ctx context.Context, rec domatt.Record) error
	Get(ctx context.Context, employeeID string, day domatt.Day) (domatt.Record, error)
	Update(ctx context.Context, rec domatt.Record) error
	ListByEmployee(ctx context.Context, employeeID string) ([]domatt.Record, error)
	ListAll(ctx context.Context) ([]domatt.Record, error)
}

// ConfigStore reads and appends attendance config versions.
type ConfigStore interface {
	Latest(ctx context.Context) (domatt.Config, error)
	Append(ctx context.Context, cfg domatt.Config) error
}

// EmployeeReader resolves employee reference data for history rows.
type EmployeeReader interface {
	Get(ctx context.Context, id string) (domemp.Employee, error)
}
