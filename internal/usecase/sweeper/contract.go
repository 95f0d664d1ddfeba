package sweeper

import (
	"context"

	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
)

// RecordStore reads a day's records and creates absence records under the
// same create-if-absent discipline as the ledger.
type RecordStore interface {
	ListByDay(ctx context.Context, day domatt.Day) ([]domatt.Record, error)
	CreateIfAbsent(ctx context.Context, rec domatt.Record) error
}

// EmployeeLister returns the employees participating in attendance tracking.
type EmployeeLister interface {
	ListActive(ctx context.Context) ([]domemp.Employee, error)
}
