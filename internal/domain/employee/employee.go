// Package employee holds the read-only employee reference data. Enrollment
// and HR records are owned by an external system; attendex only reads them.
package employee

// Status marks whether an employee participates in attendance tracking.
type Status string

const (
	// StatusActive employees are tracked and swept for absence.
	StatusActive Status = "Active"
	// StatusInactive employees are ignored by the sweeper.
	StatusInactive Status = "Inactive"
)

// Employee is the reference entity a matched identity resolves to.
type Employee struct {
	id         string
	code       string
	name       string
	department string
	position   string
	status     Status
}

// Reconstruct hydrates an Employee from storage without validation.
func Reconstruct(id, code, name, department, position string, status Status) Employee {
	return Employee{
		id:         id,
		code:       code,
		name:       name,
		department: department,
		position:   position,
		status:     status,
	}
}

// ID returns the opaque employee identifier.
func (e *Employee) ID() string { return e.id }

// Code returns the human-facing employee code.
func (e *Employee) Code() string { return e.code }

// Name returns the employee's full name.
func (e *Employee) Name() string { return e.name }

// Department returns the department name, empty when unassigned.
func (e *Employee) Department() string { return e.department }

// Position returns the position name, empty when unassigned.
func (e *Employee) Position() string { return e.position }

// Status returns the active/inactive status.
func (e *Employee) Status() Status { return e.status }

// IsActive reports whether the employee participates in attendance tracking.
func (e *Employee) IsActive() bool { return e.status == StatusActive }

// Summary is the API-facing subset of employee fields returned with a
// recognition result.
type Summary struct {
	EmployeeID string
	Name       string
	Department string
	Position   string
	Code       string
}

// Summarize builds the API-facing summary.
func (e *Employee) Summarize() Summary {
	return Summary{
		EmployeeID: e.id,
		Name:       e.name,
		Department: e.department,
		Position:   e.position,
		Code:       e.code,
	}
}
