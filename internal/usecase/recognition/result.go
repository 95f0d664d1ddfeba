package recognition

import (
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
)

// StatusCode tags a recognition outcome for the API layer.
type StatusCode string

const (
	// StatusSuccess means the attendance transition was applied.
	StatusSuccess StatusCode = "success"
	// StatusWarning means the transition was already done today (idempotent).
	StatusWarning StatusCode = "warning"
	// StatusFail means no identity could be resolved; a normal negative
	// outcome, not an error.
	StatusFail StatusCode = "fail"
)

// Result is the structured outcome of one recognition request. Sequencing
// violations and infrastructure failures are returned as errors instead and
// mapped by the transport layer.
type Result struct {
	Status   StatusCode
	Message  string
	Employee *domemp.Summary
	Record   *domatt.Record
	Distance float64
}

func failResult(message string) Result {
	return Result{Status: StatusFail, Message: message}
}
