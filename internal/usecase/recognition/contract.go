package recognition

import (
	"context"
	"time"

	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
	"github.com/kailas-cloud/attendex/internal/domain/feature"
)

// Encoder extracts a feature vector from one captured frame.
// Returns domain.ErrNoFaceDetected when the frame holds no usable face.
type Encoder interface {
	Encode(ctx context.Context, image []byte) (feature.Vector, error)
}

// FeatureReader loads the enrolled (employee, vector) pairs.
type FeatureReader interface {
	AllKnownVectors(ctx context.Context) ([]feature.Known, error)
}

// EmployeeReader resolves a matched id to the employee reference data.
type EmployeeReader interface {
	Get(ctx context.Context, id string) (domemp.Employee, error)
}

// Ledger applies the attendance transition once an identity is known.
type Ledger interface {
	Transition(
		ctx context.Context, employeeID string, action domatt.Action,
		now time.Time, location string,
	) (domatt.Record, error)
}

// FrameSource yields capture frames for one recognition request. Next
// returns io.EOF when no more frames are available; Close releases the
// underlying capture device and must be safe to call on every exit path.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}
