package feature

import (
	"fmt"
	"math"
)

// DefaultDimensions matches the encoder's vector space (dlib-style face embeddings).
const DefaultDimensions = 128

// Vector is a fixed-length face embedding. Immutable once computed; the
// reference vector for an employee is replaced wholesale when their image changes.
type Vector []float64

// New validates a raw embedding against the expected dimensionality.
func New(values []float64, dim int) (Vector, error) {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	if len(values) != dim {
		return nil, fmt.Errorf("vector dimension mismatch: got %d, want %d", len(values), dim)
	}
	return Vector(values), nil
}

// Distance returns the Euclidean distance between two vectors.
// Vectors of different lengths are infinitely far apart rather than an error:
// a stale reference vector must never match, but must not abort a sweep over
// the whole known set either.
func Distance(a, b Vector) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Known binds a stored reference vector to the employee it was enrolled for.
type Known struct {
	EmployeeID string
	Vector     Vector
}
