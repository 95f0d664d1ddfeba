// Package match implements nearest-neighbor identity resolution over the
// known feature vectors.
package match

import (
	"github.com/kailas-cloud/attendex/internal/domain/feature"
)

// Match is the outcome of resolving a probe vector.
type Match struct {
	EmployeeID string
	Distance   float64
}

// Resolve scans every known vector, selects the minimum Euclidean distance to
// the probe, and accepts it when within tolerance. Ties go to the vector seen
// first in iteration order, so results are repeatable for a fixed known set.
// An empty known set is a plain no-match, not an error.
func Resolve(probe feature.Vector, known []feature.Known, tolerance float64) (Match, bool) {
	best := Match{Distance: -1}
	for _, k := range known {
		d := feature.Distance(probe, k.Vector)
		if best.Distance < 0 || d < best.Distance {
			best = Match{EmployeeID: k.EmployeeID, Distance: d}
		}
	}
	if best.Distance < 0 || best.Distance > tolerance {
		return Match{}, false
	}
	return best, true
}
