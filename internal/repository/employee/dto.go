package employee

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/attendex/internal/domain"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
	"github.com/kailas-cloud/attendex/internal/domain/feature"
)

func empKey(id string) string {
	return domain.KeyPrefix + "emp:" + id
}

func idFromKey(key string) string {
	return strings.TrimPrefix(key, domain.KeyPrefix+"emp:")
}

// employeeFromHash hydrates an Employee from an HGETALL result map.
func employeeFromHash(id string, m map[string]string) domemp.Employee {
	status := domemp.Status(m["status"])
	if status == "" {
		status = domemp.StatusInactive
	}
	return domemp.Reconstruct(
		id,
		m["code"],
		m["name"],
		m["department"],
		m["position"],
		status,
	)
}

// vectorFromHash decodes the enrolled feature vector, stored as a JSON array
// in the "vector" field. Returns false when no vector is enrolled or the
// payload is unreadable; a single bad enrollment must not break matching for
// everyone else.
func vectorFromHash(m map[string]string) (feature.Vector, bool) {
	raw := m["vector"]
	if raw == "" {
		return nil, false
	}
	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false
	}
	if len(values) == 0 {
		return nil, false
	}
	return feature.Vector(values), true
}
