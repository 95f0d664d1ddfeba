// Package employee reads the employee reference data and enrolled feature
// vectors written by the external enrollment process.
package employee

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/attendex/internal/domain"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
	"github.com/kailas-cloud/attendex/internal/domain/feature"
)

// store is the consumer interface for employee hashes (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the employee and feature-store read contracts.
type Repo struct {
	store store
}

// New creates an employee repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns one employee by id.
func (r *Repo) Get(ctx context.Context, id string) (domemp.Employee, error) {
	m, err := r.store.HGetAll(ctx, empKey(id))
	if err != nil {
		return domemp.Employee{}, fmt.Errorf("hgetall %s: %w", empKey(id), err)
	}
	if len(m) == 0 {
		return domemp.Employee{}, domain.ErrEmployeeNotFound
	}
	return employeeFromHash(id, m), nil
}

// ListActive returns employees with Active status, in stable key order.
func (r *Repo) ListActive(ctx context.Context) ([]domemp.Employee, error) {
	all, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, e := range all {
		if e.IsActive() {
			active = append(active, e)
		}
	}
	return active, nil
}

// AllKnownVectors returns every enrolled (employee, vector) pair. Employees
// without an enrolled vector are skipped. Iteration order is the sorted key
// order, which keeps equidistant matches deterministic across calls.
func (r *Repo) AllKnownVectors(ctx context.Context) ([]feature.Known, error) {
	keys, err := r.scanSorted(ctx)
	if err != nil {
		return nil, err
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall employees: %w", err)
	}

	known := make([]feature.Known, 0, len(hashes))
	for i, m := range hashes {
		vec, ok := vectorFromHash(m)
		if !ok {
			continue
		}
		known = append(known, feature.Known{
			EmployeeID: idFromKey(keys[i]),
			Vector:     vec,
		})
	}
	return known, nil
}

func (r *Repo) list(ctx context.Context) ([]domemp.Employee, error) {
	keys, err := r.scanSorted(ctx)
	if err != nil {
		return nil, err
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall employees: %w", err)
	}

	out := make([]domemp.Employee, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		out = append(out, employeeFromHash(idFromKey(keys[i]), m))
	}
	return out, nil
}

// scanSorted returns employee keys in lexicographic order. SCAN yields keys
// in an unspecified order, which would make tie-breaks flap between runs.
func (r *Repo) scanSorted(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, empKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan employees: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
