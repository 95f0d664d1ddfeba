package attendance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/attendex/internal/db"
	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
)

// memStore is an in-memory stand-in for the KV store.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) SetNX(_ context.Context, key string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if matchPattern(pattern, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// matchPattern supports the single-star patterns the repo uses.
func matchPattern(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, p := range parts[1:] {
		idx := strings.Index(s, p)
		if idx < 0 {
			return false
		}
		s = s[idx+len(p):]
	}
	return true
}

func testDay(t *testing.T) domatt.Day {
	t.Helper()
	d, err := domatt.ParseDay("2025-03-10")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	return d
}

func testRecord(t *testing.T, employeeID string) domatt.Record {
	t.Helper()
	checkIn := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	rec := domatt.NewCheckIn("rec-"+employeeID, employeeID, testDay(t), checkIn, "AI Lab")
	rec.Recompute(domatt.DefaultConfig())
	return rec
}

func TestCreateIfAbsent_ThenGet(t *testing.T) {
	repo := New(newMemStore())
	ctx := context.Background()

	if err := repo.CreateIfAbsent(ctx, testRecord(t, "emp-1")); err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}

	got, err := repo.Get(ctx, "emp-1", testDay(t))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status() != domatt.StatusLate {
		t.Errorf("status = %s, want Late", got.Status())
	}
	if got.CheckInLocation() != "AI Lab" {
		t.Errorf("check-in location = %q", got.CheckInLocation())
	}
	if got.ID() != "rec-emp-1" {
		t.Errorf("id = %q", got.ID())
	}
}

func TestCreateIfAbsent_Duplicate(t *testing.T) {
	repo := New(newMemStore())
	ctx := context.Background()

	if err := repo.CreateIfAbsent(ctx, testRecord(t, "emp-1")); err != nil {
		t.Fatalf("first CreateIfAbsent: %v", err)
	}
	err := repo.CreateIfAbsent(ctx, testRecord(t, "emp-1"))
	if !errors.Is(err, domain.ErrDuplicateAttendance) {
		t.Errorf("second CreateIfAbsent err = %v, want ErrDuplicateAttendance", err)
	}
}

func TestGet_Missing(t *testing.T) {
	repo := New(newMemStore())

	_, err := repo.Get(context.Background(), "emp-9", testDay(t))
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestUpdate_RoundTripsCheckOut(t *testing.T) {
	repo := New(newMemStore())
	ctx := context.Background()

	rec := testRecord(t, "emp-1")
	if err := repo.CreateIfAbsent(ctx, rec); err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}

	if err := rec.SetCheckOut(time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC), "Lobby"); err != nil {
		t.Fatalf("SetCheckOut: %v", err)
	}
	rec.Recompute(domatt.DefaultConfig())
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, "emp-1", testDay(t))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.HasCheckOut() {
		t.Fatal("expected check-out set")
	}
	if got.WorkingHours() != 8.5 {
		t.Errorf("working hours = %v, want 8.5", got.WorkingHours())
	}
	if got.CheckOutLocation() != "Lobby" {
		t.Errorf("check-out location = %q", got.CheckOutLocation())
	}
}

func TestListByDay(t *testing.T) {
	repo := New(newMemStore())
	ctx := context.Background()

	for _, id := range []string{"emp-1", "emp-2", "emp-3"} {
		if err := repo.CreateIfAbsent(ctx, testRecord(t, id)); err != nil {
			t.Fatalf("CreateIfAbsent %s: %v", id, err)
		}
	}

	records, err := repo.ListByDay(ctx, testDay(t))
	if err != nil {
		t.Fatalf("ListByDay: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len = %d, want 3", len(records))
	}
}

func TestListByEmployee(t *testing.T) {
	repo := New(newMemStore())
	ctx := context.Background()

	days := []string{"2025-03-10", "2025-03-11"}
	for _, ds := range days {
		d, err := domatt.ParseDay(ds)
		if err != nil {
			t.Fatalf("ParseDay: %v", err)
		}
		rec := domatt.NewAbsent("rec-"+ds, "emp-1", d, time.Now())
		if err := repo.CreateIfAbsent(ctx, rec); err != nil {
			t.Fatalf("CreateIfAbsent: %v", err)
		}
	}

	records, err := repo.ListByEmployee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("ListByEmployee: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len = %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.EmployeeID() != "emp-1" {
			t.Errorf("employee id = %q", rec.EmployeeID())
		}
	}
}
