package attendconfig

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/attendex/internal/db"
	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
)

type memStore struct {
	data     map[string][]byte
	counters map[string]int64
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte), counters: make(map[string]int64)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if n, ok := m.counters[key]; ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memStore) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	m.counters[key] += val
	return m.counters[key], nil
}

func mustConfig(t *testing.T, in, out string, createdAt time.Time) domatt.Config {
	t.Helper()
	inT, err := domatt.ParseTimeOfDay(in)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", in, err)
	}
	outT, err := domatt.ParseTimeOfDay(out)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", out, err)
	}
	cfg, err := domatt.NewConfig(inT, outT, createdAt)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestLatest_NotConfigured(t *testing.T) {
	repo := New(newMemStore())

	_, err := repo.Latest(context.Background())
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestAppend_LatestWins(t *testing.T) {
	repo := New(newMemStore())
	ctx := context.Background()

	first := mustConfig(t, "08:00:00", "17:00:00", time.Now().Add(-time.Hour))
	second := mustConfig(t, "08:30:00", "17:30:00", time.Now())

	if err := repo.Append(ctx, first); err != nil {
		t.Fatalf("Append first: %v", err)
	}
	if err := repo.Append(ctx, second); err != nil {
		t.Fatalf("Append second: %v", err)
	}

	got, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.CheckInTime().String() != "08:30:00" {
		t.Errorf("check-in cutoff = %s, want 08:30:00", got.CheckInTime())
	}
	if got.CheckOutTime().String() != "17:30:00" {
		t.Errorf("check-out cutoff = %s, want 17:30:00", got.CheckOutTime())
	}
}
