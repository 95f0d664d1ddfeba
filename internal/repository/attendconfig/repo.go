// Package attendconfig stores the attendance cutoff configuration as an
// append-only sequence of versions; the latest version is authoritative.
package attendconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/attendex/internal/db"
	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
)

// store is the consumer interface for config versions (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Repo implements the attendance config read/append contract.
type Repo struct {
	store store
}

// New creates a config repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

type configRow struct {
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
	CreatedAt    string `json:"created_at"`
}

func seqKey() string            { return domain.KeyPrefix + "cfg:seq" }
func versionKey(n int64) string { return domain.KeyPrefix + "cfg:v:" + strconv.FormatInt(n, 10) }

// Append stores a new config version and makes it the latest. The version
// counter advances atomically, so concurrent appends never overwrite each
// other; the larger sequence number wins, matching latest-created-wins.
func (r *Repo) Append(ctx context.Context, cfg domatt.Config) error {
	n, err := r.store.IncrBy(ctx, seqKey(), 1)
	if err != nil {
		return fmt.Errorf("next config version: %w", err)
	}

	row := configRow{
		CheckInTime:  cfg.CheckInTime().String(),
		CheckOutTime: cfg.CheckOutTime().String(),
		CreatedAt:    cfg.CreatedAt().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := r.store.Set(ctx, versionKey(n), data); err != nil {
		return fmt.Errorf("set config v%d: %w", n, err)
	}
	return nil
}

// Latest returns the most recently appended config version, or
// domain.ErrConfigNotFound when nothing has been configured yet.
func (r *Repo) Latest(ctx context.Context) (domatt.Config, error) {
	raw, err := r.store.Get(ctx, seqKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domatt.Config{}, domain.ErrConfigNotFound
		}
		return domatt.Config{}, fmt.Errorf("get config seq: %w", err)
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return domatt.Config{}, fmt.Errorf("parse config seq %q: %w", raw, err)
	}

	data, err := r.store.Get(ctx, versionKey(n))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domatt.Config{}, domain.ErrConfigNotFound
		}
		return domatt.Config{}, fmt.Errorf("get config v%d: %w", n, err)
	}

	var row configRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domatt.Config{}, fmt.Errorf("unmarshal config v%d: %w", n, err)
	}

	checkIn, err := domatt.ParseTimeOfDay(row.CheckInTime)
	if err != nil {
		return domatt.Config{}, fmt.Errorf("config v%d: %w", n, err)
	}
	checkOut, err := domatt.ParseTimeOfDay(row.CheckOutTime)
	if err != nil {
		return domatt.Config{}, fmt.Errorf("config v%d: %w", n, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, row.CreatedAt)

	return domatt.ReconstructConfig(checkIn, checkOut, createdAt), nil
}
