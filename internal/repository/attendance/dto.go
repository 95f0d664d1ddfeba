package attendance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
)

// recordRow is the JSON-serializable form of a record. The (employee, day)
// key components live in the storage key; keeping them in the blob as well
// makes the raw value self-describing for operators.
type recordRow struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	Day              string  `json:"day"`
	CheckIn          string  `json:"check_in,omitempty"`
	CheckOut         string  `json:"check_out,omitempty"`
	CheckInLocation  string  `json:"check_in_location,omitempty"`
	CheckOutLocation string  `json:"check_out_location,omitempty"`
	Status           string  `json:"status"`
	WorkingHours     float64 `json:"working_hours"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func recordKey(day domatt.Day, employeeID string) string {
	return fmt.Sprintf("%satt:%s:%s", domain.KeyPrefix, day, employeeID)
}

func recordScanPattern(day, employeeID string) string {
	return fmt.Sprintf("%satt:%s:%s", domain.KeyPrefix, day, employeeID)
}

// parseRecordKey splits "attendex:att:<day>:<employee>" back into its parts.
func parseRecordKey(key string) (employeeID string, day domatt.Day, err error) {
	rest := strings.TrimPrefix(key, domain.KeyPrefix+"att:")
	dayStr, empID, found := strings.Cut(rest, ":")
	if !found {
		return "", domatt.Day{}, fmt.Errorf("malformed record key %q", key)
	}
	d, err := domatt.ParseDay(dayStr)
	if err != nil {
		return "", domatt.Day{}, fmt.Errorf("malformed record key %q: %w", key, err)
	}
	return empID, d, nil
}

func recordToJSON(rec domatt.Record) ([]byte, error) {
	row := recordRow{
		ID:               rec.ID(),
		EmployeeID:       rec.EmployeeID(),
		Day:              rec.Day().String(),
		CheckInLocation:  rec.CheckInLocation(),
		CheckOutLocation: rec.CheckOutLocation(),
		Status:           string(rec.Status()),
		WorkingHours:     rec.WorkingHours(),
		CreatedAt:        rec.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:        rec.UpdatedAt().Format(time.RFC3339Nano),
	}
	if rec.HasCheckIn() {
		row.CheckIn = rec.CheckIn().Format(time.RFC3339Nano)
	}
	if rec.HasCheckOut() {
		row.CheckOut = rec.CheckOut().Format(time.RFC3339Nano)
	}
	return json.Marshal(row)
}

func recordFromJSON(employeeID string, day domatt.Day, raw []byte) (domatt.Record, error) {
	var row recordRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return domatt.Record{}, fmt.Errorf("unmarshal record %s/%s: %w", employeeID, day, err)
	}

	checkIn, err := parseOptionalTime(row.CheckIn)
	if err != nil {
		return domatt.Record{}, fmt.Errorf("record %s/%s check_in: %w", employeeID, day, err)
	}
	checkOut, err := parseOptionalTime(row.CheckOut)
	if err != nil {
		return domatt.Record{}, fmt.Errorf("record %s/%s check_out: %w", employeeID, day, err)
	}
	createdAt, _ := parseOptionalTime(row.CreatedAt)
	updatedAt, _ := parseOptionalTime(row.UpdatedAt)

	return domatt.Reconstruct(
		row.ID, employeeID, day,
		checkIn, checkOut, row.CheckInLocation, row.CheckOutLocation,
		domatt.Status(row.Status), row.WorkingHours, createdAt, updatedAt,
	), nil
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
