package chi

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
	attendanceuc "github.com/kailas-cloud/attendex/internal/usecase/attendance"
)

// errorCode tags machine-readable error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeInvalidImage     errorCode = "invalid_image"
	codeEmployeeNotFound errorCode = "employee_not_found"
	codeRecordNotFound   errorCode = "record_not_found"
	codeNotCheckedIn     errorCode = "not_checked_in"
	codeEncoderError     errorCode = "encoder_error"
	codeInternalError    errorCode = "internal_error"
)

// errorResponse keeps the status/message envelope of every other response
// so clients can branch on status alone; code is the machine-readable detail.
type errorResponse struct {
	Status  string    `json:"status"`
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// recognitionRequest is the POST /recognition body. Image carries one
// captured frame as base64, optionally in data-URI form.
type recognitionRequest struct {
	Image  string `json:"image"`
	Action string `json:"action"`
}

type employeePayload struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"employee_name"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	Code       string `json:"employee_code,omitempty"`
}

type attendancePayload struct {
	Day          types.Date `json:"day"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	CheckOut     *time.Time `json:"check_out,omitempty"`
	Status       string     `json:"status"`
	WorkingHours float64    `json:"working_hours"`
	Location     string     `json:"location,omitempty"`
}

type recognitionResponse struct {
	Status     string             `json:"status"`
	Message    string             `json:"message"`
	Employee   *employeePayload   `json:"employee,omitempty"`
	Attendance *attendancePayload `json:"attendance,omitempty"`
}

type historyEntryPayload struct {
	Employee   employeePayload   `json:"employee"`
	Attendance attendancePayload `json:"attendance"`
}

type historyResponse struct {
	Items []historyEntryPayload `json:"items"`
	Total int                   `json:"total"`
}

type configPayload struct {
	CheckInTime  string     `json:"check_in_time"`
	CheckOutTime string     `json:"check_out_time"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type sweepRequest struct {
	Date *types.Date `json:"date,omitempty"`
}

type sweepResponse struct {
	Date    types.Date `json:"date"`
	Marked  int        `json:"marked"`
	Skipped int        `json:"skipped"`
}

func employeeToPayload(s domemp.Summary) employeePayload {
	return employeePayload{
		EmployeeID: s.EmployeeID,
		Name:       s.Name,
		Department: s.Department,
		Position:   s.Position,
		Code:       s.Code,
	}
}

func recordToPayload(rec *domatt.Record) attendancePayload {
	p := attendancePayload{
		Day:          dayToDate(rec.Day()),
		Status:       string(rec.Status()),
		WorkingHours: rec.WorkingHours(),
		Location:     rec.CheckInLocation(),
	}
	if rec.HasCheckIn() {
		t := rec.CheckIn()
		p.CheckIn = &t
	}
	if rec.HasCheckOut() {
		t := rec.CheckOut()
		p.CheckOut = &t
	}
	return p
}

func historyToPayload(entries []attendanceuc.Entry) historyResponse {
	items := make([]historyEntryPayload, len(entries))
	for i := range entries {
		items[i] = historyEntryPayload{
			Employee:   employeeToPayload(entries[i].Employee),
			Attendance: recordToPayload(&entries[i].Record),
		}
	}
	return historyResponse{Items: items, Total: len(items)}
}

func configToPayload(cfg domatt.Config) configPayload {
	p := configPayload{
		CheckInTime:  cfg.CheckInTime().String(),
		CheckOutTime: cfg.CheckOutTime().String(),
	}
	if !cfg.CreatedAt().IsZero() {
		t := cfg.CreatedAt()
		p.CreatedAt = &t
	}
	return p
}

func dayToDate(d domatt.Day) types.Date {
	return types.Date{Time: d.Time(time.UTC)}
}

// decodeImage accepts plain base64 or a data URI
// ("data:image/jpeg;base64,...") and returns the raw bytes.
func decodeImage(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed data URI", domain.ErrInvalidImage)
		}
		s = s[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}
	return raw, nil
}
