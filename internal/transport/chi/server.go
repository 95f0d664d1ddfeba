package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	attendanceuc "github.com/kailas-cloud/attendex/internal/usecase/attendance"
	healthuc "github.com/kailas-cloud/attendex/internal/usecase/health"
	recognitionuc "github.com/kailas-cloud/attendex/internal/usecase/recognition"
	sweeperuc "github.com/kailas-cloud/attendex/internal/usecase/sweeper"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API for recognition and attendance administration.
type Server struct {
	recognition   *recognitionuc.Service
	attendance    *attendanceuc.Service
	sweeper       *sweeperuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	clock         func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recognition *recognitionuc.Service,
	attendance *attendanceuc.Service,
	sweeper *sweeperuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recognition: recognition,
		attendance:  attendance,
		sweeper:     sweeper,
		health:      health,
		logger:      logger,
		clock:       time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidImage, http.StatusBadRequest, codeInvalidImage),
		sentinelHandler(domain.ErrInvalidAction, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmployeeNotFound, http.StatusNotFound, codeEmployeeNotFound),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrNotCheckedInYet, http.StatusConflict, codeNotCheckedIn),
		sentinelHandler(domain.ErrEncoderError, http.StatusBadGateway, codeEncoderError),
	}
	return s
}

// WithClock overrides the wall clock; main wires the configured timezone
// through here.
func (s *Server) WithClock(clock func() time.Time) *Server {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recognition", s.Recognize)
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/history", s.History)
			r.Get("/config", s.GetConfig)
			r.Put("/config", s.PutConfig)
			r.Post("/sweep", s.Sweep)
		})
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Recognize handles POST /api/v1/recognition: one frame in, identity
// matched, attendance transitioned.
func (s *Server) Recognize(w http.ResponseWriter, r *http.Request) {
	var req recognitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	action, err := domatt.ParseAction(req.Action)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.recognition.Recognize(r.Context(), recognitionuc.SingleFrame(image), action, s.clock())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := recognitionResponse{
		Status:  string(res.Status),
		Message: res.Message,
	}
	if res.Employee != nil {
		p := employeeToPayload(*res.Employee)
		resp.Employee = &p
	}
	if res.Record != nil {
		p := recordToPayload(res.Record)
		resp.Attendance = &p
	}

	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/v1/attendance/history.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var params struct {
		From *types.Date
		To   *types.Date
	}
	if err := runtime.BindQueryParameter("form", true, false, "from", q, &params.From); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Invalid from date: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "to", q, &params.To); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Invalid to date: "+err.Error())
		return
	}

	var from, to domatt.Day
	if params.From != nil {
		from = domatt.DayOf(params.From.Time)
	}
	if params.To != nil {
		to = domatt.DayOf(params.To.Time)
	}

	entries, err := s.attendance.History(r.Context(), q.Get("employee_id"), from, to)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, historyToPayload(entries))
}

// GetConfig handles GET /api/v1/attendance/config. When nothing has been
// configured yet the built-in default window is reported.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.attendance.Config(r.Context())
	if errors.Is(err, domain.ErrConfigNotFound) {
		cfg = domatt.DefaultConfig()
	} else if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configToPayload(cfg))
}

// PutConfig handles PUT /api/v1/attendance/config.
func (s *Server) PutConfig(w http.ResponseWriter, r *http.Request) {
	var req configPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	checkIn, err := domatt.ParseTimeOfDay(req.CheckInTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Invalid check_in_time: "+err.Error())
		return
	}
	checkOut, err := domatt.ParseTimeOfDay(req.CheckOutTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Invalid check_out_time: "+err.Error())
		return
	}

	cfg, err := s.attendance.SetConfig(r.Context(), checkIn, checkOut, s.clock())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configToPayload(cfg))
}

// Sweep handles POST /api/v1/attendance/sweep: marks every active employee
// without a record for the day as absent.
func (s *Server) Sweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	now := s.clock()
	day := domatt.DayOf(now)
	if req.Date != nil {
		day = domatt.DayOf(req.Date.Time)
	}

	res, err := s.sweeper.Sweep(r.Context(), day, now)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{
		Date:    dayToDate(res.Day),
		Marked:  res.Marked,
		Skipped: res.Skipped,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidImage,
		domain.ErrInvalidAction,
		domain.ErrEmployeeNotFound,
		domain.ErrRecordNotFound,
		domain.ErrNotCheckedInYet,
		domain.ErrEncoderError,
		domain.ErrInvalidConfig,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
