// Package recognition orchestrates a recognition request: frames in,
// identity matched, attendance transitioned, tagged result out.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	"github.com/kailas-cloud/attendex/internal/domain/feature"
	"github.com/kailas-cloud/attendex/internal/domain/match"
	"github.com/kailas-cloud/attendex/internal/metrics"
)

const defaultMaxAttempts = 15

// Service is the recognition orchestrator.
type Service struct {
	enc         Encoder
	features    FeatureReader
	emps        EmployeeReader
	ledger      Ledger
	tolerance   float64
	maxAttempts int
	location    string
	logger      *zap.Logger
}

// New creates a recognition service. Tolerance is the externally configured
// match threshold; there is deliberately no default for it here.
func New(
	enc Encoder, features FeatureReader, emps EmployeeReader, ledger Ledger,
	tolerance float64, logger *zap.Logger,
) *Service {
	return &Service{
		enc:         enc,
		features:    features,
		emps:        emps,
		ledger:      ledger,
		tolerance:   tolerance,
		maxAttempts: defaultMaxAttempts,
		logger:      logger,
	}
}

// WithMaxAttempts bounds how many frames one request may consume.
func (s *Service) WithMaxAttempts(n int) *Service {
	if n > 0 {
		s.maxAttempts = n
	}
	return s
}

// WithLocation sets the free-text capture location recorded on events.
func (s *Service) WithLocation(location string) *Service {
	s.location = location
	return s
}

// Recognize resolves an identity from the frame source and applies the
// attendance action. The frame source is closed on every exit path. The
// ledger runs only after matching is done, so no attendance lock is ever
// held across encoder calls.
func (s *Service) Recognize(
	ctx context.Context, frames FrameSource, action domatt.Action, now time.Time,
) (Result, error) {
	defer func() {
		if err := frames.Close(); err != nil {
			s.logger.Warn("close frame source", zap.Error(err))
		}
	}()

	known, err := s.features.AllKnownVectors(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load known vectors: %w", err)
	}
	if len(known) == 0 {
		s.count(action, "fail")
		return failResult("No faces enrolled yet."), nil
	}

	m, attempts, err := s.matchFrames(ctx, frames, known)
	if err != nil {
		s.count(action, "error")
		return Result{}, err
	}
	metrics.RecognitionAttempts.Observe(float64(attempts))
	if m == nil {
		s.count(action, "fail")
		return failResult("Face not recognized or no matching face found."), nil
	}
	metrics.MatchDistance.Observe(m.Distance)

	emp, err := s.emps.Get(ctx, m.EmployeeID)
	if err != nil {
		s.count(action, "error")
		return Result{}, fmt.Errorf("resolve employee %s: %w", m.EmployeeID, err)
	}
	summary := emp.Summarize()

	rec, err := s.ledger.Transition(ctx, m.EmployeeID, action, now, s.location)
	switch {
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		s.count(action, "warning")
		return Result{
			Status:   StatusWarning,
			Message:  fmt.Sprintf("%s already checked in today.", summary.Name),
			Employee: &summary,
			Record:   &rec,
			Distance: m.Distance,
		}, nil
	case errors.Is(err, domain.ErrAlreadyCheckedOut):
		s.count(action, "warning")
		return Result{
			Status:   StatusWarning,
			Message:  fmt.Sprintf("%s already checked out today.", summary.Name),
			Employee: &summary,
			Record:   &rec,
			Distance: m.Distance,
		}, nil
	case err != nil:
		// Sequencing violations (not checked in yet) and storage failures
		// propagate; the transport layer distinguishes them by sentinel.
		s.count(action, "error")
		return Result{}, fmt.Errorf("attendance transition for %s: %w", m.EmployeeID, err)
	}

	s.count(action, "success")
	return Result{
		Status:   StatusSuccess,
		Message:  successMessage(action, summary.Name),
		Employee: &summary,
		Record:   &rec,
		Distance: m.Distance,
	}, nil
}

// matchFrames consumes frames until a known face matches, frames run out, or
// the attempt budget is spent. A frame with no detectable face and a frame
// matching nobody both just cost an attempt.
func (s *Service) matchFrames(
	ctx context.Context, frames FrameSource, known []feature.Known,
) (*match.Match, int, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		frame, err := frames.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil, attempt - 1, nil
		}
		if err != nil {
			return nil, attempt, fmt.Errorf("read frame: %w", err)
		}

		vec, err := s.enc.Encode(ctx, frame)
		if errors.Is(err, domain.ErrNoFaceDetected) {
			continue
		}
		if err != nil {
			return nil, attempt, fmt.Errorf("encode frame: %w", err)
		}

		if m, ok := match.Resolve(vec, known, s.tolerance); ok {
			return &m, attempt, nil
		}
	}
	return nil, s.maxAttempts, nil
}

func successMessage(action domatt.Action, name string) string {
	if action == domatt.ActionCheckOut {
		return fmt.Sprintf("Check-out recorded for %s.", name)
	}
	return fmt.Sprintf("Attendance recorded for %s.", name)
}

func (s *Service) count(action domatt.Action, status string) {
	metrics.RecognitionRequestsTotal.WithLabelValues(string(action), status).Inc()
}
