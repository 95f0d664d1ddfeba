package recognition

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/attendex/internal/domain"
	domatt "github.com/kailas-cloud/attendex/internal/domain/attendance"
	domemp "github.com/kailas-cloud/attendex/internal/domain/employee"
	"github.com/kailas-cloud/attendex/internal/domain/feature"
)

// --- Mocks ---

// mockEncoder returns one scripted outcome per frame, in order.
type mockEncoder struct {
	vectors []feature.Vector
	errs    []error
	calls   int
}

func (m *mockEncoder) Encode(_ context.Context, _ []byte) (feature.Vector, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.vectors) {
		return m.vectors[i], nil
	}
	return nil, domain.ErrNoFaceDetected
}

type mockFeatures struct {
	known []feature.Known
	err   error
}

func (m *mockFeatures) AllKnownVectors(_ context.Context) ([]feature.Known, error) {
	return m.known, m.err
}

type mockEmployees struct {
	emps map[string]domemp.Employee
}

func (m *mockEmployees) Get(_ context.Context, id string) (domemp.Employee, error) {
	e, ok := m.emps[id]
	if !ok {
		return domemp.Employee{}, domain.ErrEmployeeNotFound
	}
	return e, nil
}

type mockLedger struct {
	rec        domatt.Record
	err        error
	employeeID string
	action     domatt.Action
	calls      int
}

func (m *mockLedger) Transition(
	_ context.Context, employeeID string, action domatt.Action, _ time.Time, _ string,
) (domatt.Record, error) {
	m.calls++
	m.employeeID = employeeID
	m.action = action
	return m.rec, m.err
}

// frameList yields scripted frames and records whether Close ran.
type frameList struct {
	frames [][]byte
	next   int
	closed bool
}

func (f *frameList) Next(_ context.Context) ([]byte, error) {
	if f.next >= len(f.frames) {
		return nil, io.EOF
	}
	fr := f.frames[f.next]
	f.next++
	return fr, nil
}

func (f *frameList) Close() error {
	f.closed = true
	return nil
}

func knownSet() []feature.Known {
	return []feature.Known{
		{EmployeeID: "emp-1", Vector: feature.Vector{0, 0, 0}},
		{EmployeeID: "emp-2", Vector: feature.Vector{1, 1, 1}},
	}
}

func employeeSet() *mockEmployees {
	return &mockEmployees{emps: map[string]domemp.Employee{
		"emp-1": domemp.Reconstruct("emp-1", "NV001", "Tran Van A", "IT", "Developer", domemp.StatusActive),
	}}
}

func checkInRecord(t *testing.T) domatt.Record {
	t.Helper()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	rec := domatt.NewCheckIn("rec-1", "emp-1", domatt.DayOf(now), now, "")
	rec.Recompute(domatt.DefaultConfig())
	return rec
}

func newSvc(enc Encoder, feats FeatureReader, emps EmployeeReader, ledger Ledger) *Service {
	return New(enc, feats, emps, ledger, 0.5, zap.NewNop())
}

// --- Tests ---

func TestRecognize_SuccessfulCheckIn(t *testing.T) {
	enc := &mockEncoder{vectors: []feature.Vector{{0.1, 0, 0}}}
	ledger := &mockLedger{rec: checkInRecord(t)}
	svc := newSvc(enc, &mockFeatures{known: knownSet()}, employeeSet(), ledger)

	res, err := svc.Recognize(
		context.Background(), SingleFrame([]byte("jpeg")),
		domatt.ActionCheckIn, time.Now(),
	)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Errorf("status = %s, want success", res.Status)
	}
	if ledger.employeeID != "emp-1" {
		t.Errorf("ledger got employee %q", ledger.employeeID)
	}
	if res.Employee == nil || res.Employee.Name != "Tran Van A" {
		t.Error("expected employee summary in result")
	}
	if res.Record == nil || !res.Record.HasCheckIn() {
		t.Error("expected attendance snapshot in result")
	}
}

func TestRecognize_NoMatchIsFailNotError(t *testing.T) {
	enc := &mockEncoder{vectors: []feature.Vector{{5, 5, 5}}}
	ledger := &mockLedger{}
	svc := newSvc(enc, &mockFeatures{known: knownSet()}, employeeSet(), ledger)

	res, err := svc.Recognize(
		context.Background(), SingleFrame([]byte("jpeg")),
		domatt.ActionCheckIn, time.Now(),
	)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Status != StatusFail {
		t.Errorf("status = %s, want fail", res.Status)
	}
	if ledger.calls != 0 {
		t.Error("ledger must not run without a match")
	}
}

func TestRecognize_EmptyKnownSetIsFail(t *testing.T) {
	svc := newSvc(&mockEncoder{}, &mockFeatures{}, employeeSet(), &mockLedger{})

	res, err := svc.Recognize(
		context.Background(), SingleFrame([]byte("jpeg")),
		domatt.ActionCheckIn, time.Now(),
	)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Status != StatusFail {
		t.Errorf("status = %s, want fail", res.Status)
	}
}

func TestRecognize_RetriesPastNoFaceFrames(t *testing.T) {
	enc := &mockEncoder{
		errs:    []error{domain.ErrNoFaceDetected, domain.ErrNoFaceDetected, nil},
		vectors: []feature.Vector{nil, nil, {0.1, 0, 0}},
	}
	frames := &frameList{frames: [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}}
	svc := newSvc(enc, &mockFeatures{known: knownSet()}, employeeSet(), &mockLedger{rec: checkInRecord(t)})

	res, err := svc.Recognize(context.Background(), frames, domatt.ActionCheckIn, time.Now())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Errorf("status = %s, want success", res.Status)
	}
	if enc.calls != 3 {
		t.Errorf("encoder calls = %d, want 3", enc.calls)
	}
}

func TestRecognize_StopsAtAttemptBudget(t *testing.T) {
	enc := &mockEncoder{}
	frames := &frameList{frames: make([][]byte, 10)}
	svc := newSvc(enc, &mockFeatures{known: knownSet()}, employeeSet(), &mockLedger{}).
		WithMaxAttempts(3)

	res, err := svc.Recognize(context.Background(), frames, domatt.ActionCheckIn, time.Now())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Status != StatusFail {
		t.Errorf("status = %s, want fail", res.Status)
	}
	if enc.calls != 3 {
		t.Errorf("encoder calls = %d, want 3 (bounded)", enc.calls)
	}
}

func TestRecognize_ClosesFramesOnEveryPath(t *testing.T) {
	frames := &frameList{frames: [][]byte{[]byte("f1")}}
	feats := &mockFeatures{err: errors.New("store down")}
	svc := newSvc(&mockEncoder{}, feats, employeeSet(), &mockLedger{})

	if _, err := svc.Recognize(context.Background(), frames, domatt.ActionCheckIn, time.Now()); err == nil {
		t.Fatal("expected error")
	}
	if !frames.closed {
		t.Error("frame source must be closed on the error path")
	}
}

func TestRecognize_AlreadyCheckedInIsWarning(t *testing.T) {
	enc := &mockEncoder{vectors: []feature.Vector{{0, 0, 0}}}
	ledger := &mockLedger{rec: checkInRecord(t), err: domain.ErrAlreadyCheckedIn}
	svc := newSvc(enc, &mockFeatures{known: knownSet()}, employeeSet(), ledger)

	res, err := svc.Recognize(
		context.Background(), SingleFrame([]byte("jpeg")),
		domatt.ActionCheckIn, time.Now(),
	)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Status != StatusWarning {
		t.Errorf("status = %s, want warning", res.Status)
	}
	if res.Record == nil {
		t.Error("warning must carry the existing record snapshot")
	}
}

func TestRecognize_NotCheckedInYetPropagates(t *testing.T) {
	enc := &mockEncoder{vectors: []feature.Vector{{0, 0, 0}}}
	ledger := &mockLedger{err: domain.ErrNotCheckedInYet}
	svc := newSvc(enc, &mockFeatures{known: knownSet()}, employeeSet(), ledger)

	_, err := svc.Recognize(
		context.Background(), SingleFrame([]byte("jpeg")),
		domatt.ActionCheckOut, time.Now(),
	)
	if !errors.Is(err, domain.ErrNotCheckedInYet) {
		t.Errorf("err = %v, want ErrNotCheckedInYet", err)
	}
}

func TestRecognize_MatchedEmployeeMissing(t *testing.T) {
	enc := &mockEncoder{vectors: []feature.Vector{{1, 1, 1.1}}}
	svc := newSvc(enc, &mockFeatures{known: knownSet()}, employeeSet(), &mockLedger{})

	// emp-2 matches but is not resolvable anymore.
	_, err := svc.Recognize(
		context.Background(), SingleFrame([]byte("jpeg")),
		domatt.ActionCheckIn, time.Now(),
	)
	if !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Errorf("err = %v, want ErrEmployeeNotFound", err)
	}
}
