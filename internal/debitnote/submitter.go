package debitnote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/utilitycover/debitnote/pkg/models"
)

var (
	// ErrInProgress is returned by Submit while another submission is in flight.
	ErrInProgress = errors.New("a submission is already in progress")

	// ErrDelivery marks failures that happened after the document was
	// received, while handing it to the user.
	ErrDelivery = errors.New("deliver document")
)

// FailureNotice is the user-facing message for any failed submission.
const FailureNotice = "Failed to generate PDF. Please try again."

// Result describes a completed submission.
type Result struct {
	RequestID string        `json:"request_id"`
	Filename  string        `json:"filename"`
	Size      int           `json:"size"`
	IssuedAt  time.Time     `json:"issued_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// SubmitterConfig configures a Submitter.
type SubmitterConfig struct {
	Generator Generator
	Timeout   time.Duration         // bound on the document request; zero means none
	Location  *time.Location        // zone for the issue date; nil means time.Local
	Now       func() time.Time      // clock; nil means time.Now
	Logger    *slog.Logger          // nil means slog.Default()
	OnState   func(submitting bool) // called on every Idle/Submitting transition
}

// Submitter sends a record to the document service and delivers the
// result. It moves Idle → Submitting → Idle; a Submit call made while
// Submitting is rejected without issuing a request.
type Submitter struct {
	gen        Generator
	timeout    time.Duration
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
	onState    func(bool)
	submitting atomic.Bool
}

// NewSubmitter creates a Submitter from cfg.
func NewSubmitter(cfg SubmitterConfig) *Submitter {
	s := &Submitter{
		gen:     cfg.Generator,
		timeout: cfg.Timeout,
		loc:     cfg.Location,
		now:     cfg.Now,
		logger:  cfg.Logger,
		onState: cfg.OnState,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// InProgress reports whether a submission is currently in flight.
func (s *Submitter) InProgress() bool {
	return s.submitting.Load()
}

// Submit builds the payload for rec, requests the document and hands it to
// d under the debit note filename. rec is never modified, so a failed
// submission can be retried as is.
func (s *Submitter) Submit(ctx context.Context, rec models.PolicyRecord, d Deliverer) (*Result, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return nil, ErrInProgress
	}
	s.setState(true)
	defer func() {
		s.submitting.Store(false)
		s.setState(false)
	}()

	start := time.Now()
	issued := s.now().In(s.loc)
	res := &Result{
		RequestID: uuid.NewString(),
		Filename:  Filename(rec.VehicleCovered, issued),
		IssuedAt:  issued,
	}
	log := s.logger.With("request_id", res.RequestID, "vehicle", rec.VehicleCovered)

	payload, err := BuildPayload(rec, issued)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	reqCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Debug("requesting debit note", "payload_bytes", len(payload))
	doc, err := s.gen.Generate(reqCtx, payload)
	if err != nil {
		log.Warn("debit note request failed", "error", err)
		return nil, fmt.Errorf("generate document: %w", err)
	}

	if err := d.Deliver(ctx, Artifact{
		Name:        res.Filename,
		ContentType: ContentTypePDF,
		Body:        doc,
	}); err != nil {
		log.Warn("debit note delivery failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	res.Size = len(doc)
	res.Duration = time.Since(start)
	log.Info("debit note generated", "filename", res.Filename, "bytes", res.Size, "duration", res.Duration)
	return res, nil
}

func (s *Submitter) setState(submitting bool) {
	if s.onState != nil {
		s.onState(submitting)
	}
}
