package generation

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
	"github.com/noah-isme/timetable-console/internal/pivot"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

const (
	// Path is the generation endpoint on the timetable backend.
	Path = "/api/generate"

	BusyStatus       = "Generating... This may take a moment."
	UnexpectedStatus = "An unexpected error occurred during generation."

	guidanceFormat = "Error generating timetable: %s. Please ensure you have added rooms, batches, subjects (with hours), and faculty (with assigned subjects) in the \"Manage Data\" section."
)

// Result labels recorded per run.
const (
	ResultSuccess     = "success"
	ResultError       = "error"
	ResultUnavailable = "unavailable"
)

type generationObserver interface {
	ObserveGeneration(result string, duration time.Duration, grids int)
}

// Trigger drives the Idle -> Generating -> Idle cycle. Only one request can
// be in flight per trigger; a second Generate while busy is rejected.
type Trigger struct {
	client   client.Requester
	pipeline *pivot.Pipeline
	observer generationObserver
	logger   *zap.Logger
	onBusy   func(dto.GenerationView)
	now      func() time.Time

	mu   sync.Mutex
	view dto.GenerationView
}

// Option customises a Trigger.
type Option func(*Trigger)

// WithObserver records every finished run.
func WithObserver(o generationObserver) Option {
	return func(t *Trigger) { t.observer = o }
}

// WithLogger sets the trigger logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Trigger) {
		if l != nil {
			t.logger = l
		}
	}
}

// OnBusy registers a hook fired with the busy view as soon as a run starts.
func OnBusy(fn func(dto.GenerationView)) Option {
	return func(t *Trigger) { t.onBusy = fn }
}

// NewTrigger builds an idle trigger.
func NewTrigger(requester client.Requester, pipeline *pivot.Pipeline, opts ...Option) *Trigger {
	t := &Trigger{
		client:   requester,
		pipeline: pipeline,
		logger:   zap.NewNop(),
		now:      time.Now,
		view:     dto.GenerationView{State: dto.GenerationIdle},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.pipeline == nil {
		t.pipeline = pivot.NewPipeline(pivot.DefaultAxes(), t.logger)
	}
	return t
}

// View returns the current dashboard state.
func (t *Trigger) View() dto.GenerationView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Busy reports whether a run is in flight.
func (t *Trigger) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view.State == dto.GenerationGenerating
}

// Generate issues exactly one generation request and renders its outcome.
// There is no retry and no deadline beyond the one carried by ctx. The
// returned view is also the new dashboard state; the error classifies
// failures (ErrBusy, ErrUnauthorized, ErrTransport, ErrGeneration).
func (t *Trigger) Generate(ctx context.Context) (dto.GenerationView, error) {
	t.mu.Lock()
	if t.view.State == dto.GenerationGenerating {
		current := t.view
		t.mu.Unlock()
		return current, appErrors.ErrBusy
	}
	busy := dto.GenerationView{State: dto.GenerationGenerating, Status: BusyStatus}
	t.view = busy
	t.mu.Unlock()

	if t.onBusy != nil {
		t.onBusy(busy)
	}

	started := t.now()
	view, result, err := t.run(ctx)
	view.State = dto.GenerationIdle

	grids := 0
	if view.Results != nil {
		grids = pivot.GridCount(*view.Results)
	}
	if t.observer != nil {
		t.observer.ObserveGeneration(result, t.now().Sub(started), grids)
	}

	t.mu.Lock()
	t.view = view
	t.mu.Unlock()
	return view, err
}

func (t *Trigger) run(ctx context.Context) (dto.GenerationView, string, error) {
	outcome := t.client.Request(ctx, http.MethodPost, Path, nil)
	if !outcome.OK() {
		t.logger.Warn("generation request failed", zap.Stringer("outcome", outcome.Kind), zap.Error(outcome.Err))
		return dto.GenerationView{Status: UnexpectedStatus}, ResultUnavailable, outcome.AsError()
	}

	var resp models.GenerationResponse
	if err := outcome.Decode(&resp); err != nil {
		t.logger.Warn("generation response not understood", zap.Error(err))
		return dto.GenerationView{Status: UnexpectedStatus}, ResultUnavailable, err
	}

	if !resp.Succeeded() {
		t.logger.Info("generation rejected by backend", zap.String("message", resp.Message))
		return dto.GenerationView{
			Status: "Error: " + resp.Message,
			Notice: &dto.Notice{Level: dto.NoticeWarning, Text: fmt.Sprintf(guidanceFormat, resp.Message)},
		}, ResultError, appErrors.Clone(appErrors.ErrGeneration, resp.Message)
	}

	results := t.pipeline.Build(resp.Results)
	t.logger.Info("generation completed", zap.Int("options", len(resp.Results)), zap.Int("grids", pivot.GridCount(results)))
	return dto.GenerationView{
		Status:  fmt.Sprintf("Generation complete! Found %d optimized options.", len(resp.Results)),
		Results: &results,
	}, ResultSuccess, nil
}
