package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/pivot"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

type stubRequester struct {
	mu      sync.Mutex
	calls   []string
	outcome client.Outcome
	release chan struct{}
}

func (s *stubRequester) Request(ctx context.Context, method, path string, body interface{}) client.Outcome {
	s.mu.Lock()
	s.calls = append(s.calls, method+" "+path)
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	return s.outcome
}

func (s *stubRequester) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingObserver struct {
	results []string
	grids   []int
}

func (r *recordingObserver) ObserveGeneration(result string, _ time.Duration, grids int) {
	r.results = append(r.results, result)
	r.grids = append(r.grids, grids)
}

func okBody(t *testing.T, v interface{}) client.Outcome {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return client.Outcome{Kind: client.OutcomeOK, Status: http.StatusOK, Body: raw}
}

func TestGenerateSuccess(t *testing.T) {
	req := &stubRequester{outcome: okBody(t, map[string]interface{}{
		"status": "success",
		"results": []map[string]interface{}{
			{"option": 1, "fitness": 0, "timetable": []map[string]string{
				{"batch": "B1", "day": "Mon", "timeslot": "9-10", "subject": "Math", "faculty": "A", "room": "R1"},
			}},
			{"option": 2, "fitness": 2, "timetable": []map[string]string{
				{"batch": "B1", "day": "Tue", "timeslot": "9-10", "subject": "Math", "faculty": "A", "room": "R1"},
				{"batch": "B2", "day": "Tue", "timeslot": "9-10", "subject": "Art", "faculty": "C", "room": "R2"},
			}},
		},
	})}
	obs := &recordingObserver{}
	trigger := NewTrigger(req, pivot.NewPipeline(pivot.DefaultAxes(), nil), WithObserver(obs))

	view, err := trigger.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"POST /api/generate"}, req.calls)
	assert.Equal(t, dto.GenerationIdle, view.State)
	assert.Equal(t, "Generation complete! Found 2 optimized options.", view.Status)
	require.NotNil(t, view.Results)
	require.Len(t, view.Results.Options, 2)
	assert.Equal(t, dto.BadgeReview, view.Results.Options[1].Badge.Kind)
	assert.Nil(t, view.Notice)
	assert.Equal(t, []string{ResultSuccess}, obs.results)
	assert.Equal(t, []int{3}, obs.grids)
	assert.Equal(t, view, trigger.View())
}

func TestGenerateSuccessWithNoResults(t *testing.T) {
	req := &stubRequester{outcome: okBody(t, map[string]interface{}{"status": "success", "results": []interface{}{}})}
	trigger := NewTrigger(req, nil)

	view, err := trigger.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Generation complete! Found 0 optimized options.", view.Status)
	require.NotNil(t, view.Results)
	require.NotNil(t, view.Results.Notice)
	assert.Equal(t, pivot.NoResultsNotice, view.Results.Notice.Text)
}

func TestGenerateApplicationError(t *testing.T) {
	req := &stubRequester{outcome: client.Outcome{
		Kind:   client.OutcomeOK,
		Status: http.StatusBadRequest,
		Body:   json.RawMessage(`{"status":"error","message":"No rooms found"}`),
	}}
	obs := &recordingObserver{}
	trigger := NewTrigger(req, nil, WithObserver(obs))

	view, err := trigger.Generate(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrGeneration)
	assert.Equal(t, "Error: No rooms found", view.Status)
	require.NotNil(t, view.Notice)
	assert.Equal(t, dto.NoticeWarning, view.Notice.Level)
	assert.Equal(t, `Error generating timetable: No rooms found. Please ensure you have added rooms, batches, subjects (with hours), and faculty (with assigned subjects) in the "Manage Data" section.`, view.Notice.Text)
	assert.Nil(t, view.Results)
	assert.Equal(t, []string{ResultError}, obs.results)
}

func TestGenerateFailedOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		outcome client.Outcome
		want    *appErrors.Error
	}{
		{name: "unauthorized", outcome: client.Outcome{Kind: client.OutcomeUnauthorized, Status: http.StatusUnauthorized}, want: appErrors.ErrUnauthorized},
		{name: "transport", outcome: client.Outcome{Kind: client.OutcomeTransport, Err: errors.New("connection refused")}, want: appErrors.ErrTransport},
		{name: "bad shape", outcome: client.Outcome{Kind: client.OutcomeOK, Status: http.StatusOK, Body: json.RawMessage(`[1,2]`)}, want: appErrors.ErrTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trigger := NewTrigger(&stubRequester{outcome: tc.outcome}, nil)

			view, err := trigger.Generate(context.Background())

			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, UnexpectedStatus, view.Status)
			assert.Nil(t, view.Results)
			assert.Nil(t, view.Notice)
			assert.Equal(t, dto.GenerationIdle, view.State)
		})
	}
}

func TestGenerateRejectsReentry(t *testing.T) {
	req := &stubRequester{
		outcome: okBody(t, map[string]interface{}{"status": "success", "results": []interface{}{}}),
		release: make(chan struct{}),
	}
	started := make(chan dto.GenerationView, 1)
	trigger := NewTrigger(req, nil, OnBusy(func(v dto.GenerationView) { started <- v }))

	done := make(chan error, 1)
	go func() {
		_, err := trigger.Generate(context.Background())
		done <- err
	}()

	busy := <-started
	assert.Equal(t, dto.GenerationGenerating, busy.State)
	assert.Equal(t, BusyStatus, busy.Status)
	assert.Nil(t, busy.Results)
	assert.True(t, trigger.Busy())

	view, err := trigger.Generate(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrBusy)
	assert.Equal(t, dto.GenerationGenerating, view.State)

	close(req.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, req.callCount())
	assert.False(t, trigger.Busy())

	_, err = trigger.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, req.callCount())
}

func TestGenerateClearsPreviousResults(t *testing.T) {
	req := &stubRequester{outcome: okBody(t, map[string]interface{}{"status": "success", "results": []interface{}{}})}
	var busyViews []dto.GenerationView
	trigger := NewTrigger(req, nil, OnBusy(func(v dto.GenerationView) { busyViews = append(busyViews, v) }))

	_, err := trigger.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, trigger.View().Results)

	req.outcome = client.Outcome{Kind: client.OutcomeTransport}
	view, err := trigger.Generate(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrTransport)
	assert.Nil(t, view.Results)
	require.Len(t, busyViews, 2)
	assert.Nil(t, busyViews[1].Results)
}
