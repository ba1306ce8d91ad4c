package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

type call struct {
	method string
	path   string
	body   string
}

// fakeRequester answers from a route table and records every call.
type fakeRequester struct {
	routes map[string]client.Outcome
	calls  []call
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{routes: map[string]client.Outcome{}}
}

func (f *fakeRequester) on(method, path, body string) {
	f.routes[method+" "+path] = client.Outcome{Kind: client.OutcomeOK, Status: http.StatusOK, Body: json.RawMessage(body)}
}

func (f *fakeRequester) fail(method, path string, kind client.OutcomeKind) {
	f.routes[method+" "+path] = client.Outcome{Kind: kind}
}

func (f *fakeRequester) Request(_ context.Context, method, path string, body interface{}) client.Outcome {
	raw := ""
	if body != nil {
		encoded, _ := json.Marshal(body)
		raw = string(encoded)
	}
	f.calls = append(f.calls, call{method: method, path: path, body: raw})
	if out, ok := f.routes[method+" "+path]; ok {
		return out
	}
	return client.Outcome{Kind: client.OutcomeOK, Status: http.StatusOK, Body: json.RawMessage(`{"success":true}`)}
}

func (f *fakeRequester) paths() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.method+" "+c.path)
	}
	return out
}

type fakePrompter struct {
	answer    bool
	alerts    []string
	questions []string
}

func (p *fakePrompter) Alert(message string) { p.alerts = append(p.alerts, message) }

func (p *fakePrompter) Confirm(message string) bool {
	p.questions = append(p.questions, message)
	return p.answer
}

func TestReloadRendersOneRowPerItem(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[{"id":1,"name":"R1"},{"id":2,"name":"R2"},{"id":3,"name":"Lab"}]`)
	rooms := NewRoomController(api, &fakePrompter{}, nil, nil)

	require.NoError(t, rooms.Reload(context.Background()))

	view := rooms.View()
	require.True(t, view.Loaded)
	assert.Empty(t, view.Placeholder)
	require.Len(t, view.Rows, 3)
	assert.Equal(t, dto.ListRow{ID: "1", Label: "R1", Title: "R1", Deletable: true}, view.Rows[0])
	assert.Equal(t, "Lab", view.Rows[2].Title)
}

func TestReloadEmptyCollectionRendersPlaceholder(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/batches", `[]`)
	batches := NewBatchController(api, &fakePrompter{}, nil, nil)

	require.NoError(t, batches.Reload(context.Background()))

	view := batches.View()
	assert.Empty(t, view.Rows)
	assert.Equal(t, "No batches added yet.", view.Placeholder)
}

func TestReloadFailureKeepsPreviousView(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[{"id":1,"name":"R1"}]`)
	rooms := NewRoomController(api, &fakePrompter{}, nil, nil)
	require.NoError(t, rooms.Reload(context.Background()))
	before := rooms.View()

	api.fail(http.MethodGet, "/api/rooms", client.OutcomeUnauthorized)
	err := rooms.Reload(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, before, rooms.View())

	api.fail(http.MethodGet, "/api/rooms", client.OutcomeTransport)
	err = rooms.Reload(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrTransport)
	assert.Equal(t, before, rooms.View())
}

func TestReloadUnexpectedShapeKeepsPreviousView(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `{"error":"boom"}`)
	rooms := NewRoomController(api, &fakePrompter{}, nil, nil)

	err := rooms.Reload(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrTransport)
	assert.False(t, rooms.View().Loaded)
}

func TestCreateRoomPostsThenReloads(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[{"id":1,"name":"R1"}]`)
	rooms := NewRoomController(api, &fakePrompter{}, nil, nil)

	require.NoError(t, rooms.Create(context.Background(), "  R1 "))

	assert.Equal(t, []string{"POST /api/rooms", "GET /api/rooms"}, api.paths())
	assert.JSONEq(t, `{"name":"R1"}`, api.calls[0].body)
	assert.Len(t, rooms.View().Rows, 1)
}

func TestCreateBlankNameIsRejectedLocally(t *testing.T) {
	api := newFakeRequester()
	prompter := &fakePrompter{}
	board := NewBoard(api, prompter, nil, nil)

	assert.ErrorIs(t, board.Rooms.Create(context.Background(), "   "), appErrors.ErrValidation)
	assert.ErrorIs(t, board.Batches.Create(context.Background(), ""), appErrors.ErrValidation)
	assert.ErrorIs(t, board.Faculties.Create(context.Background(), "\t"), appErrors.ErrValidation)

	assert.Empty(t, api.calls)
	assert.Len(t, prompter.alerts, 3)
}

func TestCreateFailureSkipsReload(t *testing.T) {
	api := newFakeRequester()
	api.fail(http.MethodPost, "/api/batches", client.OutcomeTransport)
	batches := NewBatchController(api, &fakePrompter{}, nil, nil)

	err := batches.Create(context.Background(), "B1")

	assert.ErrorIs(t, err, appErrors.ErrTransport)
	assert.Equal(t, []string{"POST /api/batches"}, api.paths())
}

func TestSubjectCreateRejectsInvalidHours(t *testing.T) {
	for _, hours := range []string{"0", "-2", "abc", "", "2.5", "3 hours"} {
		api := newFakeRequester()
		prompter := &fakePrompter{}
		subjects := NewSubjectController(api, prompter, nil, nil)

		err := subjects.Create(context.Background(), dto.SubjectForm{Name: "Math", Code: "MA101", HoursPerWeek: hours})

		assert.ErrorIs(t, err, appErrors.ErrValidation, hours)
		assert.Empty(t, api.calls, hours)
		assert.Equal(t, []string{"Please fill all subject fields correctly."}, prompter.alerts, hours)
	}
}

func TestSubjectCreateRejectsBlankFields(t *testing.T) {
	api := newFakeRequester()
	subjects := NewSubjectController(api, &fakePrompter{}, nil, nil)

	err := subjects.Create(context.Background(), dto.SubjectForm{Name: "Math", Code: "  ", HoursPerWeek: "4"})

	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, api.calls)
}

func TestSubjectMutationsReloadFaculty(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/subjects", `[{"id":4,"name":"Math","code":"MA101","hours_per_week":4}]`)
	api.on(http.MethodGet, "/api/faculties", `[{"id":1,"name":"Ada","subjects":[{"id":4,"code":"MA101"}]}]`)
	prompter := &fakePrompter{answer: true}
	board := NewBoard(api, prompter, nil, nil)

	require.NoError(t, board.Subjects.Create(context.Background(), dto.SubjectForm{Name: "Math", Code: "MA101", HoursPerWeek: " 4 "}))
	assert.Equal(t, []string{"POST /api/subjects", "GET /api/subjects", "GET /api/faculties"}, api.paths())
	assert.JSONEq(t, `{"name":"Math","code":"MA101","hours_per_week":4}`, api.calls[0].body)

	api.calls = nil
	require.NoError(t, board.Subjects.Delete(context.Background(), "4", "Math"))
	assert.Equal(t, []string{"DELETE /api/subjects/4", "GET /api/subjects", "GET /api/faculties"}, api.paths())
	assert.Equal(t, []string{`Are you sure you want to delete subject "Math"?`}, prompter.questions)
}

func TestOnlySubjectMutationsCrossControllers(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[]`)
	api.on(http.MethodGet, "/api/faculties", `[]`)
	board := NewBoard(api, &fakePrompter{answer: true}, nil, nil)

	require.NoError(t, board.Rooms.Create(context.Background(), "R1"))
	require.NoError(t, board.Faculties.Delete(context.Background(), "1", "Ada"))

	assert.Equal(t, []string{"POST /api/rooms", "GET /api/rooms", "DELETE /api/faculties/1", "GET /api/faculties"}, api.paths())
}

func TestDeleteDeclinedMakesNoCall(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[{"id":1,"name":"R1"}]`)
	prompter := &fakePrompter{answer: false}
	rooms := NewRoomController(api, prompter, nil, nil)
	require.NoError(t, rooms.Reload(context.Background()))
	before := rooms.View()
	api.calls = nil

	err := rooms.Delete(context.Background(), "1", "R1")

	assert.ErrorIs(t, err, appErrors.ErrDeclined)
	assert.Empty(t, api.calls)
	assert.Equal(t, before, rooms.View())
	assert.Equal(t, []string{`Are you sure you want to delete room "R1"?`}, prompter.questions)
}

func TestFacultyRowsSummariseSubjects(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/faculties", `[{"id":1,"name":"Ada","subjects":[{"id":1,"code":"MA101"},{"id":2,"code":"CS101"}]},{"id":2,"name":"Bob","subjects":[]}]`)
	faculties := NewFacultyController(api, &fakePrompter{}, nil, nil)

	require.NoError(t, faculties.Reload(context.Background()))

	rows := faculties.View().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Can teach: MA101, CS101", rows[0].Summary)
	assert.Equal(t, "Can teach: None", rows[1].Summary)

	sel := faculties.Selection()
	assert.Equal(t, "Select Faculty", sel.Prompt)
	assert.Equal(t, []dto.SelectOption{{Value: "1", Label: "Ada"}, {Value: "2", Label: "Bob"}}, sel.Options)
}

func TestSubjectReloadFeedsSelection(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/subjects", `[{"id":"s1","name":"Physics","code":"PH101","hours_per_week":3}]`)
	subjects := NewSubjectController(api, &fakePrompter{}, nil, nil)
	subjects.Select("old")

	require.NoError(t, subjects.Reload(context.Background()))

	row := subjects.View().Rows[0]
	assert.Equal(t, "(PH101) - 3 hrs/week", row.Detail)
	sel := subjects.Selection()
	assert.Equal(t, "", sel.Selected)
	assert.Equal(t, []dto.SelectOption{{Value: "s1", Label: "Physics (PH101)"}}, sel.Options)
}

func TestAssignRequiresBothSelections(t *testing.T) {
	api := newFakeRequester()
	prompter := &fakePrompter{}
	board := NewBoard(api, prompter, nil, nil)

	assert.ErrorIs(t, board.Faculties.Assign(context.Background(), "", "2"), appErrors.ErrValidation)
	assert.ErrorIs(t, board.Faculties.Assign(context.Background(), "1", " "), appErrors.ErrValidation)

	assert.Empty(t, api.calls)
	assert.Equal(t, []string{assignInvalidMessage, assignInvalidMessage}, prompter.alerts)
}

func TestAssignPostsClearsSelectionsAndReloadsFaculty(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/faculties", `[{"id":1,"name":"Ada","subjects":[{"id":2,"code":"MA101"}]}]`)
	board := NewBoard(api, &fakePrompter{}, nil, nil)
	board.Faculties.Select("1")
	board.Subjects.Select("2")

	require.NoError(t, board.Faculties.Assign(context.Background(), "1", "2"))

	assert.Equal(t, []string{"POST /api/faculties/1/subjects", "GET /api/faculties"}, api.paths())
	assert.JSONEq(t, `{"subject_id":"2"}`, api.calls[0].body)
	view := board.View()
	assert.Empty(t, view.FacultySelect.Selected)
	assert.Empty(t, view.SubjectSelect.Selected)
	assert.Equal(t, "Can teach: MA101", view.Faculties.Rows[0].Summary)
}

func TestBoardReloadAllStopsOnSessionFailure(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[]`)
	api.fail(http.MethodGet, "/api/batches", client.OutcomeUnauthorized)
	board := NewBoard(api, &fakePrompter{}, nil, nil)

	err := board.ReloadAll(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, []string{"GET /api/rooms", "GET /api/batches"}, api.paths())
}

func TestBoardReloadAllContinuesPastTransportFailure(t *testing.T) {
	api := newFakeRequester()
	api.fail(http.MethodGet, "/api/rooms", client.OutcomeTransport)
	api.on(http.MethodGet, "/api/batches", `[]`)
	api.on(http.MethodGet, "/api/subjects", `[]`)
	api.on(http.MethodGet, "/api/faculties", `[]`)
	board := NewBoard(api, &fakePrompter{}, nil, nil)

	err := board.ReloadAll(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrTransport)
	view := board.View()
	assert.False(t, view.Rooms.Loaded)
	assert.True(t, view.Faculties.Loaded)
	assert.Equal(t, "No faculty added yet.", view.Faculties.Placeholder)
}

func TestFindUsesLastSnapshot(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[{"id":7,"name":"Hall"}]`)
	rooms := NewRoomController(api, &fakePrompter{}, nil, nil)
	require.NoError(t, rooms.Reload(context.Background()))

	room, ok := rooms.Find("7")
	require.True(t, ok)
	assert.Equal(t, "Hall", room.Name)
	_, ok = rooms.Find("8")
	assert.False(t, ok)
	assert.Len(t, rooms.Items(), 1)
}

func TestListControllerLabelOf(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/rooms", `[{"id":1,"name":"R1"}]`)
	rooms := NewRoomController(api, &fakePrompter{}, nil, nil)

	_, ok := rooms.LabelOf("1")
	assert.False(t, ok)

	require.NoError(t, rooms.Reload(context.Background()))
	label, ok := rooms.LabelOf("1")
	assert.True(t, ok)
	assert.Equal(t, "R1", label)
	assert.Equal(t, "room", rooms.Name())
}

func TestDeleteByIDResolvesLabel(t *testing.T) {
	api := newFakeRequester()
	api.on(http.MethodGet, "/api/batches", `[{"id":4,"name":"CS-1"}]`)
	prompter := &fakePrompter{answer: true}
	batches := NewBatchController(api, prompter, nil, nil)

	require.NoError(t, batches.DeleteByID(context.Background(), "4"))
	assert.Equal(t, []string{`Are you sure you want to delete batch "CS-1"?`}, prompter.questions)
	assert.Contains(t, api.paths(), "DELETE /api/batches/4")

	err := batches.DeleteByID(context.Background(), "9")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Len(t, prompter.questions, 1)
}
