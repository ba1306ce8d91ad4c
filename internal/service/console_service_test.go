package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/session"
	"github.com/noah-isme/timetable-console/pkg/config"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
	"github.com/noah-isme/timetable-console/pkg/storage"
)

type alwaysYes struct{ alerts []string }

func (p *alwaysYes) Alert(message string)        { p.alerts = append(p.alerts, message) }
func (p *alwaysYes) Confirm(message string) bool { return true }

type fakeBackend struct {
	*httptest.Server
	generated int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	authed := func(r *http.Request) bool {
		c, err := r.Cookie("session")
		return err == nil && c.Value == "flask"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "flask", Path: "/"})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"R1"}]`))
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		atomic.AddInt32(&b.generated, 1)
		_, _ = w.Write([]byte(`{"status":"success","results":[{"option":1,"fitness":0,"timetable":[{"batch":"B1","day":"Mon","timeslot":"9-10","subject":"Math","faculty":"A","room":"R1"}]}]}`))
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func newTestService(t *testing.T, backend *fakeBackend) *ConsoleService {
	t.Helper()
	api := config.APIConfig{BaseURL: backend.URL, LoginPath: "/"}
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.yaml"))
	exports, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)
	return NewConsoleService(
		client.New(api),
		store,
		session.NewAuthenticator(api, 0, nil, nil),
		nil,
		exports,
		NewMetricsService(),
		nil,
	)
}

func TestConsoleServiceSessionFlow(t *testing.T) {
	backend := newFakeBackend(t)
	svc := newTestService(t, backend)
	ctx := context.Background()

	board := svc.Board(&alwaysYes{})
	err := board.Rooms.Reload(WithSessionKey(ctx, session.CLIKey))
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Login(ctx, session.CLIKey, dto.CredentialsForm{Username: "admin", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, board.Rooms.Reload(WithSessionKey(ctx, session.CLIKey)))
	assert.Equal(t, "R1", board.Rooms.View().Rows[0].Title)

	require.NoError(t, svc.Logout(ctx, session.CLIKey))
	_, err = svc.Session(ctx, session.CLIKey)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestConsoleServiceGenerateAndExport(t *testing.T) {
	backend := newFakeBackend(t)
	svc := newTestService(t, backend)
	ctx := context.Background()

	_, _, err := svc.Export("browser-1", "csv")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Login(ctx, "browser-1", dto.CredentialsForm{Username: "admin", Password: "secret"})
	require.NoError(t, err)

	view, err := svc.Generate(ctx, "browser-1")
	require.NoError(t, err)
	assert.Equal(t, "Generation complete! Found 1 optimized options.", view.Status)
	assert.Same(t, svc.Trigger("browser-1"), svc.Trigger("browser-1"))
	assert.NotSame(t, svc.Trigger("browser-1"), svc.Trigger("browser-2"))

	name, doc, err := svc.Export("browser-1", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", doc.Extension)
	files, err := svc.Exports()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, name, files[0].Name)

	total, failed := svc.metrics.UpstreamSnapshot()
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, uint64(0), failed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.generated))
}

func TestConsoleServiceGenerateWithoutSession(t *testing.T) {
	backend := newFakeBackend(t)
	svc := newTestService(t, backend)

	view, err := svc.Generate(context.Background(), "nobody")

	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Nil(t, view.Results)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.generated))
}

func TestSessionKeyContext(t *testing.T) {
	assert.Equal(t, "", SessionKey(context.Background()))
	assert.Equal(t, "k", SessionKey(WithSessionKey(context.Background(), "k")))
}
