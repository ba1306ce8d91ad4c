package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, "/", cfg.API.LoginPath)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, cfg.Timetable.Days)
	assert.Equal(t, []string{"9-10", "10-11", "11-12", "1-2", "2-3"}, cfg.Timetable.Timeslots)
	assert.Equal(t, SessionStoreFile, cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "./exports", cfg.Export.Dir)
	assert.Zero(t, cfg.Export.Retention)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("API_BASE_URL", "https://timetable.example.com/")
	t.Setenv("TIMETABLE_DAYS", "Mon, Wed ,Fri")
	t.Setenv("SESSION_STORE", "REDIS")
	t.Setenv("HTTP_TIMEOUT", "45s")
	t.Setenv("EXPORT_RETENTION", "168h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://timetable.example.com", cfg.API.BaseURL)
	assert.Equal(t, []string{"Mon", "Wed", "Fri"}, cfg.Timetable.Days)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.Equal(t, 168*time.Hour, cfg.Export.Retention)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a,, b ,"))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
