package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/timetable-console/internal/models"
	"github.com/noah-isme/timetable-console/internal/service"
	"github.com/noah-isme/timetable-console/internal/session"
)

func issue(t *testing.T, tokens *session.Tokens, key, username string) string {
	t.Helper()
	token, _, err := tokens.Issue(&models.Session{Key: key, Username: username})
	require.NoError(t, err)
	return token
}

func sessionRouter(tokens *session.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	echo := func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.Username+"@"+service.SessionKey(c.Request.Context()))
	}
	r.GET("/page", RequireSession(tokens, "/"), echo)
	r.GET("/views/x", RequireSessionJSON(tokens), echo)
	r.GET("/open", OptionalSession(tokens), echo)
	return r
}

func TestRequireSessionRedirectsWithoutCookie(t *testing.T) {
	r := sessionRouter(session.NewTokens("secret", time.Hour))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRequireSessionBindsClaimsAndKey(t *testing.T) {
	tokens := session.NewTokens("secret", time.Hour)
	r := sessionRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: issue(t, tokens, "browser-1", "admin")})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@browser-1", rec.Body.String())
}

func TestRequireSessionRejectsForeignToken(t *testing.T) {
	r := sessionRouter(session.NewTokens("secret", time.Hour))
	forged := issue(t, session.NewTokens("other", time.Hour), "k", "mallory")

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/views/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestRequireSessionJSONWithoutCookie(t *testing.T) {
	r := sessionRouter(session.NewTokens("secret", time.Hour))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/views/x", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestOptionalSessionNeverBlocks(t *testing.T) {
	r := sessionRouter(session.NewTokens("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestResponseMetaRecordsProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured map[string]interface{}
	r.GET("/", WithResponseMeta(), func(c *gin.Context) {
		SetMeta(c, "busy", true)
		captured = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, true, captured["busy"])
	assert.Contains(t, captured, "processing_time_ms")
}

func TestAuditLogsSuccessfulMutationsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.POST("/manage/:resource", Audit(zap.New(core), "create", ""), func(c *gin.Context) {
		if c.Param("resource") == "bad" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusSeeOther)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/manage/rooms", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/manage/bad", nil))

	entries := logs.FilterMessage("console_audit").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rooms", entries[0].ContextMap()["resource"])
	assert.Equal(t, "create", entries[0].ContextMap()["action"])
}
