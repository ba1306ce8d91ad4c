package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
	"github.com/noah-isme/timetable-console/pkg/config"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

const (
	credentialsRequired = "Username and password are required."
	invalidCredentials  = "Invalid username or password"
	maxMessageBytes     = 4 << 10
)

// Authenticator drives the backend's form based login, registration and
// logout endpoints.
type Authenticator struct {
	baseURL   string
	http      *http.Client
	validator *validator.Validate
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthenticator builds an authenticator. Redirects are never followed:
// a redirect is how the backend reports a successful form post.
func NewAuthenticator(api config.APIConfig, ttl time.Duration, httpClient *http.Client, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := http.Client{Timeout: api.Timeout}
	if httpClient != nil {
		base = *httpClient
	}
	base.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Authenticator{
		baseURL:   strings.TrimRight(api.BaseURL, "/"),
		http:      &base,
		validator: validator.New(),
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Login posts the credentials and captures the issued session cookies. key
// identifies the operator the session belongs to; empty mints a new one.
func (a *Authenticator) Login(ctx context.Context, key string, form dto.CredentialsForm) (*models.Session, error) {
	form = trimCredentials(form)
	if err := a.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, credentialsRequired)
	}

	resp, err := a.postForm(ctx, "/login", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, messageOr(resp.Body, invalidCredentials))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, appErrors.Clone(appErrors.ErrTransport, fmt.Sprintf("login failed with status %d", resp.StatusCode))
	}

	cookies := models.StoreCookies(resp.Cookies())
	if len(cookies) == 0 {
		return nil, appErrors.Clone(appErrors.ErrTransport, "login response carried no session cookie")
	}

	if key == "" {
		key = uuid.NewString()
	}
	now := a.now()
	sess := &models.Session{Key: key, Username: form.Username, Cookies: cookies, CreatedAt: now}
	if a.ttl > 0 {
		sess.ExpiresAt = now.Add(a.ttl)
	}
	a.logger.Info("logged in", zap.String("username", form.Username), zap.Int("cookies", len(cookies)))
	return sess, nil
}

// Register creates a backend account. It does not log in.
func (a *Authenticator) Register(ctx context.Context, form dto.CredentialsForm) error {
	form = trimCredentials(form)
	if err := a.validator.Struct(form); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, credentialsRequired)
	}

	resp, err := a.postForm(ctx, "/register", form)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return appErrors.Clone(appErrors.ErrValidation, messageOr(resp.Body, credentialsRequired))
	case http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, messageOr(resp.Body, "Username already exists. Please choose another."))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return appErrors.Clone(appErrors.ErrTransport, fmt.Sprintf("registration failed with status %d", resp.StatusCode))
	}
	a.logger.Info("registered", zap.String("username", form.Username))
	return nil
}

// Logout ends the backend session. A missing session is not an error.
func (a *Authenticator) Logout(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/logout", nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "build logout request")
	}
	for _, c := range sess.HTTPCookies() {
		req.AddCookie(c)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	_ = resp.Body.Close()
	a.logger.Info("logged out", zap.String("username", sess.Username))
	return nil
}

func (a *Authenticator) postForm(ctx context.Context, path string, form dto.CredentialsForm) (*http.Response, error) {
	values := url.Values{}
	values.Set("username", form.Username)
	values.Set("password", form.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "build "+path+" request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		a.logger.Warn("auth request failed", zap.String("path", path), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	return resp, nil
}

func trimCredentials(form dto.CredentialsForm) dto.CredentialsForm {
	form.Username = strings.TrimSpace(form.Username)
	return form
}

// messageOr returns the plain text body the backend answered with, or
// fallback when it is empty.
func messageOr(body io.Reader, fallback string) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxMessageBytes))
	if err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" && !strings.HasPrefix(msg, "<") {
		return msg
	}
	return fallback
}
