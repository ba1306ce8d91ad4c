package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/controller"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/generation"
	"github.com/noah-isme/timetable-console/internal/middleware"
	"github.com/noah-isme/timetable-console/internal/models"
	"github.com/noah-isme/timetable-console/internal/render"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
	"github.com/noah-isme/timetable-console/pkg/storage"
)

// consoleService is the slice of the console the web handlers drive.
type consoleService interface {
	LoginPath() string
	Login(ctx context.Context, key string, form dto.CredentialsForm) (*models.Session, error)
	Register(ctx context.Context, form dto.CredentialsForm) error
	Logout(ctx context.Context, key string) error
	Board(prompter controller.Prompter) *controller.Board
	Trigger(key string) *generation.Trigger
	Generate(ctx context.Context, key string) (dto.GenerationView, error)
	Export(key, format string) (string, render.Document, error)
	Exports() ([]storage.StoredFile, error)
	ExportStore() *storage.LocalStorage
}

// tokenIssuer signs the console session cookie.
type tokenIssuer interface {
	Issue(sess *models.Session) (string, time.Time, error)
}

// pageBase carries what every page handler needs: the service, cookie
// handling and the way back to the login page.
type pageBase struct {
	svc    consoleService
	jar    cookieJar
	logger *zap.Logger
	now    func() time.Time
}

func newPageBase(svc consoleService, secureCookies bool, logger *zap.Logger) pageBase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pageBase{svc: svc, jar: cookieJar{secure: secureCookies}, logger: logger, now: time.Now}
}

// page starts the template data of a signed-in page.
func (b pageBase) page(c *gin.Context, title string) render.Page {
	return render.Page{Title: title, Username: username(c), Flash: b.jar.takeFlash(c)}
}

func (b pageBase) html(c *gin.Context, status int, name string, page render.Page) {
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, page)
}

// seeOther finishes a form post with a redirect carrying notices.
func (b pageBase) seeOther(c *gin.Context, location string, notices ...dto.Notice) {
	b.jar.flash(c, notices...)
	c.Redirect(http.StatusSeeOther, location)
}

// toLogin ends the console session after the backend rejected it.
func (b pageBase) toLogin(c *gin.Context, surface *webSurface) {
	notices := surface.notices
	if len(notices) == 0 {
		notices = []dto.Notice{warning(client.UnauthorizedNotice)}
	}
	location := surface.redirect
	if location == "" {
		location = b.svc.LoginPath()
	}
	b.jar.clear(c, middleware.SessionCookie)
	b.seeOther(c, location, notices...)
}

// sessionLost reports whether err or the surface signal a rejected session.
func sessionLost(surface *webSurface, err error) bool {
	return surface.redirect != "" || errors.Is(err, appErrors.ErrUnauthorized)
}

// failureNotice turns a non-session error into a page notice. Validation
// failures were already alerted through the surface.
func failureNotice(surface *webSurface, err error) []dto.Notice {
	notices := append([]dto.Notice(nil), surface.notices...)
	if err == nil || errors.Is(err, appErrors.ErrValidation) || errors.Is(err, appErrors.ErrDeclined) {
		return notices
	}
	return append(notices, warning(appErrors.FromError(err).Message))
}
