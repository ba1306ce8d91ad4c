package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/middleware"
	"github.com/noah-isme/timetable-console/internal/render"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

const registeredNotice = "Registration successful. Please log in."

// AuthHandler serves the login, register and logout pages.
type AuthHandler struct {
	pageBase
	tokens tokenIssuer
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc consoleService, tokens tokenIssuer, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{pageBase: newPageBase(svc, secureCookies, logger), tokens: tokens}
}

// LoginPage renders the login form, or forwards a signed-in browser to the
// dashboard.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if claimsFromContext(c) != nil {
		c.Redirect(http.StatusSeeOther, dashboardPath)
		return
	}
	h.html(c, http.StatusOK, "login.html", render.Page{Title: "Login", Flash: h.jar.takeFlash(c)})
}

// Login signs in against the backend. Each browser gets its own stored
// session; the cookie only carries a signed reference to it.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.CredentialsForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, "login.html", "Login", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Username and password are required."))
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), uuid.NewString(), form)
	if err != nil {
		h.fail(c, "login.html", "Login", err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(sess)
	if err != nil {
		h.logger.Error("sign console session", zap.Error(err))
		h.fail(c, "login.html", "Login", appErrors.ErrInternal)
		return
	}
	h.jar.set(c, middleware.SessionCookie, token, int(time.Until(expiresAt).Seconds()))
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

// RegisterPage renders the register form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.html(c, http.StatusOK, "register.html", render.Page{Title: "Register", Flash: h.jar.takeFlash(c)})
}

// Register creates a backend account and sends the operator to log in.
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.CredentialsForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, "register.html", "Register", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Username and password are required."))
		return
	}
	if err := h.svc.Register(c.Request.Context(), form); err != nil {
		h.fail(c, "register.html", "Register", err)
		return
	}
	h.seeOther(c, h.svc.LoginPath(), success(registeredNotice))
}

// Logout ends the backend session and clears the console cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if key := sessionKey(c); key != "" {
		if err := h.svc.Logout(c.Request.Context(), key); err != nil {
			h.logger.Warn("logout failed", zap.String("username", username(c)), zap.Error(err))
		}
	}
	h.jar.clear(c, middleware.SessionCookie)
	c.Redirect(http.StatusSeeOther, h.svc.LoginPath())
}

// fail re-renders a credentials form with the error's status and message.
func (h *AuthHandler) fail(c *gin.Context, name, title string, err error) {
	appErr := appErrors.FromError(err)
	h.html(c, appErr.Status, name, render.Page{Title: title, Flash: []dto.Notice{warning(appErr.Message)}})
}
