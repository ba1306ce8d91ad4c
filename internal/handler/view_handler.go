package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/middleware"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
	"github.com/noah-isme/timetable-console/pkg/response"
)

// ViewHandler exposes the page view-models as JSON for scripted clients.
type ViewHandler struct {
	svc    consoleService
	logger *zap.Logger
}

// NewViewHandler creates a new handler.
func NewViewHandler(svc consoleService, logger *zap.Logger) *ViewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewHandler{svc: svc, logger: logger}
}

// Manage returns the manage page state. Lists that failed to load keep
// their placeholder and the failure is reported in meta.
func (h *ViewHandler) Manage(c *gin.Context) {
	surface := &webSurface{}
	board := h.svc.Board(surface)
	err := board.ReloadAll(surface.bind(c))
	if sessionLost(surface, err) {
		response.Error(c, err)
		return
	}
	if err != nil {
		middleware.SetMeta(c, "errors", err.Error())
	}

	view := board.View()
	view.Alerts = surface.texts()
	response.OK(c, view, middleware.ExtractMeta(c))
}

// Generation returns the operator's current generation state.
func (h *ViewHandler) Generation(c *gin.Context) {
	trigger := h.svc.Trigger(sessionKey(c))
	middleware.SetMeta(c, "busy", trigger.Busy())
	response.OK(c, trigger.View(), middleware.ExtractMeta(c))
}

// Generate runs one generation and returns the resulting state. Application
// errors reported by the generator are part of the view, not the status.
func (h *ViewHandler) Generate(c *gin.Context) {
	surface := &webSurface{}
	view, err := h.svc.Generate(surface.bind(c), sessionKey(c))
	if sessionLost(surface, err) || errors.Is(err, appErrors.ErrBusy) {
		response.Error(c, err)
		return
	}
	if err != nil {
		h.logger.Debug("generation did not succeed", zap.Error(err))
		middleware.SetMeta(c, "error", err.Error())
	}
	response.OK(c, view, middleware.ExtractMeta(c))
}
