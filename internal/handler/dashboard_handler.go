package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/render"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// DashboardHandler serves the generation dashboard and result exports.
type DashboardHandler struct {
	pageBase
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc consoleService, secureCookies bool, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{pageBase: newPageBase(svc, secureCookies, logger)}
}

// Page renders the operator's generation state and saved exports.
func (h *DashboardHandler) Page(c *gin.Context) {
	trigger := h.svc.Trigger(sessionKey(c))
	view := trigger.View()
	busy := trigger.Busy()

	page := h.page(c, "Dashboard")
	page.Generation = &view
	page.Busy = busy
	page.ExportReady = !busy && view.Results != nil && len(view.Results.Options) > 0
	page.Formats = render.ExportFormats()

	files, err := h.svc.Exports()
	if err != nil {
		h.logger.Warn("list exports", zap.Error(err))
	}
	page.Exports = render.ExportLinks(files, h.now())
	h.html(c, http.StatusOK, "dashboard.html", page)
}

// Generate runs one generation for the operator and returns to the
// dashboard, where the new state is shown.
func (h *DashboardHandler) Generate(c *gin.Context) {
	surface := &webSurface{}
	_, err := h.svc.Generate(surface.bind(c), sessionKey(c))
	if err != nil {
		_ = c.Error(err)
	}
	switch {
	case sessionLost(surface, err):
		h.toLogin(c, surface)
	case errors.Is(err, appErrors.ErrBusy):
		h.seeOther(c, dashboardPath, warning("A generation is already running. Please wait for it to finish."))
	default:
		if err != nil {
			h.logger.Info("generation did not succeed", zap.String("username", username(c)), zap.Error(err))
		}
		c.Redirect(http.StatusSeeOther, dashboardPath)
	}
}

// Export encodes the last results in :format, saves a copy and sends it as
// a download.
func (h *DashboardHandler) Export(c *gin.Context) {
	name, doc, err := h.svc.Export(sessionKey(c), c.Param("format"))
	if err != nil {
		_ = c.Error(err)
		h.seeOther(c, dashboardPath, warning(appErrors.FromError(err).Message))
		return
	}
	if name == "" {
		name = "timetable." + doc.Extension
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// Download serves a previously saved export.
func (h *DashboardHandler) Download(c *gin.Context) {
	store := h.svc.ExportStore()
	if store == nil {
		c.Status(http.StatusNotFound)
		return
	}
	file, err := store.Open(c.Param("name"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), render.ContentTypeOf(info.Name()), file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", info.Name()),
	})
}
