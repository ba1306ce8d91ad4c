package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/controller"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/render"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

const (
	managePath    = "/manage"
	dashboardPath = "/dashboard"
)

// Manage route resources.
const (
	resourceRooms     = "rooms"
	resourceBatches   = "batches"
	resourceSubjects  = "subjects"
	resourceFaculties = "faculties"
)

// ManageHandler serves the reference-data page. Every request builds a fresh
// board over the operator's session, so the page always shows the backend's
// latest lists.
type ManageHandler struct {
	pageBase
}

// NewManageHandler creates a new handler.
func NewManageHandler(svc consoleService, secureCookies bool, logger *zap.Logger) *ManageHandler {
	return &ManageHandler{pageBase: newPageBase(svc, secureCookies, logger)}
}

// Page renders all four lists and the assignment form.
func (h *ManageHandler) Page(c *gin.Context) {
	surface := &webSurface{}
	board := h.svc.Board(surface)
	err := board.ReloadAll(surface.bind(c))
	if sessionLost(surface, err) {
		h.toLogin(c, surface)
		return
	}

	page := h.page(c, "Manage Data")
	page.Flash = append(page.Flash, failureNotice(surface, err)...)
	view := board.View()
	page.Manage = &view
	h.html(c, http.StatusOK, "manage.html", page)
}

// Create adds one item to the collection named by :resource.
func (h *ManageHandler) Create(c *gin.Context) {
	surface := &webSurface{}
	board := h.svc.Board(surface)
	ctx := surface.bind(c)

	var err error
	switch c.Param("resource") {
	case resourceRooms:
		err = board.Rooms.Create(ctx, c.PostForm("name"))
	case resourceBatches:
		err = board.Batches.Create(ctx, c.PostForm("name"))
	case resourceSubjects:
		var form dto.SubjectForm
		if bindErr := c.ShouldBind(&form); bindErr != nil {
			err = appErrors.Wrap(bindErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subject form")
			break
		}
		err = board.Subjects.Create(ctx, form)
	case resourceFaculties:
		err = board.Faculties.Create(ctx, c.PostForm("name"))
	default:
		c.Status(http.StatusNotFound)
		return
	}
	h.finish(c, surface, err)
}

// Assign links the selected subject to the selected faculty member.
func (h *ManageHandler) Assign(c *gin.Context) {
	surface := &webSurface{}
	board := h.svc.Board(surface)
	err := board.Faculties.Assign(surface.bind(c), c.PostForm("faculty_id"), c.PostForm("subject_id"))
	h.finish(c, surface, err)
}

// ConfirmDelete asks before deleting. Nothing is sent to the backend until
// the confirmation form is posted.
func (h *ManageHandler) ConfirmDelete(c *gin.Context) {
	surface := &webSurface{}
	list, ok := collection(h.svc.Board(surface), c.Param("resource"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	label, err := lookup(surface.bind(c), list, c.Param("id"))
	if sessionLost(surface, err) {
		h.toLogin(c, surface)
		return
	}
	if err != nil {
		h.seeOther(c, managePath, failureNotice(surface, err)...)
		return
	}

	page := h.page(c, "Confirm delete")
	page.Confirm = &render.ConfirmView{
		Message: controller.DeletePrompt(list.Name(), label),
		Action:  c.Request.URL.Path,
		Cancel:  managePath,
	}
	h.html(c, http.StatusOK, "confirm.html", page)
}

// Delete removes the item once the confirmation form answered yes.
func (h *ManageHandler) Delete(c *gin.Context) {
	surface := &webSurface{confirmed: c.PostForm("confirm") == "yes"}
	list, ok := collection(h.svc.Board(surface), c.Param("resource"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	h.finish(c, surface, list.DeleteByID(surface.bind(c), c.Param("id")))
}

// finish redirects back to the page, or to login when the backend rejected
// the session.
func (h *ManageHandler) finish(c *gin.Context, surface *webSurface, err error) {
	if sessionLost(surface, err) {
		h.toLogin(c, surface)
		return
	}
	if err != nil {
		_ = c.Error(err)
		if !errors.Is(err, appErrors.ErrDeclined) {
			h.logger.Debug("manage action failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
	}
	h.seeOther(c, managePath, failureNotice(surface, err)...)
}

// deletable is the part of a list controller the delete flow uses.
type deletable interface {
	Reload(ctx context.Context) error
	Name() string
	LabelOf(id string) (string, bool)
	DeleteByID(ctx context.Context, id string) error
}

func collection(board *controller.Board, resource string) (deletable, bool) {
	switch resource {
	case resourceRooms:
		return board.Rooms, true
	case resourceBatches:
		return board.Batches, true
	case resourceSubjects:
		return board.Subjects, true
	case resourceFaculties:
		return board.Faculties, true
	default:
		return nil, false
	}
}

// lookup reloads the collection and resolves the item's display label.
func lookup(ctx context.Context, list deletable, id string) (string, error) {
	if err := list.Reload(ctx); err != nil {
		return "", err
	}
	label, ok := list.LabelOf(id)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "That item no longer exists.")
	}
	return label, nil
}
