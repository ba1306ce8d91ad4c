package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// Prompter is the operator dialog surface: blocking alerts and yes/no
// confirmations.
type Prompter interface {
	Alert(message string)
	Confirm(message string) bool
}

// Resource describes one backend collection and how its items project onto
// list rows and selection options.
type Resource[T any] struct {
	Name        string
	Path        string
	Placeholder string
	ID          func(T) models.ID
	Label       func(T) string
	Row         func(T) dto.ListRow

	// Option and SelectPrompt are set when the resource feeds a selection
	// control.
	Option       func(T) dto.SelectOption
	SelectPrompt string
}

// ListController keeps one list view, and optionally one selection control,
// in step with one backend collection. The view is always rebuilt from the
// latest fetched snapshot; items are never edited in place.
type ListController[T any] struct {
	res      Resource[T]
	client   client.Requester
	prompter Prompter
	logger   *zap.Logger

	mu         sync.RWMutex
	view       dto.ListView
	selection  dto.SelectView
	items      []T
	dependents []func(context.Context) error
}

// NewListController builds a controller for res.
func NewListController[T any](res Resource[T], requester client.Requester, prompter Prompter, logger *zap.Logger) *ListController[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListController[T]{
		res:       res,
		client:    requester,
		prompter:  prompter,
		logger:    logger,
		view:      dto.ListView{Resource: res.Name},
		selection: dto.SelectView{Prompt: res.SelectPrompt},
	}
}

// DependOn registers a reload that must follow every successful mutation of
// this collection.
func (l *ListController[T]) DependOn(reload func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dependents = append(l.dependents, reload)
}

// Reload fetches the collection and rebuilds the view. A failed fetch leaves
// the previous view exactly as it was.
func (l *ListController[T]) Reload(ctx context.Context) error {
	outcome := l.client.Request(ctx, http.MethodGet, l.res.Path, nil)
	if !outcome.OK() {
		return outcome.AsError()
	}

	var items []T
	if len(outcome.Body) > 0 {
		if err := json.Unmarshal(outcome.Body, &items); err != nil {
			l.logger.Warn("unexpected list payload", zap.String("resource", l.res.Name), zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, fmt.Sprintf("unexpected %s list", l.res.Name))
		}
	}

	view := dto.ListView{Resource: l.res.Name, Loaded: true}
	if len(items) == 0 {
		view.Placeholder = l.res.Placeholder
	} else {
		view.Rows = make([]dto.ListRow, 0, len(items))
		for _, item := range items {
			row := l.res.Row(item)
			row.ID = l.res.ID(item).String()
			row.Label = l.res.Label(item)
			row.Deletable = true
			view.Rows = append(view.Rows, row)
		}
	}

	selection := dto.SelectView{Prompt: l.res.SelectPrompt, Options: []dto.SelectOption{}}
	if l.res.Option != nil {
		for _, item := range items {
			selection.Options = append(selection.Options, l.res.Option(item))
		}
	}

	l.mu.Lock()
	l.view = view
	l.selection = selection
	l.items = items
	l.mu.Unlock()
	return nil
}

// View returns a copy of the current list view.
func (l *ListController[T]) View() dto.ListView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	view := l.view
	view.Rows = append([]dto.ListRow(nil), l.view.Rows...)
	return view
}

// Selection returns a copy of the selection control fed by this list.
func (l *ListController[T]) Selection() dto.SelectView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sel := l.selection
	sel.Options = append([]dto.SelectOption(nil), l.selection.Options...)
	return sel
}

// Select sets the selection control's current value.
func (l *ListController[T]) Select(value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection.Selected = value
}

// ClearSelection resets the selection control to its prompt.
func (l *ListController[T]) ClearSelection() {
	l.Select("")
}

// Items returns the last fetched snapshot.
func (l *ListController[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

// Find looks up an item by id in the last fetched snapshot.
func (l *ListController[T]) Find(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, item := range l.items {
		if l.res.ID(item).String() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// DeletePrompt is the question asked before deleting an item.
func DeletePrompt(resource, label string) string {
	return fmt.Sprintf("Are you sure you want to delete %s \"%s\"?", resource, label)
}

// Name is the singular resource name used in prompts.
func (l *ListController[T]) Name() string {
	return l.res.Name
}

// LabelOf returns the display label of id in the last fetched snapshot.
func (l *ListController[T]) LabelOf(id string) (string, bool) {
	item, ok := l.Find(id)
	if !ok {
		return "", false
	}
	return l.res.Label(item), true
}

// Delete asks the operator to confirm, then deletes the item and reloads.
// Declining makes no call and leaves the view untouched.
func (l *ListController[T]) Delete(ctx context.Context, id, label string) error {
	if !l.prompter.Confirm(DeletePrompt(l.res.Name, label)) {
		return appErrors.ErrDeclined
	}
	outcome := l.client.Request(ctx, http.MethodDelete, l.res.Path+"/"+url.PathEscape(id), nil)
	if !outcome.OK() {
		return outcome.AsError()
	}
	l.logger.Debug("resource deleted", zap.String("resource", l.res.Name), zap.String("id", id))
	return l.afterMutation(ctx)
}

// DeleteByID resolves the item's label from a fresh snapshot, then deletes
// it the way Delete does.
func (l *ListController[T]) DeleteByID(ctx context.Context, id string) error {
	if err := l.Reload(ctx); err != nil {
		return err
	}
	label, ok := l.LabelOf(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("No %s with id %s.", l.res.Name, id))
	}
	return l.Delete(ctx, id, label)
}

// alert surfaces a validation problem and returns the matching error.
func (l *ListController[T]) alert(message string) error {
	l.prompter.Alert(message)
	return appErrors.Clone(appErrors.ErrValidation, message)
}

// create posts an already validated payload and reloads. The response body is
// not inspected: the reload is the single source of truth.
func (l *ListController[T]) create(ctx context.Context, payload interface{}) error {
	outcome := l.client.Request(ctx, http.MethodPost, l.res.Path, payload)
	if !outcome.OK() {
		return outcome.AsError()
	}
	l.logger.Debug("resource created", zap.String("resource", l.res.Name), zap.Int("status", outcome.Status))
	return l.afterMutation(ctx)
}

func (l *ListController[T]) afterMutation(ctx context.Context) error {
	if err := l.Reload(ctx); err != nil {
		return err
	}
	l.mu.RLock()
	dependents := append([]func(context.Context) error(nil), l.dependents...)
	l.mu.RUnlock()
	for _, reload := range dependents {
		if err := reload(ctx); err != nil {
			return err
		}
	}
	return nil
}
