package controller

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// Board groups the four reference-data controllers of the manage page and
// wires their only coupling: subject mutations reload the faculty list.
type Board struct {
	Rooms     *RoomController
	Batches   *BatchController
	Subjects  *SubjectController
	Faculties *FacultyController
}

// NewBoard builds the controllers over one requester and prompter.
func NewBoard(requester client.Requester, prompter Prompter, validate *validator.Validate, logger *zap.Logger) *Board {
	validate = orDefault(validate)
	b := &Board{
		Rooms:     NewRoomController(requester, prompter, validate, logger),
		Batches:   NewBatchController(requester, prompter, validate, logger),
		Subjects:  NewSubjectController(requester, prompter, validate, logger),
		Faculties: NewFacultyController(requester, prompter, validate, logger),
	}
	b.Subjects.DependOn(b.Faculties.Reload)
	b.Faculties.clearSubjectSelection = b.Subjects.ClearSelection
	return b
}

// ReloadAll refreshes every list. It stops at the first session failure so
// the operator is redirected once; transport failures are collected and the
// remaining lists are still loaded.
func (b *Board) ReloadAll(ctx context.Context) error {
	reloads := []func(context.Context) error{
		b.Rooms.Reload,
		b.Batches.Reload,
		b.Subjects.Reload,
		b.Faculties.Reload,
	}
	var errs []error
	for _, reload := range reloads {
		if err := reload(ctx); err != nil {
			if errors.Is(err, appErrors.ErrUnauthorized) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// View snapshots the manage page.
func (b *Board) View() dto.ManageView {
	return dto.ManageView{
		Rooms:         b.Rooms.View(),
		Batches:       b.Batches.View(),
		Subjects:      b.Subjects.View(),
		Faculties:     b.Faculties.View(),
		FacultySelect: b.Faculties.Selection(),
		SubjectSelect: b.Subjects.Selection(),
	}
}
