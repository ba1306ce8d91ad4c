package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-console/internal/controller"
	"github.com/noah-isme/timetable-console/internal/dto"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// collection is the part of a list controller the resource commands use.
type collection interface {
	Reload(ctx context.Context) error
	View() dto.ListView
	DeleteByID(ctx context.Context, id string) error
}

type resourceCommand struct {
	use, title string
	pick       func(*controller.Board) collection
}

func newManageCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "manage",
		Short: "Show rooms, batches, subjects and faculty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board := c.board()
			err := board.ReloadAll(c.ctx(cmd))
			if errors.Is(err, appErrors.ErrUnauthorized) {
				return err
			}
			c.text().Manage(board.View())
			return err
		},
	}
}

// resource builds the list and delete subcommands shared by every
// collection; add is attached by the caller.
func (c *cli) resource(r resourceCommand, add *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: r.use, Short: "Manage " + strings.ToLower(r.title)}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List " + strings.ToLower(r.title),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list := r.pick(c.board())
				if err := list.Reload(c.ctx(cmd)); err != nil {
					return err
				}
				c.text().List(r.title, list.View())
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete one item after confirmation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				list := r.pick(c.board())
				if err := list.DeleteByID(c.ctx(cmd), args[0]); err != nil {
					return c.declined(err)
				}
				c.text().List(r.title, list.View())
				return nil
			},
		},
		add,
	)
	return cmd
}

// nameAdd builds an add subcommand for collections keyed by a single name.
func (c *cli) nameAdd(title string, create func(context.Context, *controller.Board, string) error, view func(*controller.Board) dto.ListView) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add one item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board := c.board()
			if err := create(c.ctx(cmd), board, strings.Join(args, " ")); err != nil {
				return err
			}
			c.text().List(title, view(board))
			return nil
		},
	}
}

func newRoomsCommand(c *cli) *cobra.Command {
	return c.resource(
		resourceCommand{use: "rooms", title: "Rooms", pick: func(b *controller.Board) collection { return b.Rooms }},
		c.nameAdd("Rooms",
			func(ctx context.Context, b *controller.Board, name string) error { return b.Rooms.Create(ctx, name) },
			func(b *controller.Board) dto.ListView { return b.Rooms.View() }),
	)
}

func newBatchesCommand(c *cli) *cobra.Command {
	return c.resource(
		resourceCommand{use: "batches", title: "Batches", pick: func(b *controller.Board) collection { return b.Batches }},
		c.nameAdd("Batches",
			func(ctx context.Context, b *controller.Board, name string) error { return b.Batches.Create(ctx, name) },
			func(b *controller.Board) dto.ListView { return b.Batches.View() }),
	)
}

func newSubjectsCommand(c *cli) *cobra.Command {
	var form dto.SubjectForm
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board := c.board()
			if err := board.Subjects.Create(c.ctx(cmd), form); err != nil {
				return err
			}
			c.text().List("Subjects", board.Subjects.View())
			return nil
		},
	}
	add.Flags().StringVar(&form.Name, "name", "", "subject name")
	add.Flags().StringVar(&form.Code, "code", "", "subject code")
	add.Flags().StringVar(&form.HoursPerWeek, "hours", "", "hours per week")

	return c.resource(
		resourceCommand{use: "subjects", title: "Subjects", pick: func(b *controller.Board) collection { return b.Subjects }},
		add,
	)
}

func newFacultyCommand(c *cli) *cobra.Command {
	cmd := c.resource(
		resourceCommand{use: "faculty", title: "Faculty", pick: func(b *controller.Board) collection { return b.Faculties }},
		c.nameAdd("Faculty",
			func(ctx context.Context, b *controller.Board, name string) error { return b.Faculties.Create(ctx, name) },
			func(b *controller.Board) dto.ListView { return b.Faculties.View() }),
	)
	cmd.AddCommand(&cobra.Command{
		Use:   "assign FACULTY_ID SUBJECT_ID",
		Short: "Let a faculty member teach a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board := c.board()
			if err := board.Faculties.Assign(c.ctx(cmd), args[0], args[1]); err != nil {
				return err
			}
			c.text().List("Faculty", board.Faculties.View())
			return nil
		},
	})
	return cmd
}
