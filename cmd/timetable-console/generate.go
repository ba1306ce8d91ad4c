package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-console/internal/generation"
	"github.com/noah-isme/timetable-console/internal/render"
	"github.com/noah-isme/timetable-console/internal/session"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

func newGenerateCommand(c *cli) *cobra.Command {
	var (
		format string
		out    string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate timetables and render the options",
		Long: "Generate asks the backend for timetable options and renders them.\n" +
			"text, html and json go to stdout unless --out or --save is given;\n" +
			"pdf, xlsx and csv are saved to the export directory by default.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if !supportedFormat(format) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q (want one of %s)", format, strings.Join(render.Formats(), ", ")))
			}
			fmt.Fprintln(c.out, generation.BusyStatus)
			view, genErr := c.console.Generate(c.ctx(cmd), session.CLIKey)
			if errors.Is(genErr, appErrors.ErrUnauthorized) || errors.Is(genErr, appErrors.ErrBusy) {
				return genErr
			}
			if genErr != nil && format != render.FormatText {
				c.text().Generation(view)
				return genErr
			}

			switch {
			case out != "":
				doc, err := render.Encode(format, view)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, doc.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(c.out, "Wrote %s.\n", out)
			case save || isFileFormat(format):
				name, _, err := c.console.SaveDocument(format, view)
				if err != nil {
					return err
				}
				if name == "" {
					return appErrors.Clone(appErrors.ErrValidation, "no export directory configured, pass --out")
				}
				fmt.Fprintf(c.out, "Saved %s to %s.\n", name, c.cfg.Export.Dir)
			default:
				doc, err := render.Encode(format, view)
				if err != nil {
					return err
				}
				if _, err := c.out.Write(doc.Body); err != nil {
					return err
				}
			}
			return genErr
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatText, "output format: "+strings.Join(render.Formats(), ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the rendered output to this file")
	cmd.Flags().BoolVar(&save, "save", false, "save the rendered output to the export directory")
	return cmd
}

func supportedFormat(format string) bool {
	for _, f := range render.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

func isFileFormat(format string) bool {
	for _, f := range render.ExportFormats() {
		if f == format {
			return true
		}
	}
	return false
}

func newExportsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "exports", Short: "Inspect saved exports"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			files, err := c.console.Exports()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(c.out, "No exports saved yet.")
				return nil
			}
			for _, link := range render.ExportLinks(files, time.Now()) {
				fmt.Fprintf(c.out, "%s\t%s\t%s\n", link.Name, link.Size, link.Age)
			}
			return nil
		},
	})

	var olderThan time.Duration
	clean := &cobra.Command{
		Use:   "clean",
		Short: "Delete exports older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store := c.console.ExportStore()
			if store == nil {
				return appErrors.Clone(appErrors.ErrValidation, "no export directory configured")
			}
			if olderThan <= 0 {
				return appErrors.Clone(appErrors.ErrValidation, "--older-than must be positive")
			}
			removed, err := store.CleanupOlderThan(olderThan)
			if err != nil {
				return err
			}
			for _, name := range removed {
				fmt.Fprintf(c.out, "Removed %s.\n", name)
			}
			fmt.Fprintf(c.out, "%d export(s) removed.\n", len(removed))
			return nil
		},
	}
	clean.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "age above which exports are deleted")
	cmd.AddCommand(clean)
	return cmd
}
