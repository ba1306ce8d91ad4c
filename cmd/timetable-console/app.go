package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/controller"
	"github.com/noah-isme/timetable-console/internal/pivot"
	"github.com/noah-isme/timetable-console/internal/render"
	"github.com/noah-isme/timetable-console/internal/service"
	"github.com/noah-isme/timetable-console/internal/session"
	"github.com/noah-isme/timetable-console/internal/terminal"
	"github.com/noah-isme/timetable-console/pkg/config"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
	"github.com/noah-isme/timetable-console/pkg/logger"
	"github.com/noah-isme/timetable-console/pkg/storage"
)

// cli holds the process-wide wiring shared by every subcommand. It is
// built lazily so that --help never touches config or the session store.
type cli struct {
	loadConfig func() (*config.Config, error)
	in         io.Reader
	out        io.Writer
	assumeYes  bool

	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	console *service.ConsoleService
	term    *terminal.Console
	closers []func() error
}

func newRootCommand(loadConfig func() (*config.Config, error), in io.Reader, out io.Writer) (*cobra.Command, *cli) {
	c := &cli{loadConfig: loadConfig, in: in, out: out}
	root := &cobra.Command{
		Use:           "timetable-console",
		Short:         "Operator console for the timetable generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.start(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&c.assumeYes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(
		newLoginCommand(c),
		newRegisterCommand(c),
		newLogoutCommand(c),
		newManageCommand(c),
		newRoomsCommand(c),
		newBatchesCommand(c),
		newSubjectsCommand(c),
		newFacultyCommand(c),
		newGenerateCommand(c),
		newExportsCommand(c),
		newServeCommand(c),
	)
	return root, c
}

func (c *cli) start(ctx context.Context) error {
	if c.console != nil {
		return nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.closers = append(c.closers, func() error { _ = logr.Sync(); return nil })

	store, closeStore, err := session.NewStore(ctx, cfg, logr)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, closeStore)

	var exports *storage.LocalStorage
	if cfg.Export.Dir != "" {
		if exports, err = storage.NewLocalStorage(cfg.Export.Dir); err != nil {
			return err
		}
	}

	axes, err := pivot.AxesFromConfig(cfg.Timetable)
	if err != nil {
		return err
	}

	c.term = terminal.New(c.in, c.out, c.assumeYes)
	c.metrics = service.NewMetricsService()
	apiClient := client.New(cfg.API,
		client.WithLogger(logr),
		client.WithNotifier(c.term),
		client.WithNavigator(c.term),
	)
	c.console = service.NewConsoleService(
		apiClient,
		store,
		session.NewAuthenticator(cfg.API, cfg.Session.TTL, nil, logr),
		pivot.NewPipeline(axes, logr),
		exports,
		c.metrics,
		logr,
	)
	c.cfg = cfg
	c.logger = logr
	return nil
}

func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}

// ctx binds the CLI session and the terminal to upstream calls.
func (c *cli) ctx(cmd *cobra.Command) context.Context {
	ctx := client.ContextWithSurfaces(cmd.Context(), c.term, c.term)
	return service.WithSessionKey(ctx, session.CLIKey)
}

func (c *cli) board() *controller.Board {
	return c.console.Board(c.term)
}

func (c *cli) text() *render.Text {
	return render.NewText(c.out)
}

// declined turns a refused confirmation into a clean exit.
func (c *cli) declined(err error) error {
	if errors.Is(err, appErrors.ErrDeclined) {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}
	return err
}
