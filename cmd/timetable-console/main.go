package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/noah-isme/timetable-console/pkg/config"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, c := newRootCommand(config.Load, os.Stdin, os.Stdout)
	err := root.ExecuteContext(ctx)
	c.close()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	if errors.Is(err, appErrors.ErrUnauthorized) {
		os.Exit(2)
	}
	os.Exit(1)
}
