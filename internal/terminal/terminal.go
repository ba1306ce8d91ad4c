package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// LoginHint tells a CLI operator how to reach the login entry point.
const LoginHint = "Run `timetable-console login` to start a new session."

// Console is the CLI's dialog surface: alerts, confirmations, notices and
// the redirect to the login entry point.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	assumeYes   bool
	interactive bool

	mu         sync.Mutex
	redirected string
}

// New builds a console over in and out. assumeYes answers every
// confirmation; otherwise a non-interactive input declines them.
func New(in io.Reader, out io.Writer, assumeYes bool) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		assumeYes:   assumeYes,
		interactive: isTerminal(in),
	}
}

// Std wires the console to the process stdin and stdout.
func Std(assumeYes bool) *Console {
	return New(os.Stdin, os.Stdout, assumeYes)
}

// SetInteractive overrides terminal detection.
func (c *Console) SetInteractive(v bool) {
	c.interactive = v
}

// Alert prints a validation message.
func (c *Console) Alert(message string) {
	fmt.Fprintf(c.out, "! %s\n", message)
}

// Notify prints a blocking notice.
func (c *Console) Notify(message string) {
	fmt.Fprintf(c.out, "! %s\n", message)
}

// Confirm asks a yes/no question. Only y or yes (any case) confirms.
func (c *Console) Confirm(message string) bool {
	if c.assumeYes {
		fmt.Fprintf(c.out, "%s [y/N]: y\n", message)
		return true
	}
	if !c.interactive {
		fmt.Fprintf(c.out, "%s [y/N]: declined (not a terminal, pass --yes)\n", message)
		return false
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", message)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Ask prints a prompt and reads one trimmed line. Input is echoed.
func (c *Console) Ask(prompt string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return "", fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
	}
	return strings.TrimSpace(line), nil
}

// Redirect records the entry point and points the operator at login.
func (c *Console) Redirect(path string) {
	c.mu.Lock()
	c.redirected = path
	c.mu.Unlock()
	fmt.Fprintln(c.out, LoginHint)
}

// Redirected returns the last redirect target, if any.
func (c *Console) Redirected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirected
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
