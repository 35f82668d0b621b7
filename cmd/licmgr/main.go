package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"licmgr/internal/app"
	apperrors "licmgr/internal/errors"
	"licmgr/internal/infrastructure"
	"licmgr/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	env := newEnvironment(stdin, stdout, stderr)
	defer env.close()

	ctx = infrastructure.EnsureTraceID(ctx)
	err := newRootCommand(env).Run(ctx, args)
	return env.exitCode(ctx, err)
}

// environment carries the process streams and the lazily built application
// shared by every command of one run
type environment struct {
	prompt *prompter
	stdout io.Writer
	stderr io.Writer
	clock  func() time.Time

	app     *app.Application
	startup *services.StartupReport
}

func newEnvironment(stdin io.Reader, stdout, stderr io.Writer) *environment {
	return &environment{
		prompt: newPrompter(stdin, stdout),
		stdout: stdout,
		stderr: stderr,
	}
}

// application builds the application on first use so that help and usage
// errors never touch the data directory
func (e *environment) application(cmd *cli.Command) (*app.Application, error) {
	if e.app != nil {
		return e.app, nil
	}

	a, err := app.New(app.Options{
		ConfigFile: cmd.String("config"),
		BaseDir:    cmd.String("base-dir"),
		Console:    e.stderr,
		Clock:      e.clock,
	})
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

// start prepares the stores once per run and reports what it found
func (e *environment) start(ctx context.Context, cmd *cli.Command) (*app.Application, error) {
	a, err := e.application(cmd)
	if err != nil {
		return nil, err
	}
	if e.startup != nil {
		return a, nil
	}

	report, err := a.License.Start(ctx)
	if err != nil {
		return nil, err
	}
	e.startup = report

	if report.DefaultPasswordInstalled {
		fmt.Fprintf(e.stderr, "Administrator password set to the default %q. Change it with '%s passwd'.\n",
			a.Config.Credentials.DefaultPassword, app.AppName)
	}
	if report.LoadError != nil {
		fmt.Fprintf(e.stderr, "Warning: customer records could not be loaded: %v\n", report.LoadError)
	}
	if report.QuarantinedStore != "" {
		fmt.Fprintf(e.stderr, "Warning: the unreadable customer file was moved to %s\n", report.QuarantinedStore)
	}
	return a, nil
}

// login starts the application and authenticates with --password or a prompt
func (e *environment) login(ctx context.Context, cmd *cli.Command) (*app.Application, error) {
	a, err := e.start(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if a.Session.Authenticated() {
		return a, nil
	}

	password := cmd.String("password")
	if password == "" {
		if password, err = e.prompt.Password("Admin password: "); err != nil {
			return nil, err
		}
	}
	if err := a.Session.Login(ctx, password); err != nil {
		return nil, err
	}
	return a, nil
}

func (e *environment) exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(e.stderr, msg)
		}
		return exitErr.ExitCode()
	}

	handler := apperrors.NewHandler(slog.Default(), false)
	if e.app != nil {
		handler = e.app.Errors
	}
	return handler.Handle(ctx, e.stderr, err)
}

func (e *environment) close() {
	if e.app == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.app.Close(ctx); err != nil {
		fmt.Fprintf(e.stderr, "Warning: shutdown: %v\n", err)
	}
}
