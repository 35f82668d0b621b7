package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"licmgr/internal/app"
	apperrors "licmgr/internal/errors"
	"licmgr/internal/infrastructure"
	"licmgr/pkg/contracts"
	"licmgr/pkg/contracts/domain"
)

const shellHelp = `Commands:
  issue                       record a customer and show the access code
  code <hardware-id>          show the access code without recording it
  verify <hardware-id> <code> check an access code
  list                        list recorded customers
  remove <number>             delete a record
  export [format] [file]      write the customer report (txt, csv or xlsx)
  exports                     list earlier reports
  passwd                      change the administrator password
  hwid                        show this machine's hardware id
  status                      report the state of the local stores
  logout                      end the session and log in again
  help                        show this help
  exit                        leave the shell`

// shell is the interactive front end. Every command runs under its own
// trace id; a failing command is reported and the loop continues.
type shell struct {
	env *environment
	app *app.Application
	out io.Writer
}

func newShell(env *environment, a *app.Application) *shell {
	return &shell{env: env, app: a, out: env.stdout}
}

// run logs in and reads commands until exit or end of input. password, when
// set, is tried once before prompting.
func (s *shell) run(ctx context.Context, password string) error {
	fmt.Fprintln(s.out, contracts.GetVersionString())

	for {
		if err := s.authenticate(ctx, password); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		password = ""
		fmt.Fprintln(s.out, "Type 'help' for a list of commands.")

		loggedOut, err := s.loop(ctx)
		if err != nil || !loggedOut {
			return err
		}
	}
}

func (s *shell) authenticate(ctx context.Context, password string) error {
	for !s.app.Session.Authenticated() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if password == "" {
			var err error
			if password, err = s.env.prompt.Password("Admin password: "); err != nil {
				return err
			}
		}

		err := s.app.Session.Login(infrastructure.ContextWithTraceID(ctx), password)
		password = ""
		switch {
		case err == nil:
			fmt.Fprintln(s.out, "Logged in")
		case errors.Is(err, apperrors.ErrLoginThrottled):
			fmt.Fprintln(s.out, "Too many failed attempts. Wait a moment and try again.")
		case errors.Is(err, apperrors.ErrAuthentication):
			fmt.Fprintln(s.out, "Invalid password")
		default:
			return err
		}
	}
	return nil
}

// loop runs commands until exit, logout or end of input. It reports whether
// the session ended by logout.
func (s *shell) loop(ctx context.Context) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		line, err := s.env.prompt.Line("licmgr> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return false, nil
			}
			return false, err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch strings.ToLower(args[0]) {
		case "exit", "quit":
			return false, nil
		case "logout":
			s.app.Session.Logout()
			fmt.Fprintln(s.out, "Logged out")
			return true, nil
		}

		cmdCtx := infrastructure.ContextWithTraceID(ctx)
		if err := s.dispatch(cmdCtx, strings.ToLower(args[0]), args[1:]); err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			s.app.Errors.Handle(cmdCtx, s.out, err)
		}
	}
}

func (s *shell) dispatch(ctx context.Context, name string, args []string) error {
	a := s.app
	switch name {
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
		return nil

	case "issue":
		var req domain.IssueRequest
		if err := s.env.completeRequest(&req); err != nil {
			return err
		}
		result, err := a.License.IssueLicense(ctx, req)
		if err != nil {
			return err
		}
		printIssued(s.out, result)
		return nil

	case "code":
		if len(args) != 1 {
			return usage("code <hardware-id>")
		}
		code, err := a.License.PreviewCode(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, code)
		return nil

	case "verify":
		if len(args) != 2 {
			return usage("verify <hardware-id> <code>")
		}
		ok, err := a.License.VerifyCode(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(s.out, "Access code is valid")
		} else {
			fmt.Fprintln(s.out, "Access code does NOT match this hardware id")
		}
		return nil

	case "list":
		printCustomers(s.out, a.License.Customers())
		return nil

	case "remove":
		if len(args) != 1 {
			return usage("remove <number>")
		}
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return s.env.removeCustomer(ctx, a, index, false)

	case "export":
		var format domain.ExportFormat
		var out string
		if len(args) > 0 {
			var err error
			if format, err = parseFormat(args[0]); err != nil {
				return err
			}
		}
		if len(args) > 1 {
			out = args[1]
		}
		return exportReport(ctx, a, s.out, format, out)

	case "exports":
		found, err := a.License.ListExports()
		if err != nil {
			return err
		}
		printExports(s.out, a.Paths.ExportsDir, found)
		return nil

	case "passwd":
		current, err := s.env.prompt.Password("Current password: ")
		if err != nil {
			return err
		}
		return s.env.changePassword(ctx, a, current, "")

	case "hwid":
		id, err := a.License.MachineHardwareID()
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, id)
		return nil

	case "status":
		printStatus(s.out, a.Health.Check(ctx))
		return nil

	default:
		return apperrors.Validation(apperrors.CodeValidationFailed,
			fmt.Sprintf("unknown command %q, type 'help' for a list", name))
	}
}

func usage(text string) error {
	return apperrors.Validation(apperrors.CodeValidationFailed, "usage: "+text)
}
