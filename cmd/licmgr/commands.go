package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"licmgr/internal/app"
	apperrors "licmgr/internal/errors"
	"licmgr/internal/services"
	"licmgr/pkg/contracts"
	"licmgr/pkg/contracts/domain"
)

func newRootCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    app.AppName,
		Usage:   "Issue and manage hardware-bound access codes",
		Version: contracts.GetFullVersionString(),
		Reader:  env.prompt.in,
		Writer:  env.stdout,

		ErrWriter: env.stderr,
		// exit codes are mapped in run
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to licmgr.yaml",
				Sources: cli.EnvVars("LICMGR_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "base-dir",
				Usage: "directory holding data, logs and exports (default: next to the executable)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "administrator password (prompted when omitted)",
				Sources: cli.EnvVars("LICMGR_PASSWORD"),
			},
		},
		Commands: []*cli.Command{
			initCommand(env),
			issueCommand(env),
			codeCommand(env),
			verifyCommand(env),
			listCommand(env),
			removeCommand(env),
			exportCommand(env),
			exportsCommand(env),
			passwdCommand(env),
			hwidCommand(env),
			statusCommand(env),
			shellCommand(env),
		},
	}
}

func initCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the data directories and the administrator credential",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.start(ctx, cmd)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			fmt.Fprintf(w, "Data directory:    %s\n", a.Paths.DataDir)
			fmt.Fprintf(w, "Customers file:    %s\n", a.Paths.CustomersFile)
			fmt.Fprintf(w, "Credential file:   %s\n", a.Paths.CredentialFile)
			fmt.Fprintf(w, "Exports directory: %s\n", a.Paths.ExportsDir)
			fmt.Fprintf(w, "Logs directory:    %s\n", a.Paths.LogsDir)
			fmt.Fprintf(w, "Customers loaded:  %d\n", env.startup.RecordsLoaded)
			return nil
		},
	}
}

func issueCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "issue",
		Usage: "Derive an access code and record the customer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "customer name"},
			&cli.StringFlag{Name: "phone", Usage: "customer phone number"},
			&cli.StringFlag{Name: "hwid", Usage: "16-character hardware id"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.login(ctx, cmd)
			if err != nil {
				return err
			}

			req := domain.IssueRequest{
				Name:       cmd.String("name"),
				Phone:      cmd.String("phone"),
				HardwareID: cmd.String("hwid"),
			}
			if err := env.completeRequest(&req); err != nil {
				return err
			}

			result, err := a.License.IssueLicense(ctx, req)
			if err != nil {
				return err
			}
			printIssued(cmd.Root().Writer, result)
			return nil
		},
	}
}

// completeRequest prompts for the fields the flags left empty
func (e *environment) completeRequest(req *domain.IssueRequest) error {
	fields := []struct {
		target *string
		label  string
	}{
		{&req.Name, "Customer name: "},
		{&req.Phone, "Phone: "},
		{&req.HardwareID, "Hardware ID: "},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.target) != "" {
			continue
		}
		value, err := e.prompt.Required(f.label)
		if err != nil {
			return err
		}
		*f.target = value
	}
	return nil
}

func codeCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "code",
		Usage:     "Show the access code for a hardware id without recording it",
		ArgsUsage: "<hardware-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("usage: licmgr code <hardware-id>", 2)
			}
			a, err := env.login(ctx, cmd)
			if err != nil {
				return err
			}
			code, err := a.License.PreviewCode(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, code)
			return nil
		},
	}
}

func verifyCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check an access code against a hardware id",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "hwid", Usage: "hardware id", Required: true},
			&cli.StringFlag{Name: "code", Usage: "access code to check", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.login(ctx, cmd)
			if err != nil {
				return err
			}
			ok, err := a.License.VerifyCode(ctx, cmd.String("hwid"), cmd.String("code"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("Access code does NOT match this hardware id", 1)
			}
			fmt.Fprintln(cmd.Root().Writer, "Access code is valid")
			return nil
		},
	}
}

func listCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recorded customers",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.login(ctx, cmd)
			if err != nil {
				return err
			}
			printCustomers(cmd.Root().Writer, a.License.Customers())
			return nil
		},
	}
}

func removeCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Delete a customer record by its number in the list",
		ArgsUsage: "<number>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("usage: licmgr remove <number>", 2)
			}
			index, err := parseIndex(cmd.Args().First())
			if err != nil {
				return err
			}
			a, err := env.login(ctx, cmd)
			if err != nil {
				return err
			}
			return env.removeCustomer(ctx, a, index, cmd.Bool("yes"))
		},
	}
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, apperrors.Validation(apperrors.CodeValidationFailed,
			fmt.Sprintf("record number must be a positive integer, got %q", s))
	}
	return n, nil
}

func (e *environment) removeCustomer(ctx context.Context, a *app.Application, index int, assumeYes bool) error {
	records := a.License.Customers()
	if index > len(records) {
		return apperrors.ErrRecordNotFound
	}

	if !assumeYes {
		fmt.Fprintf(e.stdout, "Record %d:\n", index)
		printRecord(e.stdout, records[index-1])
		ok, err := e.prompt.Confirm("Delete this record?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(e.stdout, "Nothing deleted")
			return nil
		}
	}

	removed, err := a.License.RemoveCustomer(ctx, index)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Removed %s (%s)\n", removed.Name, removed.HardwareID)
	return nil
}

func exportCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the customer report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "txt, csv or xlsx (default from config)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: timestamped file in the exports directory)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			a, err := env.login(ctx, cmd)
			if err != nil {
				return err
			}
			return exportReport(ctx, a, cmd.Root().Writer, format, cmd.String("out"))
		},
	}
}

// parseFormat maps user input to a format; empty selects the configured default
func parseFormat(s string) (domain.ExportFormat, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	format, err := domain.ParseExportFormat(s)
	if err != nil {
		return "", apperrors.Validation(apperrors.CodeValidationFailed, err.Error())
	}
	return format, nil
}

func exportReport(ctx context.Context, a *app.Application, w io.Writer, format domain.ExportFormat, out string) error {
	path, err := a.License.Export(ctx, services.ExportRequest{Format: format, Output: out})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d record(s) to %s\n", len(a.License.Customers()), path)
	return nil
}

func exportsCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "exports",
		Usage: "List earlier reports in the exports directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.login(ctx, cmd)
			if err != nil {
				return err
			}
			found, err := a.License.ListExports()
			if err != nil {
				return err
			}
			printExports(cmd.Root().Writer, a.Paths.ExportsDir, found)
			return nil
		},
	}
}

func passwdCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "passwd",
		Usage: "Change the administrator password",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "new-password",
				Usage:   "new password (prompted twice when omitted)",
				Sources: cli.EnvVars("LICMGR_NEW_PASSWORD"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.start(ctx, cmd)
			if err != nil {
				return err
			}

			current := cmd.String("password")
			if current == "" {
				if current, err = env.prompt.Password("Current password: "); err != nil {
					return err
				}
			}
			return env.changePassword(ctx, a, current, cmd.String("new-password"))
		},
	}
}

func (e *environment) changePassword(ctx context.Context, a *app.Application, current, newPassword string) error {
	confirm := newPassword
	if newPassword == "" {
		var err error
		if newPassword, err = e.prompt.Password("New password: "); err != nil {
			return err
		}
		if confirm, err = e.prompt.Password("Confirm new password: "); err != nil {
			return err
		}
	}

	if err := a.License.ChangePassword(ctx, current, newPassword, confirm); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, "Password changed")
	return nil
}

func hwidCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "hwid",
		Usage: "Print this machine's hardware id",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.application(cmd)
			if err != nil {
				return err
			}
			id, err := a.License.MachineHardwareID()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, id)
			return nil
		},
	}
}

func statusCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report the state of the local stores",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.application(cmd)
			if err != nil {
				return err
			}
			status := a.Health.Check(ctx)

			w := cmd.Root().Writer
			if cmd.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(status); err != nil {
					return err
				}
			} else {
				printStatus(w, status)
			}

			if status.Status == services.StatusError {
				return cli.Exit("", apperrors.ExitCode(apperrors.ErrStorage))
			}
			return nil
		},
	}
}

func shellCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := env.start(ctx, cmd)
			if err != nil {
				return err
			}
			return newShell(env, a).run(ctx, cmd.String("password"))
		},
	}
}
