package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Titles shown to the operator, one per error kind
var kindTitles = map[error]string{
	ErrValidation:     "Invalid input",
	ErrAuthentication: "Access denied",
	ErrStorage:        "Storage failure",
	ErrDerivation:     "Access code derivation failed",
}

// Handler reports errors raised by the core to an operator and the log
type Handler struct {
	logger       *slog.Logger
	includeCause bool
}

// NewHandler creates a Handler. includeCause prints the wrapped I/O cause
// alongside the message, which is useful in debug sessions.
func NewHandler(logger *slog.Logger, includeCause bool) *Handler {
	return &Handler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeCause: includeCause,
	}
}

// Handle logs err, writes a readable description to w and returns the
// process exit code for it
func (h *Handler) Handle(ctx context.Context, w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.logger.WarnContext(ctx, "operation cancelled", slog.String("error", err.Error()))
		fmt.Fprintln(w, "Operation cancelled")
		return 130
	}

	kind := KindOf(err)
	level := slog.LevelError
	if kind == ErrValidation || kind == ErrAuthentication {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, "operation failed",
		slog.String("error", err.Error()),
		slog.String("code", CodeOf(err)),
	)

	fmt.Fprintln(w, h.Describe(err))
	return ExitCode(err)
}

// Describe renders err as operator-facing text
func (h *Handler) Describe(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "Error: " + err.Error()
	}

	title, ok := kindTitles[appErr.Kind]
	if !ok {
		title = "Error"
	}
	msg := fmt.Sprintf("%s: %s", title, appErr.Message)
	for _, d := range appErr.Details {
		msg += fmt.Sprintf("\n  - %s %s", d.Field, d.Message)
	}
	if h.includeCause && appErr.Err != nil {
		msg += fmt.Sprintf("\n  cause: %v", appErr.Err)
	}
	return msg
}
