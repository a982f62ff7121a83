package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetpass/fleetctl/internal/api"
	"github.com/fleetpass/fleetctl/internal/output"
	"github.com/fleetpass/fleetctl/internal/view"
)

// apiFailure converts a view or API error into a CLIError. The session is
// never cleared here; a rejected token only earns a login suggestion.
func apiFailure(err error) error {
	summary := err.Error()
	var viewErr *view.Error
	if errors.As(err, &viewErr) {
		summary = viewErr.Message
	}

	cliErr := &output.CLIError{Summary: summary, ExitCode: output.ExitValidationError}

	var apiErr *api.APIError
	var transportErr *api.TransportError
	switch {
	case errors.As(err, &apiErr):
		cliErr.Detail = apiErr.Error()
		cliErr.ExitCode = output.ExitAPIError
		if apiErr.IsUnauthorized() {
			cliErr.Suggestion = "Your session may have expired. Run 'fleetctl login'"
		}
	case errors.As(err, &transportErr):
		cliErr.Detail = transportErr.Err.Error()
		cliErr.ExitCode = output.ExitAPIError
		cliErr.Suggestion = fmt.Sprintf("Check that the API is reachable at %s (api.url)", cfg.API.URL)
	case viewErr != nil && viewErr.Err != nil:
		cliErr.Detail = viewErr.Err.Error()
		if cliErr.Detail == cliErr.Summary {
			cliErr.Detail = ""
		}
	}
	return cliErr
}

// validateID rejects malformed identifiers before any request is sent
func validateID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &output.CLIError{
			Summary:    fmt.Sprintf("invalid %s id: %q", kind, id),
			Detail:     err.Error(),
			Suggestion: fmt.Sprintf("Run 'fleetctl %ss list' to see valid ids", kind),
			ExitCode:   output.ExitUsageError,
		}
	}
	return nil
}

// confirmer returns the delete confirmation for --yes or an interactive prompt
func confirmer(printer *output.Printer, yes bool) view.Confirmer {
	if yes {
		return view.AlwaysConfirm
	}
	return view.ConfirmFunc(printer.Confirm)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}

func formatMoney(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", v)
}
