package output

import (
	"fmt"
	"strings"
)

// CommandHints maps command names to related commands users might want to run next
var CommandHints = map[string][]string{
	"login":                {"whoami", "vehicles list"},
	"logout":               {"login"},
	"whoami":               {"whoami --remote"},
	"organizations list":   {"organizations create", "locations list"},
	"organizations create": {"locations create", "organizations list"},
	"locations list":       {"locations create", "vehicles list"},
	"locations create":     {"import upload", "vehicles create"},
	"vehicles list":        {"vehicles get <id>", "import upload"},
	"vehicles create":      {"vehicles list"},
	"vehicles update":      {"vehicles get <id>"},
	"import template":      {"import upload"},
	"import upload":        {"vehicles list"},
	"config":               {"login"},
}

// PrintHints prints "See also" hints for a command. No-op in quiet mode or if command has no hints.
func (p *Printer) PrintHints(command string) {
	if p.quiet {
		return
	}
	hints, ok := CommandHints[command]
	if !ok || len(hints) == 0 {
		return
	}

	cmds := make([]string, len(hints))
	for i, h := range hints {
		cmds[i] = "fleetctl " + h
	}
	fmt.Fprintf(p.out, "\nSee also: %s\n", strings.Join(cmds, ", "))
}
