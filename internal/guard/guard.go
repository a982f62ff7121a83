// Package guard decides whether a route may be entered with the current
// authentication state. It keeps no state of its own.
package guard

import "github.com/spf13/cobra"

// LoginRoute is where unauthenticated users are sent
const LoginRoute = "login"

// AnnotationProtected marks a cobra command as requiring a session
const AnnotationProtected = "fleetctl/protected"

// AuthState is the read side of the auth manager
type AuthState interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a guard check
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Guard gates protected routes
type Guard struct {
	state AuthState
}

// New creates a guard reading from state
func New(state AuthState) *Guard {
	return &Guard{state: state}
}

// Check evaluates a route. Public routes are always allowed.
func (g *Guard) Check(protected bool) Decision {
	if !protected || g.state.IsAuthenticated() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: LoginRoute}
}

// CheckCommand evaluates a cobra command, inheriting protection from parents
func (g *Guard) CheckCommand(cmd *cobra.Command) Decision {
	return g.Check(IsProtected(cmd))
}

// Protect marks cmd (and therefore its subcommands) as requiring a session
func Protect(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[AnnotationProtected] = "true"
	return cmd
}

// IsProtected reports whether cmd or any ancestor is protected
func IsProtected(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[AnnotationProtected] == "true" {
			return true
		}
	}
	return false
}
