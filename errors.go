package discordmcp

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds for consistent error handling. The structured error types
// below match these via errors.Is(), so callers can branch on kind without
// losing the human-readable detail each type carries.
var (
	// ErrValidation marks input rejected before any lookup was attempted
	// (malformed ID, missing argument).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a server/channel/user/message that is absent or
	// inaccessible. The error text always carries a remediation hint.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous marks a name with multiple equally valid matches. The
	// error text enumerates every candidate and the syntax to resupply.
	ErrAmbiguous = errors.New("ambiguous name")

	// ErrRemote marks an action the platform rejected; the platform's own
	// error text is appended.
	ErrRemote = errors.New("remote operation failed")
)

// ValidationError rejects malformed input before any lookup.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("'%s' is invalid: %s", e.Input, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an absent or inaccessible entity. Hint tells the
// caller what to do next (exact name, listing tool, scoped syntax, or ID) —
// the caller is an autonomous agent and cannot inspect our state itself.
type NotFoundError struct {
	Kind  EntityKind
	Input string
	Hint  string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("no %s matching '%s'", e.Kind, e.Input)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousError reports a name with multiple equally valid matches. Every
// candidate is listed with enough context (owning server) to disambiguate,
// and Resupply states the exact syntax the caller must use next.
type AmbiguousError struct {
	Kind       EntityKind
	Input      string
	Candidates []string
	Resupply   string
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "multiple %ss named '%s' found:\n", e.Kind, e.Input)
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "  • %s\n", c)
	}
	fmt.Fprintf(&b, "You MUST resupply the request using %s.", e.Resupply)
	return b.String()
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }

// RemoteError wraps a failure reported by the platform itself.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("could not %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }
