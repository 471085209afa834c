package discordmcp

import (
	"errors"
	"testing"
)

func TestErrorContract(t *testing.T) {
	var (
		validation error = &ValidationError{Input: "abc", Reason: "not an ID"}
		notFound   error = &NotFoundError{Kind: KindServer, Input: "Gamma"}
		ambiguous  error = &AmbiguousError{Kind: KindChannel, Input: "general"}
		remote     error = &RemoteError{Op: "add reaction", Err: errors.New("403")}
	)

	if !errors.Is(validation, ErrValidation) {
		t.Error("ValidationError does not match ErrValidation")
	}
	if !errors.Is(notFound, ErrNotFound) {
		t.Error("NotFoundError does not match ErrNotFound")
	}
	if !errors.Is(ambiguous, ErrAmbiguous) {
		t.Error("AmbiguousError does not match ErrAmbiguous")
	}
	if !errors.Is(remote, ErrRemote) {
		t.Error("RemoteError does not match ErrRemote")
	}

	// Kinds don't cross-match.
	if errors.Is(notFound, ErrAmbiguous) || errors.Is(ambiguous, ErrNotFound) {
		t.Error("error kinds cross-match")
	}

	// RemoteError keeps the platform's own error reachable.
	var re *RemoteError
	if !errors.As(remote, &re) || re.Err.Error() != "403" {
		t.Error("RemoteError lost the platform error")
	}
}
