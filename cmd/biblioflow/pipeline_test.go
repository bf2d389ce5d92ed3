package main

import (
	"errors"
	"testing"

	"github.com/biblioflow/biblioflow/internal/organizer"
	"github.com/biblioflow/biblioflow/internal/resolver"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "no identifier",
			err:  &resolver.Error{Kind: resolver.NoIdentifier, Path: "/p/a.pdf"},
			want: ExitNoMetadata,
		},
		{
			name: "no match",
			err:  &resolver.Error{Kind: resolver.NoMatch, Path: "/p/a.pdf"},
			want: ExitNoMetadata,
		},
		{
			name: "network failure",
			err:  &resolver.Error{Kind: resolver.NetworkFailure, Path: "/p/a.pdf"},
			want: ExitNetwork,
		},
		{
			name: "bad response",
			err:  &resolver.Error{Kind: resolver.BadResponse, Path: "/p/a.pdf"},
			want: ExitError,
		},
		{
			name: "move failed",
			err:  &organizer.Error{Kind: organizer.MoveFailed, Source: "/a", Target: "/b"},
			want: ExitMoveFailed,
		},
		{
			name: "index write failed is distinct from move failed",
			err:  &organizer.Error{Kind: organizer.IndexWriteFailed, Source: "/a", Target: "/b"},
			want: ExitIndexFailed,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: ExitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	rerr := &resolver.Error{Kind: resolver.NetworkFailure, Path: "/p/a.pdf", Err: errors.New("refused")}
	if got := userMessage(rerr); got != rerr.UserMessage() {
		t.Errorf("userMessage = %q", got)
	}

	oerr := &organizer.Error{Kind: organizer.IndexWriteFailed, Source: "/a", Target: "/b", Err: errors.New("disk")}
	if got := userMessage(oerr); got != oerr.UserMessage() {
		t.Errorf("userMessage = %q", got)
	}

	plain := errors.New("boom")
	if got := userMessage(plain); got != "boom" {
		t.Errorf("userMessage = %q", got)
	}
}
