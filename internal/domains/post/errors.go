package post

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable error classification carried next to
// the human message in every error envelope.
type Kind string

const (
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindConflict          Kind = "CONFLICT"
	KindUpstream          Kind = "UPSTREAM"
)

// Validation errors
var (
	ErrValidation           = errors.New("invalid input")
	ErrEmptyTitle           = errors.New("title must not be empty")
	ErrEmptyBody            = errors.New("body must not be empty")
	ErrEmptyComment         = errors.New("comment text must not be empty")
	ErrEmptyRejectionReason = errors.New("rejection reason must not be empty")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidSort          = errors.New("invalid sort parameter")
)

// Lookup / authorization errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("forbidden: insufficient permissions")
)

// Persistence-boundary errors
var (
	ErrSlugExists      = errors.New("slug already exists")
	ErrVersionConflict = errors.New("version conflict: post was modified by another request")
)

// TransitionError reports a lifecycle precondition failure, carrying the
// current status for diagnostics.
type TransitionError struct {
	Action string
	From   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a post in status %q", e.Action, e.From)
}

// KindOf classifies any error returned by the post domain. Unrecognized
// errors are collaborator failures and surface as upstream.
func KindOf(err error) Kind {
	var transitionErr *TransitionError
	if errors.As(err, &transitionErr) {
		return KindInvalidTransition
	}

	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrEmptyTitle),
		errors.Is(err, ErrEmptyBody),
		errors.Is(err, ErrEmptyComment),
		errors.Is(err, ErrEmptyRejectionReason),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidSort):
		return KindInvalidInput
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrSlugExists), errors.Is(err, ErrVersionConflict):
		return KindConflict
	default:
		return KindUpstream
	}
}
