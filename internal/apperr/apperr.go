// Package apperr defines the stable error kinds surfaced by engine operations.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error classification. Kinds are part of the
// public contract: transports map them to status codes and clients switch
// on them, so the strings never change.
type Kind string

const (
	KindInvalidPayload      Kind = "invalid_payload"
	KindInvalidKey          Kind = "invalid_key"
	KindInvalidAssignee     Kind = "invalid_assignee"
	KindInvalidSprint       Kind = "invalid_sprint"
	KindInvalidEpic         Kind = "invalid_epic"
	KindInvalidComponents   Kind = "invalid_components"
	KindInvalidOtherIssue   Kind = "invalid_other_issue"
	KindForbidden           Kind = "forbidden"
	KindOwnerOnly           Kind = "owner_only"
	KindKeyTaken            Kind = "key_taken"
	KindWIPLimitReached     Kind = "wip_limit_reached"
	KindMissingAcceptance   Kind = "missing_acceptance_criteria"
	KindMissingDescription  Kind = "missing_description"
	KindSprintHasOpenWork   Kind = "sprint_has_open_work"
	KindCannotLinkSelf      Kind = "cannot_link_self"
	KindMixedProjects       Kind = "mixed_projects"
	KindNotFound            Kind = "not_found"
	KindColumnNotFound      Kind = "column_not_found"
	KindUnavailable         Kind = "unavailable"
)

// Error carries a kind plus a human-readable message and, for validation
// failures, a field → constraint breakdown.
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithField attaches a field-level constraint detail and returns the error.
func (e *Error) WithField(field, constraint string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = constraint
	return e
}

// KindOf extracts the Kind from an error chain. Unrecognized errors are
// classified as unavailable so callers can treat them as retryable.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnavailable
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
