package panel

import (
	"errors"

	"github.com/amishk599/tailorin/internal/model"
)

// StatusKind classifies the status line so front ends can style it.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusProgress
	StatusSuccess
	StatusWarning
	StatusError
)

// Status is the single line of feedback shown under the form.
type Status struct {
	Kind StatusKind
	Text string
}

func progress(text string) Status { return Status{Kind: StatusProgress, Text: text} }
func success(text string) Status  { return Status{Kind: StatusSuccess, Text: text} }
func warning(text string) Status  { return Status{Kind: StatusWarning, Text: "⚠️ " + text} }

// failure renders err for the status line. Transport failures and server
// errors are worded differently so the user can tell them apart.
func failure(err error, fallback string) Status {
	return Status{Kind: StatusError, Text: "❌ " + describe(err, fallback)}
}

// describe is the error text without the status icon.
func describe(err error, fallback string) string {
	var (
		appErr *model.ApplicationError
		tErr   *model.TransportError
		vErr   *model.ValidationError
	)
	switch {
	case errors.As(err, &appErr):
		if appErr.Message != "" {
			return "Error: " + appErr.Message
		}
		return "Error: " + fallback
	case errors.As(err, &tErr):
		return "Network error: " + tErr.Err.Error()
	case errors.As(err, &vErr):
		return vErr.Message
	default:
		return "Error: " + err.Error()
	}
}
