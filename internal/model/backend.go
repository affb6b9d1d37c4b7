package model

import (
	"context"
	"net/url"
)

// DocFormat is a document type the backend can render.
type DocFormat string

const (
	FormatDOCX DocFormat = "docx"
	FormatPDF  DocFormat = "pdf"
)

// Valid reports whether f is a format the backend knows.
func (f DocFormat) Valid() bool {
	return f == FormatDOCX || f == FormatPDF
}

// Score is the backend's verdict on how well the résumé fits a posting.
type Score struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Request describes one backend call. It is a description rather than an
// *http.Request so decorators can replay it.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// JSON, when set, is marshalled as the request body.
	JSON any
	// FilePath, when set, is uploaded as the multipart field FileField.
	FilePath  string
	FileField string
}

// Doer sends a Request and returns the body of a 2xx response.
// Failures are *TransportError or *ApplicationError.
type Doer interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Backend is the résumé-tailoring service the panel drives.
type Backend interface {
	UploadResume(ctx context.Context, path string) error
	Tailor(ctx context.Context, p JobPosting) error
	Generate(ctx context.Context, format DocFormat, company, role string) error
	MarkApplied(ctx context.Context, company, role string) error
	MatchScore(ctx context.Context, jd string) (Score, error)
	Chat(ctx context.Context, question string) (string, error)
}
