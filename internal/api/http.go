package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/tailorin/internal/model"
)

// Ensure HTTPDoer implements model.Doer.
var _ model.Doer = (*HTTPDoer)(nil)

// HTTPDoer sends backend requests over HTTP and classifies failures.
type HTTPDoer struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPDoer creates a doer targeting baseURL. An empty token sends no
// Authorization header.
func NewHTTPDoer(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *HTTPDoer {
	return &HTTPDoer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// errorBody is the optional error envelope the backend returns.
type errorBody struct {
	Error string `json:"error"`
}

// Do builds and sends req. A non-2xx status is an *model.ApplicationError;
// anything that stops a usable JSON body from arriving is a
// *model.TransportError.
func (d *HTTPDoer) Do(ctx context.Context, req model.Request) ([]byte, error) {
	op := req.Method + " " + req.Path

	httpReq, err := d.build(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, &model.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	d.logger.Debug("backend request",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := &model.ApplicationError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			appErr.Message = eb.Error
		}
		return nil, appErr
	}

	if !json.Valid(body) {
		return nil, &model.TransportError{Op: op, Err: errors.New("response is not valid JSON")}
	}
	return body, nil
}

func (d *HTTPDoer) build(ctx context.Context, req model.Request) (*http.Request, error) {
	u := d.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.FilePath != "":
		buf, ct, err := multipartBody(req.FileField, req.FilePath)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", req.Path, err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", req.Path, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if d.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+d.token)
	}
	return httpReq, nil
}

// multipartBody reads the file into a multipart form. A file that can't be
// read is a TransportError: the request never left the machine.
func multipartBody(field, path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &model.TransportError{Op: "read resume", Err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", &model.TransportError{Op: "read resume", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// parseRetryAfter understands the delay-seconds form only.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
