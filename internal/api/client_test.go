package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/tailorin/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeTestServer returns a client whose backend replies with statusCode and
// raw body, recording the last request it saw.
func makeTestServer(t *testing.T, statusCode int, body string, seen *(*http.Request), seenBody *[]byte) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seenBody != nil {
			b, _ := io.ReadAll(r.Body)
			*seenBody = b
		}
		if seen != nil {
			*seen = r
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewClient(NewHTTPDoer(srv.URL, "", srv.Client(), discardLogger()))
}

func TestTailor_SendsJSON(t *testing.T) {
	var req *http.Request
	var body []byte
	c := makeTestServer(t, http.StatusOK, `{"status":"ok"}`, &req, &body)

	p := model.JobPosting{Company: "Acme", Role: "SRE", JobDescription: "Run prod."}
	if err := c.Tailor(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodPost || req.URL.Path != "/tailor" {
		t.Errorf("got %s %s", req.Method, req.URL.Path)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := map[string]string{"jd_text": "Run prod.", "company": "Acme", "role": "SRE"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("body[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestGenerate_UsesQuery(t *testing.T) {
	var req *http.Request
	c := makeTestServer(t, http.StatusOK, `{}`, &req, nil)

	if err := c.Generate(context.Background(), model.FormatPDF, "Acme & Co", "Dev/Ops"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodGet || req.URL.Path != "/generate_pdf" {
		t.Errorf("got %s %s", req.Method, req.URL.Path)
	}
	if q := req.URL.Query(); q.Get("company") != "Acme & Co" || q.Get("role") != "Dev/Ops" {
		t.Errorf("query = %v", q)
	}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	var req *http.Request
	c := makeTestServer(t, http.StatusOK, `{}`, &req, nil)
	if err := c.Generate(context.Background(), model.DocFormat("odt"), "a", "b"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if req != nil {
		t.Error("no request should be sent for an unknown format")
	}
}

func TestUploadResume_Multipart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotName, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotContent = hdr.Filename, string(b)
		io.WriteString(w, `{"message":"parsed"}`)
	}))
	defer srv.Close()

	c := NewClient(NewHTTPDoer(srv.URL, "", srv.Client(), discardLogger()))
	if err := c.UploadResume(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "resume.pdf" || gotContent != "%PDF-1.4 fake" {
		t.Errorf("uploaded %q with %q", gotName, gotContent)
	}
}

func TestMarkApplied(t *testing.T) {
	var req *http.Request
	var body []byte
	c := makeTestServer(t, http.StatusCreated, `{"ok":true}`, &req, &body)

	if err := c.MarkApplied(context.Background(), "Acme", "SRE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL.Path != "/applied" {
		t.Errorf("path = %s", req.URL.Path)
	}
	if string(body) != `{"company":"Acme","role":"SRE"}` {
		t.Errorf("body = %s", body)
	}
}

func TestMatchScore_Decodes(t *testing.T) {
	c := makeTestServer(t, http.StatusOK, `{"score":82.5,"reason":"strong Go"}`, nil, nil)

	s, err := c.MatchScore(context.Background(), "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Score != 82.5 || s.Reason != "strong Go" {
		t.Errorf("score = %+v", s)
	}
}

func TestChat_Decodes(t *testing.T) {
	c := makeTestServer(t, http.StatusOK, `{"answer":"Yes."}`, nil, nil)

	got, err := c.Chat(context.Background(), "Am I a fit?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Yes." {
		t.Errorf("answer = %q", got)
	}
}

func TestDo_ApplicationErrorWithMessage(t *testing.T) {
	c := makeTestServer(t, http.StatusBadRequest, `{"error":"no resume uploaded"}`, nil, nil)

	err := c.Tailor(context.Background(), model.JobPosting{Company: "a", Role: "b", JobDescription: "c"})
	var appErr *model.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %T %v", err, err)
	}
	if appErr.StatusCode != http.StatusBadRequest || appErr.Message != "no resume uploaded" {
		t.Errorf("appErr = %+v", appErr)
	}
}

func TestDo_ApplicationErrorWithoutJSON(t *testing.T) {
	c := makeTestServer(t, http.StatusInternalServerError, `<html>oops</html>`, nil, nil)

	err := c.MarkApplied(context.Background(), "a", "b")
	var appErr *model.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %T %v", err, err)
	}
	if appErr.Message != "" {
		t.Errorf("Message = %q, want empty", appErr.Message)
	}
}

func TestDo_MalformedSuccessBodyIsTransportError(t *testing.T) {
	c := makeTestServer(t, http.StatusOK, `not json`, nil, nil)

	_, err := c.Chat(context.Background(), "hi")
	var tErr *model.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
}

func TestDo_UnreachableIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(NewHTTPDoer(url, "", &http.Client{Timeout: time.Second}, discardLogger()))
	err := c.MarkApplied(context.Background(), "a", "b")
	var tErr *model.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
}

func TestDo_MissingResumeFileIsTransportError(t *testing.T) {
	var req *http.Request
	c := makeTestServer(t, http.StatusOK, `{}`, &req, nil)

	err := c.UploadResume(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	var tErr *model.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if req != nil {
		t.Error("no request should reach the server")
	}
}

func TestDo_SetsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(NewHTTPDoer(srv.URL+"/", "s3cret", srv.Client(), discardLogger()))
	if err := c.MarkApplied(context.Background(), "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestDo_RetryAfterParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(NewHTTPDoer(srv.URL, "", srv.Client(), discardLogger()))
	err := c.MarkApplied(context.Background(), "a", "b")
	var appErr *model.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %v", err)
	}
	if appErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v", appErr.RetryAfter)
	}
}
