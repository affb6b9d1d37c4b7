// Package api is the client for the résumé-tailoring backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amishk599/tailorin/internal/model"
)

// Ensure Client implements model.Backend.
var _ model.Backend = (*Client)(nil)

// Client maps backend endpoints onto typed methods. Transport concerns
// (auth, pacing, retries) live in the Doer it is given.
type Client struct {
	doer model.Doer
}

// NewClient returns a Client sending requests through doer.
func NewClient(doer model.Doer) *Client {
	return &Client{doer: doer}
}

type tailorRequest struct {
	JDText  string `json:"jd_text"`
	Company string `json:"company"`
	Role    string `json:"role"`
}

type appliedRequest struct {
	Company string `json:"company"`
	Role    string `json:"role"`
}

type matchRequest struct {
	JDText string `json:"jd_text"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// UploadResume posts the file at path as multipart field "file".
func (c *Client) UploadResume(ctx context.Context, path string) error {
	_, err := c.doer.Do(ctx, model.Request{
		Method:    http.MethodPost,
		Path:      "/upload_resume",
		FilePath:  path,
		FileField: "file",
	})
	return err
}

// Tailor asks the backend to tailor the stored résumé to p.
func (c *Client) Tailor(ctx context.Context, p model.JobPosting) error {
	_, err := c.doer.Do(ctx, model.Request{
		Method: http.MethodPost,
		Path:   "/tailor",
		JSON:   tailorRequest{JDText: p.JobDescription, Company: p.Company, Role: p.Role},
	})
	return err
}

// Generate asks the backend to render and save the tailored résumé.
func (c *Client) Generate(ctx context.Context, format model.DocFormat, company, role string) error {
	if !format.Valid() {
		return fmt.Errorf("unknown document format %q", format)
	}
	_, err := c.doer.Do(ctx, model.Request{
		Method: http.MethodGet,
		Path:   "/generate_" + string(format),
		Query:  url.Values{"company": {company}, "role": {role}},
	})
	return err
}

// MarkApplied records an application for company and role.
func (c *Client) MarkApplied(ctx context.Context, company, role string) error {
	_, err := c.doer.Do(ctx, model.Request{
		Method: http.MethodPost,
		Path:   "/applied",
		JSON:   appliedRequest{Company: company, Role: role},
	})
	return err
}

// MatchScore scores the stored résumé against jd.
func (c *Client) MatchScore(ctx context.Context, jd string) (model.Score, error) {
	body, err := c.doer.Do(ctx, model.Request{
		Method: http.MethodPost,
		Path:   "/match_score",
		JSON:   matchRequest{JDText: jd},
	})
	if err != nil {
		return model.Score{}, err
	}
	var s model.Score
	if err := json.Unmarshal(body, &s); err != nil {
		return model.Score{}, &model.TransportError{Op: "POST /match_score", Err: fmt.Errorf("decode score: %w", err)}
	}
	return s, nil
}

// Chat sends one question and returns the assistant's answer.
func (c *Client) Chat(ctx context.Context, question string) (string, error) {
	body, err := c.doer.Do(ctx, model.Request{
		Method: http.MethodPost,
		Path:   "/chat",
		JSON:   chatRequest{Question: question},
	})
	if err != nil {
		return "", err
	}
	var r chatResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", &model.TransportError{Op: "POST /chat", Err: fmt.Errorf("decode answer: %w", err)}
	}
	return r.Answer, nil
}
