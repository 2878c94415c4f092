// Package client talks to the checklist API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"checklistapi/internal/model"
	"checklistapi/internal/service"
)

var (
	ErrNotFound      = errors.New("checklist not found")
	ErrUnavailable   = errors.New("checklist api unavailable")
	ErrInvalidRecord = errors.New("checklist rejected")
)

// APIError carries the error envelope returned by the server.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api %d %s: %s (request %s)", e.Status, e.Code, msg, e.RequestID)
	}
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, msg)
}

// Unwrap maps the status to one of the package sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusBadRequest:
		return ErrInvalidRecord
	case e.Status >= 500:
		return ErrUnavailable
	}
	return nil
}

type Option func(*RecordStore)

func WithHTTPClient(c *http.Client) Option { return func(s *RecordStore) { s.http = c } }

func WithTimeout(d time.Duration) Option { return func(s *RecordStore) { s.timeout = d } }

// RecordStore is the remote counterpart of service.ChecklistService.
type RecordStore struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

// New returns a RecordStore rooted at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*RecordStore, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api url must be absolute http(s): %q", baseURL)
	}
	s := &RecordStore{base: u, timeout: 60 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	if s.http == nil {
		s.http = &http.Client{
			Timeout:   s.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return s, nil
}

func (s *RecordStore) List(ctx context.Context, query string) ([]model.Checklist, error) {
	q := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		q.Set("q", query)
	}
	var out []model.Checklist
	if err := s.do(ctx, http.MethodGet, "/records", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RecordStore) Get(ctx context.Context, id string) (*model.Checklist, error) {
	if strings.TrimSpace(id) == "" {
		return nil, service.ErrIDRequired
	}
	var out model.Checklist
	if err := s.do(ctx, http.MethodGet, "/records/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save posts c and returns the persisted record with its id and media URLs.
func (s *RecordStore) Save(ctx context.Context, c *model.Checklist) (*model.Checklist, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidRecord)
	}
	var out model.Checklist
	if err := s.do(ctx, http.MethodPost, "/records", nil, c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return service.ErrIDRequired
	}
	return s.do(ctx, http.MethodDelete, "/records/"+url.PathEscape(id), nil, nil, nil)
}

// Health returns the server diagnostic. Transport failures are reported as a not-ok result.
func (s *RecordStore) Health(ctx context.Context) service.Health {
	var h service.Health
	if err := s.do(ctx, http.MethodGet, "/health", nil, nil, &h); err != nil {
		return service.Health{Message: err.Error()}
	}
	return h
}

func (s *RecordStore) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	target := s.base.String() + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		RequestID string `json:"request_id"`
		Error     struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(b, &payload) == nil {
		apiErr.RequestID = payload.RequestID
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(b))
	}
	return apiErr
}
