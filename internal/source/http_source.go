package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tianzhicdev/dogetionary-sub002/internal/config"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
)

// BatchPath is the server route that serves question batches.
const BatchPath = "/api/review/batch"

// maxErrorBody bounds how much of a failed response is kept in HTTPError.
const maxErrorBody = 4 << 10

// ErrInvalidResponse is returned when the server answers with a body that is
// not a valid batch.
var ErrInvalidResponse = errors.New("invalid batch response")

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("batch request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("batch request failed with status %d: %s", e.StatusCode, e.Message)
}

// HTTPSource fetches batches from a remote server's batch endpoint.
type HTTPSource struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *slog.Logger
}

var _ prefetch.QuestionSource = (*HTTPSource)(nil)

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithSourceLogger sets the source's logger.
func WithSourceLogger(l *slog.Logger) HTTPOption {
	return func(s *HTTPSource) { s.logger = l }
}

// NewHTTPSource creates a source calling {baseURL}/api/review/batch with the
// given bearer token. timeout bounds each request; zero means no timeout.
func NewHTTPSource(baseURL, token string, timeout time.Duration, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		endpoint: strings.TrimRight(baseURL, "/") + BatchPath,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("component", "http_source"))
	return s
}

// NewHTTPSourceFromConfig creates an HTTPSource from client settings.
func NewHTTPSourceFromConfig(cfg config.ClientConfig, opts ...HTTPOption) *HTTPSource {
	return NewHTTPSource(cfg.BaseURL, cfg.Token, time.Duration(cfg.TimeoutSeconds)*time.Second, opts...)
}

// FetchBatch implements prefetch.QuestionSource.
func (s *HTTPSource) FetchBatch(ctx context.Context, count int, exclude []string) (*domain.BatchResponse, error) {
	if exclude == nil {
		exclude = []string{}
	}
	body, err := json.Marshal(domain.BatchRequest{Count: clampCount(count), Exclude: exclude})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("batch request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	s.logger.Debug("batch request completed",
		"status", resp.StatusCode,
		"requested", count,
		"excluded", len(exclude),
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp)
	}

	var batch domain.BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	batch.Questions = s.dropInvalid(batch.Questions)
	return &batch, nil
}

// dropInvalid removes records that fail validation in place, logging each
// one. The rest of the batch is still usable.
func (s *HTTPSource) dropInvalid(records []domain.QuestionRecord) []domain.QuestionRecord {
	valid := records[:0]
	for i, record := range records {
		if err := record.Validate(); err != nil {
			s.logger.Warn("dropping invalid question from batch",
				"index", i,
				"word", record.Word,
				"error", err)
			continue
		}
		valid = append(valid, record)
	}
	return valid
}

// newHTTPError extracts the server's error message when the body is the
// API's JSON error shape, and falls back to the raw text.
func newHTTPError(resp *http.Response) *HTTPError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
}
