// client.go - HTTP client for the external answering service.
// One request, one response: POST {"query": ...} and decode the answer plus
// its citations. All translation from the service's wire shape to the
// internal model happens here, in mapSources.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"ncschat/internal/conversation"
)

// RequestError wraps a failure talking to the answering service.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Result is one finalized answer from the service.
type Result struct {
	Answer  string
	Sources []conversation.Source
}

// chatRequest is the wire shape of an outbound query.
type chatRequest struct {
	Query string `json:"query"`
}

// chatResponse is the wire shape of a successful response. Both fields are
// optional on the service side.
type chatResponse struct {
	Answer  string       `json:"answer"`
	Sources []chatSource `json:"sources"`
}

type chatSource struct {
	SourceTextPreview string         `json:"source_text_preview"`
	Metadata          map[string]any `json:"metadata"`
}

// Client talks to the answering service at a fixed endpoint. No auth, no
// retries, no client-side timeout: failure is observed only through the
// request's own outcome.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

func NewClient(endpoint string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   logger,
	}
}

// Ask sends one query and returns the decoded answer. Any non-2xx status,
// transport error or undecodable body is returned as a *RequestError; the
// caller treats all of them uniformly.
func (c *Client) Ask(ctx context.Context, query string) (Result, error) {
	body, err := json.Marshal(chatRequest{Query: query})
	if err != nil {
		return Result{}, &RequestError{Op: "marshal query", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, &RequestError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("answering service unreachable", zap.Error(err))
		return Result{}, &RequestError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &RequestError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("answering service returned non-success status",
			zap.Int("status", resp.StatusCode))
		return Result{}, &RequestError{
			Op:  "query answering service",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(data)),
		}
	}

	var decoded chatResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		c.logger.Warn("answering service returned malformed body", zap.Error(err))
		return Result{}, &RequestError{Op: "decode response", Err: err}
	}

	c.logger.Debug("query answered",
		zap.Int("answer_len", len(decoded.Answer)),
		zap.Int("sources", len(decoded.Sources)))

	return Result{
		Answer:  decoded.Answer,
		Sources: mapSources(decoded.Sources),
	}, nil
}

// mapSources is the single translation point between the service's citation
// shape and the internal model; schema changes on the service side land here.
func mapSources(items []chatSource) []conversation.Source {
	if len(items) == 0 {
		return nil
	}
	sources := make([]conversation.Source, len(items))
	for i, item := range items {
		sources[i] = conversation.Source{
			Text:     item.SourceTextPreview,
			Metadata: item.Metadata,
		}
	}
	return sources
}
