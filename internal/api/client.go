// Package api is the HTTP client for the VirusDecode alignment
// backend. It speaks two endpoints: reference metadata lookup and
// alignment submission. Failures are classified into network, server,
// and malformed-response errors so the pipeline can surface them
// without retaining payloads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/virusdecode/virusdecode/internal/payload"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultConnectTimeout = 5 * time.Second
	defaultTLSTimeout     = 5 * time.Second
)

// see https://medium.com/@nate510/don-t-use-go-s-default-http-client-4804cb19f779
func defaultHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: defaultConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultTLSTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultTimeout,
	}
}

// Client calls the alignment backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the tuned default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the overall per-request timeout on the default
// client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the backend at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: defaultHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Field is one reference-metadata key/value pair. Metadata is kept as
// structured ordered fields, never as a pre-rendered markup string;
// rendering is the presentation layer's job.
type Field struct {
	Key   string
	Value string
}

// FormatFields renders metadata as one "key: value" line per field.
func FormatFields(fields []Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}

type referenceRequest struct {
	SequenceID string `json:"sequenceId"`
}

// LookupReference resolves a reference sequence id to descriptive
// metadata via POST /inputSeq/reference. The response is a flat
// string-to-string object, returned as fields ordered by key.
func (c *Client) LookupReference(ctx context.Context, sequenceID string) ([]Field, error) {
	const endpoint = "/inputSeq/reference"

	body, err := c.post(ctx, endpoint, referenceRequest{SequenceID: sequenceID})
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{
			Code:     ErrCodeMalformed,
			Endpoint: endpoint,
			Message:  "metadata is not a flat key/value object",
			Err:      err,
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: raw[k]})
	}
	return fields, nil
}

// SubmitAlignment posts the payload via POST /inputSeq/alignment and
// returns the response body unparsed. The caller forwards it as
// transition state to the result router without interpretation.
func (c *Client) SubmitAlignment(ctx context.Context, p *payload.Payload) (json.RawMessage, error) {
	const endpoint = "/inputSeq/alignment"

	body, err := c.post(ctx, endpoint, p)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, &Error{
			Code:     ErrCodeMalformed,
			Endpoint: endpoint,
			Message:  "alignment response is not valid JSON",
		}
	}
	return json.RawMessage(body), nil
}

// post sends a JSON body and returns the response bytes on a 2xx
// status with content. Classification:
//   - transport failure -> NETWORK_ERROR
//   - non-2xx, or 204 (the backend answers 204 when the reference id
//     resolves to nothing) -> SERVER_ERROR with the status text
func (c *Client) post(ctx context.Context, endpoint string, reqBody any) ([]byte, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &Error{
			Code:     ErrCodeMalformed,
			Endpoint: endpoint,
			Message:  "encode request body",
			Err:      err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{
			Code:     ErrCodeNetwork,
			Endpoint: endpoint,
			Message:  "build request",
			Err:      err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			Code:     ErrCodeNetwork,
			Endpoint: endpoint,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, &Error{
			Code:     ErrCodeServer,
			Endpoint: endpoint,
			Status:   resp.Status,
			Message:  "no content for request",
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Code:     ErrCodeServer,
			Endpoint: endpoint,
			Status:   resp.Status,
			Message:  fmt.Sprintf("server returned %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Code:     ErrCodeNetwork,
			Endpoint: endpoint,
			Message:  "read response body",
			Err:      err,
		}
	}
	return body, nil
}
