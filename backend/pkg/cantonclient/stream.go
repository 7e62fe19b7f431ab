package cantonclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EventStream is a forward-only sequence of ledger events delivered as
// server-push "data:" frames. Recv blocks between frames; abandoning
// the stream means calling Close, which tears down the connection.
type EventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// StreamQuery opens the ledger's event feed, optionally resuming from
// an offset.
func (c *Client) StreamQuery(ctx context.Context, offset string) (*EventStream, error) {
	url := c.baseURL + routeStreamQuery
	if offset != "" {
		url += "?offset=" + offset
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// The stream outlives any client-level timeout, so it uses the
	// transport directly and relies on ctx for cancellation.
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canton stream failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Body: string(text)}
	}

	return &EventStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// Recv blocks until the next "data:" frame arrives and returns its
// parsed JSON. io.EOF signals that the server closed the feed.
func (s *EventStream) Recv() (json.RawMessage, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := json.RawMessage(strings.TrimPrefix(line, "data: "))
		if !json.Valid(data) {
			return nil, fmt.Errorf("malformed stream frame: %s", line)
		}
		return data, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close abandons the stream.
func (s *EventStream) Close() error {
	return s.body.Close()
}
