package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client sends JSON requests to other nodes.
type Client struct {
	http      *http.Client
	limit     int
	evHandler func(v string, args ...any)
}

// NewClient constructs a client where each request is bounded by the timeout
// and a broadcast talks to at most limit nodes at the same time.
func NewClient(timeout time.Duration, limit int, evHandler func(v string, args ...any)) *Client {
	if limit <= 0 {
		limit = 1
	}

	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		limit:     limit,
		evHandler: ev,
	}
}

// Send is a helper function to send an HTTP request to a node. Any status
// outside of the 2xx range is returned as an error.
func (c *Client) Send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if err != nil {
			return err
		}
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if dataRecv != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}

// Broadcast sends the payload to the endpoint on every node without waiting.
// Failures are reported through the event handler and never stop the other
// sends. The returned channel is closed once every send has finished.
func (c *Client) Broadcast(ctx context.Context, nodes []Node, method string, endpoint string, payload any) <-chan struct{} {
	done := make(chan struct{})

	sem := make(chan struct{}, c.limit)
	var wg sync.WaitGroup
	wg.Add(len(nodes))

	for _, node := range nodes {
		go func(node Node) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			url := node.URL(endpoint)
			if err := c.Send(ctx, method, url, payload, nil); err != nil {
				c.evHandler("peer: Broadcast: WARNING: %s", err)
				return
			}

			c.evHandler("peer: Broadcast: sent: %s %s", method, url)
		}(node)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	return done
}
