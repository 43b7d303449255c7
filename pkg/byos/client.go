package byos

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

const (
	screenPath     = "/api/screen"
	publishTimeout = 10 * time.Second

	// Response bodies are only read for diagnostics; cap them.
	maxResponseBody = 4 << 10
)

// Client delivers snapshots to a BYOS display sink. Publish never returns
// an error or panics: delivery failures are logged and reported as false,
// and retrying is the caller's scheduling concern.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a sink client for the given base URL.
func NewClient(baseURL string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: publishTimeout},
		log:     log.With("component", "byos"),
	}
}

// Publish serializes the snapshot and POSTs it to the sink. It reports
// success only for HTTP 200 and 201.
func (c *Client) Publish(ctx context.Context, snap models.Snapshot) bool {
	body, err := json.Marshal(snap)
	if err != nil {
		c.log.Error("marshalling snapshot", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+screenPath, bytes.NewReader(body))
	if err != nil {
		c.log.Error("building publish request", "url", c.baseURL, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("publishing snapshot", "url", c.baseURL, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		c.log.Info("snapshot published",
			"online", snap.NetworkStats.OnlineNodes,
			"nodes", snap.NetworkStats.TotalNodes,
			"messages", snap.MessageStats.Total)
		return true
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	c.log.Error("sink rejected snapshot",
		"status", resp.StatusCode, "response", string(respBody))
	return false
}
