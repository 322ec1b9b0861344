// Package analytics posts conversion events to a pixel/collector
// endpoint. Strictly fire-and-forget: a submission must never wait on or
// fail because of tracking.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type Client struct {
	url  string
	http *http.Client
	log  *logrus.Logger
}

// New returns a client, or nil when no endpoint is configured — callers
// treat a nil tracker as "analytics disabled".
func New(url string, log *logrus.Logger) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 3 * time.Second},
		log:  log,
	}
}

// Track ships one event in the background.
func (c *Client) Track(event string, params map[string]interface{}) {
	if c == nil {
		return
	}
	go c.post(event, params)
}

func (c *Client) post(event string, params map[string]interface{}) {
	payload := map[string]interface{}{
		"event":     event,
		"params":    params,
		"timestamp": time.Now().Unix(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.WithError(err).Debug("analytics marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.log.WithError(err).Debug("analytics request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Debug("analytics event dropped")
		return
	}
	resp.Body.Close()
}
