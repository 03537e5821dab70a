// Package automation wraps the external automation backend that performs the
// actual search/crawl/content-generation work. The engine treats it as a
// black-box HTTP service: one shared client, one base URL, opaque JSON
// request and response bodies.
package automation

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DefaultTimeout = 30 * time.Second

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv reads AUTOMATION_URL and AUTOMATION_TIMEOUT (milliseconds).
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL: os.Getenv("AUTOMATION_URL"),
		Timeout: DefaultTimeout,
	}
	if raw := os.Getenv("AUTOMATION_TIMEOUT"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	return cfg
}

// Client issues JSON calls against the automation backend.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("automation base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Call posts the body to baseURL+endpoint and returns the response status
// and raw body. Transport failures (connect, timeout) are returned as
// errors; any HTTP response, including non-2xx, is returned to the caller
// to interpret.
func (c *Client) Call(endpoint, method string, body []byte) (int, string, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", errors.Wrapf(err, "build request for %s", url)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", errors.Wrapf(err, "call %s %s", method, url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", errors.Wrapf(err, "read response from %s", url)
	}
	return resp.StatusCode, string(raw), nil
}
