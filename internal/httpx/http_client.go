package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultExternalHTTPTimeout = 30 * time.Second
	// maxErrorBody caps how much of a failed response ends up in an error.
	maxErrorBody = 200
)

var externalHTTPClient = &http.Client{
	Timeout: defaultExternalHTTPTimeout,
}

// Client returns the shared client used for every remote source fetch.
func Client() *http.Client {
	return externalHTTPClient
}

// ConfigureExternalHTTPClient sets the shared client's timeout and returns the
// value applied. Non-positive input restores the default.
func ConfigureExternalHTTPClient(timeoutSeconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}

// StatusError is returned by GetBody for any response other than 200.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.Code, e.Body)
}

// GetBody issues a GET with c, or the shared client when c is nil, and
// returns the full body of a 200 response.
func GetBody(ctx context.Context, c *http.Client, url string) ([]byte, error) {
	if c == nil {
		c = externalHTTPClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = append(body[:maxErrorBody:maxErrorBody], "..."...)
		}
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
