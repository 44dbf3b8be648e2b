package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// doRequest sends a GET request to rawURL with header and returns the response
// when its status is 2xx. Any other status is an *HTTPError and the body is closed.
func doRequest(ctx context.Context, client *http.Client, rawURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		req.Header[key] = values
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &HTTPError{Status: resp.StatusCode, URL: rawURL}
	}
	return resp, nil
}

// getJSON decodes the JSON body of a successful GET into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, out any) error {
	resp, err := doRequest(ctx, client, rawURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to unmarshal response from %s: %w", rawURL, err)
	}
	return nil
}

func defaultHTTPClient(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}
