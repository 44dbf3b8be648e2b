package gateway

import (
	"io"
	"net/http"
)

// headerTransport sets fixed headers on every outgoing request.
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, values := range t.header {
		req.Header[key] = values
	}
	return baseTransport(t.base).RoundTrip(req)
}

// statusTransport turns non-2xx responses into *HTTPError for clients that
// do not expose the response, such as the GraphQL clients.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := baseTransport(t.base).RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &HTTPError{Status: resp.StatusCode, URL: req.URL.String()}
	}
	return resp, nil
}

func baseTransport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
