package httpx

import "net/http"

// Client abstracts the HTTP transport so callers can swap the default
// net/http client for the fasthttp-backed one or a test double.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
