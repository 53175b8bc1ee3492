package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockServer serves canned responses per path and records every request
type MockServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]MockResponse
	requests  []MockRequest
}

// MockResponse holds response data for a path
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	// Location turns the response into a redirect
	Location string
}

// MockRequest records a request made to the mock server
type MockRequest struct {
	Method string
	Path   string
}

// NewMockServer creates a new mock HTTP server
func NewMockServer(t *testing.T) *MockServer {
	t.Helper()

	mock := &MockServer{
		responses: make(map[string]MockResponse),
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, MockRequest{Method: r.Method, Path: r.URL.Path})
		response, ok := mock.responses[r.URL.Path]
		mock.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		for key, value := range response.Headers {
			w.Header().Set(key, value)
		}

		if response.Location != "" {
			http.Redirect(w, r, response.Location, http.StatusFound)
			return
		}

		if response.StatusCode != 0 {
			w.WriteHeader(response.StatusCode)
		}
		if r.Method != http.MethodHead {
			w.Write(response.Body)
		}
	}))

	t.Cleanup(func() {
		mock.Server.Close()
	})

	return mock
}

// SetRawResponse sets a raw response
func (m *MockServer) SetRawResponse(path string, statusCode int, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = MockResponse{StatusCode: statusCode, Body: body}
}

// SetRedirect answers path with a 302 to location
func (m *MockServer) SetRedirect(path, location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = MockResponse{Location: location}
}

// GetRequestCount returns the number of requests made to a path
func (m *MockServer) GetRequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, req := range m.requests {
		if req.Path == path {
			count++
		}
	}
	return count
}

// Requests returns a copy of the recorded requests
func (m *MockServer) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockRequest(nil), m.requests...)
}
