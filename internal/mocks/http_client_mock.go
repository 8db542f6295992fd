package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/apiclient"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
)

// MockRequest is one call received by MockHTTPClient
type MockRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte // JSON-encoded request body / Corps de requête encodé en JSON
}

// MockHandler answers a routed request
type MockHandler func(req MockRequest) (*ports.Response, error)

// MockHTTPClient is a mock implementation of ports.HTTPClient for testing.
// Routes are keyed by "METHOD path"; unrouted calls answer 404.
type MockHTTPClient struct {
	mu     sync.Mutex
	routes map[string]MockHandler

	// Call tracking
	Requests []MockRequest
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{routes: make(map[string]MockHandler)}
}

// On answers method+path with status and a raw JSON body
func (m *MockHTTPClient) On(method, path string, status int, body string) *MockHTTPClient {
	return m.OnFunc(method, path, func(MockRequest) (*ports.Response, error) {
		if status >= http.StatusBadRequest {
			return nil, &apiclient.HTTPError{Method: method, Path: path, StatusCode: status, Body: []byte(body)}
		}
		return &ports.Response{Status: status, Body: []byte(body)}, nil
	})
}

// OnFunc routes method+path to fn
func (m *MockHTTPClient) OnFunc(method, path string, fn MockHandler) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" "+path] = fn
	return m
}

// Fail makes method+path return err
func (m *MockHTTPClient) Fail(method, path string, err error) *MockHTTPClient {
	return m.OnFunc(method, path, func(MockRequest) (*ports.Response, error) {
		return nil, err
	})
}

// CallCount returns how many times method+path was called
func (m *MockHTTPClient) CallCount(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.Requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent call to method+path
func (m *MockHTTPClient) LastRequest(method, path string) (MockRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Requests) - 1; i >= 0; i-- {
		if m.Requests[i].Method == method && m.Requests[i].Path == path {
			return m.Requests[i], true
		}
	}
	return MockRequest{}, false
}

func (m *MockHTTPClient) Get(ctx context.Context, path string, query url.Values) (*ports.Response, error) {
	return m.handle(MockRequest{Method: http.MethodGet, Path: path, Query: query})
}

func (m *MockHTTPClient) Post(ctx context.Context, path string, body any) (*ports.Response, error) {
	return m.handle(MockRequest{Method: http.MethodPost, Path: path, Body: encode(body)})
}

func (m *MockHTTPClient) Put(ctx context.Context, path string, body any) (*ports.Response, error) {
	return m.handle(MockRequest{Method: http.MethodPut, Path: path, Body: encode(body)})
}

func (m *MockHTTPClient) Delete(ctx context.Context, path string) (*ports.Response, error) {
	return m.handle(MockRequest{Method: http.MethodDelete, Path: path})
}

func (m *MockHTTPClient) handle(req MockRequest) (*ports.Response, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	fn, ok := m.routes[req.Method+" "+req.Path]
	m.mu.Unlock()

	if !ok {
		return nil, &apiclient.HTTPError{Method: req.Method, Path: req.Path, StatusCode: http.StatusNotFound}
	}
	return fn(req)
}

func encode(body any) []byte {
	if body == nil {
		return nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	return data
}
