package copywriter

import (
	"context"
	"sync"
)

// MockResponse is a canned reply for MockProvider.
type MockResponse struct {
	Content string
	Err     error
}

// MockProvider returns canned responses in order, repeating the last one
// once exhausted, and records every request. It also serves a fixed model
// list. Responses can instead be keyed by prompt content with Route.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	routes    []route
	models    []ModelInfo
	listErr   error
	calls     []Request
	idx       int
}

type route struct {
	match func(Request) bool
	resp  MockResponse
}

var (
	_ Provider    = (*MockProvider)(nil)
	_ ModelLister = (*MockProvider)(nil)
)

// NewMockProvider creates a mock returning responses in order.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Route answers requests matching fn with resp, ahead of the sequence.
func (m *MockProvider) Route(fn func(Request) bool, resp MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{match: fn, resp: resp})
	return m
}

// WithModels sets the list returned by ListModels.
func (m *MockProvider) WithModels(models []ModelInfo, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = models
	m.listErr = err
	return m
}

// Complete returns the next canned response.
func (m *MockProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	r, ok := m.routed(req)
	if !ok {
		if len(m.responses) == 0 {
			return &Response{Model: "mock"}, nil
		}
		r = m.responses[m.idx]
		if m.idx < len(m.responses)-1 {
			m.idx++
		}
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{
		Content: r.Content,
		Model:   "mock",
		Usage:   Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func (m *MockProvider) routed(req Request) (MockResponse, bool) {
	for _, r := range m.routes {
		if r.match(req) {
			return r.resp, true
		}
	}
	return MockResponse{}, false
}

// ListModels returns the configured model list.
func (m *MockProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]ModelInfo(nil), m.models...), nil
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
