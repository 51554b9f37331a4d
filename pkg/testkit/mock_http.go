package testkit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport is an http.RoundTripper that answers from a scenario's
// backend mocks. Install it on the shared outbound client:
//
//	mt := testkit.NewMockTransport(scenario)
//	khttp.DefaultClient.Transport = mt
//	defer khttp.ResetTransport()
type MockTransport struct {
	strict bool

	mu    sync.Mutex
	steps []MockStep
	hits  []int
	calls []string
}

func NewMockTransport(s *Scenario) *MockTransport {
	return &MockTransport{
		strict: s.IsMockRequired,
		steps:  s.BackendMocks,
		hits:   make([]int, len(s.BackendMocks)),
	}
}

// RoundTrip answers req from the first step that matches it. Steps may
// answer any number of calls.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, req.Method+" "+req.URL.String())

	for i, step := range mt.steps {
		if step.matches(req) {
			mt.hits[i]++
			return step.ReturnData.reply(req)
		}
	}
	if mt.strict {
		return nil, fmt.Errorf("testkit: no mock for %s %s", req.Method, req.URL)
	}
	return MockReturnData{
		StatusCode: http.StatusNotFound,
		Body:       []byte(`{"success":false,"message":"no mock configured"}`),
	}.reply(req)
}

// Calls lists the outgoing calls as "METHOD URL", in order.
func (mt *MockTransport) Calls() []string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]string(nil), mt.calls...)
}

// Unused returns the non-optional steps no call has matched.
func (mt *MockTransport) Unused() []MockStep {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var out []MockStep
	for i, step := range mt.steps {
		if mt.hits[i] == 0 && !step.Optional {
			out = append(out, step)
		}
	}
	return out
}

func (s MockStep) matches(req *http.Request) bool {
	if s.Method != "" && !strings.EqualFold(s.Method, req.Method) {
		return false
	}
	target := req.URL.String()
	if strings.HasPrefix(s.MatchURL, "/") {
		target = req.URL.Path
	}
	return strings.HasPrefix(target, s.MatchURL)
}

func (d MockReturnData) reply(req *http.Request) (*http.Response, error) {
	body := []byte(d.Body)
	if d.BodyBase64 != "" {
		var err error
		if body, err = decodeBase64(d.BodyBase64); err != nil {
			return nil, fmt.Errorf("testkit: mock body: %w", err)
		}
	}

	code := d.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	return &http.Response{
		StatusCode:    code,
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:        http.Header{"Content-Type": {"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// decodeBase64 accepts padded and unpadded input.
func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
