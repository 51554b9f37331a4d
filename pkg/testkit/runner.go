package testkit

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	khttp "github.com/afandal/storeadmin/pkg/http"
)

// Run loads one scenario file and runs it against handler as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	t.Run(s.Name, func(t *testing.T) { play(t, handler, s) })
}

// RunDir runs every scenario in dir. Scenarios share the outbound client,
// so they run one after another.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()
	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Errorf("testkit: %v", err)
	}
	if len(scenarios) == 0 && len(errs) == 0 {
		t.Fatalf("testkit: no scenarios in %s", dir)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) { play(t, handler, s) })
	}
}

// play swaps the storefront transport for the scenario's mocks, sends the
// request and checks status, body and backend traffic.
func play(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	req, err := s.newRequest()
	if err != nil {
		t.Fatalf("[%s] %v", s.Name, err)
	}

	mt := NewMockTransport(s)
	khttp.DefaultClient.Transport = mt
	defer khttp.ResetTransport()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())
	if p := s.ResponseBodyPath(); p != "" {
		want, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file: %v", s.Name, err)
		} else {
			AssertJSONBody(t, s, want, rec.Body.Bytes())
		}
	}
	AssertBackend(t, s, mt)

	if t.Failed() {
		t.Logf("scenario: %s", s)
	}
}

func (s *Scenario) newRequest() (*http.Request, error) {
	method := strings.ToUpper(s.RequestMethod)
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	if p := s.RequestBodyPath(); p != "" {
		body, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read request file: %w", err)
		}
		req = httptest.NewRequest(method, s.RequestURL, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, s.RequestURL, nil)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// String summarises the scenario for failure output.
func (s *Scenario) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s -> %d", s.RequestMethod, s.RequestURL, s.ExpectedCode)
	for _, m := range s.BackendMocks {
		fmt.Fprintf(&b, "; mock %s %s -> %d", m.Method, m.MatchURL, m.ReturnData.StatusCode)
	}
	return b.String()
}
