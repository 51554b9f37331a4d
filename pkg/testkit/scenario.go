// Package testkit drives the admin HTTP service from JSON scenario files,
// answering the service's outgoing storefront calls from mocks declared in
// the same file.
//
//	testdata/
//	  login.json           ← scenario
//	  login_req.json       ← request body
//	  login_res.json       ← expected response body
//
//	func TestAPI(t *testing.T) {
//	    k, _ := kernel.NewHTTPKernel(svc, nil)
//	    testkit.RunDir(t, k.Handler(), "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes a single request against the service.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file
	Headers         map[string]string `json:"headers"`

	ResponseFileName string   `json:"responseFileName"`
	ExpectedCode     int      `json:"expectedCode"`
	IgnorePaths      []string `json:"ignorePaths"` // dotted paths dropped before the body diff, e.g. "data.pricedAt"

	// IsMockRequired fails outgoing calls that match no mock instead of
	// answering them with 404.
	IsMockRequired bool `json:"isMockRequired"`

	// ExpectedBackendCalls, when set, is the exact number of outgoing calls.
	ExpectedBackendCalls *int `json:"expectedBackendCalls"`

	BackendMocks []MockStep `json:"backendMocks"`

	dir string
}

// MockStep answers outgoing calls that match Method and MatchURL.
type MockStep struct {
	// Method is the HTTP method to match; empty matches any.
	Method string `json:"method"`

	// MatchURL is a prefix of the outgoing URL. A value starting with "/"
	// is matched against the path only. Empty matches any URL.
	MatchURL string `json:"matchUrl"`

	// Optional steps are not reported when never called.
	Optional bool `json:"optional"`

	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic response for a mock step.
type MockReturnData struct {
	StatusCode int             `json:"statusCode"` // defaults to 200
	Body       json.RawMessage `json:"body"`       // raw JSON
	BodyBase64 string          `json:"bodyBase64"` // for non-JSON bodies
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// RequestBodyPath returns the request body file, or "" when unset.
func (s *Scenario) RequestBodyPath() string {
	return s.resolve(s.RequestFileName)
}

// ResponseBodyPath returns the expected response file, or "" when unset.
func (s *Scenario) ResponseBodyPath() string {
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadAllFromDir loads every *.json file in dir whose name does not end in
// _req.json or _res.json.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	paths, err := scenarioFiles(dir)
	if err != nil {
		return nil, []error{err}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func scenarioFiles(dir string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("testkit: glob %q: %w", dir, err)
	}
	var out []string
	for _, p := range entries {
		base := filepath.Base(p)
		if strings.HasSuffix(base, "_req.json") || strings.HasSuffix(base, "_res.json") {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	return out, nil
}
