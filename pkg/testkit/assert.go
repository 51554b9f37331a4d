package testkit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int, body []byte) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch\nbody: %s", scenario.Name, string(body))
}

// AssertJSONBody deep-compares actual against expected after decoding both,
// so key order and whitespace never matter. Scenario.IgnorePaths are removed
// from both sides first.
func AssertJSONBody(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal interface{}

	require.NoError(t,
		json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", scenario.Name,
	)

	if !assert.NoError(t,
		json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", scenario.Name, string(actual),
	) {
		return
	}

	for _, p := range scenario.IgnorePaths {
		dropPath(expVal, p)
		dropPath(actVal, p)
	}

	assert.Equal(t, expVal, actVal,
		"[%s] response body mismatch", scenario.Name)
}

// AssertBackend fails on unused mock steps and, when the scenario pins it,
// on a wrong number of outgoing calls.
func AssertBackend(t *testing.T, scenario *Scenario, mt *MockTransport) {
	t.Helper()

	for _, step := range mt.Unused() {
		assert.Failf(t, "mock never called", "[%s] %s %q", scenario.Name, step.Method, step.MatchURL)
	}
	if scenario.ExpectedBackendCalls != nil {
		assert.Len(t, mt.Calls(), *scenario.ExpectedBackendCalls,
			"[%s] outgoing calls: %v", scenario.Name, mt.Calls())
	}
}

// dropPath deletes a dotted key path from decoded JSON. Arrays are
// traversed element-wise: "data.products.finalPrice" drops the key from
// every product.
func dropPath(v interface{}, path string) {
	head, rest, more := strings.Cut(path, ".")
	switch node := v.(type) {
	case map[string]interface{}:
		if !more {
			delete(node, head)
			return
		}
		dropPath(node[head], rest)
	case []interface{}:
		for _, el := range node {
			dropPath(el, path)
		}
	}
}
