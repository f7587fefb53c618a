//
//  Copyright © Manetu Inc. All rights reserved.
//

package test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test-suite-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

// TestLoadTestSuite tests the YAML parsing of test suites
func TestLoadTestSuite(t *testing.T) {
	path := writeSuite(t, `defaults:
  policies:
    allow-all: permit(principal, action, resource);
  context:
    mfa: true
tests:
  - name: alice-can-view
    description: baseline allow
    principal: User::"alice"
    action: Action::"view"
    resource: Photo::"vacation.jpg"
    result:
      allow: true
  - name: bob-cannot-edit
    principal: User::"bob"
    action: Action::"edit"
    resource: Photo::"vacation.jpg"
    context:
      mfa: false
    result:
      allow: false
`)

	suite, err := loadTestSuite(path)
	require.NoError(t, err)
	require.Len(t, suite.Tests, 2)

	assert.Equal(t, "alice-can-view", suite.Tests[0].Name)
	assert.True(t, suite.Tests[0].Result.Allow)
	assert.Equal(t, "bob-cannot-edit", suite.Tests[1].Name)
	assert.False(t, suite.Tests[1].Result.Allow)
	assert.Contains(t, suite.Defaults.Policies, "allow-all")
}

func TestLoadTestSuiteMissingFile(t *testing.T) {
	_, err := loadTestSuite("/nonexistent/suite.yaml")
	assert.Error(t, err)
}

func TestLoadTestSuiteBadYAML(t *testing.T) {
	path := writeSuite(t, "tests: [unclosed")
	_, err := loadTestSuite(path)
	assert.Error(t, err)
}

// TestMergeOverlaysDefaults confirms case-level context and policies win
// over suite defaults without mutating them.
func TestMergeOverlaysDefaults(t *testing.T) {
	suite := &TestSuite{
		Defaults: Defaults{
			Policies: map[string]string{"base": "permit(principal, action, resource);"},
			Context:  map[string]any{"mfa": true, "ip": "10.0.0.1"},
		},
	}

	tc := TestCase{
		Name:     "override",
		Context:  map[string]any{"mfa": false},
		Policies: map[string]string{"extra": "forbid(principal, action, resource);"},
	}

	merged := suite.merge(tc)
	assert.Equal(t, false, merged.Context["mfa"])
	assert.Equal(t, "10.0.0.1", merged.Context["ip"])
	assert.Len(t, merged.Policies, 2)

	// suite defaults untouched
	assert.Equal(t, true, suite.Defaults.Context["mfa"])
	assert.Len(t, suite.Defaults.Policies, 1)
}

func TestMergeWithNoDefaults(t *testing.T) {
	suite := &TestSuite{}
	merged := suite.merge(TestCase{Name: "bare"})
	assert.Empty(t, merged.Policies)
	assert.Empty(t, merged.Context)
}

func TestQuestionBuildsRequest(t *testing.T) {
	tc := TestCase{
		Principal: `User::"alice"`,
		Action:    `Action::"view"`,
		Resource:  `Photo::"vacation.jpg"`,
		Context:   map[string]any{"mfa": true},
		Policies:  map[string]string{"p0": "permit(principal, action, resource);"},
	}

	req, ps, err := tc.question()
	require.NoError(t, err)
	assert.Equal(t, "User", req.Principal.Type())
	assert.Equal(t, "vacation.jpg", req.Resource.ID())
	require.Len(t, ps.Policies, 1)
	assert.Equal(t, "p0", ps.Policies[0].ID)
}

func TestQuestionRejectsBadPrincipal(t *testing.T) {
	tc := TestCase{
		Principal: "not-a-uid",
		Action:    `Action::"view"`,
		Resource:  `Photo::"vacation.jpg"`,
	}
	_, _, err := tc.question()
	assert.Error(t, err)
}

// TestFilterTests tests the glob-based test selection
func TestFilterTests(t *testing.T) {
	tests := []TestCase{
		{Name: "admin-can-read"},
		{Name: "admin-can-write"},
		{Name: "guest-denied"},
	}

	assert.Len(t, filterTests(tests, nil), 3)

	admin := filterTests(tests, []string{"admin-*"})
	require.Len(t, admin, 2)
	assert.Equal(t, "admin-can-read", admin[0].Name)

	exact := filterTests(tests, []string{"guest-denied"})
	require.Len(t, exact, 1)

	assert.Empty(t, filterTests(tests, []string{"nothing-*"}))
}
