//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package test implements the 'mcb test' subcommands for exercising policy
// decisions from declarative YAML suites.
package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mohae/deepcopy"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/manetu/cedarbridge/cmd/mcb/common"
	"github.com/manetu/cedarbridge/pkg/bridge"
	"github.com/manetu/cedarbridge/pkg/types"
)

// TestCase represents a single decision test case. Fields left empty fall
// back to the suite defaults.
type TestCase struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Principal   string            `yaml:"principal"`
	Action      string            `yaml:"action"`
	Resource    string            `yaml:"resource"`
	Context     map[string]any    `yaml:"context"`
	Policies    map[string]string `yaml:"policies"`
	Result      TestResult        `yaml:"result"`
}

// TestResult represents the expected outcome of a test
type TestResult struct {
	Allow bool `yaml:"allow"`
}

// Defaults carries suite-wide material merged into every test case.
type Defaults struct {
	Policies map[string]string `yaml:"policies"`
	Entities []map[string]any  `yaml:"entities"`
	Context  map[string]any    `yaml:"context"`
}

// TestSuite represents a collection of test cases
type TestSuite struct {
	Defaults Defaults   `yaml:"defaults"`
	Tests    []TestCase `yaml:"tests"`
}

// Flags describes the command-line options for 'mcb test decisions'.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:     "input",
		Usage:    "path to the YAML test suite",
		Required: true,
	},
	&cli.StringSliceFlag{
		Name:  "test",
		Usage: "glob pattern selecting tests to run (repeatable)",
	},
}

// ExecuteDecisions runs a suite of authorization decision tests from a
// YAML file.
func ExecuteDecisions(ctx context.Context, cmd *cli.Command) error {
	suite, err := loadTestSuite(cmd.String("input"))
	if err != nil {
		return fmt.Errorf("failed to load test suite: %w", err)
	}

	if len(suite.Tests) == 0 {
		return fmt.Errorf("no tests found in test suite")
	}

	testsToRun := filterTests(suite.Tests, cmd.StringSlice("test"))
	if len(testsToRun) == 0 {
		return fmt.Errorf("no tests match the specified patterns")
	}

	entities, err := suite.entities()
	if err != nil {
		return err
	}

	engine, err := common.NewCliEngine(cmd)
	if err != nil {
		return err
	}

	passed := 0
	failed := 0

	for _, tc := range testsToRun {
		effective := suite.merge(tc)

		req, policies, err := effective.question()
		if err != nil {
			fmt.Printf("%s: ERROR (%v)\n", tc.Name, err)
			failed++
			continue
		}

		resp, err := engine.IsAuthorized(ctx, req, policies, entities)
		if err != nil {
			fmt.Printf("%s: ERROR (%v)\n", tc.Name, err)
			failed++
			continue
		}

		if resp.Allowed() == tc.Result.Allow {
			fmt.Printf("%s: PASS\n", tc.Name)
			passed++
		} else {
			fmt.Printf("%s: FAIL (expected allow=%t, got allow=%t)\n", tc.Name, tc.Result.Allow, resp.Allowed())
			failed++
		}
	}

	total := passed + failed
	fmt.Printf("\n%d/%d tests passed\n", passed, total)

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}

// merge overlays a test case on the suite defaults. The defaults are
// deep-copied first so one case cannot leak mutations into the next.
func (s *TestSuite) merge(tc TestCase) TestCase {
	policies, _ := deepcopy.Copy(s.Defaults.Policies).(map[string]string)
	if policies == nil {
		policies = map[string]string{}
	}
	for id, src := range tc.Policies {
		policies[id] = src
	}

	reqContext, _ := deepcopy.Copy(s.Defaults.Context).(map[string]any)
	if reqContext == nil {
		reqContext = map[string]any{}
	}
	for k, v := range tc.Context {
		reqContext[k] = v
	}

	tc.Policies = policies
	tc.Context = reqContext
	return tc
}

// question turns a merged test case into an authorization request and its
// policy set.
func (tc TestCase) question() (*bridge.AuthorizationRequest, *bridge.PolicySet, error) {
	principal, err := types.ParseEntityUID(tc.Principal)
	if err != nil {
		return nil, nil, fmt.Errorf("principal: %w", err)
	}
	action, err := types.ParseEntityUID(tc.Action)
	if err != nil {
		return nil, nil, fmt.Errorf("action: %w", err)
	}
	resource, err := types.ParseEntityUID(tc.Resource)
	if err != nil {
		return nil, nil, fmt.Errorf("resource: %w", err)
	}

	doc, err := json.Marshal(tc.Context)
	if err != nil {
		return nil, nil, fmt.Errorf("context: %w", err)
	}
	value, err := types.DecodeValue(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("context: %w", err)
	}
	reqContext, ok := value.(types.Record)
	if !ok {
		return nil, nil, fmt.Errorf("context must be a map")
	}

	req, err := bridge.NewAuthorizationRequest(principal, action, resource, reqContext)
	if err != nil {
		return nil, nil, err
	}

	ps := &bridge.PolicySet{}
	for id, src := range tc.Policies {
		p, err := bridge.NewPolicyWithID(src, id)
		if err != nil {
			return nil, nil, err
		}
		if err := ps.Add(p); err != nil {
			return nil, nil, err
		}
	}
	return req, ps, nil
}

// entities decodes the suite-level entity documents.
func (s *TestSuite) entities() (*types.Entities, error) {
	entities, err := types.NewEntities()
	if err != nil {
		return nil, err
	}
	if len(s.Defaults.Entities) == 0 {
		return entities, nil
	}
	doc, err := json.Marshal(s.Defaults.Entities)
	if err != nil {
		return nil, fmt.Errorf("entities: %w", err)
	}
	if err := json.Unmarshal(doc, entities); err != nil {
		return nil, fmt.Errorf("entities: %w", err)
	}
	return entities, nil
}

// loadTestSuite reads and parses a test suite from a YAML file
func loadTestSuite(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		return nil, fmt.Errorf("failed to read test file: %w", err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test file: %w", err)
	}

	return &suite, nil
}

// filterTests returns tests that match the specified patterns.
// If no patterns are specified, all tests are returned.
// Patterns support glob matching (e.g., "admin-*" matches "admin-can-read").
func filterTests(tests []TestCase, patterns []string) []TestCase {
	if len(patterns) == 0 {
		return tests
	}

	var filtered []TestCase
	for _, tc := range tests {
		for _, pattern := range patterns {
			matched, err := filepath.Match(pattern, tc.Name)
			if err != nil {
				if pattern == tc.Name {
					filtered = append(filtered, tc)
					break
				}
			} else if matched {
				filtered = append(filtered, tc)
				break
			}
		}
	}

	return filtered
}
