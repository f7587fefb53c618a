//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package validate implements the 'mcb validate' subcommand, checking a
// policy set against a schema and rendering the structured diagnostics.
package validate

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/manetu/cedarbridge/cmd/mcb/common"
	"github.com/manetu/cedarbridge/pkg/bridge"
)

// Flags describes the command-line options for the validate subcommand.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:     "schema",
		Usage:    "path to the schema file",
		Required: true,
	},
	&cli.StringSliceFlag{
		Name:  "policy",
		Usage: "path to a policy file (repeatable)",
	},
}

func render(prefix, policyID string, d bridge.DetailedError) {
	fmt.Printf("%s %s: %s\n", prefix, policyID, d.Message)
	if d.Help != "" {
		fmt.Printf("    help: %s\n", d.Help)
	}
	for _, loc := range d.SourceLocations {
		if loc.Label != "" {
			fmt.Printf("    at %s [%d..%d]\n", loc.Label, loc.Start, loc.End)
		} else {
			fmt.Printf("    at [%d..%d]\n", loc.Start, loc.End)
		}
	}
	for _, rel := range d.Related {
		render(prefix+"  ", policyID, rel)
	}
}

// Execute validates the policies against the schema, printing one line per
// diagnostic. Validation failures exit non-zero.
func Execute(ctx context.Context, cmd *cli.Command) error {
	schema, err := common.LoadSchema(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}
	policies, err := common.LoadPolicySet(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	req, err := bridge.NewValidationRequest(schema, policies)
	if err != nil {
		return cli.Exit(err, 1)
	}

	engine, err := common.NewCliEngine(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	resp, err := engine.Validate(ctx, req)
	if err != nil {
		return cli.Exit(err, 1)
	}

	for _, w := range resp.Warnings {
		render("WARN", w.PolicyID, w.Warning)
	}
	for _, e := range resp.Errors {
		render("ERROR", e.PolicyID, e.Error)
	}

	if !resp.Valid() {
		fmt.Fprintln(os.Stderr, "validation failed")
		return cli.Exit(errors.Errorf("%d validation error(s)", len(resp.Errors)), 1)
	}
	fmt.Println("validation passed")
	return nil
}
