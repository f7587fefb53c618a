//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package check implements the 'mcb check' subcommand, confirming that a
// set of policy files parses cleanly.
package check

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/manetu/cedarbridge/cmd/mcb/common"
)

// Flags describes the command-line options for the check subcommand.
var Flags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:  "policy",
		Usage: "path to a policy file (repeatable)",
	},
}

// Execute parses every policy in the set, exiting non-zero on the first
// syntactically invalid one.
func Execute(ctx context.Context, cmd *cli.Command) error {
	policies, err := common.LoadPolicySet(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	engine, err := common.NewCliEngine(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := engine.CheckPolicies(ctx, policies); err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("%d policies OK\n", len(policies.Policies))
	return nil
}
