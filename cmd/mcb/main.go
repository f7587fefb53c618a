//
//  Copyright © Manetu Inc. All rights reserved.
//

package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/manetu/cedarbridge/cmd/mcb/subcommands/authorize"
	"github.com/manetu/cedarbridge/cmd/mcb/subcommands/check"
	"github.com/manetu/cedarbridge/cmd/mcb/subcommands/serve"
	"github.com/manetu/cedarbridge/cmd/mcb/subcommands/test"
	"github.com/manetu/cedarbridge/cmd/mcb/subcommands/validate"
	"github.com/manetu/cedarbridge/cmd/mcb/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "mcb",
		Usage:   "A CLI application for working with the Manetu Cedar Bridge",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "authorize",
				Usage:  "Evaluates a single authorization question against a set of policies",
				Flags:  authorize.Flags,
				Action: authorize.Execute,
			},
			{
				Name:   "validate",
				Usage:  "Validates a set of policies against a schema",
				Flags:  validate.Flags,
				Action: validate.Execute,
			},
			{
				Name:   "check",
				Usage:  "Checks that a set of policy files parses cleanly",
				Flags:  check.Flags,
				Action: check.Execute,
			},
			{
				Name:  "test",
				Usage: "Invokes various aspects of the decision flow, simplifying policy authoring and verification",
				Commands: []*cli.Command{
					{
						Name:   "decisions",
						Usage:  "Runs a YAML suite of authorization decision tests",
						Flags:  test.Flags,
						Action: test.ExecuteDecisions,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Creates a decision-point service",
				Flags:  serve.Flags,
				Action: serve.Execute,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
