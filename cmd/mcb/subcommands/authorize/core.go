//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package authorize implements the 'mcb authorize' subcommand, answering a
// single authorization question from the command line.
package authorize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/manetu/cedarbridge/cmd/mcb/common"
	"github.com/manetu/cedarbridge/pkg/bridge"
	"github.com/manetu/cedarbridge/pkg/bridge/config"
	"github.com/manetu/cedarbridge/pkg/types"
)

// Flags describes the command-line options for the authorize subcommand.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:     "principal",
		Usage:    "principal entity UID, e.g. 'User::\"alice\"'",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "action",
		Usage:    "action entity UID, e.g. 'Action::\"view\"'",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "resource",
		Usage:    "resource entity UID, e.g. 'Photo::\"vacation.jpg\"'",
		Required: true,
	},
	&cli.StringFlag{
		Name:  "context",
		Usage: "inline JSON object with request context attributes",
	},
	&cli.StringSliceFlag{
		Name:  "policy",
		Usage: "path to a policy file (repeatable)",
	},
	&cli.StringFlag{
		Name:  "entities",
		Usage: "path to a JSON file with entity data",
	},
	&cli.StringFlag{
		Name:  "schema",
		Usage: "path to a schema file",
	},
	&cli.BoolFlag{
		Name:  "validate",
		Usage: "validate the request against the schema before evaluating",
	},
}

type report struct {
	Decision string   `json:"decision"`
	Reasons  []string `json:"reasons,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Execute evaluates the question described by the flags and prints the
// decision as JSON on stdout. A Deny decision is still a successful run.
func Execute(ctx context.Context, cmd *cli.Command) error {
	principal, err := types.ParseEntityUID(cmd.String("principal"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	action, err := types.ParseEntityUID(cmd.String("action"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	resource, err := types.ParseEntityUID(cmd.String("resource"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	reqContext, err := common.ParseContext(cmd.String("context"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	req, err := bridge.NewAuthorizationRequest(principal, action, resource, reqContext)
	if err != nil {
		return cli.Exit(err, 1)
	}
	req.Schema, err = common.LoadSchema(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	policies, err := common.LoadPolicySet(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}
	entities, err := common.LoadEntities(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	engine, err := common.NewCliEngine(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	// Schema validation can be requested per-invocation or configured as a
	// site-wide default.
	req.Validate = cmd.Bool("validate") || config.VConfig.GetBool(config.RequestValidate)

	resp, err := engine.IsAuthorized(ctx, req, policies, entities)
	if err != nil {
		return cli.Exit(err, 1)
	}

	out := report{
		Decision: string(resp.Decision),
		Reasons:  resp.Diagnostics.Reason,
		Errors:   resp.Diagnostics.Errors,
		Warnings: resp.Warnings,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return cli.Exit(err, 1)
	}
	if !resp.Allowed() {
		fmt.Fprintln(os.Stderr, "request denied")
	}
	return nil
}
