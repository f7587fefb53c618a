//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package serve implements the 'mcb serve' subcommand, hosting a decision
// point server over the configured protocol.
package serve

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/manetu/cedarbridge/cmd/mcb/common"
	"github.com/manetu/cedarbridge/internal/logging"
	"github.com/manetu/cedarbridge/pkg/bridge"
	"github.com/manetu/cedarbridge/pkg/bridge/config"
	"github.com/manetu/cedarbridge/pkg/decisionpoint"
	"github.com/manetu/cedarbridge/pkg/decisionpoint/envoy"
	"github.com/manetu/cedarbridge/pkg/decisionpoint/generic"
	"github.com/manetu/cedarbridge/pkg/types"
)

var log = logging.GetLogger("serve")

// Flags describes the command-line options for the serve subcommand.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "protocol",
		Usage: "decision point protocol, one of [generic, envoy]",
		Value: "generic",
		Action: func(ctx context.Context, cmd *cli.Command, v string) error {
			switch v {
			case "generic", "envoy":
				return nil
			}
			return errors.Errorf("unsupported protocol %q", v)
		},
	},
	&cli.StringFlag{
		Name:  "bind",
		Usage: "listen address, overriding the configured default",
	},
	&cli.StringSliceFlag{
		Name:  "policy",
		Usage: "path to a policy file (repeatable)",
	},
	&cli.StringFlag{
		Name:  "entities",
		Usage: "path to a JSON file with entity data",
	},
}

// Execute starts the selected decision point server and blocks until an
// interrupt arrives, then shuts it down gracefully.
func Execute(ctx context.Context, cmd *cli.Command) error {
	engine, err := common.NewCliEngine(cmd)
	if err != nil {
		return err
	}

	bind := config.VConfig.GetString(config.ServerBind)
	if b := cmd.String("bind"); b != "" {
		bind = b
	}

	var server decisionpoint.Server
	switch cmd.String("protocol") {
	case "generic":
		server, err = generic.CreateServer(engine, bind)
	case "envoy":
		var policies *bridge.PolicySet
		policies, err = common.LoadPolicySet(cmd)
		if err != nil {
			return err
		}
		var entities *types.Entities
		entities, err = common.LoadEntities(cmd)
		if err != nil {
			return err
		}
		server, err = envoy.CreateServer(engine, bind, policies, entities)
	}
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Infof("shutting down server")

	if err := server.Stop(ctx); err != nil {
		return err
	}
	log.Infof("server exited gracefully")
	return nil
}
